package domain

const (
	AggregateOrder   = "order"
	EventOrderPlaced = "OrderPlaced"
)
