package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

// Status transitions belong to fulfillment; submission only creates pending
// orders.
const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type ShippingAddress struct {
	Line1 string `json:"line1"`
	City  string `json:"city"`
	Notes string `json:"notes,omitempty"`
}

// OrderHeader is the authoritative record that an order exists.
type OrderHeader struct {
	ID            uuid.UUID       `json:"id"`
	OrderCode     string          `json:"order_code"`
	Customer      Customer        `json:"customer"`
	Shipping      ShippingAddress `json:"shipping_address"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LineItem snapshots product identity and price at submission time so later
// catalog edits do not rewrite history.
type LineItem struct {
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	PriceType   PriceType       `json:"price_type"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Order is a header with whatever line items were recorded for it.
type Order struct {
	OrderHeader
	Items []LineItem `json:"items"`
}

func NewOrderHeader(s Submission, now time.Time) OrderHeader {
	return OrderHeader{
		ID:            uuid.New(),
		OrderCode:     s.OrderCode,
		Customer:      s.Customer,
		Shipping:      s.Shipping,
		TotalAmount:   s.Total(),
		PaymentMethod: s.PaymentMethod,
		Status:        StatusPending,
		CreatedAt:     now.UTC(),
	}
}

func NewLineItems(orderID uuid.UUID, s Submission) []LineItem {
	items := make([]LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, LineItem{
			OrderID:     orderID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
			PriceType:   it.PriceType,
			Subtotal:    it.LineTotal(),
		})
	}
	return items
}
