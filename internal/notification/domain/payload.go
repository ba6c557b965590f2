package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	order "github.com/dmehra2102/storefront-orders/internal/order/domain"
)

type Mode string

const (
	ModeFull    Mode = "full"
	ModeMinimal Mode = "minimal"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeMinimal:
		return ModeMinimal, nil
	}
	return "", fmt.Errorf("unknown notification payload mode %q", s)
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type Item struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	PriceType   string          `json:"price_type"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Payload is what the fulfillment agent receives for a placed order.
type Payload struct {
	OrderCode     string                `json:"order_code"`
	Customer      Customer              `json:"customer"`
	Shipping      order.ShippingAddress `json:"shipping_address"`
	Items         []Item                `json:"items"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	PaymentMethod string                `json:"payment_method"`
	Currency      string                `json:"currency,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// MinimalPayload carries just enough for an agent to call the customer back.
type MinimalPayload struct {
	OrderCode     string          `json:"order_code"`
	CustomerPhone string          `json:"customer_phone"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
}

func NewPayload(h order.OrderHeader, items []order.LineItem, currency string) Payload {
	p := Payload{
		OrderCode: h.OrderCode,
		Customer: Customer{
			Name:  h.Customer.FullName(),
			Phone: h.Customer.Phone,
			Email: h.Customer.Email,
		},
		Shipping:      h.Shipping,
		Items:         make([]Item, 0, len(items)),
		TotalAmount:   h.TotalAmount,
		PaymentMethod: h.PaymentMethod,
		Currency:      currency,
		CreatedAt:     h.CreatedAt,
	}
	for _, it := range items {
		p.Items = append(p.Items, Item{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice,
			PriceType:   string(it.PriceType),
			Subtotal:    it.Subtotal,
		})
	}
	return p
}

func NewMinimalPayload(h order.OrderHeader, items []order.LineItem) MinimalPayload {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return MinimalPayload{
		OrderCode:     h.OrderCode,
		CustomerPhone: h.Customer.Phone,
		TotalAmount:   h.TotalAmount,
		ItemCount:     n,
	}
}

// DeliveryError is a non-2xx answer from the notification endpoint.
type DeliveryError struct {
	Status int
	Body   string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notification endpoint returned %d: %s", e.Status, e.Body)
}

// Permanent reports a client error that a retry cannot fix.
func (e *DeliveryError) Permanent() bool {
	switch e.Status {
	case 408, 425, 429:
		return false
	}
	return e.Status >= 400 && e.Status < 500
}
