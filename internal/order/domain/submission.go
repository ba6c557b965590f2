package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultPaymentMethod = "cash"

type SubmissionItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	PriceType   PriceType       `json:"price_type"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func (it SubmissionItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Submission is the cart snapshot a caller hands to the pipeline.
type Submission struct {
	OrderCode     string           `json:"order_code"`
	Customer      Customer         `json:"customer"`
	Shipping      ShippingAddress  `json:"shipping_address"`
	Items         []SubmissionItem `json:"items"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	PaymentMethod string           `json:"payment_method"`
}

// Total is the server-side sum of line totals.
func (s Submission) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s Submission) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Normalize trims free-text fields, fills a default payment method and
// computes subtotals and the total the caller left out.
func (s *Submission) Normalize() {
	s.OrderCode = strings.TrimSpace(s.OrderCode)
	s.Customer.FirstName = strings.TrimSpace(s.Customer.FirstName)
	s.Customer.LastName = strings.TrimSpace(s.Customer.LastName)
	s.Customer.Phone = strings.TrimSpace(s.Customer.Phone)
	s.Customer.Email = strings.TrimSpace(s.Customer.Email)
	s.Shipping.Line1 = strings.TrimSpace(s.Shipping.Line1)
	s.Shipping.City = strings.TrimSpace(s.Shipping.City)
	s.Shipping.Notes = strings.TrimSpace(s.Shipping.Notes)
	s.PaymentMethod = strings.ToLower(strings.TrimSpace(s.PaymentMethod))
	if s.PaymentMethod == "" {
		s.PaymentMethod = DefaultPaymentMethod
	}
	for i := range s.Items {
		if s.Items[i].PriceType == "" {
			s.Items[i].PriceType = PriceRetail
		}
		if s.Items[i].Subtotal.IsZero() {
			s.Items[i].Subtotal = s.Items[i].LineTotal()
		}
	}
	if s.TotalAmount.IsZero() {
		s.TotalAmount = s.Total()
	}
}

// Validate checks required fields and that the caller's arithmetic agrees
// with the server's. Call Normalize first.
func (s Submission) Validate() error {
	if s.OrderCode != "" && !ValidOrderCode(s.OrderCode) {
		return invalid("order_code", "must look like ORD-<timestamp>-<5 characters>")
	}
	if s.Customer.FirstName == "" {
		return invalid("customer.first_name", "is required")
	}
	if s.Customer.Phone == "" {
		return invalid("customer.phone", "is required")
	}
	if s.Shipping.Line1 == "" {
		return invalid("shipping_address.line1", "is required")
	}
	if s.Shipping.City == "" {
		return invalid("shipping_address.city", "is required")
	}
	if len(s.Items) == 0 {
		return invalid("items", "must not be empty")
	}
	for i, it := range s.Items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case it.ProductID == "":
			return invalid(field+".product_id", "is required")
		case it.Quantity < 1:
			return invalid(field+".quantity", "must be at least 1")
		case !it.PriceType.Valid():
			return invalid(field+".price_type", "must be retail or wholesale")
		case it.Price.IsNegative():
			return invalid(field+".price", "must not be negative")
		case !it.Price.Equal(it.Price.Round(2)):
			return invalid(field+".price", "must have at most 2 decimal places")
		case !it.Subtotal.Equal(it.LineTotal()):
			return invalid(field+".subtotal", fmt.Sprintf("is %s, expected %s", it.Subtotal, it.LineTotal()))
		}
	}
	if !s.TotalAmount.Equal(s.Total()) {
		return invalid("total_amount", fmt.Sprintf("is %s, expected %s", s.TotalAmount, s.Total()))
	}
	return nil
}

func invalid(field, reason string) error {
	return &InvalidSubmissionError{Field: field, Reason: reason}
}
