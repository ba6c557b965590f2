package domain

import "github.com/shopspring/decimal"

type CartLine struct {
	Product           Product   `json:"product"`
	CartQuantity      int       `json:"cart_quantity"`
	SelectedPriceType PriceType `json:"selected_price_type"`
}

func (l CartLine) UnitPrice() decimal.Decimal {
	return l.Product.PriceFor(l.SelectedPriceType)
}

// Cart is the caller's transient basket. It has no server-side identity
// until it is turned into a Submission.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Add puts one unit of p in the cart, or bumps the quantity when p is
// already there. Products that cannot be sold at t are ignored.
func (c *Cart) Add(p Product, t PriceType) bool {
	if !p.Sells(t) {
		return false
	}
	for i := range c.Lines {
		if c.Lines[i].Product.ID == p.ID {
			c.Lines[i].CartQuantity++
			return true
		}
	}
	c.Lines = append(c.Lines, CartLine{Product: p, CartQuantity: 1, SelectedPriceType: t})
	return true
}

func (c *Cart) Remove(productID string) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.Product.ID != productID {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

// SetQuantity clamps q to the stock last seen for the product; q <= 0 removes
// the line.
func (c *Cart) SetQuantity(productID string, q int) {
	if q <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines[i].CartQuantity = min(q, c.Lines[i].Product.Quantity)
		}
	}
}

func (c Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.CartQuantity
	}
	return n
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.UnitPrice().Mul(decimal.NewFromInt(int64(l.CartQuantity))))
	}
	return total
}

func (c Cart) Submission(orderCode string, customer Customer, shipping ShippingAddress, paymentMethod string) Submission {
	items := make([]SubmissionItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		it := SubmissionItem{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			SKU:         l.Product.SKU,
			Quantity:    l.CartQuantity,
			Price:       l.UnitPrice(),
			PriceType:   l.SelectedPriceType,
		}
		it.Subtotal = it.LineTotal()
		items = append(items, it)
	}
	return Submission{
		OrderCode:     orderCode,
		Customer:      customer,
		Shipping:      shipping,
		Items:         items,
		TotalAmount:   c.TotalPrice(),
		PaymentMethod: paymentMethod,
	}
}
