package domain

import "github.com/shopspring/decimal"

func init() {
	// Fulfillment agents and the checkout UI expect JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

type PriceType string

const (
	PriceRetail    PriceType = "retail"
	PriceWholesale PriceType = "wholesale"
)

func (p PriceType) Valid() bool {
	return p == PriceRetail || p == PriceWholesale
}

type SellingMode string

const (
	SellRetail    SellingMode = "retail"
	SellWholesale SellingMode = "wholesale"
	SellBoth      SellingMode = "both"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductArchived ProductStatus = "archived"
)

// Product is owned by the inventory store. The pipeline only reads it and
// decrements Quantity.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	Category       string          `json:"category,omitempty"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	Quantity       int             `json:"quantity"`
	MinStockLevel  int             `json:"min_stock_level"`
	SellingMode    SellingMode     `json:"selling_mode"`
	Status         ProductStatus   `json:"status"`
}

func (p Product) PriceFor(t PriceType) decimal.Decimal {
	if t == PriceWholesale {
		return p.WholesalePrice
	}
	return p.RetailPrice
}

// Sells reports whether the product may be bought at price type t.
func (p Product) Sells(t PriceType) bool {
	if p.Status == ProductArchived {
		return false
	}
	switch p.SellingMode {
	case SellBoth, "":
		return t.Valid()
	default:
		return string(p.SellingMode) == string(t)
	}
}

func (p Product) LowStock() bool {
	return p.Quantity < p.MinStockLevel
}
