package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
)

const (
	AggregateProduct = "product"
	EventStockLow    = "StockLow"
)

// StockLevel is the slice of a product row the pipeline reads.
type StockLevel struct {
	ProductID     string `json:"id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level,omitempty"`
}

func (s StockLevel) Low() bool {
	return s.MinStockLevel > 0 && s.Quantity < s.MinStockLevel
}

// Request asks for Quantity units of ProductID.
type Request struct {
	ProductID string
	Quantity  int
}

type ShortfallLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

func (l ShortfallLine) String() string {
	return fmt.Sprintf("%s: %d available, %d requested", l.Name, l.Available, l.Requested)
}

// ShortfallError rejects a whole submission; it is never retried.
type ShortfallError struct {
	Lines []ShortfallLine
}

func (e *ShortfallError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, l.String())
	}
	return "insufficient stock for " + strings.Join(parts, "; ")
}

func (e *ShortfallError) Is(target error) bool { return target == ErrInsufficientStock }

// UnavailableError means the inventory store could not be read. The caller
// may retry.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("inventory %s unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// StockLow is emitted when a decrement leaves a product under its minimum.
type StockLow struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
}
