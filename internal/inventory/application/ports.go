package application

import (
	"context"

	"github.com/dmehra2102/storefront-orders/internal/inventory/domain"
)

// Store is the inventory table as the pipeline sees it.
type Store interface {
	// Fetch reads the listed products in one round trip. Unknown ids are
	// absent from the result.
	Fetch(ctx context.Context, productIDs []string) ([]domain.StockLevel, error)
	// Decrement subtracts qty only if at least qty units remain, returning
	// the new level. It fails with domain.ErrInsufficientStock otherwise.
	Decrement(ctx context.Context, productID string, qty int) (domain.StockLevel, error)
}
