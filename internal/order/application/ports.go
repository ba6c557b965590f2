package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/storefront-orders/internal/order/domain"
)

type OrderRepository interface {
	// InsertHeader returns domain.ErrDuplicateOrder when the order code is
	// already recorded.
	InsertHeader(ctx context.Context, h domain.OrderHeader) error
	InsertItems(ctx context.Context, orderID uuid.UUID, items []domain.LineItem) error
	GetByCode(ctx context.Context, code string) (domain.OrderHeader, []domain.LineItem, error)
}
