package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmehra2102/storefront-orders/internal/order/domain"
)

// Recorder writes an order as two steps: the header, which decides whether
// the order exists, and then its line items.
type Recorder struct {
	log  *slog.Logger
	repo OrderRepository
}

func NewRecorder(log *slog.Logger, repo OrderRepository) *Recorder {
	return &Recorder{log: log, repo: repo}
}

// Record returns a *domain.PersistenceError when the header could not be
// written and domain.ErrDuplicateOrder when the code is already taken. A
// failed item write leaves the order in place and comes back as degraded.
func (r *Recorder) Record(ctx context.Context, h domain.OrderHeader, items []domain.LineItem) (*domain.DegradedWriteError, error) {
	if err := r.repo.InsertHeader(ctx, h); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			return nil, err
		}
		r.log.Error("order header insert failed", "order_code", h.OrderCode, "err", err)
		return nil, &domain.PersistenceError{OrderCode: h.OrderCode, Err: err}
	}

	if len(items) == 0 {
		return nil, nil
	}
	if err := r.repo.InsertItems(ctx, h.ID, items); err != nil {
		r.log.Warn("order items insert failed", "order_code", h.OrderCode, "items", len(items), "err", err)
		return &domain.DegradedWriteError{OrderCode: h.OrderCode, What: "line items", Err: err}, nil
	}
	return nil, nil
}

func (r *Recorder) Get(ctx context.Context, code string) (domain.Order, error) {
	h, items, err := r.repo.GetByCode(ctx, code)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{OrderHeader: h, Items: items}, nil
}
