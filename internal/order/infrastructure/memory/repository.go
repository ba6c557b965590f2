package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmehra2102/storefront-orders/internal/order/domain"
)

// Repository keeps orders in process for local runs and tests. HeaderErr and
// ItemsErr make the next writes fail.
type Repository struct {
	mu      sync.Mutex
	headers map[string]domain.OrderHeader
	items   map[uuid.UUID][]domain.LineItem

	HeaderErr error
	ItemsErr  error
}

func NewRepository() *Repository {
	return &Repository{
		headers: make(map[string]domain.OrderHeader),
		items:   make(map[uuid.UUID][]domain.LineItem),
	}
}

func (r *Repository) InsertHeader(_ context.Context, h domain.OrderHeader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.HeaderErr != nil {
		return r.HeaderErr
	}
	if _, ok := r.headers[h.OrderCode]; ok {
		return domain.ErrDuplicateOrder
	}
	r.headers[h.OrderCode] = h
	return nil
}

func (r *Repository) InsertItems(_ context.Context, orderID uuid.UUID, items []domain.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ItemsErr != nil {
		return r.ItemsErr
	}
	r.items[orderID] = append(r.items[orderID], items...)
	return nil
}

func (r *Repository) GetByCode(_ context.Context, code string) (domain.OrderHeader, []domain.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.headers[code]
	if !ok {
		return domain.OrderHeader{}, nil, domain.ErrOrderNotFound
	}
	items := append([]domain.LineItem(nil), r.items[h.ID]...)
	return h, items, nil
}

func (r *Repository) Orders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.headers)
}

func (r *Repository) ItemCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		n += len(it)
	}
	return n
}
