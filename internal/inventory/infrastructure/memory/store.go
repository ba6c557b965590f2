package memory

import (
	"context"
	"sync"

	"github.com/dmehra2102/storefront-orders/internal/inventory/domain"
)

// Store keeps product stock in process. It backs local runs and tests; the
// fault fields let tests simulate a flaky backing table.
type Store struct {
	mu     sync.Mutex
	levels map[string]domain.StockLevel

	FetchErr     error
	DecrementErr map[string]error

	fetches int
}

func NewStore(levels ...domain.StockLevel) *Store {
	s := &Store{levels: make(map[string]domain.StockLevel), DecrementErr: map[string]error{}}
	for _, l := range levels {
		s.levels[l.ProductID] = l
	}
	return s
}

func (s *Store) Fetch(_ context.Context, ids []string) ([]domain.StockLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	out := make([]domain.StockLevel, 0, len(ids))
	for _, id := range ids {
		if l, ok := s.levels[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) Decrement(_ context.Context, id string, qty int) (domain.StockLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.DecrementErr[id]; err != nil {
		return domain.StockLevel{}, err
	}
	l, ok := s.levels[id]
	if !ok {
		return domain.StockLevel{}, domain.ErrProductNotFound
	}
	if l.Quantity < qty {
		return l, domain.ErrInsufficientStock
	}
	l.Quantity -= qty
	s.levels[id] = l
	return l, nil
}

// Set overwrites the stock of one product.
func (s *Store) Set(l domain.StockLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[l.ProductID] = l
}

func (s *Store) Quantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[id].Quantity
}

func (s *Store) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}
