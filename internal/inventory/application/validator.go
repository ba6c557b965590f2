package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/storefront-orders/internal/inventory/domain"
)

type Validator struct {
	log   *slog.Logger
	store Store
}

func NewValidator(log *slog.Logger, store Store) *Validator {
	return &Validator{log: log, store: store}
}

// Validate checks every request against live stock with a single batched
// read. Requests for the same product are summed. Any shortfall rejects the
// whole set with a *domain.ShortfallError; a failed read yields a
// *domain.UnavailableError. It has no side effects.
func (v *Validator) Validate(ctx context.Context, reqs []domain.Request) (map[string]domain.StockLevel, error) {
	ids := make([]string, 0, len(reqs))
	wanted := make(map[string]int, len(reqs))
	for _, r := range reqs {
		if _, ok := wanted[r.ProductID]; !ok {
			ids = append(ids, r.ProductID)
		}
		wanted[r.ProductID] += r.Quantity
	}

	levels, err := v.store.Fetch(ctx, ids)
	if err != nil {
		v.log.Error("stock fetch failed", "products", len(ids), "err", err)
		return nil, &domain.UnavailableError{Op: "fetch", Err: err}
	}

	observed := make(map[string]domain.StockLevel, len(levels))
	for _, l := range levels {
		observed[l.ProductID] = l
	}

	var short []domain.ShortfallLine
	for _, id := range ids {
		level, found := observed[id]
		available := 0
		name := id
		if found {
			available = level.Quantity
			if level.Name != "" {
				name = level.Name
			}
		}
		if available < wanted[id] {
			short = append(short, domain.ShortfallLine{
				ProductID: id,
				Name:      name,
				Available: available,
				Requested: wanted[id],
			})
		}
	}
	if len(short) > 0 {
		err := &domain.ShortfallError{Lines: short}
		v.log.Info("stock shortfall", "err", err)
		return nil, err
	}
	return observed, nil
}
