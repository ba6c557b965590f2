package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront-orders/internal/inventory/application"
	"github.com/dmehra2102/storefront-orders/internal/inventory/domain"
	"github.com/dmehra2102/storefront-orders/internal/inventory/infrastructure/memory"
	"github.com/dmehra2102/storefront-orders/pkg/logging"
)

func TestValidatorValidate(t *testing.T) {
	tests := []struct {
		name      string
		stock     []domain.StockLevel
		reqs      []domain.Request
		fetchErr  error
		wantShort []domain.ShortfallLine
		wantMsg   string
		wantUnav  bool
	}{
		{
			name:  "Success - Enough Stock",
			stock: []domain.StockLevel{{ProductID: "P1", Name: "Rice", Quantity: 5}},
			reqs:  []domain.Request{{ProductID: "P1", Quantity: 2}},
		},
		{
			name:  "Success - Exactly Available",
			stock: []domain.StockLevel{{ProductID: "P1", Name: "Rice", Quantity: 2}},
			reqs:  []domain.Request{{ProductID: "P1", Quantity: 2}},
		},
		{
			name:      "Failure - Shortfall",
			stock:     []domain.StockLevel{{ProductID: "P1", Name: "Rice", Quantity: 3}},
			reqs:      []domain.Request{{ProductID: "P1", Quantity: 10}},
			wantShort: []domain.ShortfallLine{{ProductID: "P1", Name: "Rice", Available: 3, Requested: 10}},
			wantMsg:   "Rice: 3 available, 10 requested",
		},
		{
			name:      "Failure - Unknown Product Counts As Zero",
			stock:     []domain.StockLevel{{ProductID: "P1", Name: "Rice", Quantity: 3}},
			reqs:      []domain.Request{{ProductID: "P1", Quantity: 1}, {ProductID: "GONE", Quantity: 1}},
			wantShort: []domain.ShortfallLine{{ProductID: "GONE", Name: "GONE", Available: 0, Requested: 1}},
			wantMsg:   "GONE: 0 available, 1 requested",
		},
		{
			name:      "Failure - Duplicate Lines Are Summed",
			stock:     []domain.StockLevel{{ProductID: "P1", Name: "Rice", Quantity: 3}},
			reqs:      []domain.Request{{ProductID: "P1", Quantity: 2}, {ProductID: "P1", Quantity: 2}},
			wantShort: []domain.ShortfallLine{{ProductID: "P1", Name: "Rice", Available: 3, Requested: 4}},
		},
		{
			name: "Failure - Every Offending Line Reported",
			stock: []domain.StockLevel{
				{ProductID: "P1", Name: "Rice", Quantity: 0},
				{ProductID: "P2", Name: "Sugar", Quantity: 1},
				{ProductID: "P3", Name: "Salt", Quantity: 9},
			},
			reqs: []domain.Request{{ProductID: "P1", Quantity: 1}, {ProductID: "P2", Quantity: 2}, {ProductID: "P3", Quantity: 1}},
			wantShort: []domain.ShortfallLine{
				{ProductID: "P1", Name: "Rice", Available: 0, Requested: 1},
				{ProductID: "P2", Name: "Sugar", Available: 1, Requested: 2},
			},
		},
		{
			name:     "Failure - Store Unavailable",
			reqs:     []domain.Request{{ProductID: "P1", Quantity: 1}},
			fetchErr: errors.New("connection refused"),
			wantUnav: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore(tt.stock...)
			store.FetchErr = tt.fetchErr
			v := application.NewValidator(logging.Discard(), store)

			levels, err := v.Validate(context.Background(), tt.reqs)

			assert.Equal(t, 1, store.Fetches(), "exactly one batched read")
			switch {
			case tt.wantUnav:
				var unav *domain.UnavailableError
				require.ErrorAs(t, err, &unav)
				assert.Contains(t, err.Error(), "connection refused")
				assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
			case tt.wantShort != nil:
				var short *domain.ShortfallError
				require.ErrorAs(t, err, &short)
				assert.Equal(t, tt.wantShort, short.Lines)
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
				if tt.wantMsg != "" {
					assert.Contains(t, err.Error(), tt.wantMsg)
				}
				assert.Nil(t, levels)
			default:
				require.NoError(t, err)
				for _, r := range tt.reqs {
					assert.Contains(t, levels, r.ProductID)
				}
			}
			for _, l := range tt.stock {
				assert.Equal(t, l.Quantity, store.Quantity(l.ProductID), "validation must not change stock")
			}
		})
	}
}
