//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront-orders/internal/order/domain"
	"github.com/dmehra2102/storefront-orders/internal/testenv"
	"github.com/dmehra2102/storefront-orders/pkg/logging"
)

func newOrder(code string) (domain.OrderHeader, []domain.LineItem) {
	s := domain.Submission{
		OrderCode: code,
		Customer:  domain.Customer{FirstName: "Asha", LastName: "Odhiambo", Phone: "0700000000", Email: "asha@example.com"},
		Shipping:  domain.ShippingAddress{Line1: "1 Market St", City: "Nairobi", Notes: "gate B"},
		Items: []domain.SubmissionItem{
			{ProductID: "P1", ProductName: "Rice 2kg", SKU: "RICE-2", Quantity: 2, Price: decimal.RequireFromString("4.50")},
			{ProductID: "P2", ProductName: "Sugar 1kg", SKU: "SUG-1", Quantity: 1, Price: decimal.RequireFromString("2.25"), PriceType: domain.PriceWholesale},
		},
	}
	s.Normalize()
	h := domain.NewOrderHeader(s, time.Now().Truncate(time.Microsecond))
	return h, domain.NewLineItems(h.ID, s)
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(logging.Discard(), testenv.Postgres(t))
	require.NoError(t, repo.EnsureSchema(ctx))

	h, items := newOrder("ORD-1700000000000-AB12C")
	require.NoError(t, repo.InsertHeader(ctx, h))
	require.NoError(t, repo.InsertItems(ctx, h.ID, items))

	got, gotItems, err := repo.GetByCode(ctx, h.OrderCode)
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)
	assert.Equal(t, h.Customer, got.Customer)
	assert.Equal(t, h.Shipping, got.Shipping)
	assert.True(t, h.TotalAmount.Equal(got.TotalAmount), "total %s != %s", got.TotalAmount, h.TotalAmount)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, h.CreatedAt.Equal(got.CreatedAt))

	require.Len(t, gotItems, 2)
	assert.Equal(t, "P1", gotItems[0].ProductID)
	assert.True(t, decimal.RequireFromString("9").Equal(gotItems[0].Subtotal))
	assert.Equal(t, domain.PriceWholesale, gotItems[1].PriceType)
}

func TestRepositoryKeepsRepeatedProductLines(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(logging.Discard(), testenv.Postgres(t))
	require.NoError(t, repo.EnsureSchema(ctx))

	h, items := newOrder("ORD-1700000000000-AB12C")
	repeat := items[0]
	repeat.Quantity = 1
	repeat.Subtotal = repeat.UnitPrice
	items = append(items, repeat)
	require.NoError(t, repo.InsertHeader(ctx, h))
	require.NoError(t, repo.InsertItems(ctx, h.ID, items))

	_, got, err := repo.GetByCode(ctx, h.OrderCode)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "P1", got[0].ProductID)
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, "P2", got[1].ProductID)
	assert.Equal(t, "P1", got[2].ProductID)
	assert.Equal(t, 1, got[2].Quantity)
	assert.Equal(t, domain.PriceRetail, got[2].PriceType)
}

func TestRepositoryDuplicateOrderCode(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(logging.Discard(), testenv.Postgres(t))
	require.NoError(t, repo.EnsureSchema(ctx))

	h, _ := newOrder("ORD-1700000000000-AB12C")
	require.NoError(t, repo.InsertHeader(ctx, h))

	again, _ := newOrder("ORD-1700000000000-AB12C")
	assert.ErrorIs(t, repo.InsertHeader(ctx, again), domain.ErrDuplicateOrder)
}

func TestRepositoryItemsAreAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(logging.Discard(), testenv.Postgres(t))
	require.NoError(t, repo.EnsureSchema(ctx))

	h, items := newOrder("ORD-1700000000000-AB12C")
	require.NoError(t, repo.InsertHeader(ctx, h))

	items[1].Quantity = 0
	require.Error(t, repo.InsertItems(ctx, h.ID, items))

	_, got, err := repo.GetByCode(ctx, h.OrderCode)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepositoryItemsForUnknownOrderFail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(logging.Discard(), testenv.Postgres(t))
	require.NoError(t, repo.EnsureSchema(ctx))

	_, items := newOrder("ORD-1700000000000-AB12C")
	assert.Error(t, repo.InsertItems(ctx, uuid.New(), items))
}

func TestRepositoryGetByCodeNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(logging.Discard(), testenv.Postgres(t))
	require.NoError(t, repo.EnsureSchema(ctx))

	_, _, err := repo.GetByCode(ctx, "ORD-1700000000000-ZZZZZ")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
