package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/storefront-orders/internal/inventory/domain"
	"github.com/dmehra2102/storefront-orders/pkg/outbox"
	"github.com/dmehra2102/storefront-orders/pkg/tracing"
)

const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT,
	category        TEXT,
	sku             TEXT NOT NULL UNIQUE,
	retail_price    NUMERIC(12,2) NOT NULL DEFAULT 0,
	wholesale_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	quantity        INT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	min_stock_level INT NOT NULL DEFAULT 0,
	selling_mode    TEXT NOT NULL DEFAULT 'both' CHECK (selling_mode IN ('retail','wholesale','both')),
	status          TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','archived')),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ
);
`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{
		log:  log,
		pool: pool,
	}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("products schema: %w", err)
	}
	if _, err := r.pool.Exec(ctx, outbox.Schema); err != nil {
		return fmt.Errorf("outbox schema: %w", err)
	}
	return nil
}

func (r *Repository) Fetch(ctx context.Context, ids []string) ([]domain.StockLevel, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, quantity, min_stock_level FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make([]domain.StockLevel, 0, len(ids))
	for rows.Next() {
		var l domain.StockLevel
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Quantity, &l.MinStockLevel); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// Decrement is a single conditional update, so concurrent checkouts cannot
// drive quantity below zero. Crossing min_stock_level writes a StockLow event
// to the outbox in the same transaction.
func (r *Repository) Decrement(ctx context.Context, id string, qty int) (domain.StockLevel, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.StockLevel{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var l domain.StockLevel
	err = tx.QueryRow(ctx, `
		UPDATE products
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING id, name, quantity, min_stock_level`, id, qty).
		Scan(&l.ProductID, &l.Name, &l.Quantity, &l.MinStockLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.explainMiss(ctx, tx, id)
	}
	if err != nil {
		return domain.StockLevel{}, err
	}

	if l.Low() && l.Quantity+qty >= l.MinStockLevel {
		payload, err := json.Marshal(domain.StockLow{
			ProductID:     l.ProductID,
			Name:          l.Name,
			Quantity:      l.Quantity,
			MinStockLevel: l.MinStockLevel,
		})
		if err != nil {
			return domain.StockLevel{}, err
		}
		ev := outbox.NewEvent(domain.AggregateProduct, l.ProductID, domain.EventStockLow, payload,
			map[string]string{"source": "inventory-service"}, tracing.Traceparent(ctx))
		if err := outbox.Insert(ctx, tx, ev); err != nil {
			return domain.StockLevel{}, err
		}
		r.log.Info("stock below minimum", "product_id", l.ProductID, "quantity", l.Quantity, "min_stock_level", l.MinStockLevel)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StockLevel{}, err
	}
	return l, nil
}

func (r *Repository) explainMiss(ctx context.Context, tx pgx.Tx, id string) (domain.StockLevel, error) {
	var l domain.StockLevel
	err := tx.QueryRow(ctx, `SELECT id, name, quantity, min_stock_level FROM products WHERE id = $1`, id).
		Scan(&l.ProductID, &l.Name, &l.Quantity, &l.MinStockLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StockLevel{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.StockLevel{}, err
	}
	return l, domain.ErrInsufficientStock
}
