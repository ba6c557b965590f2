package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/storefront-orders/internal/order/domain"
	"github.com/dmehra2102/storefront-orders/pkg/outbox"
)

const uniqueViolation = "23505"

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	id               UUID PRIMARY KEY,
	order_code       TEXT NOT NULL UNIQUE,
	first_name       TEXT NOT NULL,
	last_name        TEXT NOT NULL DEFAULT '',
	phone            TEXT NOT NULL,
	email            TEXT NOT NULL DEFAULT '',
	address_line1    TEXT NOT NULL,
	city             TEXT NOT NULL,
	delivery_notes   TEXT NOT NULL DEFAULT '',
	total_amount     NUMERIC(12,2) NOT NULL,
	payment_method   TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','processing','completed','cancelled')),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS order_items (
	order_id     UUID NOT NULL REFERENCES orders(id),
	line_no      INT NOT NULL,
	product_id   TEXT NOT NULL,
	product_name TEXT NOT NULL,
	sku          TEXT NOT NULL DEFAULT '',
	quantity     INT NOT NULL CHECK (quantity > 0),
	price        NUMERIC(12,2) NOT NULL,
	price_type   TEXT NOT NULL CHECK (price_type IN ('retail','wholesale')),
	subtotal     NUMERIC(12,2) NOT NULL,
	PRIMARY KEY (order_id, line_no)
);
`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("orders schema: %w", err)
	}
	if _, err := r.pool.Exec(ctx, outbox.Schema); err != nil {
		return fmt.Errorf("outbox schema: %w", err)
	}
	return nil
}

func (r *Repository) InsertHeader(ctx context.Context, h domain.OrderHeader) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (id, order_code, first_name, last_name, phone, email,
			address_line1, city, delivery_notes, total_amount, payment_method, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		h.ID, h.OrderCode, h.Customer.FirstName, h.Customer.LastName, h.Customer.Phone, h.Customer.Email,
		h.Shipping.Line1, h.Shipping.City, h.Shipping.Notes, h.TotalAmount, h.PaymentMethod, string(h.Status), h.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateOrder
	}
	return err
}

// InsertItems writes all lines in one transaction; either every line lands or
// none does. Lines are keyed by position, so a product may appear twice.
func (r *Repository) InsertItems(ctx context.Context, orderID uuid.UUID, items []domain.LineItem) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(`INSERT INTO order_items (order_id, line_no, product_id, product_name, sku, quantity, price, price_type, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			orderID, i+1, it.ProductID, it.ProductName, it.SKU, it.Quantity, it.UnitPrice, string(it.PriceType), it.Subtotal)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) GetByCode(ctx context.Context, code string) (domain.OrderHeader, []domain.LineItem, error) {
	var (
		h      domain.OrderHeader
		status string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, order_code, first_name, last_name, phone, email, address_line1, city, delivery_notes,
			total_amount, payment_method, status, created_at
		FROM orders WHERE order_code = $1`, code).
		Scan(&h.ID, &h.OrderCode, &h.Customer.FirstName, &h.Customer.LastName, &h.Customer.Phone, &h.Customer.Email,
			&h.Shipping.Line1, &h.Shipping.City, &h.Shipping.Notes, &h.TotalAmount, &h.PaymentMethod, &status, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderHeader{}, nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.OrderHeader{}, nil, err
	}
	h.Status = domain.OrderStatus(status)

	rows, err := r.pool.Query(ctx, `
		SELECT product_id, product_name, sku, quantity, price, price_type, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY line_no`, h.ID)
	if err != nil {
		return domain.OrderHeader{}, nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		it := domain.LineItem{OrderID: h.ID}
		var priceType string
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.SKU, &it.Quantity, &it.UnitPrice, &priceType, &it.Subtotal); err != nil {
			return domain.OrderHeader{}, nil, err
		}
		it.PriceType = domain.PriceType(priceType)
		items = append(items, it)
	}
	return h, items, rows.Err()
}
