package postgres

import (
	"context"
	"fmt"
	"log/slog"

	order "github.com/dmehra2102/storefront-orders/internal/order/domain"
	"github.com/dmehra2102/storefront-orders/pkg/outbox"
	"github.com/dmehra2102/storefront-orders/pkg/tracing"
)

// OutboxSender turns a notification into an OrderPlaced outbox row. The relay
// delivers it to Kafka at least once and dead-letters it after repeated
// failures, so a down endpoint no longer loses the notification.
type OutboxSender struct {
	log *slog.Logger
	db  outbox.Execer
}

func NewOutboxSender(log *slog.Logger, db outbox.Execer) *OutboxSender {
	return &OutboxSender{log: log, db: db}
}

func (s *OutboxSender) Send(ctx context.Context, orderCode string, body []byte) error {
	ev := outbox.NewEvent(order.AggregateOrder, orderCode, order.EventOrderPlaced, body,
		map[string]string{"source": "order-service"}, tracing.Traceparent(ctx))
	if err := outbox.Insert(ctx, s.db, ev); err != nil {
		return fmt.Errorf("enqueue %s for %s: %w", order.EventOrderPlaced, orderCode, err)
	}
	s.log.Info("notification enqueued", "order_code", orderCode)
	return nil
}
