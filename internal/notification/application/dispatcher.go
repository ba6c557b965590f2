package application

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/dmehra2102/storefront-orders/internal/notification/domain"
	order "github.com/dmehra2102/storefront-orders/internal/order/domain"
)

// Sender delivers an encoded notification for one order.
type Sender interface {
	Send(ctx context.Context, orderCode string, body []byte) error
}

type Dispatcher struct {
	log      *slog.Logger
	mode     domain.Mode
	currency string
	sender   Sender
}

func NewDispatcher(log *slog.Logger, mode domain.Mode, currency string, sender Sender) *Dispatcher {
	if mode == "" {
		mode = domain.ModeFull
	}
	return &Dispatcher{log: log, mode: mode, currency: currency, sender: sender}
}

func (d *Dispatcher) Dispatch(ctx context.Context, h order.OrderHeader, items []order.LineItem) error {
	var (
		body []byte
		err  error
	)
	switch d.mode {
	case domain.ModeMinimal:
		body, err = json.Marshal(domain.NewMinimalPayload(h, items))
	default:
		body, err = json.Marshal(domain.NewPayload(h, items, d.currency))
	}
	if err != nil {
		return err
	}
	if err := d.sender.Send(ctx, h.OrderCode, body); err != nil {
		return err
	}
	d.log.Debug("notification dispatched", "order_code", h.OrderCode, "mode", d.mode, "bytes", len(body))
	return nil
}

// NoopSender stands in when no notification endpoint is configured.
type NoopSender struct {
	log *slog.Logger
}

func NewNoopSender(log *slog.Logger) NoopSender {
	return NoopSender{log: log}
}

func (n NoopSender) Send(_ context.Context, orderCode string, _ []byte) error {
	n.log.Info("notification skipped, no endpoint configured", "order_code", orderCode)
	return nil
}
