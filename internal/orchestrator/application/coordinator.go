package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	invdomain "github.com/dmehra2102/storefront-orders/internal/inventory/domain"
	"github.com/dmehra2102/storefront-orders/internal/orchestrator/domain"
	order "github.com/dmehra2102/storefront-orders/internal/order/domain"
	"github.com/dmehra2102/storefront-orders/pkg/metrics"
)

const (
	DefaultNotifyTimeout    = 10 * time.Second
	DefaultDecrementTimeout = 10 * time.Second
)

type StockValidator interface {
	Validate(ctx context.Context, reqs []invdomain.Request) (map[string]invdomain.StockLevel, error)
}

type OrderRecorder interface {
	Record(ctx context.Context, h order.OrderHeader, items []order.LineItem) (*order.DegradedWriteError, error)
	Get(ctx context.Context, code string) (order.Order, error)
}

type StockDecrementer interface {
	Decrement(ctx context.Context, productID string, qty int) (invdomain.StockLevel, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, h order.OrderHeader, items []order.LineItem) error
}

// Coordinator drives a submission through validate, record, decrement and
// notify, and folds every step's result into one Outcome.
type Coordinator struct {
	log       *slog.Logger
	validator StockValidator
	recorder  OrderRecorder
	stock     StockDecrementer
	notifier  Notifier
	metrics   *metrics.Registry
	tracer    trace.Tracer

	decrementConcurrency int
	decrementTimeout     time.Duration
	notifyTimeout        time.Duration
	now                  func() time.Time
}

type Option func(*Coordinator)

func WithDecrementConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.decrementConcurrency = n
		}
	}
}

func WithDecrementTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.decrementTimeout = d
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.notifyTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func NewCoordinator(log *slog.Logger, validator StockValidator, recorder OrderRecorder, stock StockDecrementer, notifier Notifier, m *metrics.Registry, opts ...Option) *Coordinator {
	c := &Coordinator{
		log:                  log,
		validator:            validator,
		recorder:             recorder,
		stock:                stock,
		notifier:             notifier,
		metrics:              m,
		tracer:               otel.Tracer("order-orchestrator"),
		decrementConcurrency: 1,
		decrementTimeout:     DefaultDecrementTimeout,
		notifyTimeout:        DefaultNotifyTimeout,
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Submit(ctx context.Context, s order.Submission) domain.Outcome {
	start := c.now()
	ctx, span := c.tracer.Start(ctx, "order.submit")
	defer span.End()

	out := c.submit(ctx, s)

	span.SetAttributes(
		attribute.String("order.code", out.OrderCode),
		attribute.String("order.outcome", string(out.Kind)),
		attribute.Int("order.warnings", len(out.Warnings)),
	)
	if out.Err != nil {
		span.SetStatus(codes.Error, out.Err.Error())
	}
	c.metrics.Submissions.WithLabelValues(string(out.Kind)).Inc()
	c.metrics.SubmitLatency.Observe(time.Since(start).Seconds())
	return out
}

func (c *Coordinator) submit(ctx context.Context, s order.Submission) domain.Outcome {
	s.Normalize()
	supplied := s.OrderCode != ""
	if !supplied {
		code, err := order.NewOrderCode(c.now())
		if err != nil {
			return domain.Outcome{Kind: domain.OutcomeError, Err: err, Trace: []domain.State{domain.StateValidating, domain.StateAborted}}
		}
		s.OrderCode = code
	}
	saga := domain.NewSaga(s.OrderCode)
	log := c.log.With("order_code", s.OrderCode)

	if err := s.Validate(); err != nil {
		log.Info("order rejected", "step", domain.StateValidating, "err", err)
		return c.abort(saga, domain.OutcomeRejected, err)
	}

	// A resubmitted code must replay before stock is checked: the first
	// attempt may have taken the last units.
	if supplied {
		_, err := c.recorder.Get(ctx, s.OrderCode)
		switch {
		case err == nil:
			log.Info("order already recorded, replaying success", "step", domain.StateValidating)
			return c.replay(saga)
		case !errors.Is(err, order.ErrOrderNotFound):
			log.Warn("order lookup failed", "step", domain.StateValidating, "err", err)
		}
	}

	if _, err := c.validator.Validate(ctx, requests(s)); err != nil {
		var short *invdomain.ShortfallError
		if errors.As(err, &short) {
			log.Info("order rejected", "step", domain.StateValidating, "err", err)
			return c.abort(saga, domain.OutcomeRejected, err)
		}
		log.Error("stock validation failed", "step", domain.StateValidating, "err", err)
		return c.abort(saga, domain.OutcomeError, err)
	}

	c.advance(saga, domain.StateRecording)
	header := order.NewOrderHeader(s, c.now())
	items := order.NewLineItems(header.ID, s)

	var warnings []domain.Warning
	degraded, err := c.recorder.Record(ctx, header, items)
	switch {
	case errors.Is(err, order.ErrDuplicateOrder):
		log.Info("order already recorded, replaying success", "step", domain.StateRecording)
		return c.replay(saga)
	case err != nil:
		return c.abort(saga, domain.OutcomeError, err)
	case degraded != nil:
		warnings = append(warnings, c.warn(log, domain.Warning{Kind: domain.WarnDegradedWrite, Step: domain.StateRecording, Err: degraded}))
	}

	c.advance(saga, domain.StateDecrementing)
	for _, w := range c.decrement(ctx, s.Items) {
		warnings = append(warnings, c.warn(log, w))
	}

	c.advance(saga, domain.StateNotifying)
	if err := c.notify(ctx, header, items); err != nil {
		warnings = append(warnings, c.warn(log, domain.Warning{Kind: domain.WarnNotificationFailed, Step: domain.StateNotifying, Err: err}))
	}

	c.advance(saga, domain.StateDone)
	log.Info("order placed", "items", len(items), "total_amount", header.TotalAmount.String(), "warnings", len(warnings))
	return domain.Outcome{Kind: domain.OutcomeSuccess, OrderCode: s.OrderCode, Warnings: warnings, Trace: saga.Trace}
}

// decrement runs one conditional decrement per line, at most
// decrementConcurrency at a time. Results keep line order. The order already
// exists, so a client hanging up must not leave its stock untouched.
func (c *Coordinator) decrement(ctx context.Context, items []order.SubmissionItem) []domain.Warning {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.decrementTimeout)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "order.decrement")
	defer span.End()

	results := make([]*domain.Warning, len(items))
	var g errgroup.Group
	g.SetLimit(c.decrementConcurrency)
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			if _, err := c.stock.Decrement(ctx, it.ProductID, it.Quantity); err != nil {
				kind := domain.WarnDegradedWrite
				if errors.Is(err, invdomain.ErrInsufficientStock) {
					kind = domain.WarnOversold
				}
				results[i] = &domain.Warning{Kind: kind, Step: domain.StateDecrementing, ProductID: it.ProductID, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	var warnings []domain.Warning
	for _, w := range results {
		if w != nil {
			warnings = append(warnings, *w)
		}
	}
	return warnings
}

// notify is detached from the caller's cancellation: a client hanging up
// after the order is placed must not cancel the fulfillment notice.
func (c *Coordinator) notify(ctx context.Context, h order.OrderHeader, items []order.LineItem) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.notifyTimeout)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "order.notify")
	defer span.End()

	if err := c.notifier.Dispatch(ctx, h, items); err != nil {
		c.metrics.Notifications.WithLabelValues("failed").Inc()
		span.RecordError(err)
		return err
	}
	c.metrics.Notifications.WithLabelValues("sent").Inc()
	return nil
}

func (c *Coordinator) replay(saga *domain.Saga) domain.Outcome {
	c.advance(saga, domain.StateDone)
	return domain.Outcome{Kind: domain.OutcomeSuccess, OrderCode: saga.OrderCode, Trace: saga.Trace, Replayed: true}
}

func (c *Coordinator) abort(saga *domain.Saga, kind domain.OutcomeKind, err error) domain.Outcome {
	c.advance(saga, domain.StateAborted)
	return domain.Outcome{Kind: kind, OrderCode: saga.OrderCode, Err: err, Trace: saga.Trace}
}

func (c *Coordinator) advance(saga *domain.Saga, to domain.State) {
	if err := saga.Advance(to); err != nil {
		c.log.Error("pipeline state", "order_code", saga.OrderCode, "err", err)
	}
}

func (c *Coordinator) warn(log *slog.Logger, w domain.Warning) domain.Warning {
	log.Warn("order step degraded", "kind", w.Kind, "step", w.Step, "product_id", w.ProductID, "err", w.Err)
	c.metrics.Warnings.WithLabelValues(string(w.Kind), string(w.Step)).Inc()
	return w
}

func requests(s order.Submission) []invdomain.Request {
	reqs := make([]invdomain.Request, 0, len(s.Items))
	for _, it := range s.Items {
		reqs = append(reqs, invdomain.Request{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return reqs
}
