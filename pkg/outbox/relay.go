package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmehra2102/storefront-orders/pkg/metrics"
)

type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []int64) error
	// MarkFailed returns the row to pending, or to dead once the attempt
	// count reaches maxAttempts.
	MarkFailed(ctx context.Context, id int64, errMsg string, maxAttempts int) error
}

type Relay struct {
	log         *slog.Logger
	store       Store
	publisher   Publisher
	relayID     string
	batchSize   int
	interval    time.Duration
	lease       time.Duration
	maxAttempts int
	metrics     *metrics.Registry
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option { return func(r *Relay) { r.interval = d } }

func WithMaxAttempts(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func WithMetrics(m *metrics.Registry) Option { return func(r *Relay) { r.metrics = m } }

func NewRelay(log *slog.Logger, store Store, publisher Publisher, relayID string, opts ...Option) *Relay {
	r := &Relay{
		log:         log,
		store:       store,
		publisher:   publisher,
		relayID:     relayID,
		batchSize:   100,
		interval:    500 * time.Millisecond,
		lease:       5 * time.Second,
		maxAttempts: 10,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay stopping", "relay_id", r.relayID)
			return nil
		case <-t.C:
			r.Tick(ctx)
		}
	}
}

// Tick relays one batch. It returns the number of events published.
func (r *Relay) Tick(ctx context.Context) int {
	events, err := r.store.LockBatch(ctx, r.relayID, r.batchSize, r.lease)
	if err != nil {
		r.log.Error("relay lock batch error", "relay_id", r.relayID, "err", err)
		return 0
	}
	if len(events) == 0 {
		return 0
	}

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		if err := r.publisher.Publish(ctx, e); err != nil {
			r.observe("failed")
			if e.RetryCount+1 >= r.maxAttempts {
				r.observe("dead")
				r.log.Error("outbox event dead-lettered", "relay_id", r.relayID, "event_id", e.ID, "aggregate_id", e.AggregateID, "attempts", e.RetryCount+1, "err", err)
			}
			if mErr := r.store.MarkFailed(ctx, e.ID, err.Error(), r.maxAttempts); mErr != nil {
				r.log.Error("relay mark failed error", "event_id", e.ID, "err", mErr)
			}
			continue
		}
		r.observe("sent")
		ids = append(ids, e.ID)
	}
	if len(ids) > 0 {
		if err := r.store.MarkSent(ctx, ids); err != nil {
			r.log.Error("relay mark sent error", "relay_id", r.relayID, "err", err)
		}
	}
	return len(ids)
}

func (r *Relay) observe(result string) {
	if r.metrics != nil {
		r.metrics.OutboxEvents.WithLabelValues(r.relayID, result).Inc()
	}
}
