package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront-orders/internal/notification/application"
	"github.com/dmehra2102/storefront-orders/internal/notification/domain"
	order "github.com/dmehra2102/storefront-orders/internal/order/domain"
	"github.com/dmehra2102/storefront-orders/pkg/outbox"
	"github.com/dmehra2102/storefront-orders/pkg/tracing"
)

const (
	dedupScope = "fulfillment"

	HeaderDeadReason = "dead_reason"

	DefaultMaxAttempts = 8
	DefaultClaimTTL    = 5 * time.Minute
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Deduper tracks two keys per order: a short-lived in-flight claim and a
// done marker written only after the agent accepted the order.
type Deduper interface {
	OrderKey(scope, orderCode string) string
	Done(ctx context.Context, key string) (bool, error)
	MarkDone(ctx context.Context, key string) error
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Consumer forwards OrderPlaced events to the fulfillment agent. A message is
// committed only after delivery or after it was parked on the dead-letter
// topic, so every order reaches the agent or an operator at least once.
type Consumer struct {
	log       *slog.Logger
	reader    Reader
	sender    application.Sender
	dedup     Deduper
	dead      outbox.Producer
	deadTopic string
	tracer    trace.Tracer

	maxAttempts int
	claimTTL    time.Duration
	minBackoff  time.Duration
	maxBackoff  time.Duration
}

type Option func(*Consumer)

func WithMaxAttempts(n int) Option {
	return func(c *Consumer) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithClaimTTL bounds how long a crashed delivery blocks redelivery of the
// same order.
func WithClaimTTL(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.claimTTL = d
		}
	}
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader Reader, sender application.Sender, dedup Deduper, dead outbox.Producer, deadTopic string, opts ...Option) *Consumer {
	c := &Consumer{
		log:         log,
		reader:      reader,
		sender:      sender,
		dedup:       dedup,
		dead:        dead,
		deadTopic:   deadTopic,
		tracer:      otel.Tracer("fulfillment-consumer"),
		maxAttempts: DefaultMaxAttempts,
		claimTTL:    DefaultClaimTTL,
		minBackoff:  500 * time.Millisecond,
		maxBackoff:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		if err := c.handle(ctx, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// handle returns an error when the message must not be committed: ctx ended
// before delivery, or the dead-letter write failed.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	eventType := outbox.HeaderValue(msg.Headers, outbox.HeaderEventType)
	if eventType != order.EventOrderPlaced {
		c.log.Debug("event ignored", "type", eventType, "offset", msg.Offset)
		return nil
	}
	orderCode := string(msg.Key)
	log := c.log.With("order_code", orderCode, "offset", msg.Offset)

	key := c.dedup.OrderKey(dedupScope, orderCode)
	claim := key + ":inflight"
	deliver, held, err := c.acquire(ctx, log, key, claim)
	if err != nil {
		return err
	}
	if !deliver {
		log.Info("duplicate order event skipped")
		return nil
	}
	release := func() {
		if !held {
			return
		}
		if err := c.dedup.Release(context.WithoutCancel(ctx), claim); err != nil {
			log.Warn("dedup release failed", "err", err)
		}
	}
	defer release()

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeOrderPlaced", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.String("order.code", orderCode))

	err = c.deliver(msgCtx, log, span, orderCode, msg.Value)
	switch {
	case err == nil:
		if err := c.dedup.MarkDone(context.WithoutCancel(ctx), key); err != nil {
			log.Warn("dedup mark failed", "err", err)
		}
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return c.deadLetter(ctx, log, msg, err)
	}
}

// acquire waits until this consumer holds the in-flight claim. deliver is
// false when the order was already delivered. Without Redis the message is
// delivered anyway; the agent dedupes on X-Order-Code.
func (c *Consumer) acquire(ctx context.Context, log *slog.Logger, key, claim string) (deliver, held bool, err error) {
	for {
		done, err := c.dedup.Done(ctx, key)
		if err != nil {
			log.Warn("dedup check failed", "err", err)
			return true, false, nil
		}
		if done {
			return false, false, nil
		}
		ok, err := c.dedup.Claim(ctx, claim, c.claimTTL)
		if err != nil {
			log.Warn("dedup claim failed", "err", err)
			return true, false, nil
		}
		if ok {
			return true, true, nil
		}
		log.Info("order delivery in flight elsewhere, waiting")
		select {
		case <-ctx.Done():
			return false, false, ctx.Err()
		case <-time.After(c.minBackoff):
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, log *slog.Logger, span trace.Span, orderCode string, body []byte) error {
	backoff := c.minBackoff
	for attempt := 1; ; attempt++ {
		err := c.sender.Send(ctx, orderCode, body)
		if err == nil {
			log.Info("order forwarded to fulfillment", "attempt", attempt)
			return nil
		}
		log.Error("fulfillment delivery failed", "attempt", attempt, "err", err)
		span.RecordError(err)

		var de *domain.DeliveryError
		if errors.As(err, &de) && de.Permanent() {
			return err
		}
		if attempt >= c.maxAttempts {
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

func (c *Consumer) deadLetter(ctx context.Context, log *slog.Logger, msg kafka.Message, cause error) error {
	headers := append(slices.Clone(msg.Headers), kafka.Header{Key: HeaderDeadReason, Value: []byte(cause.Error())})
	dead := kafka.Message{Topic: c.deadTopic, Key: msg.Key, Value: msg.Value, Headers: headers}
	if err := c.dead.WriteMessages(ctx, dead); err != nil {
		log.Error("dead-letter write failed", "topic", c.deadTopic, "err", err)
		return fmt.Errorf("dead-letter order %s: %w", msg.Key, err)
	}
	log.Error("order dead-lettered", "topic", c.deadTopic, "err", cause)
	return nil
}
