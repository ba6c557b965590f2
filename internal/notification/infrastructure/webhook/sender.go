package webhook

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront-orders/internal/notification/domain"
	"github.com/dmehra2102/storefront-orders/pkg/tracing"
)

const (
	HeaderOrderCode = "X-Order-Code"
	DefaultTimeout  = 10 * time.Second
	maxBodyRead     = 64 << 10
)

// Sender POSTs notifications to a fulfillment webhook. Receivers dedupe on
// the X-Order-Code header.
type Sender struct {
	log      *slog.Logger
	endpoint string
	client   *http.Client
	tracer   trace.Tracer
}

func NewSender(log *slog.Logger, endpoint string, timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sender{
		log:      log,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		tracer:   otel.Tracer("notification-webhook"),
	}
}

func (s *Sender) Send(ctx context.Context, orderCode string, body []byte) error {
	ctx, span := s.tracer.Start(ctx, "notification.send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("order.code", orderCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderOrderCode, orderCode)
	tracing.InjectHTTPHeaders(ctx, req.Header)

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer resp.Body.Close()

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyRead))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		derr := &domain.DeliveryError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
		span.RecordError(derr)
		return derr
	}
	s.log.Info("notification delivered", "order_code", orderCode, "status", resp.StatusCode)
	return nil
}
