package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	invdomain "github.com/dmehra2102/storefront-orders/internal/inventory/domain"
	orch "github.com/dmehra2102/storefront-orders/internal/orchestrator/domain"
	"github.com/dmehra2102/storefront-orders/internal/order/domain"
	"github.com/dmehra2102/storefront-orders/pkg/idempotency"
)

const maxBodyBytes = 1 << 20

type Submitter interface {
	Submit(ctx context.Context, s domain.Submission) orch.Outcome
}

type OrderReader interface {
	Get(ctx context.Context, code string) (domain.Order, error)
}

type Handler struct {
	log       *slog.Logger
	submitter Submitter
	orders    OrderReader
	tracer    trace.Tracer
}

func NewHandler(log *slog.Logger, submitter Submitter, orders OrderReader) *Handler {
	return &Handler{
		log:       log,
		submitter: submitter,
		orders:    orders,
		tracer:    otel.Tracer("order-http"),
	}
}

type createOrderResp struct {
	OrderCode string `json:"order_code"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{code}", h.getOrder)

	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var sub domain.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid body"})
		return
	}
	// An Idempotency-Key shaped like an order code doubles as the code, so
	// a client retrying with the same key cannot place the order twice.
	if k := r.Header.Get(idempotency.HeaderKey); sub.OrderCode == "" && domain.ValidOrderCode(k) {
		sub.OrderCode = k
	}

	out := h.submitter.Submit(ctx, sub)
	span.SetAttributes(attribute.String("order.code", out.OrderCode), attribute.String("order.outcome", string(out.Kind)))

	switch out.Kind {
	case orch.OutcomeSuccess:
		writeJSON(w, http.StatusCreated, createOrderResp{OrderCode: out.OrderCode})
	case orch.OutcomeRejected:
		var invalid *domain.InvalidSubmissionError
		if errors.As(out.Err, &invalid) {
			writeJSON(w, http.StatusBadRequest, errorResp{Error: out.Err.Error()})
			return
		}
		writeJSON(w, http.StatusConflict, errorResp{Error: out.Err.Error()})
	default:
		h.log.Error("order submission failed", "order_code", out.OrderCode, "err", out.Err)
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorResp{Error: publicError(out.Err)})
	}
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	code := chi.URLParam(r, "code")
	if !domain.ValidOrderCode(code) {
		writeJSON(w, http.StatusNotFound, errorResp{Error: domain.ErrOrderNotFound.Error()})
		return
	}
	o, err := h.orders.Get(ctx, code)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
	case err != nil:
		h.log.Error("order lookup failed", "order_code", code, "err", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResp{Error: "order lookup unavailable"})
	default:
		writeJSON(w, http.StatusOK, o)
	}
}

// publicError keeps storage details out of responses.
func publicError(err error) string {
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return "order could not be recorded, please retry"
	}
	var ue *invdomain.UnavailableError
	if errors.As(err, &ue) {
		return "inventory is temporarily unavailable, please retry"
	}
	return "order could not be placed, please retry"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
