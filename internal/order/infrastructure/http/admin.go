package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmehra2102/storefront-orders/pkg/outbox"
)

type DeadLetters interface {
	Dead(ctx context.Context, limit int) ([]outbox.Event, error)
	Requeue(ctx context.Context, id int64) error
}

// AdminHandler exposes the notification dead-letter queue to operators.
type AdminHandler struct {
	log   *slog.Logger
	store DeadLetters
}

func NewAdminHandler(log *slog.Logger, store DeadLetters) *AdminHandler {
	return &AdminHandler{log: log, store: store}
}

type deadEvent struct {
	ID          int64     `json:"id"`
	OrderCode   string    `json:"order_code"`
	Type        string    `json:"type"`
	RetryCount  int       `json:"retry_count"`
	LastError   string    `json:"last_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Traceparent string    `json:"traceparent,omitempty"`
}

func (a *AdminHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/outbox/dead", a.listDead)
	r.Post("/outbox/{id}/requeue", a.requeue)
	return r
}

func (a *AdminHandler) listDead(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			writeJSON(w, http.StatusBadRequest, errorResp{Error: "limit must be between 1 and 1000"})
			return
		}
		limit = n
	}
	events, err := a.store.Dead(r.Context(), limit)
	if err != nil {
		a.log.Error("dead letter listing failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResp{Error: "outbox unavailable"})
		return
	}
	out := make([]deadEvent, 0, len(events))
	for _, ev := range events {
		d := deadEvent{
			ID:          ev.ID,
			OrderCode:   ev.AggregateID,
			Type:        ev.Type,
			RetryCount:  ev.RetryCount,
			CreatedAt:   ev.CreatedAt,
			Traceparent: ev.Traceparent,
		}
		if ev.LastError != nil {
			d.LastError = *ev.LastError
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *AdminHandler) requeue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid id"})
		return
	}
	err = a.store.Requeue(r.Context(), id)
	switch {
	case errors.Is(err, outbox.ErrNotDead):
		writeJSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
	case err != nil:
		a.log.Error("requeue failed", "event_id", id, "err", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResp{Error: "outbox unavailable"})
	default:
		a.log.Info("dead letter requeued", "event_id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
