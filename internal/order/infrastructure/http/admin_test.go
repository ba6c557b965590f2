package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront-orders/pkg/logging"
	"github.com/dmehra2102/storefront-orders/pkg/outbox"
)

type deadLettersMock struct {
	mock.Mock
}

func (m *deadLettersMock) Dead(_ context.Context, limit int) ([]outbox.Event, error) {
	args := m.Called(limit)
	return args.Get(0).([]outbox.Event), args.Error(1)
}

func (m *deadLettersMock) Requeue(_ context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func TestAdminListDead(t *testing.T) {
	store := new(deadLettersMock)
	lastErr := "kafka: leader not available"
	store.On("Dead", 5).Return([]outbox.Event{
		{ID: 42, AggregateID: "ORD-1700000000000-AB12C", Type: "OrderPlaced", RetryCount: 10, LastError: &lastErr},
	}, nil).Once()

	srv := httptest.NewServer(NewAdminHandler(logging.Discard(), store).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/outbox/dead?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []deadEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "ORD-1700000000000-AB12C", out[0].OrderCode)
	assert.Equal(t, lastErr, out[0].LastError)
	store.AssertExpectations(t)
}

func TestAdminRequeue(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		storeErr   error
		callStore  bool
		wantStatus int
	}{
		{name: "Success - Requeued", path: "/outbox/42/requeue", callStore: true, wantStatus: http.StatusNoContent},
		{name: "Failure - Not Dead", path: "/outbox/42/requeue", storeErr: outbox.ErrNotDead, callStore: true, wantStatus: http.StatusNotFound},
		{name: "Failure - Bad Id", path: "/outbox/abc/requeue", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(deadLettersMock)
			if tt.callStore {
				store.On("Requeue", int64(42)).Return(tt.storeErr).Once()
			}
			srv := httptest.NewServer(NewAdminHandler(logging.Discard(), store).Routes())
			defer srv.Close()

			resp, err := http.Post(srv.URL+tt.path, "application/json", nil)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			store.AssertExpectations(t)
		})
	}
}
