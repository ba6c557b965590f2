package idempotency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/dmehra2102/storefront-orders/pkg/logging"
)

// fakeRedis implements the commands the store uses.
type fakeRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if f.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if f.keys[k] {
			delete(f.keys, k)
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func (f *fakeRedis) Set(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.keys[key] = true
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if f.keys[k] {
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		held       bool
		redisErr   error
		wantStatus int
		wantCalled bool
	}{
		{name: "Success - No Key", wantStatus: http.StatusCreated, wantCalled: true},
		{name: "Success - Fresh Key", key: "k1", wantStatus: http.StatusCreated, wantCalled: true},
		{name: "Failure - Key In Flight", key: "k1", held: true, wantStatus: http.StatusConflict},
		{name: "Success - Redis Down Passes Through", key: "k1", redisErr: errors.New("dial tcp: refused"), wantStatus: http.StatusCreated, wantCalled: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb := &fakeRedis{keys: map[string]bool{}, err: tt.redisErr}
			if tt.held {
				rdb.keys["idem:http:"+tt.key] = true
			}
			s := NewStore(rdb, time.Minute)

			called := false
			h := s.Middleware(logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusCreated)
			}))

			req := httptest.NewRequest(http.MethodPost, "/orders", nil)
			if tt.key != "" {
				req.Header.Set(HeaderKey, tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantCalled && tt.redisErr == nil {
				assert.Empty(t, rdb.keys, "key released after the request")
			}
		})
	}
}

func TestOrderKey(t *testing.T) {
	s := NewStore(&fakeRedis{keys: map[string]bool{}}, time.Minute)
	assert.Equal(t, "idem:fulfillment:order:ORD-1", s.OrderKey("fulfillment", "ORD-1"))
}

func TestClaimIsSeparateFromDone(t *testing.T) {
	ctx := context.Background()
	rdb := &fakeRedis{keys: map[string]bool{}}
	s := NewStore(rdb, time.Minute)
	key := s.OrderKey("fulfillment", "ORD-1")

	ok, err := s.Claim(ctx, key+":inflight", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Claim(ctx, key+":inflight", time.Minute)
	assert.NoError(t, err)
	assert.False(t, ok)

	done, err := s.Done(ctx, key)
	assert.NoError(t, err)
	assert.False(t, done, "a claim alone does not mark the order delivered")

	assert.NoError(t, s.MarkDone(ctx, key))
	done, err = s.Done(ctx, key)
	assert.NoError(t, err)
	assert.True(t, done)
}

func TestDoneReportsRedisErrors(t *testing.T) {
	s := NewStore(&fakeRedis{keys: map[string]bool{}, err: errors.New("dial tcp: refused")}, time.Minute)
	_, err := s.Done(context.Background(), "k")
	assert.Error(t, err)
}
