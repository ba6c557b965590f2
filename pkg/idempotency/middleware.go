package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const HeaderKey = "Idempotency-Key"

type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) OrderKey(scope, orderCode string) string {
	return fmt.Sprintf("idem:%s:order:%s", scope, orderCode)
}

// Seen marks key and reports whether it was already marked.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.Claim(ctx, key, s.ttl)
	if err != nil {
		return false, err
	}

	return !ok, nil
}

// Claim takes key for ttl and reports whether it was free.
func (s *Store) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, "1", ttl).Result()
}

func (s *Store) Done(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkDone records key for the store's TTL.
func (s *Store) MarkDone(ctx context.Context, key string) error {
	return s.rdb.Set(ctx, key, "1", s.ttl).Err()
}

func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Middleware rejects a request with 409 while another request carrying the
// same Idempotency-Key is still being served. The key is released once the
// request finishes; completed duplicates are resolved by the order recorder.
// Redis failures let the request through.
func (s *Store) Middleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := r.Header.Get(HeaderKey)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}
			key := "idem:http:" + k
			seen, err := s.Seen(r.Context(), key)
			if err != nil {
				log.Warn("idempotency check failed", "key", k, "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "request with this idempotency key is already in progress"})
				return
			}
			defer func() {
				if err := s.Release(context.WithoutCancel(r.Context()), key); err != nil {
					log.Warn("idempotency release failed", "key", k, "err", err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
