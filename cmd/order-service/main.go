package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/storefront-orders/internal/config"
	invapp "github.com/dmehra2102/storefront-orders/internal/inventory/application"
	invmemory "github.com/dmehra2102/storefront-orders/internal/inventory/infrastructure/memory"
	invpg "github.com/dmehra2102/storefront-orders/internal/inventory/infrastructure/postgres"
	notifyapp "github.com/dmehra2102/storefront-orders/internal/notification/application"
	notifydomain "github.com/dmehra2102/storefront-orders/internal/notification/domain"
	notifypg "github.com/dmehra2102/storefront-orders/internal/notification/infrastructure/postgres"
	"github.com/dmehra2102/storefront-orders/internal/notification/infrastructure/webhook"
	orchapp "github.com/dmehra2102/storefront-orders/internal/orchestrator/application"
	"github.com/dmehra2102/storefront-orders/internal/order/application"
	ordergrpc "github.com/dmehra2102/storefront-orders/internal/order/infrastructure/grpc"
	orderhttp "github.com/dmehra2102/storefront-orders/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/storefront-orders/internal/order/infrastructure/kafka"
	ordermemory "github.com/dmehra2102/storefront-orders/internal/order/infrastructure/memory"
	orderpg "github.com/dmehra2102/storefront-orders/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/storefront-orders/pkg/idempotency"
	"github.com/dmehra2102/storefront-orders/pkg/logging"
	"github.com/dmehra2102/storefront-orders/pkg/metrics"
	"github.com/dmehra2102/storefront-orders/pkg/outbox"
	"github.com/dmehra2102/storefront-orders/pkg/shutdown"
	"github.com/dmehra2102/storefront-orders/pkg/tracing"
)

func main() {
	log := logging.New()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.LoadOrderService()
	if err != nil {
		log.Error("config invalid", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "order-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	reg := metrics.NewRegistry()
	var stops []shutdown.Step

	// Postgres Setup
	var pool *pgxpool.Pool
	if cfg.StoreBackend == config.BackendPostgres || cfg.InventoryBackend == config.BackendPostgres {
		pool, err = pgxpool.New(ctx, cfg.PGURL)
		if err != nil {
			log.Error("pg connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	// Order repository
	var repo application.OrderRepository
	if cfg.StoreBackend == config.BackendPostgres {
		pgRepo := orderpg.NewRepository(log, pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Error("order schema failed", "err", err)
			os.Exit(1)
		}
		repo = pgRepo
	} else {
		repo = ordermemory.NewRepository()
	}
	recorder := application.NewRecorder(log, repo)

	// Inventory store
	var stock invapp.Store
	switch cfg.InventoryBackend {
	case config.BackendGRPC:
		client, err := ordergrpc.NewInventoryClient(log, cfg.InventoryAddr)
		if err != nil {
			log.Error("inventory client failed", "addr", cfg.InventoryAddr, "err", err)
			os.Exit(1)
		}
		defer client.Close()
		stock = client
	case config.BackendPostgres:
		invRepo := invpg.NewRepository(log, pool)
		if err := invRepo.EnsureSchema(ctx); err != nil {
			log.Error("products schema failed", "err", err)
			os.Exit(1)
		}
		stock = invRepo
	default:
		seed, err := invmemory.ParseSeed(cfg.InventorySeed)
		if err != nil {
			log.Error("inventory seed invalid", "err", err)
			os.Exit(1)
		}
		stock = invmemory.NewStore(seed...)
	}

	// Notification
	mode, err := notifydomain.ParseMode(cfg.NotifyPayload)
	if err != nil {
		log.Error("config invalid", "err", err)
		os.Exit(1)
	}
	var sender notifyapp.Sender
	switch {
	case cfg.NotifyMode == config.NotifyModeOutbox:
		sender = notifypg.NewOutboxSender(log, pool)

		writer := orderkafka.NewWriter(cfg.KafkaBrokers)
		store := outbox.NewPgStore(log, pool)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Error("outbox schema failed", "err", err)
			os.Exit(1)
		}
		relay := outbox.NewRelay(log, store, outbox.NewDispatcher(log, writer, cfg.OutboxTopic), "order-service-relay",
			outbox.WithInterval(cfg.OutboxInterval),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithMetrics(reg),
		)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error("relay stopped with error", "err", err)
			}
		}()
		stops = append(stops, shutdown.Step{Name: "kafka writer", Stop: func(context.Context) error { return writer.Close() }})
	case cfg.NotifyEndpoint == "":
		sender = notifyapp.NewNoopSender(log)
	default:
		sender = webhook.NewSender(log, cfg.NotifyEndpoint, cfg.NotifyTimeout)
	}
	dispatcher := notifyapp.NewDispatcher(log, mode, cfg.Currency, sender)

	coord := orchapp.NewCoordinator(log,
		invapp.NewValidator(log, stock),
		recorder,
		stock,
		dispatcher,
		reg,
		orchapp.WithDecrementConcurrency(cfg.DecrementConcurrency),
		orchapp.WithDecrementTimeout(cfg.DecrementTimeout),
		orchapp.WithNotifyTimeout(cfg.NotifyTimeout),
	)
	handler := orderhttp.NewHandler(log, coord, recorder)

	redisDB := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisDB.Close()
	idem := idempotency.NewStore(redisDB, cfg.IdempotencyTTL)

	// HTTP server
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Get("/healthz", healthz(log, pool))
	r.Method(http.MethodGet, "/metrics", reg.Handler())
	if cfg.NotifyMode == config.NotifyModeOutbox {
		r.Mount("/admin", orderhttp.NewAdminHandler(log, outbox.NewPgStore(log, pool)).Routes())
	}
	r.Group(func(r chi.Router) {
		r.Use(idem.Middleware(log))
		r.Mount("/", handler.Routes())
	})
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.NotifyTimeout + 10*time.Second,
	}
	stops = append([]shutdown.Step{{Name: "http", Stop: srv.Shutdown}}, stops...)
	stops = append(stops, shutdown.Step{Name: "tracing", Stop: tp.Shutdown})

	// Run HTTP
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr, "inventory", cfg.InventoryBackend, "store", cfg.StoreBackend, "notify", cfg.NotifyMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdown.Drain(log, 10*time.Second, stops...)
	log.Info("order-service shutdown complete")
}

func healthz(log *slog.Logger, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				log.Warn("health check failed", "err", err)
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
