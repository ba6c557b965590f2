package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"github.com/dmehra2102/storefront-orders/internal/config"
	invgrpc "github.com/dmehra2102/storefront-orders/internal/inventory/infrastructure/grpc"
	inventoryDB "github.com/dmehra2102/storefront-orders/internal/inventory/infrastructure/postgres"
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

	cfg, err := config.LoadInventoryService()
	if err != nil {
		log.Error("config invalid", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "inventory-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := inventoryDB.NewRepository(log, pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("schema failed", "err", err)
		os.Exit(1)
	}
	reg := metrics.NewRegistry()

	// Outbox relay for StockLow events
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, outbox.NewPgStore(log, pool), dispatch, "inventory-service-relay",
		outbox.WithInterval(cfg.OutboxInterval),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithMetrics(reg),
	)
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped", "err", err)
		}
	}()

	// gRPC server
	gs, err := invgrpc.Run(cfg.GRPCAddr, invgrpc.NewServer(log, repo))
	if err != nil {
		log.Error("grpc server failed", "err", err)
		os.Exit(1)
	}
	log.Info("grpc listening", "addr", cfg.GRPCAddr)

	// Metrics endpoint
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", reg.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: r, ReadTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "err", err)
		}
	}()

	<-ctx.Done()

	shutdown.Drain(log, 10*time.Second,
		shutdown.Step{Name: "grpc", Stop: func(context.Context) error { gs.GracefulStop(); return nil }},
		shutdown.Step{Name: "metrics", Stop: srv.Shutdown},
		shutdown.Step{Name: "kafka writer", Stop: func(context.Context) error { return writer.Close() }},
		shutdown.Step{Name: "tracing", Stop: tp.Shutdown},
	)
	log.Info("inventory-service shutdown")
}

