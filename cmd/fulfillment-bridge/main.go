package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/storefront-orders/internal/config"
	notifykafka "github.com/dmehra2102/storefront-orders/internal/notification/infrastructure/kafka"
	"github.com/dmehra2102/storefront-orders/internal/notification/infrastructure/webhook"
	orderkafka "github.com/dmehra2102/storefront-orders/internal/order/infrastructure/kafka"
	"github.com/dmehra2102/storefront-orders/pkg/idempotency"
	"github.com/dmehra2102/storefront-orders/pkg/logging"
	"github.com/dmehra2102/storefront-orders/pkg/shutdown"
	"github.com/dmehra2102/storefront-orders/pkg/tracing"
)

func main() {
	log := logging.New()
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.LoadFulfillmentBridge()
	if err != nil {
		log.Error("config invalid", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "fulfillment-bridge", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}

	redisDB := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	idem := idempotency.NewStore(redisDB, cfg.DedupTTL)

	sender := webhook.NewSender(log, cfg.WebhookURL, cfg.WebhookTimeout)
	reader := notifykafka.NewReader(cfg.KafkaBrokers, cfg.InTopic, cfg.GroupID)
	deadWriter := orderkafka.NewWriter(cfg.KafkaBrokers)
	consumer := notifykafka.NewConsumer(log, reader, sender, idem, deadWriter, cfg.DeadTopic,
		notifykafka.WithMaxAttempts(cfg.MaxAttempts),
		notifykafka.WithClaimTTL(cfg.ClaimTTL),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("consuming", "topic", cfg.InTopic, "group", cfg.GroupID, "dead_letter_topic", cfg.DeadTopic)
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	<-done

	shutdown.Drain(log, 5*time.Second,
		shutdown.Step{Name: "kafka writer", Stop: func(context.Context) error { return deadWriter.Close() }},
		shutdown.Step{Name: "redis", Stop: func(context.Context) error { return redisDB.Close() }},
		shutdown.Step{Name: "tracing", Stop: tp.Shutdown},
	)
	log.Info("fulfillment-bridge shutdown")
}
