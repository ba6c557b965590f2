package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrderServiceDefaults(t *testing.T) {
	c, err := LoadOrderService()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, BackendGRPC, c.InventoryBackend)
	assert.Equal(t, NotifyModeWebhook, c.NotifyMode)
	assert.Empty(t, c.NotifyEndpoint)
	assert.Equal(t, 10*time.Second, c.NotifyTimeout)
	assert.Equal(t, 1, c.DecrementConcurrency)
	assert.Equal(t, 10*time.Second, c.DecrementTimeout)
	assert.Equal(t, []string{"localhost:9092"}, c.KafkaBrokers)
}

func TestLoadOrderServiceOverrides(t *testing.T) {
	t.Setenv("KAFKA_ADDR", "k1:9092,k2:9092")
	t.Setenv("NOTIFY_MODE", "outbox")
	t.Setenv("NOTIFY_TIMEOUT", "750ms")
	t.Setenv("DECREMENT_CONCURRENCY", "4")
	t.Setenv("INVENTORY_BACKEND", "memory")

	c, err := LoadOrderService()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, NotifyModeOutbox, c.NotifyMode)
	assert.Equal(t, 750*time.Millisecond, c.NotifyTimeout)
	assert.Equal(t, 4, c.DecrementConcurrency)
	assert.Equal(t, BackendMemory, c.InventoryBackend)
}

func TestLoadOrderServiceRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"Failure - Concurrency", "DECREMENT_CONCURRENCY", "zero", "DECREMENT_CONCURRENCY"},
		{"Failure - Timeout", "NOTIFY_TIMEOUT", "-1s", "NOTIFY_TIMEOUT"},
		{"Failure - Notify Mode", "NOTIFY_MODE", "carrier-pigeon", "NOTIFY_MODE"},
		{"Failure - Inventory Backend", "INVENTORY_BACKEND", "redis", "INVENTORY_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadOrderService()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOutboxModeNeedsPostgres(t *testing.T) {
	t.Setenv("NOTIFY_MODE", "outbox")
	t.Setenv("STORE_BACKEND", "memory")
	_, err := LoadOrderService()
	assert.Error(t, err)
}

func TestLoadFulfillmentBridgeRequiresWebhook(t *testing.T) {
	_, err := LoadFulfillmentBridge()
	require.Error(t, err)

	t.Setenv("FULFILLMENT_WEBHOOK_URL", "http://agent.local/orders")
	c, err := LoadFulfillmentBridge()
	require.NoError(t, err)
	assert.Equal(t, "order.events", c.InTopic)
	assert.Equal(t, 24*time.Hour, c.DedupTTL)
	assert.Equal(t, 5*time.Minute, c.ClaimTTL)
	assert.Equal(t, 8, c.MaxAttempts)
	assert.Equal(t, "order.events.dlq", c.DeadTopic)
}

func TestLoadInventoryService(t *testing.T) {
	c, err := LoadInventoryService()
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.GRPCAddr)
	assert.Equal(t, "inventory.events", c.OutboxTopic)
}
