package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// Writer is the producer behind the outbox relay. Messages carry their own
// topic, so one writer serves every relay in the process.
type Writer struct {
	*kafka.Writer
}

func NewWriter(brokers []string) *Writer {
	return &Writer{
		Writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}
