package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes alert events to a Kafka topic for downstream
// consumers, keyed by location so one location's alerts stay in order on a
// single partition.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a Kafka alert publisher.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (k *KafkaNotifier) Name() string { return "kafka" }

// Notify publishes the event as JSON.
func (k *KafkaNotifier) Notify(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode alert event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.Location),
		Value: value,
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	return nil
}

// Close shuts the underlying writer down.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
