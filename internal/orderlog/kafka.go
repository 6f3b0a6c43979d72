package orderlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_meals/internal/domain"
	"github.com/fjod/go_meals/internal/storage"
	"github.com/segmentio/kafka-go"
)

const Topic = "customer-orders"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each order record for a backend that does not exist yet.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers ...string) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		// records are written one per checkout; don't hold them for a batch
		BatchTimeout:           10 * time.Millisecond,
	}
	return &KafkaSink{writer: w}
}

func (k *KafkaSink) Append(ctx context.Context, _ storage.Storage, rec domain.OrderRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal order record failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(rec.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.submitted")},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order record: %w", err)
	}
	return nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
