package publisher

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bookbridge-io/bookbridge/helpers"
)

// KafkaPublisher writes best-of-book payloads to a single topic, keyed by
// provider and symbol so one book always lands on one partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			Async:        true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, payload *BestOfBook) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.Provider + "." + payload.Symbol),
		Value: []byte(helpers.ToJsonString(payload)),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
