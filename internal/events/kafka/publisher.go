// Package kafka publishes ledger events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Publisher wraps a kafka-go writer.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher constructs a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish marshals the event as JSON and writes it to the topic the
// writer was configured with. The topic argument is kept for the
// Publisher interface; per-call topics are not supported by the writer.
func (p *Publisher) Publish(_ string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(
		context.Background(),
		kafka.Message{Value: data},
	)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error { return p.writer.Close() }
