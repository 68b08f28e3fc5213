// Package kafka forwards dashboard updates to a Kafka topic so that other
// consumers (wallboards, chat bots, archivers) can follow the monitor
// without polling its HTTP API.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fleximon/fleximon"
)

// contentType is set on every message as a header.
const contentType = "application/json"

// messageWriter is the subset of *kafka.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes each dashboard update as one Kafka message keyed by
// the update name. Hash balancing keeps every name on one partition, so
// consumers see the updates of one name in tick order.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

var _ fleximon.Publisher = (*Publisher)(nil)

// NewPublisher creates a Publisher writing to topic on the given brokers.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
		},
		topic:  topic,
		logger: logger,
	}, nil
}

// Publish writes the whole batch of updates in one call.
func (p *Publisher) Publish(ctx context.Context, updates []fleximon.Update) error {
	if len(updates) == 0 {
		return nil
	}

	now := time.Now()
	msgs := make([]kafka.Message, len(updates))
	for i, u := range updates {
		payload, err := json.Marshal(u.Payload)
		if err != nil {
			return fmt.Errorf("kafka: failed to encode %s payload: %w", u.Name, err)
		}
		msgs[i] = kafka.Message{
			Key:     []byte(u.Name),
			Value:   payload,
			Time:    now,
			Headers: []kafka.Header{{Key: "content-type", Value: []byte(contentType)}},
		}
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: failed to write %d messages to %s: %w", len(msgs), p.topic, err)
	}

	p.logger.Debug("updates published to kafka", "topic", p.topic, "count", len(msgs))
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
