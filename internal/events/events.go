// Package events publishes user and audio lifecycle notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/audio-vault/internal/config"
	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// NewKafkaWriter returns a writer for cfg, or nil when no brokers are configured.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	if !cfg.Enabled() {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// Publisher sends events keyed by the affected user id, so events for one
// user land on one partition in order.
type Publisher struct {
	writer KafkaWriter
}

// NewPublisher creates a Publisher. A nil writer disables publishing.
func NewPublisher(writer KafkaWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Publish writes the event. Failures are logged and returned; callers
// treat them as non-fatal.
func (p *Publisher) Publish(ctx context.Context, event models.Event) error {
	if p == nil || p.writer == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "event_id", event.ID, "type", event.Type)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal event for Kafka", "event_id", event.ID, "error", err)
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish event to Kafka", "event_id", event.ID, "type", event.Type, "error", err)
		return err
	}

	logger.Log.Infow("Event published to Kafka", "event_id", event.ID, "type", event.Type, "user_id", event.UserID)
	return nil
}

// Close closes the underlying writer, if any.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
