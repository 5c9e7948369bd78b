package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/address-verify-service/internal/config"
	"github.com/couchcryptid/address-verify-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces verification events to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured verdict topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaVerdictTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes verification events in a single
// WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.VerificationEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d verification events: %w", len(msgs), err)
	}
	w.logger.Debug("verification events written", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a VerificationEvent into a Kafka message keyed
// by event ID.
func serializeToMessage(event domain.VerificationEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize verification event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "flow", Value: []byte(event.Flow)},
			{Key: "checked_at", Value: []byte(event.CheckedAt.Format(time.RFC3339))},
		},
	}, nil
}
