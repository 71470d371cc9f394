// Package kafka publishes newly curated accidents for downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces curated accidents to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and publishes the accidents committed by one run in a
// single WriteMessages call. Messages are keyed by bronze id so replays land
// on the same partition.
func (w *Writer) Publish(ctx context.Context, jobID string, accidents []domain.AccidentCurated) error {
	if len(accidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(accidents))
	for i := range accidents {
		msg, err := serializeToMessage(jobID, accidents[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish accidents: %w", err)
	}
	w.logger.Debug("accidents published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AccidentCurated into a Kafka message.
func serializeToMessage(jobID string, acc domain.AccidentCurated) (kafkago.Message, error) {
	data, err := json.Marshal(acc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize accident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(acc.RawID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "season", Value: []byte(acc.Season)},
			{Key: "state", Value: []byte(acc.State)},
			{Key: "elt_job_id", Value: []byte(jobID)},
		},
	}, nil
}
