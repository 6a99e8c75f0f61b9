package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/youth-population-analysis/internal/config"
	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes location reports to a Kafka topic, keyed by location.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured forecast topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaForecastTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple reports in a single
// WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, reports []domain.LocationReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d reports: %w", len(msgs), err)
	}
	w.logger.Debug("reports published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a LocationReport into a Kafka message. The
// location is the key so every report for one location lands on the same
// partition.
func serializeToMessage(report domain.LocationReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report %q: %w", report.Location, err)
	}
	return kafkago.Message{
		Key:   []byte(report.Location),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location", Value: []byte(report.Location)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
