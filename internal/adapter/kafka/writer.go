// Package kafka publishes forecast snapshots to a Kafka topic so downstream
// consumers (alerting, analytics) can react to new fetches. The sink is
// optional and enabled through configuration.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Chahinez-moualek/meteo-expert-m2/internal/config"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/domain"
)

// Writer produces snapshot messages to a Kafka topic.
// It implements pipeline.Archiver.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies this sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// ArchiveForecast serializes and publishes one snapshot. The snapshot ID is
// used as the message key so refetches for the same place and time land in
// the same partition.
func (w *Writer) ArchiveForecast(ctx context.Context, snap domain.ForecastSnapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", snap.ID, err)
	}
	w.logger.Debug("published snapshot", "snapshot_id", snap.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ForecastSnapshot into a Kafka message.
func serializeToMessage(snap domain.ForecastSnapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snap.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location", Value: []byte(snap.Location.Slug())},
			{Key: "fetched_at", Value: []byte(snap.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
