// Package kafka publishes render frames to a Kafka topic so downstream
// consumers can replay the view history.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/storm-altitude-map/internal/config"
	"github.com/couchcryptid/storm-altitude-map/internal/domain"
)

// Writer produces one message per frame to the configured render topic.
// It implements pipeline.Renderer.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured render topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaRenderTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name labels the writer in render metrics.
func (w *Writer) Name() string { return "kafka" }

// Render serializes the frame and publishes it. Messages are keyed by
// presentation so frames for the same layer set land on one partition.
func (w *Writer) Render(ctx context.Context, frame domain.Frame) error {
	msg, err := serializeToMessage(frame)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish frame: %w", err)
	}
	w.logger.Debug("frame published", "topic", w.writer.Topic, "visible", frame.Summary.Visible)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Frame into a Kafka message.
func serializeToMessage(frame domain.Frame) (kafkago.Message, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize frame: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(frame.Presentation.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mode", Value: []byte(frame.Presentation.String())},
			{Key: "visible", Value: []byte(strconv.Itoa(frame.Summary.Visible))},
			{Key: "rendered_at", Value: []byte(frame.RenderedAt.Format(time.RFC3339))},
		},
	}, nil
}
