package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/metrics"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// EventPublisher publishes domain events after successful mutations.
// A nil *EventPublisher, or one without a writer, drops events with a warning.
// Publishing failures are logged and never returned.
type EventPublisher struct {
	writer KafkaWriter
	now    func() time.Time
}

// NewEventPublisher creates a publisher writing to writer, which may be nil.
func NewEventPublisher(writer KafkaWriter, opts ...Option) *EventPublisher {
	o := newOptions(opts)
	return &EventPublisher{writer: writer, now: o.now}
}

// Publish sends an event of eventType about userID and, for post events, postID.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, userID, postID int64) {
	if p == nil || p.writer == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "type", eventType, "user_id", userID)
		metrics.IncEvent(eventType, "skipped")
		return
	}

	event := models.Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		Timestamp: p.now().Unix(),
		UserID:    userID,
		PostID:    postID,
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal event for Kafka", "event_id", event.EventID, "error", err)
		metrics.IncEvent(eventType, "failed")
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish event to Kafka", "event_id", event.EventID, "type", eventType, "error", err)
		metrics.IncEvent(eventType, "failed")
		return
	}

	logger.Log.Infow("Event published to Kafka", "event_id", event.EventID, "type", eventType)
	metrics.IncEvent(eventType, "published")
}

// Close closes the underlying writer, if any.
func (p *EventPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
