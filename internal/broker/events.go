package appkafka

import (
	"context"
	"encoding/json"
	"fmt"

	"example.com/campusfeed/internal/models"
	"github.com/segmentio/kafka-go"
)

// Publisher emits activity events after a successful write.
type Publisher interface {
	Publish(ctx context.Context, ev models.ActivityEvent) error
	Close() error
}

// EventPublisher encodes events as JSON and writes them keyed by type.
type EventPublisher struct {
	writer KafkaWriter
}

func NewEventPublisher(w KafkaWriter) *EventPublisher {
	return &EventPublisher{writer: w}
}

func (p *EventPublisher) Publish(ctx context.Context, ev models.ActivityEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}
	return p.writer.WriteMessages(kafka.Message{
		Key:   []byte(ev.Type),
		Value: data,
	})
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

// DecodeEvent parses a message written by EventPublisher.
func DecodeEvent(msg kafka.Message) (models.ActivityEvent, error) {
	var ev models.ActivityEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return models.ActivityEvent{}, fmt.Errorf("decode activity event: %w", err)
	}
	if ev.Type == "" {
		return models.ActivityEvent{}, fmt.Errorf("decode activity event: missing type")
	}
	return ev, nil
}

// NopPublisher is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.ActivityEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
