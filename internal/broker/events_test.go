package appkafka

import (
	"context"
	"testing"
	"time"

	"example.com/campusfeed/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/kafka-go"
)

func TestEventPublisher_RoundTrip(t *testing.T) {
	mk := &MockKafka{}
	p := NewEventPublisher(mk)

	ev := models.ActivityEvent{
		Type: models.EventPostCreated,
		ID:   "post_1",
		At:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	written := mk.Written()
	if len(written) != 1 {
		t.Fatalf("expected 1 message, got %d", len(written))
	}
	if string(written[0].Key) != models.EventPostCreated {
		t.Fatalf("message should be keyed by event type, got %q", written[0].Key)
	}

	got, err := DecodeEvent(written[0])
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if diff := cmp.Diff(ev, got); diff != "" {
		t.Fatalf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestEventPublisher_WriteFailure(t *testing.T) {
	p := NewEventPublisher(&MockKafkaFail{})

	err := p.Publish(context.Background(), models.ActivityEvent{Type: models.EventUserRegistered, ID: "u"})
	if err == nil {
		t.Fatalf("expected error from failing writer")
	}
}

func TestEventPublisher_CanceledContext(t *testing.T) {
	mk := &MockKafka{}
	p := NewEventPublisher(mk)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Publish(ctx, models.ActivityEvent{Type: models.EventUserRegistered}); err == nil {
		t.Fatalf("expected context error")
	}
	if len(mk.Written()) != 0 {
		t.Fatalf("nothing should be written after cancellation")
	}
}

func TestDecodeEvent_Invalid(t *testing.T) {
	for _, raw := range []string{"{invalid-json}", `{"id":"x"}`} {
		if _, err := DecodeEvent(kafka.Message{Value: []byte(raw)}); err == nil {
			t.Errorf("DecodeEvent(%s): expected error", raw)
		}
	}
}

func TestMockKafka_ReadBlocksUntilCanceled(t *testing.T) {
	mk := &MockKafka{}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := mk.ReadMessage(ctx); err == nil {
		t.Fatalf("expected context error on empty queue")
	}
}
