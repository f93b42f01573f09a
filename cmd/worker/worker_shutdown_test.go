package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"example.com/campusfeed/internal/models"
	"github.com/segmentio/kafka-go"
)

// TestWorker_GracefulShutdown ensures that the worker:
// 1. Processes the queued activity event.
// 2. Shuts down gracefully when the context is canceled.
// 3. Closes its reader on Close.
func TestWorker_GracefulShutdown(t *testing.T) {
	reader := &MockKafkaReader{
		Messages: []kafka.Message{eventMessage(t, models.EventUserRegistered, "user_1")},
	}

	// Context with timeout to simulate graceful shutdown signal
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w := New(reader, 1, 1)

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
		if got := w.Counts()[models.EventUserRegistered]; got != 1 {
			t.Fatalf("expected 1 processed event, got %d", got)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("worker did not shutdown gracefully in time")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("worker Close() error: %v", err)
	}
	if !reader.IsClosed() {
		t.Fatal("expected Kafka reader to be closed")
	}
}

// MockKafkaReader returns empty messages once drained, like a reader whose
// fetch wait expired.
type MockKafkaReader struct {
	mu       sync.Mutex
	Messages []kafka.Message
	closed   bool
}

func (m *MockKafkaReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return kafka.Message{}, nil
	}
	msg := m.Messages[0]
	m.Messages = m.Messages[1:]
	return msg, nil
}

func (m *MockKafkaReader) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MockKafkaReader) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
