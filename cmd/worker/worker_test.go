package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	appkafka "example.com/campusfeed/internal/broker"
	"example.com/campusfeed/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/kafka-go"
)

func eventMessage(t *testing.T, typ, id string) kafka.Message {
	t.Helper()
	data, err := json.Marshal(models.ActivityEvent{Type: typ, ID: id, At: time.Now().UTC()})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return kafka.Message{Key: []byte(typ), Value: data}
}

// runUntil runs w until cond holds or the deadline passes, then stops it.
func runUntil(t *testing.T, w *Worker, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

// ---------- Positive test ----------

func TestWorker_CountsEventsByType(t *testing.T) {
	mockKafka := &appkafka.MockKafka{
		ReadMessages: []kafka.Message{
			eventMessage(t, models.EventUserRegistered, "user_1"),
			eventMessage(t, models.EventPostCreated, "post_2"),
			eventMessage(t, models.EventPostCreated, "post_3"),
		},
	}
	w := New(mockKafka, 2, 4)

	want := map[string]int{models.EventUserRegistered: 1, models.EventPostCreated: 2}
	runUntil(t, w, func() bool { return cmp.Equal(want, w.Counts()) })

	if diff := cmp.Diff(want, w.Counts()); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
}

// ---------- Negative tests ----------

// Malformed and empty messages are skipped without stopping the pool.
func TestWorker_SkipsInvalidMessages(t *testing.T) {
	mockKafka := &appkafka.MockKafka{
		ReadMessages: []kafka.Message{
			{Value: []byte("{invalid-json}")},
			{Value: []byte(`{"id":"no-type"}`)},
			{Value: nil},
			eventMessage(t, models.EventPostCreated, "post_1"),
		},
	}
	w := New(mockKafka, 1, 1)

	runUntil(t, w, func() bool { return w.Counts()[models.EventPostCreated] == 1 })

	if diff := cmp.Diff(map[string]int{models.EventPostCreated: 1}, w.Counts()); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
}

// A failing reader keeps backing off until the context ends.
func TestWorker_KafkaReadErrorBacksOff(t *testing.T) {
	w := New(&appkafka.MockKafkaFail{}, 1, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop while backing off")
	}
	if len(w.Counts()) != 0 {
		t.Fatalf("nothing should be processed, got %v", w.Counts())
	}
}

func TestNew_Defaults(t *testing.T) {
	w := New(&appkafka.MockKafka{}, 0, 0)
	if w.workerCount <= 0 {
		t.Fatalf("expected a positive worker count, got %d", w.workerCount)
	}
	if w.jobQueueSize != w.workerCount*10 {
		t.Fatalf("expected queue size %d, got %d", w.workerCount*10, w.jobQueueSize)
	}
}
