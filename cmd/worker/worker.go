package worker

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	appkafka "example.com/campusfeed/internal/broker"
	"example.com/campusfeed/internal/logger"
	"example.com/campusfeed/internal/metrics"
	"example.com/campusfeed/internal/models"
	"github.com/segmentio/kafka-go"
)

var logg = logger.New()

// Worker consumes activity events from Kafka with a bounded pool.
type Worker struct {
	reader       appkafka.KafkaReader
	workerCount  int
	jobQueueSize int

	mu     sync.Mutex
	counts map[string]int
}

// New creates a Worker around an initialized reader. Non-positive sizes pick
// defaults from the CPU count.
func New(reader appkafka.KafkaReader, workerCount, jobQueueSize int) *Worker {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if jobQueueSize <= 0 {
		jobQueueSize = workerCount * 10
	}
	return &Worker{
		reader:       reader,
		workerCount:  workerCount,
		jobQueueSize: jobQueueSize,
		counts:       make(map[string]int),
	}
}

// Run reads and processes events until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	logg.Info("worker", "Starting "+fmt.Sprint(w.workerCount)+" workers with queue size "+fmt.Sprint(w.jobQueueSize))

	jobs := make(chan kafka.Message, w.jobQueueSize)
	var wg sync.WaitGroup

	for i := 0; i < w.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.processLoop(ctx, jobs)
		}()
	}

	w.readLoop(ctx, jobs)

	close(jobs)
	wg.Wait()
	logg.Info("worker", "All workers stopped gracefully")
}

// readLoop pulls messages into the job queue, backing off on read errors.
func (w *Worker) readLoop(ctx context.Context, jobs chan<- kafka.Message) {
	var retry int
	for {
		if ctx.Err() != nil {
			return
		}

		msg, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			backoff := time.Duration(math.Min(1000, math.Pow(2, float64(retry)))) * time.Millisecond
			logg.Error("worker", "Kafka read error, backing off", err)
			if !waitWithContext(ctx, backoff) {
				return
			}
			retry++
			continue
		}
		retry = 0

		if len(msg.Value) == 0 {
			if !waitWithContext(ctx, 50*time.Millisecond) {
				return
			}
			continue
		}
		if !enqueue(ctx, jobs, msg) {
			return
		}
	}
}

// enqueue blocks until the queue accepts msg or ctx ends.
func enqueue(ctx context.Context, jobs chan<- kafka.Message, msg kafka.Message) bool {
	select {
	case jobs <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-time.After(100 * time.Millisecond):
		logg.Info("worker", "Queue full, waiting to enqueue Kafka message")
	}
	select {
	case jobs <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *Worker) processLoop(ctx context.Context, jobs <-chan kafka.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-jobs:
			if !ok {
				return
			}
			ev, err := appkafka.DecodeEvent(msg)
			if err != nil {
				logg.Error("worker", "Invalid activity event", err)
				continue
			}
			w.handle(ev)
		}
	}
}

func (w *Worker) handle(ev models.ActivityEvent) {
	w.mu.Lock()
	w.counts[ev.Type]++
	w.mu.Unlock()

	metrics.RecordConsumed(ev.Type)
	logg.Debug("worker", "Activity event "+ev.Type+" id="+ev.ID+" at "+ev.At.Format(time.RFC3339))
}

// Counts returns how many events of each type were processed.
func (w *Worker) Counts() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

// waitWithContext waits for duration or context cancellation.
func waitWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close shuts down the Kafka reader.
func (w *Worker) Close() error {
	logg.Info("worker", "Closing Kafka reader")
	if err := w.reader.Close(); err != nil {
		logg.Error("worker", "Error closing Kafka reader", err)
		return err
	}
	return nil
}
