package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"example.com/campusfeed/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Floods the activity topic so the worker pool can be measured in isolation.
func main() {
	var total, batchSize, numWorkers int
	var kafkaBroker, topic string

	flag.IntVar(&total, "n", 100000, "total number of events to send")
	flag.IntVar(&batchSize, "batch", 100, "batch size for sending events")
	flag.IntVar(&numWorkers, "c", 4, "number of parallel goroutines")
	flag.StringVar(&kafkaBroker, "broker", "localhost:29092", "Kafka broker")
	flag.StringVar(&topic, "topic", "campus-activity", "activity topic")
	flag.Parse()

	// Kafka writer with asynchronous sending enabled
	w := &kafka.Writer{
		Addr:  kafka.TCP(kafkaBroker),
		Topic: topic,
		Async: true,
	}
	defer w.Close()

	start := time.Now()

	var successCount uint64
	var failCount uint64

	// Channel for feeding event indexes to worker goroutines
	jobs := make(chan int, total)
	var wg sync.WaitGroup

	send := func(batch []kafka.Message) {
		if err := w.WriteMessages(context.Background(), batch...); err != nil {
			atomic.AddUint64(&failCount, uint64(len(batch)))
			fmt.Printf("write error: %v\n", err)
			return
		}
		atomic.AddUint64(&successCount, uint64(len(batch)))
	}

	// --- Start worker goroutines ---
	for wID := 0; wID < numWorkers; wID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := make([]kafka.Message, 0, batchSize)

			for i := range jobs {
				typ := models.EventPostCreated
				if i%10 == 0 {
					typ = models.EventUserRegistered
				}
				ev := models.ActivityEvent{Type: typ, ID: uuid.NewString(), At: time.Now().UTC()}

				v, err := json.Marshal(ev)
				if err != nil {
					atomic.AddUint64(&failCount, 1)
					fmt.Printf("marshal error: %v\n", err)
					continue
				}
				batch = append(batch, kafka.Message{Key: []byte(typ), Value: v})

				if len(batch) >= batchSize {
					send(batch)
					batch = batch[:0]
				}
			}

			// Send any remaining events after finishing loop
			if len(batch) > 0 {
				send(batch)
			}
		}()
	}

	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// --- Benchmark results ---
	elapsed := time.Since(start)
	fmt.Printf("Total events: %d\n", total)
	fmt.Printf("Successful: %d, Failed: %d\n", successCount, failCount)
	fmt.Printf("Elapsed time: %s\n", elapsed)
	fmt.Printf("Throughput: %.2f msg/s\n", float64(successCount)/elapsed.Seconds())
}
