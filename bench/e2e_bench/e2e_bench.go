package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"example.com/campusfeed/internal/benchstats"
	"github.com/gorilla/websocket"
)

// frame is the realtime envelope in both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// chatMessage is the payload each sender stamps with its send time.
type chatMessage struct {
	Sender int   `json:"sender"`
	Seq    int   `json:"seq"`
	SentAt int64 `json:"sentAt"`
}

func main() {
	// CLI flags
	var wsURL, origin string
	var U, P, concurrency int
	var waitTimeout int

	flag.StringVar(&wsURL, "ws", "ws://localhost:8080/ws", "realtime endpoint")
	flag.StringVar(&origin, "origin", "http://localhost:3000", "Origin header sent on connect")
	flag.IntVar(&U, "clients", 50, "number of connected clients")
	flag.IntVar(&P, "messages", 100, "number of chat messages to send")
	flag.IntVar(&concurrency, "c", 10, "concurrent senders")
	flag.IntVar(&waitTimeout, "timeout", 10, "seconds to wait for delivery")
	flag.Parse()

	// --- 1) Connect clients ---
	fmt.Printf("Connecting %d clients...\n", U)
	header := http.Header{}
	header.Set("Origin", origin)
	conns := make([]*websocket.Conn, 0, U)
	writeMu := make([]sync.Mutex, U)
	for i := 0; i < U; i++ {
		c, _, err := websocket.DefaultDialer.Dial(wsURL, header)
		if err != nil {
			fmt.Printf("dial error: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()
		conns = append(conns, c)
	}
	fmt.Println("Clients connected.")

	// --- 2) Every client reads until it has seen all messages or times out ---
	var latencies []float64
	var latMu sync.Mutex
	var delivered int64
	var readers sync.WaitGroup
	deadline := time.Now().Add(time.Duration(waitTimeout) * time.Second)

	for _, c := range conns {
		readers.Add(1)
		go func(c *websocket.Conn) {
			defer readers.Done()
			_ = c.SetReadDeadline(deadline)
			for seen := 0; seen < P; {
				_, raw, err := c.ReadMessage()
				if err != nil {
					return
				}
				var f frame
				if err := json.Unmarshal(raw, &f); err != nil || f.Event != "receiveMessage" {
					continue
				}
				var m chatMessage
				if err := json.Unmarshal(f.Data, &m); err != nil {
					continue
				}
				lat := float64(time.Now().UnixNano()-m.SentAt) / 1e6
				latMu.Lock()
				latencies = append(latencies, lat)
				latMu.Unlock()
				atomic.AddInt64(&delivered, 1)
				seen++
			}
		}(c)
	}

	// --- 3) Send messages from random clients ---
	fmt.Printf("Sending %d messages with concurrency %d...\n", P, concurrency)
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // concurrency limiter
	for i := 0; i < P; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(seq int) {
			defer wg.Done()
			defer func() { <-sem }()

			idx := rand.Intn(len(conns))
			data, _ := json.Marshal(chatMessage{Sender: idx, Seq: seq, SentAt: time.Now().UnixNano()})
			out, _ := json.Marshal(frame{Event: "sendMessage", Data: data})

			// gorilla connections allow one concurrent writer
			writeMu[idx].Lock()
			err := conns[idx].WriteMessage(websocket.TextMessage, out)
			writeMu[idx].Unlock()
			if err != nil {
				fmt.Printf("send error: %v\n", err)
			}
		}(i)
	}
	wg.Wait()
	readers.Wait()

	// --- 4) Compute latency statistics and export to CSV ---
	expected := int64(U) * int64(P)
	fmt.Printf("Deliveries: %d of %d (missed %d)\n", delivered, expected, expected-delivered)
	if len(latencies) == 0 {
		fmt.Println("No successful deliveries recorded.")
		return
	}
	fmt.Printf("Delivery stats (ms): %s\n", benchstats.Summarize(latencies, 1.0))

	f, err := os.Create("e2e_latencies.csv")
	if err != nil {
		fmt.Printf("Failed to create CSV file: %v\n", err)
		return
	}
	defer f.Close()
	if err := benchstats.WriteCSV(f, latencies); err != nil {
		fmt.Printf("Failed to write CSV file: %v\n", err)
		return
	}
	fmt.Println("Saved e2e_latencies.csv")
}
