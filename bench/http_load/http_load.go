package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"example.com/campusfeed/internal/benchstats"
)

// PostReq is the payload for POST /post.
type PostReq struct {
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption"`
}

func main() {
	// --- Command-line flags ---
	var server string
	var duration int
	var concurrency int
	var readEvery int
	var csvFile string
	var trimPercent float64

	flag.StringVar(&server, "server", "http://localhost:8080", "server base URL")
	flag.IntVar(&duration, "duration", 30, "duration in seconds")
	flag.IntVar(&concurrency, "c", 50, "number of concurrent goroutines / users")
	flag.IntVar(&readEvery, "read-every", 5, "list posts after every N creates (0 disables)")
	flag.StringVar(&csvFile, "csv", "latencies.csv", "CSV file to save latencies")
	flag.Float64Var(&trimPercent, "trim", 1.0, "percent of latency to trim from top and bottom for trimmed mean")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	// --- Sign up one user per goroutine ---
	fmt.Printf("Signing up %d users...\n", concurrency)
	run := time.Now().UnixNano()
	for i := 0; i < concurrency; i++ {
		payload := map[string]string{
			"fname":    "Load",
			"lname":    fmt.Sprintf("User%d", i),
			"email":    fmt.Sprintf("load-%d-%d@tezu.ac.in", run, i),
			"password": "load-test",
		}
		b, _ := json.Marshal(payload)

		resp, err := client.Post(server+"/signup", "application/json", bytes.NewReader(b))
		if err != nil {
			panic(fmt.Sprintf("failed to sign up: %v", err))
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			panic(fmt.Sprintf("signup returned %d", resp.StatusCode))
		}
	}
	fmt.Println("Users signed up.")

	// --- Prepare concurrency test ---
	stopTime := time.Now().Add(time.Duration(duration) * time.Second)
	var wg sync.WaitGroup

	// Atomic counters for thread-safe tracking
	var requests int64
	var successes int64
	var errors4xx int64
	var errors5xx int64

	latencySlices := make([][]float64, concurrency) // each goroutine records latencies

	do := func(req *http.Request) float64 {
		start := time.Now()
		resp, err := client.Do(req)
		lat := time.Since(start).Seconds() * 1000 // latency in ms
		atomic.AddInt64(&requests, 1)
		if err != nil {
			fmt.Printf("Request error: %v\n", err)
			return lat
		}
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			atomic.AddInt64(&successes, 1)
			io.Copy(io.Discard, resp.Body)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			atomic.AddInt64(&errors4xx, 1)
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("Status %d: %s\n", resp.StatusCode, body)
		default:
			atomic.AddInt64(&errors5xx, 1)
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("Status %d: %s\n", resp.StatusCode, body)
		}
		resp.Body.Close()
		return lat
	}

	// --- Start concurrent goroutines for load test ---
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			var localLatencies []float64
			n := 0

			// Keep creating posts, with a periodic list, until the test duration ends
			for time.Now().Before(stopTime) {
				body := PostReq{
					ImageURL: fmt.Sprintf("/uploads/load-%d-%d.png", idx, n),
					Caption:  fmt.Sprintf("load test post %d", time.Now().UnixNano()),
				}
				b, _ := json.Marshal(body)
				req, _ := http.NewRequest(http.MethodPost, server+"/post", bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				localLatencies = append(localLatencies, do(req))
				n++

				if readEvery > 0 && n%readEvery == 0 {
					req, _ := http.NewRequest(http.MethodGet, server+"/posts", nil)
					localLatencies = append(localLatencies, do(req))
				}
			}

			latencySlices[idx] = localLatencies
		}(i)
	}

	wg.Wait()

	// --- Merge all latencies ---
	var allLatencies []float64
	for _, slice := range latencySlices {
		allLatencies = append(allLatencies, slice...)
	}
	summary := benchstats.Summarize(allLatencies, trimPercent)

	fmt.Printf("Requests: %d  Successes: %d  4xx: %d  5xx: %d\n", requests, successes, errors4xx, errors5xx)
	fmt.Printf("Latency (ms): %s\n", summary)

	// --- Save latencies to CSV ---
	f, err := os.Create(csvFile)
	if err != nil {
		fmt.Printf("Failed to create CSV file: %v\n", err)
		return
	}
	defer f.Close()

	if err := benchstats.WriteCSV(f, allLatencies); err != nil {
		fmt.Printf("Failed to write CSV file: %v\n", err)
		return
	}
	fmt.Printf("Saved latencies to %s\n", csvFile)
}
