package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	appkafka "example.com/campusfeed/internal/broker"
	"example.com/campusfeed/internal/realtime"
	"example.com/campusfeed/internal/store"
	"github.com/gorilla/websocket"
)

// freeAddr reserves a loopback port and releases it for the server to bind.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func waitHealthy(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server on %s never became healthy", addr)
}

// TestServer_GracefulShutdown cancels the run context while a realtime client
// is connected and expects Run to return cleanly and the client to be closed.
func TestServer_GracefulShutdown(t *testing.T) {
	addr := freeAddr(t)
	hub := realtime.NewHub()
	s := New(store.NewMock(), appkafka.NopPublisher{}, hub, Options{
		Addr:      addr,
		UploadDir: t.TempDir(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitHealthy(t, addr)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	for deadline := time.Now().Add(2 * time.Second); hub.Len() != 1; {
		if time.Now().After(deadline) {
			t.Fatal("realtime client was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shutdown gracefully within the expected time")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the realtime connection to be closed on shutdown")
	}
	if hub.Len() != 0 {
		t.Fatalf("hub still holds %d clients", hub.Len())
	}

	// The listener is gone, so nothing can join the closed hub.
	if late, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil); err == nil {
		late.Close()
		t.Fatal("expected dial after shutdown to fail")
	}
}

func TestServer_RunReportsListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	// The address is already taken, so Run must fail without a cancel.
	s := New(store.NewMock(), nil, realtime.NewHub(), Options{Addr: l.Addr().String(), UploadDir: t.TempDir()})

	select {
	case err := <-runAsync(s):
		if err == nil {
			t.Fatal("expected a listen error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on listen failure")
	}
}

func runAsync(s *Server) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- s.Run(context.Background()) }()
	return ch
}
