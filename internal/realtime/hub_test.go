package realtime

import (
	"encoding/json"
	"testing"
)

// testClient builds a client with no connection; tests read c.send directly.
func testClient(h *Hub, id string, buf int) *Client {
	return &Client{id: id, hub: h, send: make(chan []byte, buf)}
}

func TestHub_BroadcastReachesEveryRegisteredClient(t *testing.T) {
	h := NewHub()
	a := testClient(h, "a", 1)
	b := testClient(h, "b", 1)
	h.Register(a)
	h.Register(b)

	msg := []byte(`{"event":"receiveMessage","data":"hi"}`)
	if n := h.Broadcast(msg); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}

	for _, c := range []*Client{a, b} {
		select {
		case got := <-c.send:
			if string(got) != string(msg) {
				t.Fatalf("client %s got %s", c.id, got)
			}
		default:
			t.Fatalf("client %s received nothing", c.id)
		}
	}
}

func TestHub_UnregisteredClientMissesLaterMessages(t *testing.T) {
	h := NewHub()
	a := testClient(h, "a", 1)
	b := testClient(h, "b", 1)
	h.Register(a)
	h.Register(b)

	h.Unregister(b)
	h.Unregister(b) // idempotent

	if n := h.Broadcast([]byte("x")); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if _, ok := <-b.send; ok {
		t.Fatalf("unregistered client should only see a closed queue")
	}
	if h.Len() != 1 {
		t.Fatalf("expected 1 client left, got %d", h.Len())
	}
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	slow := testClient(h, "slow", 1)
	h.Register(slow)

	h.Broadcast([]byte("1"))
	if n := h.Broadcast([]byte("2")); n != 0 {
		t.Fatalf("expected the second message to be dropped, got %d deliveries", n)
	}
	if got := <-slow.send; string(got) != "1" {
		t.Fatalf("expected first message, got %s", got)
	}
}

func TestHub_CloseUnregistersAll(t *testing.T) {
	h := NewHub()
	clients := []*Client{testClient(h, "a", 1), testClient(h, "b", 1), testClient(h, "c", 1)}
	for _, c := range clients {
		h.Register(c)
	}

	h.Close()

	if h.Len() != 0 {
		t.Fatalf("expected empty hub, got %d", h.Len())
	}
	for _, c := range clients {
		if _, ok := <-c.send; ok {
			t.Fatalf("client %s queue should be closed", c.id)
		}
	}
}

// A connection that registers after Close must not linger on the hub.
func TestHub_RegisterAfterCloseIsRefused(t *testing.T) {
	h := NewHub()
	h.Close()

	late := testClient(h, "late", 1)
	if h.Register(late) {
		t.Fatal("expected Register to refuse a client after Close")
	}
	if h.Len() != 0 {
		t.Fatalf("expected empty hub, got %d", h.Len())
	}
	if _, ok := <-late.send; ok {
		t.Fatal("late client queue should be closed")
	}
	if n := h.Broadcast([]byte("x")); n != 0 {
		t.Fatalf("broadcast reached %d clients on a closed hub", n)
	}
}

func TestEncodeEvent_KeepsPayloadVerbatim(t *testing.T) {
	data := json.RawMessage(`{ "text" : "hello",  "from": "ada" }`)
	out := encodeEvent(EventReceiveMessage, data)

	want := `{"event":"receiveMessage","data":{ "text" : "hello",  "from": "ada" }}`
	if string(out) != want {
		t.Fatalf("got %s\nwant %s", out, want)
	}

	var env Envelope
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
}

func TestEncodeEvent_MissingDataIsNull(t *testing.T) {
	if got := string(encodeEvent(EventReceiveMessage, nil)); got != `{"event":"receiveMessage","data":null}` {
		t.Fatalf("unexpected frame %s", got)
	}
}
