package realtime

import (
	"sync"

	"example.com/campusfeed/internal/logger"
	"example.com/campusfeed/internal/metrics"
)

var logg = logger.New()

// Hub is the registry of live connections on the single broadcast topic.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds c to the broadcast set. After Close, c is not added and its
// queue is closed at once, so its writer says goodbye.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.send)
		return false
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.ConnectionOpened()
	return true
}

// Unregister removes c and closes its outbound queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		metrics.ConnectionClosed()
	}
}

// Broadcast enqueues msg for every registered client, including the sender,
// and returns how many queues accepted it. A full queue misses the message.
func (h *Hub) Broadcast(msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients {
		select {
		case c.send <- msg:
			delivered++
		default:
			metrics.DeliveryDropped()
			logg.Info("realtime", "Outbound buffer full, message dropped for client "+c.id)
		}
	}
	metrics.MessageBroadcast()
	return delivered
}

// Len reports the number of registered clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unregisters every client and refuses later registrations; writers
// then send a close frame.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	snapshot := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	for _, c := range snapshot {
		h.Unregister(c)
	}
}
