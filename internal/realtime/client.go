package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBufferSize = 64
)

// Event names on the wire.
const (
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
)

// Envelope is a single websocket frame: {"event": ..., "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// encodeEvent builds a frame around data without re-encoding it, so the
// payload reaches receivers byte for byte.
func encodeEvent(event string, data json.RawMessage) []byte {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	name, _ := json.Marshal(event)
	out := make([]byte, 0, len(data)+len(name)+20)
	out = append(out, `{"event":`...)
	out = append(out, name...)
	out = append(out, `,"data":`...)
	out = append(out, data...)
	out = append(out, '}')
	return out
}

// Client is one websocket connection. The reader runs on the serving
// goroutine; the writer goroutine owns all writes to conn.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newClient(id string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// readPump turns each sendMessage frame into a broadcast until the
// connection fails or closes.
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logg.Error("realtime", "Unexpected close for client "+c.id, err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			logg.Error("realtime", "Malformed frame from client "+c.id, err)
			continue
		}

		switch env.Event {
		case EventSendMessage:
			logg.Debug("realtime", "Received message from client "+c.id)
			c.hub.Broadcast(encodeEvent(EventReceiveMessage, env.Data))
		default:
			logg.Info("realtime", "Ignoring unknown event "+env.Event+" from client "+c.id)
		}
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
// It exits when the hub closes the queue or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
