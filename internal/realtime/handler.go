package realtime

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades requests to websocket connections on hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler accepts connections whose Origin is allowedOrigin. Requests
// without an Origin header (non-browser clients) are accepted too.
func NewHandler(hub *Hub, allowedOrigin string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logg.Error("realtime", "Websocket upgrade failed", err)
		return
	}

	c := newClient(uuid.NewString(), h.hub, conn)
	if !h.hub.Register(c) {
		// Hub is shutting down; writePump sends the close frame.
		logg.Info("realtime", "Refusing connection during shutdown: "+c.id)
		c.writePump()
		return
	}
	logg.Info("realtime", "A user connected: "+c.id)

	go c.writePump()
	c.readPump()

	h.hub.Unregister(c)
	logg.Info("realtime", "A user disconnected: "+c.id)
}
