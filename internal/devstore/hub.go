package devstore

import (
	"context"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Hub is a minimal websocket hub holding every connected change-feed
// client. Change events are global, not per-user, so broadcast goes to
// all connections.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// Register adds a connection to the broadcast set.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
	changeSubscribers.Set(float64(len(h.conns)))
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	changeSubscribers.Set(float64(len(h.conns)))
}

// Broadcast sends a payload to every connected client.
func (h *Hub) Broadcast(payload string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		if err := c.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			log.Printf("websocket write error: %v", err)
		}
	}
}

// StartWiring connects the Notifier to this hub: every published change
// event is forwarded to all connected clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(payload string) {
		h.Broadcast(payload)
	})
}
