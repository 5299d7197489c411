// fieldbook/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"fieldbook/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// Hub fans field change events out to every connected websocket client.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Register adds conn and returns the id to unregister it with.
func (h *Hub) Register(conn *websocket.Conn) string {
	id := uuid.NewString()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = &client{conn: conn}
	log.Debug().Str("client", id).Msg("WebSocket client registered")
	return id
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		log.Debug().Str("client", id).Msg("WebSocket client unregistered")
	}
}

// Len returns the number of registered clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends message to every client. Clients that fail are dropped.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	targets := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		targets[id] = c
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.write(message); err != nil {
			log.Warn().Err(err).Str("client", id).Msg("WebSocket write failed, dropping client")
			h.Unregister(id)
			_ = c.conn.Close()
		}
	}
}

// Publish implements service.Publisher.
func (h *Hub) Publish(event service.Event) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode field event")
		return
	}
	h.Broadcast(message)
}
