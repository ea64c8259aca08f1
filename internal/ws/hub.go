package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

// Hub fans gateway events out to dashboard WebSocket clients, grouped
// by workspace
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*websocket.Conn]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[*websocket.Conn]bool)}
}

// Register adds a client connection under a workspace
func (h *Hub) Register(workspaceID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[workspaceID] == nil {
		h.clients[workspaceID] = make(map[*websocket.Conn]bool)
	}
	h.clients[workspaceID][conn] = true
}

// Unregister removes a client connection
func (h *Hub) Unregister(workspaceID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[workspaceID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, workspaceID)
		}
	}
}

// Notify pushes an event to every client of a workspace. Slow or dead
// clients are dropped rather than blocking the sender.
func (h *Hub) Notify(workspaceID uuid.UUID, event string, data map[string]interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"event":     event,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      data,
	})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal ws notification")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[workspaceID]))
	for conn := range h.clients[workspaceID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Debug().Err(err).Str("workspace_id", workspaceID.String()).Msg("dropping dead ws client")
			conn.Close()
			h.Unregister(workspaceID, conn)
		}
	}
}

// ClientCount reports connected clients for a workspace
func (h *Hub) ClientCount(workspaceID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[workspaceID])
}
