package handlers

import (
	"net/http"

	"github.com/nurfahmi/wa-gateway/internal/http/middleware"
	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades dashboard connections and wires them into
// the event hub
type WebSocketHandler struct {
	hub           *ws.Hub
	workspaceRepo *repo.WorkspaceRepository
	upgrader      websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *ws.Hub, workspaceRepo *repo.WorkspaceRepository) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		workspaceRepo: workspaceRepo,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Auth happens via API key, not origin
				return true
			},
		},
	}
}

// Handle authenticates via the api_key query parameter (browsers cannot
// set headers on WebSocket dials), upgrades, and pumps events until the
// client goes away
func (h *WebSocketHandler) Handle(c echo.Context) error {
	key := c.QueryParam("api_key")
	if key == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing api_key"})
	}

	workspace, _, err := h.workspaceRepo.GetByAPIKeyHash(middleware.HashAPIKey(key))
	if err != nil || !workspace.IsActive {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid API key"})
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return err
	}
	defer conn.Close()

	h.hub.Register(workspace.ID, conn)
	defer h.hub.Unregister(workspace.ID, conn)

	log.Info().Str("workspace_id", workspace.ID.String()).Msg("dashboard client connected")

	// Reads are only for detecting disconnect; clients don't send
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Info().Str("workspace_id", workspace.ID.String()).Msg("dashboard client disconnected")
	return nil
}
