package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/nurfahmi/wa-gateway/internal/provider"
	"github.com/nurfahmi/wa-gateway/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProviderEventHandler receives raw events from the provider adapter
type ProviderEventHandler struct {
	router *services.EventRouter
	token  string
}

// NewProviderEventHandler creates a new provider event handler. The
// token guards the intake endpoint; the provider sidecar sends it in
// X-Provider-Token.
func NewProviderEventHandler(router *services.EventRouter, token string) *ProviderEventHandler {
	return &ProviderEventHandler{router: router, token: token}
}

// Handle godoc
// @Summary Provider event intake
// @Description Internal endpoint for the messaging provider sidecar
// @Tags provider
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /provider/events [post]
func (h *ProviderEventHandler) Handle(c echo.Context) error {
	if h.token != "" {
		sent := c.Request().Header.Get("X-Provider-Token")
		if subtle.ConstantTimeCompare([]byte(sent), []byte(h.token)) != 1 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid provider token"})
		}
	}

	var raw provider.RawEvent
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid event payload"})
	}

	if err := h.router.HandleRaw(c.Request().Context(), raw); err != nil {
		log.Error().Err(err).Str("account_identifier", raw.AccountIdentifier).Msg("provider event handling failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Event handling failed"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "accepted"})
}
