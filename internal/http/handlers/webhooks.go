package handlers

import (
	"net/http"

	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/internal/services"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// WebhookHandler handles webhook endpoint configuration
type WebhookHandler struct {
	webhookRepo *repo.WebhookConfigRepository
	dispatcher  *services.WebhookDispatcher
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookRepo *repo.WebhookConfigRepository, dispatcher *services.WebhookDispatcher) *WebhookHandler {
	return &WebhookHandler{webhookRepo: webhookRepo, dispatcher: dispatcher}
}

// WebhookConfigRequest represents the request to configure a webhook
type WebhookConfigRequest struct {
	URL    string   `json:"url" validate:"required,url"`
	Secret string   `json:"secret"`
	Events []string `json:"events"`
}

// Get godoc
// @Summary Get the workspace webhook config
// @Tags webhooks
// @Produce json
// @Success 200 {object} models.WebhookConfig
// @Router /webhooks [get]
// @Security ApiKeyAuth
func (h *WebhookHandler) Get(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	config, err := h.webhookRepo.GetByWorkspace(workspaceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Webhook not configured"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, config)
}

// Upsert godoc
// @Summary Register or replace the workspace webhook
// @Description Re-registering resets the failure counter
// @Tags webhooks
// @Accept json
// @Produce json
// @Param webhook body WebhookConfigRequest true "Webhook data"
// @Success 200 {object} models.WebhookConfig
// @Router /webhooks [put]
// @Security ApiKeyAuth
func (h *WebhookHandler) Upsert(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req WebhookConfigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}

	config := &models.WebhookConfig{
		WorkspaceID: workspaceID,
		URL:         req.URL,
		Secret:      req.Secret,
		Events:      req.Events,
		IsActive:    true,
	}
	if err := h.webhookRepo.Upsert(config); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, config)
}

// Delete godoc
// @Summary Remove the workspace webhook
// @Tags webhooks
// @Produce json
// @Success 200 {object} map[string]string
// @Router /webhooks [delete]
// @Security ApiKeyAuth
func (h *WebhookHandler) Delete(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	if err := h.webhookRepo.Delete(workspaceID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Webhook not configured"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Webhook deleted"})
}

// Test godoc
// @Summary Send a test event to the configured webhook
// @Tags webhooks
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /webhooks/test [post]
// @Security ApiKeyAuth
func (h *WebhookHandler) Test(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	config, err := h.webhookRepo.GetByWorkspace(workspaceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Webhook not configured"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if err := h.dispatcher.SendTest(c.Request().Context(), config); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Test event delivered"})
}

// Enable godoc
// @Summary Re-enable a webhook disabled by repeated failures
// @Tags webhooks
// @Produce json
// @Success 200 {object} map[string]string
// @Router /webhooks/enable [post]
// @Security ApiKeyAuth
func (h *WebhookHandler) Enable(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	config, err := h.webhookRepo.GetByWorkspace(workspaceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Webhook not configured"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if err := h.webhookRepo.Enable(config.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Webhook enabled"})
}
