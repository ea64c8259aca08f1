package handlers

import (
	"net/http"
	"strconv"

	"github.com/nurfahmi/wa-gateway/internal/provider"
	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles outbound message dispatch and history
type MessageHandler struct {
	messageService *services.MessageService
	messageRepo    *repo.MessageLogRepository
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService, messageRepo *repo.MessageLogRepository) *MessageHandler {
	return &MessageHandler{messageService: messageService, messageRepo: messageRepo}
}

// SendMessageRequest represents the request to send a message
type SendMessageRequest struct {
	AccountID uuid.UUID `json:"account_id" validate:"required"`
	To        string    `json:"to" validate:"required"`
	Message   string    `json:"message"`
	MediaURL  string    `json:"media_url"`
	MediaType string    `json:"media_type"`
	Caption   string    `json:"caption"`
}

// Send godoc
// @Summary Send a message through an account
// @Tags messages
// @Accept json
// @Produce json
// @Param message body SendMessageRequest true "Message data"
// @Success 201 {object} models.MessageLog
// @Failure 409 {object} map[string]string
// @Router /messages [post]
// @Security ApiKeyAuth
func (h *MessageHandler) Send(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.To == "" || req.AccountID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "account_id and to are required"})
	}
	if req.Message == "" && req.MediaURL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message or media_url is required"})
	}

	ctx := c.Request().Context()
	var logEntry interface{}
	var err error
	if req.MediaURL != "" {
		logEntry, err = h.messageService.SendMedia(ctx, workspaceID, req.AccountID, req.To, provider.Media{
			Type:    req.MediaType,
			URL:     req.MediaURL,
			Caption: req.Caption,
		})
	} else {
		logEntry, err = h.messageService.SendText(ctx, workspaceID, req.AccountID, req.To, req.Message)
	}
	if err != nil {
		if err == services.ErrAccountNotConnected {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Account is not connected"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, logEntry)
}

// List godoc
// @Summary List message history
// @Tags messages
// @Produce json
// @Param account_id query string false "Filter by account"
// @Param direction query string false "in or out"
// @Param status query string false "Filter by status"
// @Param limit query int false "Limit" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.PaginationResult[models.MessageLog]
// @Router /messages [get]
// @Security ApiKeyAuth
func (h *MessageHandler) List(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	opts := repo.MessageListOptions{
		Direction: c.QueryParam("direction"),
		Status:    c.QueryParam("status"),
		Limit:     limit,
		Offset:    offset,
	}
	if accountParam := c.QueryParam("account_id"); accountParam != "" {
		accountID, err := uuid.Parse(accountParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid account_id format"})
		}
		opts.AccountID = &accountID
	}

	result, err := h.messageRepo.ListByWorkspace(workspaceID, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// GetByID godoc
// @Summary Get a message log entry by ID
// @Tags messages
// @Produce json
// @Param id path string true "Message log ID"
// @Success 200 {object} models.MessageLog
// @Router /messages/{id} [get]
// @Security ApiKeyAuth
func (h *MessageHandler) GetByID(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	message, err := h.messageRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Message not found"})
	}
	return c.JSON(http.StatusOK, message)
}

// Stats godoc
// @Summary Message traffic statistics
// @Tags messages
// @Produce json
// @Param days query int false "Window in days" default(7)
// @Success 200 {object} models.MessageStats
// @Router /messages/stats [get]
// @Security ApiKeyAuth
func (h *MessageHandler) Stats(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	days, _ := strconv.Atoi(c.QueryParam("days"))
	stats, err := h.messageRepo.Stats(workspaceID, days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}
