package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ScheduledMessageHandler handles scheduled message operations
type ScheduledMessageHandler struct {
	scheduledRepo *repo.ScheduledMessageRepository
	accountRepo   *repo.AccountRepository
}

// NewScheduledMessageHandler creates a new scheduled message handler
func NewScheduledMessageHandler(scheduledRepo *repo.ScheduledMessageRepository, accountRepo *repo.AccountRepository) *ScheduledMessageHandler {
	return &ScheduledMessageHandler{scheduledRepo: scheduledRepo, accountRepo: accountRepo}
}

// CreateScheduledMessageRequest represents the request to schedule a message
type CreateScheduledMessageRequest struct {
	AccountID   uuid.UUID `json:"account_id" validate:"required"`
	Recipient   string    `json:"recipient" validate:"required"`
	Message     string    `json:"message" validate:"required"`
	MediaURL    string    `json:"media_url"`
	MediaType   string    `json:"media_type"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// Create godoc
// @Summary Schedule a message for future delivery
// @Tags scheduled-messages
// @Accept json
// @Produce json
// @Param message body CreateScheduledMessageRequest true "Scheduled message data"
// @Success 201 {object} models.ScheduledMessage
// @Router /scheduled-messages [post]
// @Security ApiKeyAuth
func (h *ScheduledMessageHandler) Create(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req CreateScheduledMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Recipient == "" || req.Message == "" || req.ScheduledAt.IsZero() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient, message and scheduled_at are required"})
	}

	// A past timestamp is allowed; the next sweep delivers immediately.
	if _, err := h.accountRepo.GetByIDAndWorkspace(req.AccountID, workspaceID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Account not found"})
	}

	msg := &models.ScheduledMessage{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		AccountID:          req.AccountID,
		Recipient:          req.Recipient,
		Message:            req.Message,
		MediaURL:           req.MediaURL,
		MediaType:          req.MediaType,
		ScheduledAt:        req.ScheduledAt,
		Status:             models.ScheduledStatusPending,
	}
	if err := h.scheduledRepo.Create(msg); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, msg)
}

// List godoc
// @Summary List scheduled messages
// @Tags scheduled-messages
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Limit" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.PaginationResult[models.ScheduledMessage]
// @Router /scheduled-messages [get]
// @Security ApiKeyAuth
func (h *ScheduledMessageHandler) List(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	result, err := h.scheduledRepo.ListByWorkspace(workspaceID, c.QueryParam("status"), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// GetByID godoc
// @Summary Get a scheduled message
// @Tags scheduled-messages
// @Produce json
// @Param id path string true "Scheduled message ID"
// @Success 200 {object} models.ScheduledMessage
// @Router /scheduled-messages/{id} [get]
// @Security ApiKeyAuth
func (h *ScheduledMessageHandler) GetByID(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	msg, err := h.scheduledRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Scheduled message not found"})
	}
	return c.JSON(http.StatusOK, msg)
}

// Cancel godoc
// @Summary Cancel a pending scheduled message
// @Tags scheduled-messages
// @Produce json
// @Param id path string true "Scheduled message ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /scheduled-messages/{id}/cancel [post]
// @Security ApiKeyAuth
func (h *ScheduledMessageHandler) Cancel(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	if err := h.scheduledRepo.Cancel(id, workspaceID); err != nil {
		if err == gorm.ErrRecordNotFound {
			// Either missing or already picked up by the sweep
			return c.JSON(http.StatusConflict, map[string]string{"error": "Message is not pending"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Scheduled message cancelled"})
}
