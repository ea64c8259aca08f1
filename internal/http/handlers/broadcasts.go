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

// BroadcastHandler handles bulk campaign operations
type BroadcastHandler struct {
	broadcastRepo *repo.BroadcastRepository
	accountRepo   *repo.AccountRepository
}

// NewBroadcastHandler creates a new broadcast handler
func NewBroadcastHandler(broadcastRepo *repo.BroadcastRepository, accountRepo *repo.AccountRepository) *BroadcastHandler {
	return &BroadcastHandler{broadcastRepo: broadcastRepo, accountRepo: accountRepo}
}

// CreateBroadcastRequest represents the request to create a broadcast
type CreateBroadcastRequest struct {
	AccountID     uuid.UUID  `json:"account_id" validate:"required"`
	Name          string     `json:"name"`
	Message       string     `json:"message" validate:"required"`
	MediaURL      string     `json:"media_url"`
	MediaType     string     `json:"media_type"`
	TargetType    string     `json:"target_type" validate:"required,oneof=custom all_contacts group"`
	TargetPhones  []string   `json:"target_phones"`
	TargetGroupID string     `json:"target_group_id"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
}

// Create godoc
// @Summary Create a broadcast campaign
// @Description Creates a draft, or a scheduled broadcast when scheduled_at is set
// @Tags broadcasts
// @Accept json
// @Produce json
// @Param broadcast body CreateBroadcastRequest true "Broadcast data"
// @Success 201 {object} models.Broadcast
// @Router /broadcasts [post]
// @Security ApiKeyAuth
func (h *BroadcastHandler) Create(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req CreateBroadcastRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Message == "" || req.TargetType == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message and target_type are required"})
	}
	if req.TargetType == models.BroadcastTargetCustom && len(req.TargetPhones) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "target_phones is required for custom targeting"})
	}

	if _, err := h.accountRepo.GetByIDAndWorkspace(req.AccountID, workspaceID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Account not found"})
	}

	status := models.BroadcastStatusDraft
	if req.ScheduledAt != nil {
		status = models.BroadcastStatusScheduled
	}

	broadcast := &models.Broadcast{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		AccountID:          req.AccountID,
		Name:               req.Name,
		Message:            req.Message,
		MediaURL:           req.MediaURL,
		MediaType:          req.MediaType,
		TargetType:         req.TargetType,
		TargetPhones:       req.TargetPhones,
		TargetGroupID:      req.TargetGroupID,
		Status:             status,
		ScheduledAt:        req.ScheduledAt,
	}
	if err := h.broadcastRepo.Create(broadcast); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, broadcast)
}

// List godoc
// @Summary List broadcasts
// @Tags broadcasts
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Limit" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.PaginationResult[models.Broadcast]
// @Router /broadcasts [get]
// @Security ApiKeyAuth
func (h *BroadcastHandler) List(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	result, err := h.broadcastRepo.ListByWorkspace(workspaceID, c.QueryParam("status"), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// GetByID godoc
// @Summary Get a broadcast with its progress counters
// @Tags broadcasts
// @Produce json
// @Param id path string true "Broadcast ID"
// @Success 200 {object} models.Broadcast
// @Router /broadcasts/{id} [get]
// @Security ApiKeyAuth
func (h *BroadcastHandler) GetByID(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	broadcast, err := h.broadcastRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Broadcast not found"})
	}
	return c.JSON(http.StatusOK, broadcast)
}

// Schedule godoc
// @Summary Schedule a draft broadcast
// @Tags broadcasts
// @Accept json
// @Produce json
// @Param id path string true "Broadcast ID"
// @Success 200 {object} models.Broadcast
// @Failure 409 {object} map[string]string
// @Router /broadcasts/{id}/schedule [post]
// @Security ApiKeyAuth
func (h *BroadcastHandler) Schedule(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	var req struct {
		ScheduledAt *time.Time `json:"scheduled_at"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	broadcast, err := h.broadcastRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Broadcast not found"})
	}
	if broadcast.Status != models.BroadcastStatusDraft && broadcast.Status != models.BroadcastStatusScheduled {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Broadcast has already started"})
	}

	// Missing scheduled_at means run on the next sweep
	scheduledAt := time.Now()
	if req.ScheduledAt != nil {
		scheduledAt = *req.ScheduledAt
	}
	broadcast.ScheduledAt = &scheduledAt
	broadcast.Status = models.BroadcastStatusScheduled

	if err := h.broadcastRepo.Update(broadcast); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Broadcast has already started"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, broadcast)
}

// Update godoc
// @Summary Update a broadcast that has not started
// @Tags broadcasts
// @Accept json
// @Produce json
// @Param id path string true "Broadcast ID"
// @Param broadcast body CreateBroadcastRequest true "Broadcast data"
// @Success 200 {object} models.Broadcast
// @Failure 409 {object} map[string]string
// @Router /broadcasts/{id} [put]
// @Security ApiKeyAuth
func (h *BroadcastHandler) Update(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	var req CreateBroadcastRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	broadcast, err := h.broadcastRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Broadcast not found"})
	}
	if broadcast.Status != models.BroadcastStatusDraft && broadcast.Status != models.BroadcastStatusScheduled {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Broadcast has already started"})
	}

	if req.Name != "" {
		broadcast.Name = req.Name
	}
	if req.Message != "" {
		broadcast.Message = req.Message
	}
	broadcast.MediaURL = req.MediaURL
	broadcast.MediaType = req.MediaType
	if req.TargetType != "" {
		broadcast.TargetType = req.TargetType
	}
	if req.TargetPhones != nil {
		broadcast.TargetPhones = req.TargetPhones
	}
	if req.ScheduledAt != nil {
		broadcast.ScheduledAt = req.ScheduledAt
	}
	if broadcast.TargetType == models.BroadcastTargetCustom && len(broadcast.TargetPhones) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "target_phones is required for custom targeting"})
	}

	if err := h.broadcastRepo.Update(broadcast); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Broadcast has already started"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, broadcast)
}

// Delete godoc
// @Summary Delete a broadcast that has not started
// @Tags broadcasts
// @Produce json
// @Param id path string true "Broadcast ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /broadcasts/{id} [delete]
// @Security ApiKeyAuth
func (h *BroadcastHandler) Delete(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	if err := h.broadcastRepo.Delete(id, workspaceID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Broadcast is not deletable"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Broadcast deleted"})
}
