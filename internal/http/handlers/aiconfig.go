package handlers

import (
	"net/http"

	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AIConfigHandler handles AI auto-reply configuration
type AIConfigHandler struct {
	aiConfigRepo     *repo.AIConfigRepository
	conversationRepo *repo.ConversationLogRepository
}

// NewAIConfigHandler creates a new AI config handler
func NewAIConfigHandler(aiConfigRepo *repo.AIConfigRepository, conversationRepo *repo.ConversationLogRepository) *AIConfigHandler {
	return &AIConfigHandler{aiConfigRepo: aiConfigRepo, conversationRepo: conversationRepo}
}

// AIConfigRequest represents the request to set AI configuration
type AIConfigRequest struct {
	AccountID         *uuid.UUID                   `json:"account_id"`
	IsEnabled         bool                         `json:"is_enabled"`
	AutoReplyEnabled  bool                         `json:"auto_reply_enabled"`
	Model             string                       `json:"model"`
	SystemPrompt      string                       `json:"system_prompt"`
	Temperature       float32                      `json:"temperature"`
	MaxTokens         int                          `json:"max_tokens"`
	ReplyDelaySeconds int                          `json:"reply_delay_seconds"`
	FallbackMessage   string                       `json:"fallback_message"`
	MemoryEnabled     bool                         `json:"memory_enabled"`
	MemoryMessages    int                          `json:"memory_messages"`
	BusinessHoursOnly bool                         `json:"business_hours_only"`
	BusinessHours     models.BusinessHoursSchedule `json:"business_hours"`
}

// Get godoc
// @Summary Get effective AI config
// @Description Resolves the account-scoped config, falling back to the workspace default
// @Tags ai
// @Produce json
// @Param account_id query string false "Account ID"
// @Success 200 {object} models.AIConfig
// @Router /ai/config [get]
// @Security ApiKeyAuth
func (h *AIConfigHandler) Get(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	accountID := uuid.Nil
	if param := c.QueryParam("account_id"); param != "" {
		parsed, err := uuid.Parse(param)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid account_id format"})
		}
		accountID = parsed
	}

	config, err := h.aiConfigRepo.Resolve(workspaceID, accountID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "AI config not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, config)
}

// Upsert godoc
// @Summary Create or update AI config
// @Tags ai
// @Accept json
// @Produce json
// @Param config body AIConfigRequest true "AI config data"
// @Success 200 {object} models.AIConfig
// @Router /ai/config [put]
// @Security ApiKeyAuth
func (h *AIConfigHandler) Upsert(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req AIConfigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	config := &models.AIConfig{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		AccountID:          req.AccountID,
		IsEnabled:          req.IsEnabled,
		AutoReplyEnabled:   req.AutoReplyEnabled,
		Model:              req.Model,
		SystemPrompt:       req.SystemPrompt,
		Temperature:        req.Temperature,
		MaxTokens:          req.MaxTokens,
		ReplyDelaySeconds:  req.ReplyDelaySeconds,
		FallbackMessage:    req.FallbackMessage,
		MemoryEnabled:      req.MemoryEnabled,
		MemoryMessages:     req.MemoryMessages,
		BusinessHoursOnly:  req.BusinessHoursOnly,
		BusinessHours:      req.BusinessHours,
	}
	if config.Model == "" {
		config.Model = "gpt-4"
	}
	if config.MemoryMessages <= 0 {
		config.MemoryMessages = 10
	}

	if err := h.aiConfigRepo.Upsert(config); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, config)
}

// ClearMemory godoc
// @Summary Clear AI conversation memory for a contact
// @Tags ai
// @Produce json
// @Param phone path string true "Contact phone"
// @Success 200 {object} map[string]string
// @Router /ai/memory/{phone} [delete]
// @Security ApiKeyAuth
func (h *AIConfigHandler) ClearMemory(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	phone := c.Param("phone")
	if phone == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "phone is required"})
	}

	if err := h.conversationRepo.Clear(workspaceID, phone); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Conversation memory cleared"})
}
