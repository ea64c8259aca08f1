package handlers

import (
	"net/http"
	"strconv"

	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AutoReplyRuleHandler handles auto-reply rule operations
type AutoReplyRuleHandler struct {
	ruleRepo *repo.AutoReplyRuleRepository
	validate *validator.Validate
}

// NewAutoReplyRuleHandler creates a new rule handler
func NewAutoReplyRuleHandler(ruleRepo *repo.AutoReplyRuleRepository) *AutoReplyRuleHandler {
	return &AutoReplyRuleHandler{ruleRepo: ruleRepo, validate: validator.New()}
}

// RuleRequest represents the request to create or update a rule
type RuleRequest struct {
	AccountID             *uuid.UUID            `json:"account_id"`
	Name                  string                `json:"name" validate:"required"`
	TriggerType           string                `json:"trigger_type" validate:"required,oneof=keyword exact_match contains regex business_hours welcome fallback"`
	TriggerValue          string                `json:"trigger_value"`
	ReplyMessage          string                `json:"reply_message"`
	ReplyType             string                `json:"reply_type"`
	TemplateID            *uuid.UUID            `json:"template_id"`
	Priority              int                   `json:"priority"`
	DelaySeconds          int                   `json:"delay_seconds"`
	MaxTriggersPerContact *int                  `json:"max_triggers_per_contact"`
	Conditions            models.RuleConditions `json:"conditions"`
	IsActive              *bool                 `json:"is_active"`
}

// List godoc
// @Summary List auto-reply rules
// @Tags auto-reply
// @Produce json
// @Param limit query int false "Limit" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.AutoReplyRule
// @Router /auto-reply/rules [get]
// @Security ApiKeyAuth
func (h *AutoReplyRuleHandler) List(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	rules, err := h.ruleRepo.ListByWorkspace(workspaceID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rules)
}

// Create godoc
// @Summary Create an auto-reply rule
// @Tags auto-reply
// @Accept json
// @Produce json
// @Param rule body RuleRequest true "Rule data"
// @Success 201 {object} models.AutoReplyRule
// @Router /auto-reply/rules [post]
// @Security ApiKeyAuth
func (h *AutoReplyRuleHandler) Create(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req RuleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rule := &models.AutoReplyRule{
		BaseWorkspaceModel:    models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		AccountID:             req.AccountID,
		Name:                  req.Name,
		TriggerType:           req.TriggerType,
		TriggerValue:          req.TriggerValue,
		ReplyMessage:          req.ReplyMessage,
		ReplyType:             req.ReplyType,
		TemplateID:            req.TemplateID,
		Priority:              req.Priority,
		DelaySeconds:          req.DelaySeconds,
		MaxTriggersPerContact: req.MaxTriggersPerContact,
		Conditions:            req.Conditions,
		IsActive:              true,
	}
	if rule.ReplyType == "" {
		rule.ReplyType = models.ReplyTypeText
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := h.ruleRepo.Create(rule); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, rule)
}

// GetByID godoc
// @Summary Get a rule by ID
// @Tags auto-reply
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} models.AutoReplyRule
// @Router /auto-reply/rules/{id} [get]
// @Security ApiKeyAuth
func (h *AutoReplyRuleHandler) GetByID(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	rule, err := h.ruleRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Rule not found"})
	}
	return c.JSON(http.StatusOK, rule)
}

// Update godoc
// @Summary Update a rule
// @Tags auto-reply
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body RuleRequest true "Rule data"
// @Success 200 {object} models.AutoReplyRule
// @Router /auto-reply/rules/{id} [put]
// @Security ApiKeyAuth
func (h *AutoReplyRuleHandler) Update(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	var req RuleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rule, err := h.ruleRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Rule not found"})
	}

	rule.AccountID = req.AccountID
	rule.Name = req.Name
	rule.TriggerType = req.TriggerType
	rule.TriggerValue = req.TriggerValue
	rule.ReplyMessage = req.ReplyMessage
	rule.TemplateID = req.TemplateID
	rule.Priority = req.Priority
	rule.DelaySeconds = req.DelaySeconds
	rule.MaxTriggersPerContact = req.MaxTriggersPerContact
	rule.Conditions = req.Conditions
	if req.ReplyType != "" {
		rule.ReplyType = req.ReplyType
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := h.ruleRepo.Update(rule); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rule)
}

// Delete godoc
// @Summary Delete a rule
// @Tags auto-reply
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]string
// @Router /auto-reply/rules/{id} [delete]
// @Security ApiKeyAuth
func (h *AutoReplyRuleHandler) Delete(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	if err := h.ruleRepo.Delete(id, workspaceID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Rule not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Rule deleted"})
}
