package handlers

import (
	"net/http"
	"strconv"

	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/internal/services"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// TemplateHandler handles message template operations
type TemplateHandler struct {
	templateService *services.TemplateService
	templateRepo    *repo.TemplateRepository
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService *services.TemplateService, templateRepo *repo.TemplateRepository) *TemplateHandler {
	return &TemplateHandler{templateService: templateService, templateRepo: templateRepo}
}

// TemplateRequest represents the request to create or update a template
type TemplateRequest struct {
	Name     string `json:"name" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category"`
	IsActive *bool  `json:"is_active"`
}

// RenderTemplateRequest represents the request to render a template
type RenderTemplateRequest struct {
	Variables map[string]string `json:"variables"`
}

// List godoc
// @Summary List message templates
// @Tags templates
// @Produce json
// @Param category query string false "Filter by category"
// @Param limit query int false "Limit" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.MessageTemplate
// @Router /templates [get]
// @Security ApiKeyAuth
func (h *TemplateHandler) List(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	templates, err := h.templateRepo.ListByWorkspace(workspaceID, c.QueryParam("category"), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, templates)
}

// Create godoc
// @Summary Create a message template
// @Description Placeholder variables are extracted from the content automatically
// @Tags templates
// @Accept json
// @Produce json
// @Param template body TemplateRequest true "Template data"
// @Success 201 {object} models.MessageTemplate
// @Router /templates [post]
// @Security ApiKeyAuth
func (h *TemplateHandler) Create(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req TemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Name == "" || req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and content are required"})
	}

	template := &models.MessageTemplate{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		Name:               req.Name,
		Content:            req.Content,
		Category:           req.Category,
		IsActive:           true,
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	if err := h.templateService.Create(template); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, template)
}

// GetByID godoc
// @Summary Get a template by ID
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} models.MessageTemplate
// @Router /templates/{id} [get]
// @Security ApiKeyAuth
func (h *TemplateHandler) GetByID(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	template, err := h.templateRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Template not found"})
	}
	return c.JSON(http.StatusOK, template)
}

// Update godoc
// @Summary Update a template
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param template body TemplateRequest true "Template data"
// @Success 200 {object} models.MessageTemplate
// @Router /templates/{id} [put]
// @Security ApiKeyAuth
func (h *TemplateHandler) Update(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	var req TemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	template, err := h.templateRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Template not found"})
	}

	if req.Name != "" {
		template.Name = req.Name
	}
	if req.Content != "" {
		template.Content = req.Content
	}
	template.Category = req.Category
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	if err := h.templateService.Update(template); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, template)
}

// Delete godoc
// @Summary Delete a template
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]string
// @Router /templates/{id} [delete]
// @Security ApiKeyAuth
func (h *TemplateHandler) Delete(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	if err := h.templateRepo.Delete(id, workspaceID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Template not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Template deleted"})
}

// Render godoc
// @Summary Render a template with variables
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body RenderTemplateRequest true "Variable values"
// @Success 200 {object} map[string]string
// @Router /templates/{id}/render [post]
// @Security ApiKeyAuth
func (h *TemplateHandler) Render(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	var req RenderTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	rendered, err := h.templateService.Render(id, workspaceID, req.Variables)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Template not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"rendered": rendered})
}
