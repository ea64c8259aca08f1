package handlers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nurfahmi/wa-gateway/internal/http/middleware"
	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// WorkspaceHandler handles operator-level workspace management
type WorkspaceHandler struct {
	workspaceRepo *repo.WorkspaceRepository
	db            *gorm.DB
	adminToken    string
}

// NewWorkspaceHandler creates a new workspace handler. The admin token
// guards these endpoints; with an empty token they are disabled.
func NewWorkspaceHandler(workspaceRepo *repo.WorkspaceRepository, db *gorm.DB, adminToken string) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceRepo: workspaceRepo, db: db, adminToken: adminToken}
}

// CreateWorkspaceRequest represents the request to create a workspace
type CreateWorkspaceRequest struct {
	Name               string `json:"name" validate:"required"`
	Slug               string `json:"slug" validate:"required"`
	MaxAccounts        int    `json:"max_accounts"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute"`
}

// CreateAPIKeyRequest represents the request to issue an API key
type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *WorkspaceHandler) authorize(c echo.Context) bool {
	if h.adminToken == "" {
		c.JSON(http.StatusForbidden, map[string]string{"error": "Admin API is disabled"})
		return false
	}
	sent := c.Request().Header.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(sent), []byte(h.adminToken)) != 1 {
		c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid admin token"})
		return false
	}
	return true
}

// List godoc
// @Summary List workspaces
// @Tags admin
// @Produce json
// @Param limit query int false "Limit" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Workspace
// @Router /admin/workspaces [get]
func (h *WorkspaceHandler) List(c echo.Context) error {
	if !h.authorize(c) {
		return nil
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 100
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	workspaces, err := h.workspaceRepo.List(limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, workspaces)
}

// Create godoc
// @Summary Create a workspace
// @Tags admin
// @Accept json
// @Produce json
// @Param workspace body CreateWorkspaceRequest true "Workspace data"
// @Success 201 {object} models.Workspace
// @Router /admin/workspaces [post]
func (h *WorkspaceHandler) Create(c echo.Context) error {
	if !h.authorize(c) {
		return nil
	}

	var req CreateWorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Name == "" || req.Slug == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and slug are required"})
	}

	workspace := &models.Workspace{
		Name:               req.Name,
		Slug:               req.Slug,
		MaxAccounts:        req.MaxAccounts,
		RateLimitPerMinute: req.RateLimitPerMinute,
		IsActive:           true,
	}
	if workspace.MaxAccounts <= 0 {
		workspace.MaxAccounts = 1
	}
	if workspace.RateLimitPerMinute <= 0 {
		workspace.RateLimitPerMinute = 60
	}

	if err := h.workspaceRepo.Create(workspace); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, workspace)
}

// CreateAPIKey godoc
// @Summary Issue an API key for a workspace
// @Description The plaintext key is returned once and stored only as a hash
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param key body CreateAPIKeyRequest true "Key data"
// @Success 201 {object} map[string]string
// @Router /admin/workspaces/{id}/api-keys [post]
func (h *WorkspaceHandler) CreateAPIKey(c echo.Context) error {
	if !h.authorize(c) {
		return nil
	}

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	if _, err := h.workspaceRepo.GetByID(workspaceID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Workspace not found"})
	}

	var req CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Key generation failed"})
	}
	plaintext := fmt.Sprintf("wgk_%s", hex.EncodeToString(raw))

	apiKey := &models.APIKey{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		KeyHash:     middleware.HashAPIKey(plaintext),
		IsActive:    true,
	}
	if err := h.db.Create(apiKey).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"id":      apiKey.ID.String(),
		"api_key": plaintext,
	})
}
