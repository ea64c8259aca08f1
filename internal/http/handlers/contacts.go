package handlers

import (
	"net/http"
	"strconv"

	"github.com/nurfahmi/wa-gateway/internal/repo"
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ContactHandler handles contact operations
type ContactHandler struct {
	contactRepo *repo.ContactRepository
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactRepo *repo.ContactRepository) *ContactHandler {
	return &ContactHandler{contactRepo: contactRepo}
}

// ContactRequest represents the request to create or update a contact
type ContactRequest struct {
	PhoneNumber  string            `json:"phone_number" validate:"required"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Tags         []string          `json:"tags"`
	CustomFields map[string]string `json:"custom_fields"`
	Notes        string            `json:"notes"`
	IsBlocked    *bool             `json:"is_blocked"`
}

// List godoc
// @Summary List contacts
// @Tags contacts
// @Produce json
// @Param search query string false "Search name, phone or email"
// @Param tag query string false "Filter by tag"
// @Param blocked query bool false "Filter by blocked state"
// @Param limit query int false "Limit" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.PaginationResult[models.Contact]
// @Router /contacts [get]
// @Security ApiKeyAuth
func (h *ContactHandler) List(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	opts := repo.ContactListOptions{
		Search: c.QueryParam("search"),
		Tag:    c.QueryParam("tag"),
		Limit:  limit,
		Offset: offset,
	}
	if blockedParam := c.QueryParam("blocked"); blockedParam != "" {
		blocked := blockedParam == "true"
		opts.IsBlocked = &blocked
	}

	result, err := h.contactRepo.ListByWorkspace(workspaceID, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// Create godoc
// @Summary Create a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param contact body ContactRequest true "Contact data"
// @Success 201 {object} models.Contact
// @Router /contacts [post]
// @Security ApiKeyAuth
func (h *ContactHandler) Create(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.PhoneNumber == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "phone_number is required"})
	}

	contact := &models.Contact{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		PhoneNumber:        req.PhoneNumber,
		Name:               req.Name,
		Email:              req.Email,
		Tags:               req.Tags,
		CustomFields:       req.CustomFields,
		Notes:              req.Notes,
	}
	if contact.Tags == nil {
		contact.Tags = models.StringList{}
	}
	if contact.CustomFields == nil {
		contact.CustomFields = models.StringMap{}
	}

	if err := h.contactRepo.Create(contact); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, contact)
}

// GetByID godoc
// @Summary Get a contact by ID
// @Tags contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} models.Contact
// @Router /contacts/{id} [get]
// @Security ApiKeyAuth
func (h *ContactHandler) GetByID(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	contact, err := h.contactRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Contact not found"})
	}
	return c.JSON(http.StatusOK, contact)
}

// Update godoc
// @Summary Update a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param contact body ContactRequest true "Contact data"
// @Success 200 {object} models.Contact
// @Router /contacts/{id} [put]
// @Security ApiKeyAuth
func (h *ContactHandler) Update(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	contact, err := h.contactRepo.GetByID(id, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Contact not found"})
	}

	contact.Name = req.Name
	contact.Email = req.Email
	contact.Notes = req.Notes
	if req.PhoneNumber != "" {
		contact.PhoneNumber = req.PhoneNumber
	}
	if req.Tags != nil {
		contact.Tags = req.Tags
	}
	if req.CustomFields != nil {
		contact.CustomFields = req.CustomFields
	}
	if req.IsBlocked != nil {
		contact.IsBlocked = *req.IsBlocked
	}

	if err := h.contactRepo.Update(contact); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, contact)
}

// Delete godoc
// @Summary Delete a contact
// @Tags contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} map[string]string
// @Router /contacts/{id} [delete]
// @Security ApiKeyAuth
func (h *ContactHandler) Delete(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
	}

	if err := h.contactRepo.Delete(id, workspaceID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Contact deleted"})
}

// ImportContactsRequest represents a bulk contact import
type ImportContactsRequest struct {
	Contacts []ContactRequest `json:"contacts" validate:"required"`
}

// ImportResult reports the outcome of a bulk import
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// Import godoc
// @Summary Bulk import contacts
// @Description Upserts by phone number; existing contacts get name, tags and custom fields merged
// @Tags contacts
// @Accept json
// @Produce json
// @Param contacts body ImportContactsRequest true "Contacts to import"
// @Success 200 {object} ImportResult
// @Router /contacts/import [post]
// @Security ApiKeyAuth
func (h *ContactHandler) Import(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	var req ImportContactsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if len(req.Contacts) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "contacts is required"})
	}

	result := ImportResult{}
	for _, entry := range req.Contacts {
		if entry.PhoneNumber == "" {
			result.Skipped++
			continue
		}

		existing, err := h.contactRepo.GetByPhone(workspaceID, entry.PhoneNumber)
		if err == nil {
			if entry.Name != "" {
				existing.Name = entry.Name
			}
			if entry.Email != "" {
				existing.Email = entry.Email
			}
			if entry.Tags != nil {
				existing.Tags = entry.Tags
			}
			if entry.CustomFields != nil {
				existing.CustomFields = entry.CustomFields
			}
			if err := h.contactRepo.Update(existing); err != nil {
				result.Errors = append(result.Errors, entry.PhoneNumber+": "+err.Error())
				continue
			}
			result.Updated++
			continue
		}
		if err != gorm.ErrRecordNotFound {
			result.Errors = append(result.Errors, entry.PhoneNumber+": "+err.Error())
			continue
		}

		contact := &models.Contact{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
			PhoneNumber:        entry.PhoneNumber,
			Name:               entry.Name,
			Email:              entry.Email,
			Tags:               entry.Tags,
			CustomFields:       entry.CustomFields,
			Notes:              entry.Notes,
		}
		if contact.Tags == nil {
			contact.Tags = models.StringList{}
		}
		if contact.CustomFields == nil {
			contact.CustomFields = models.StringMap{}
		}
		if err := h.contactRepo.Create(contact); err != nil {
			result.Errors = append(result.Errors, entry.PhoneNumber+": "+err.Error())
			continue
		}
		result.Created++
	}

	return c.JSON(http.StatusOK, result)
}

// Export godoc
// @Summary Export all contacts
// @Tags contacts
// @Produce json
// @Success 200 {array} models.Contact
// @Router /contacts/export [get]
// @Security ApiKeyAuth
func (h *ContactHandler) Export(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	contacts, err := h.contactRepo.ListAll(workspaceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, contacts)
}

// Stats godoc
// @Summary Contact base statistics
// @Tags contacts
// @Produce json
// @Success 200 {object} models.ContactStats
// @Router /contacts/stats [get]
// @Security ApiKeyAuth
func (h *ContactHandler) Stats(c echo.Context) error {
	workspaceID, ok := c.Get("workspace_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "workspace_id not found in context"})
	}

	stats, err := h.contactRepo.Stats(workspaceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}
