package repo

import (
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateRepository handles message template data access
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// GetByID gets a template by ID and workspace
func (r *TemplateRepository) GetByID(id, workspaceID uuid.UUID) (*models.MessageTemplate, error) {
	var template models.MessageTemplate
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// GetByName gets a template by workspace and name
func (r *TemplateRepository) GetByName(workspaceID uuid.UUID, name string) (*models.MessageTemplate, error) {
	var template models.MessageTemplate
	err := r.db.Where("workspace_id = ? AND name = ?", workspaceID, name).First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// Create creates a new template
func (r *TemplateRepository) Create(template *models.MessageTemplate) error {
	return r.db.Create(template).Error
}

// Update updates a template
func (r *TemplateRepository) Update(template *models.MessageTemplate) error {
	return r.db.Save(template).Error
}

// Delete deletes a template (soft delete)
func (r *TemplateRepository) Delete(id, workspaceID uuid.UUID) error {
	result := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).Delete(&models.MessageTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByWorkspace lists templates, optionally filtered by category
func (r *TemplateRepository) ListByWorkspace(workspaceID uuid.UUID, category string, limit, offset int) ([]models.MessageTemplate, error) {
	if limit <= 0 {
		limit = 100
	}

	query := r.db.Where("workspace_id = ?", workspaceID)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var templates []models.MessageTemplate
	err := query.Order("name ASC").
		Limit(limit).Offset(offset).
		Find(&templates).Error
	return templates, err
}

// IncrementUsage bumps the usage counter atomically
func (r *TemplateRepository) IncrementUsage(id uuid.UUID) error {
	return r.db.Model(&models.MessageTemplate{}).Where("id = ?", id).Updates(map[string]interface{}{
		"usage_count":  gorm.Expr("usage_count + 1"),
		"last_used_at": time.Now(),
	}).Error
}
