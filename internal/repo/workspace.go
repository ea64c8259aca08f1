package repo

import (
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkspaceRepository handles workspace data access
type WorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// GetByID gets a workspace by ID
func (r *WorkspaceRepository) GetByID(id uuid.UUID) (*models.Workspace, error) {
	var workspace models.Workspace
	err := r.db.Where("id = ?", id).First(&workspace).Error
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// Create creates a new workspace
func (r *WorkspaceRepository) Create(workspace *models.Workspace) error {
	return r.db.Create(workspace).Error
}

// Update updates a workspace
func (r *WorkspaceRepository) Update(workspace *models.Workspace) error {
	return r.db.Save(workspace).Error
}

// List lists all workspaces
func (r *WorkspaceRepository) List(limit, offset int) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&workspaces).Error
	return workspaces, err
}

// GetByAPIKeyHash resolves the workspace owning an active API key
func (r *WorkspaceRepository) GetByAPIKeyHash(keyHash string) (*models.Workspace, *models.APIKey, error) {
	var key models.APIKey
	err := r.db.Where("key_hash = ? AND is_active = true", keyHash).First(&key).Error
	if err != nil {
		return nil, nil, err
	}

	workspace, err := r.GetByID(key.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	return workspace, &key, nil
}

// TouchAPIKey records when an API key was last used
func (r *WorkspaceRepository) TouchAPIKey(id uuid.UUID) error {
	return r.db.Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}
