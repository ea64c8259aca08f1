package repo

import (
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookConfigRepository handles webhook endpoint configuration
type WebhookConfigRepository struct {
	db *gorm.DB
}

// NewWebhookConfigRepository creates a new webhook config repository
func NewWebhookConfigRepository(db *gorm.DB) *WebhookConfigRepository {
	return &WebhookConfigRepository{db: db}
}

// GetByWorkspace gets a workspace's webhook config regardless of state
func (r *WebhookConfigRepository) GetByWorkspace(workspaceID uuid.UUID) (*models.WebhookConfig, error) {
	var config models.WebhookConfig
	err := r.db.Where("workspace_id = ?", workspaceID).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// GetActive gets a workspace's webhook config only when enabled
func (r *WebhookConfigRepository) GetActive(workspaceID uuid.UUID) (*models.WebhookConfig, error) {
	var config models.WebhookConfig
	err := r.db.Where("workspace_id = ? AND is_active = true", workspaceID).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Upsert creates or replaces the single webhook config per workspace.
// Re-registering resets the failure counter.
func (r *WebhookConfigRepository) Upsert(config *models.WebhookConfig) error {
	var existing models.WebhookConfig
	err := r.db.Where("workspace_id = ?", config.WorkspaceID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(config).Error
	}
	if err != nil {
		return err
	}

	config.ID = existing.ID
	config.CreatedAt = existing.CreatedAt
	config.FailureCount = 0
	return r.db.Save(config).Error
}

// Delete removes a workspace's webhook config
func (r *WebhookConfigRepository) Delete(workspaceID uuid.UUID) error {
	result := r.db.Where("workspace_id = ?", workspaceID).Delete(&models.WebhookConfig{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementFailure bumps the failure counter atomically and returns the
// post-increment value so the caller can apply the disable threshold.
func (r *WebhookConfigRepository) IncrementFailure(id uuid.UUID) (int, error) {
	var count int
	err := r.db.Raw(`
		UPDATE webhook_configs
		SET failure_count = failure_count + 1, updated_at = NOW()
		WHERE id = ?
		RETURNING failure_count
	`, id).Scan(&count).Error
	return count, err
}

// ResetFailure clears the failure counter after a successful delivery
func (r *WebhookConfigRepository) ResetFailure(id uuid.UUID) error {
	return r.db.Model(&models.WebhookConfig{}).
		Where("id = ? AND failure_count > 0", id).
		Update("failure_count", 0).Error
}

// Disable turns a webhook off, keeping the config for manual re-enable
func (r *WebhookConfigRepository) Disable(id uuid.UUID) error {
	return r.db.Model(&models.WebhookConfig{}).Where("id = ?", id).
		Update("is_active", false).Error
}

// Enable re-activates a webhook and clears its failure history
func (r *WebhookConfigRepository) Enable(id uuid.UUID) error {
	return r.db.Model(&models.WebhookConfig{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":     true,
		"failure_count": 0,
	}).Error
}

// TouchTriggered records the last successful delivery time
func (r *WebhookConfigRepository) TouchTriggered(id uuid.UUID) error {
	return r.db.Model(&models.WebhookConfig{}).Where("id = ?", id).
		Update("last_triggered_at", time.Now()).Error
}
