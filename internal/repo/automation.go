package repo

import (
	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AutoReplyRuleRepository handles auto-reply rule data access
type AutoReplyRuleRepository struct {
	db *gorm.DB
}

// NewAutoReplyRuleRepository creates a new rule repository
func NewAutoReplyRuleRepository(db *gorm.DB) *AutoReplyRuleRepository {
	return &AutoReplyRuleRepository{db: db}
}

// GetByID gets a rule by ID and workspace
func (r *AutoReplyRuleRepository) GetByID(id, workspaceID uuid.UUID) (*models.AutoReplyRule, error) {
	var rule models.AutoReplyRule
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListActive returns the merged, ordered rule set for an account:
// workspace-wide rules plus rules scoped to this account, priority desc
// then creation order. The ordering must be stable across calls.
func (r *AutoReplyRuleRepository) ListActive(workspaceID, accountID uuid.UUID) ([]models.AutoReplyRule, error) {
	var rules []models.AutoReplyRule
	err := r.db.Where("workspace_id = ? AND is_active = true AND (account_id IS NULL OR account_id = ?)", workspaceID, accountID).
		Order("priority DESC, created_at ASC").
		Find(&rules).Error
	return rules, err
}

// ListByWorkspace lists all rules for a workspace
func (r *AutoReplyRuleRepository) ListByWorkspace(workspaceID uuid.UUID, limit, offset int) ([]models.AutoReplyRule, error) {
	if limit <= 0 {
		limit = 100
	}
	var rules []models.AutoReplyRule
	err := r.db.Where("workspace_id = ?", workspaceID).
		Order("priority DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rules).Error
	return rules, err
}

// Create creates a new rule
func (r *AutoReplyRuleRepository) Create(rule *models.AutoReplyRule) error {
	return r.db.Create(rule).Error
}

// Update updates a rule
func (r *AutoReplyRuleRepository) Update(rule *models.AutoReplyRule) error {
	return r.db.Save(rule).Error
}

// Delete deletes a rule
func (r *AutoReplyRuleRepository) Delete(id, workspaceID uuid.UUID) error {
	result := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).Delete(&models.AutoReplyRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetTriggerCount returns how many times a rule already fired for a
// contact
func (r *AutoReplyRuleRepository) GetTriggerCount(ruleID uuid.UUID, contactPhone string) (int, error) {
	var trigger models.AutoReplyTrigger
	err := r.db.Where("rule_id = ? AND contact_phone = ?", ruleID, contactPhone).First(&trigger).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return trigger.TriggerCount, nil
}

// RecordTrigger increments the per-contact trigger counter with an
// atomic upsert
func (r *AutoReplyRuleRepository) RecordTrigger(workspaceID, ruleID uuid.UUID, contactPhone string) error {
	return r.db.Exec(`
		INSERT INTO auto_reply_triggers (id, workspace_id, rule_id, contact_phone, trigger_count, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, 1, NOW(), NOW())
		ON CONFLICT (rule_id, contact_phone)
		DO UPDATE SET trigger_count = auto_reply_triggers.trigger_count + 1, updated_at = NOW()
	`, workspaceID, ruleID, contactPhone).Error
}

// AIConfigRepository handles AI configuration data access
type AIConfigRepository struct {
	db *gorm.DB
}

// NewAIConfigRepository creates a new AI config repository
func NewAIConfigRepository(db *gorm.DB) *AIConfigRepository {
	return &AIConfigRepository{db: db}
}

// Resolve returns the effective config for (workspace, account): the
// account-scoped row when present, else the workspace-wide default.
func (r *AIConfigRepository) Resolve(workspaceID, accountID uuid.UUID) (*models.AIConfig, error) {
	var config models.AIConfig
	err := r.db.Where("workspace_id = ? AND account_id = ?", workspaceID, accountID).First(&config).Error
	if err == nil {
		return &config, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	err = r.db.Where("workspace_id = ? AND account_id IS NULL", workspaceID).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Upsert creates or updates the config for a (workspace, account) pair
func (r *AIConfigRepository) Upsert(config *models.AIConfig) error {
	var existing models.AIConfig
	query := r.db.Where("workspace_id = ?", config.WorkspaceID)
	if config.AccountID != nil {
		query = query.Where("account_id = ?", *config.AccountID)
	} else {
		query = query.Where("account_id IS NULL")
	}

	err := query.First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(config).Error
	}
	if err != nil {
		return err
	}

	config.ID = existing.ID
	config.CreatedAt = existing.CreatedAt
	return r.db.Save(config).Error
}

// ConversationLogRepository handles AI conversation turn data access
type ConversationLogRepository struct {
	db *gorm.DB
}

// NewConversationLogRepository creates a new conversation log repository
func NewConversationLogRepository(db *gorm.DB) *ConversationLogRepository {
	return &ConversationLogRepository{db: db}
}

// Append stores one conversation turn
func (r *ConversationLogRepository) Append(log *models.ConversationLog) error {
	return r.db.Create(log).Error
}

// History returns the last n turns for a contact in chronological order
func (r *ConversationLogRepository) History(workspaceID, accountID uuid.UUID, contactPhone string, n int) ([]models.ConversationLog, error) {
	if n <= 0 {
		return nil, nil
	}

	var logs []models.ConversationLog
	err := r.db.Where("workspace_id = ? AND account_id = ? AND contact_phone = ?", workspaceID, accountID, contactPhone).
		Order("created_at DESC").
		Limit(n).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	// reverse into chronological order
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// Clear deletes all turns for a contact
func (r *ConversationLogRepository) Clear(workspaceID uuid.UUID, contactPhone string) error {
	return r.db.Where("workspace_id = ? AND contact_phone = ?", workspaceID, contactPhone).
		Delete(&models.ConversationLog{}).Error
}
