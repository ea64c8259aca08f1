package repo

import (
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduledMessageRepository handles scheduled message data access
type ScheduledMessageRepository struct {
	db *gorm.DB
}

// NewScheduledMessageRepository creates a new scheduled message repository
func NewScheduledMessageRepository(db *gorm.DB) *ScheduledMessageRepository {
	return &ScheduledMessageRepository{db: db}
}

// Create creates a new scheduled message
func (r *ScheduledMessageRepository) Create(msg *models.ScheduledMessage) error {
	return r.db.Create(msg).Error
}

// GetByID gets a scheduled message by ID and workspace
func (r *ScheduledMessageRepository) GetByID(id, workspaceID uuid.UUID) (*models.ScheduledMessage, error) {
	var msg models.ScheduledMessage
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindDue returns due pending messages whose account is connected,
// oldest first
func (r *ScheduledMessageRepository) FindDue(now time.Time, limit int) ([]models.ScheduledMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var msgs []models.ScheduledMessage
	err := r.db.
		Joins("JOIN accounts ON accounts.id = scheduled_messages.account_id AND accounts.deleted_at IS NULL").
		Where("scheduled_messages.status = ? AND scheduled_messages.scheduled_at <= ? AND accounts.status = ?",
			models.ScheduledStatusPending, now, models.AccountStatusConnected).
		Order("scheduled_messages.scheduled_at ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// MarkSent records a successful dispatch
func (r *ScheduledMessageRepository) MarkSent(id uuid.UUID, messageID string) error {
	return r.db.Model(&models.ScheduledMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     models.ScheduledStatusSent,
		"message_id": messageID,
		"sent_at":    time.Now(),
	}).Error
}

// MarkFailed records a failed dispatch with the provider error
func (r *ScheduledMessageRepository) MarkFailed(id uuid.UUID, errMsg string) error {
	return r.db.Model(&models.ScheduledMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        models.ScheduledStatusFailed,
		"error_message": errMsg,
	}).Error
}

// Cancel flips a pending message to cancelled. Messages already picked
// up by the sweep are not cancellable.
func (r *ScheduledMessageRepository) Cancel(id, workspaceID uuid.UUID) error {
	result := r.db.Model(&models.ScheduledMessage{}).
		Where("id = ? AND workspace_id = ? AND status = ?", id, workspaceID, models.ScheduledStatusPending).
		Update("status", models.ScheduledStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByWorkspace lists scheduled messages with pagination
func (r *ScheduledMessageRepository) ListByWorkspace(workspaceID uuid.UUID, status string, limit, offset int) (models.PaginationResult[models.ScheduledMessage], error) {
	if limit <= 0 {
		limit = 100
	}

	query := r.db.Model(&models.ScheduledMessage{}).Where("workspace_id = ?", workspaceID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return models.PaginationResult[models.ScheduledMessage]{}, err
	}

	var msgs []models.ScheduledMessage
	err := query.Order("scheduled_at DESC").
		Limit(limit).Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return models.PaginationResult[models.ScheduledMessage]{}, err
	}

	page := (offset / limit) + 1
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return models.PaginationResult[models.ScheduledMessage]{
		Data:       msgs,
		Total:      total,
		Page:       page,
		PerPage:    limit,
		TotalPages: totalPages,
	}, nil
}

// DeleteOlderThan prunes terminal scheduled messages past retention
func (r *ScheduledMessageRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Unscoped().
		Where("status IN ? AND updated_at < ?",
			[]string{models.ScheduledStatusSent, models.ScheduledStatusFailed, models.ScheduledStatusCancelled},
			cutoff).
		Delete(&models.ScheduledMessage{})
	return result.RowsAffected, result.Error
}

// BroadcastRepository handles broadcast data access
type BroadcastRepository struct {
	db *gorm.DB
}

// NewBroadcastRepository creates a new broadcast repository
func NewBroadcastRepository(db *gorm.DB) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

// Create creates a new broadcast
func (r *BroadcastRepository) Create(b *models.Broadcast) error {
	return r.db.Create(b).Error
}

// GetByID gets a broadcast by ID and workspace
func (r *BroadcastRepository) GetByID(id, workspaceID uuid.UUID) (*models.Broadcast, error) {
	var b models.Broadcast
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindDue returns due scheduled broadcasts whose account is connected,
// oldest first. Campaigns on a disconnected account stay queued until
// it comes back.
func (r *BroadcastRepository) FindDue(now time.Time, limit int) ([]models.Broadcast, error) {
	if limit <= 0 {
		limit = 10
	}
	var broadcasts []models.Broadcast
	err := r.db.
		Joins("JOIN accounts ON accounts.id = broadcasts.account_id AND accounts.deleted_at IS NULL").
		Where("broadcasts.status = ? AND broadcasts.scheduled_at <= ? AND accounts.status = ?",
			models.BroadcastStatusScheduled, now, models.AccountStatusConnected).
		Order("broadcasts.scheduled_at ASC").
		Limit(limit).
		Find(&broadcasts).Error
	return broadcasts, err
}

// Claim transitions a broadcast from scheduled to sending. The
// conditional update makes overlapping sweeps safe: only one caller
// sees RowsAffected == 1.
func (r *BroadcastRepository) Claim(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.Broadcast{}).
		Where("id = ? AND status = ?", id, models.BroadcastStatusScheduled).
		Updates(map[string]interface{}{
			"status":     models.BroadcastStatusSending,
			"started_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetTotalRecipients records the resolved recipient count before fan-out
func (r *BroadcastRepository) SetTotalRecipients(id uuid.UUID, total int) error {
	return r.db.Model(&models.Broadcast{}).Where("id = ?", id).
		Update("total_recipients", total).Error
}

// IncrementSent bumps the sent counter atomically
func (r *BroadcastRepository) IncrementSent(id uuid.UUID) error {
	return r.db.Model(&models.Broadcast{}).Where("id = ?", id).
		Update("sent_count", gorm.Expr("sent_count + 1")).Error
}

// IncrementFailed bumps the failed counter atomically
func (r *BroadcastRepository) IncrementFailed(id uuid.UUID) error {
	return r.db.Model(&models.Broadcast{}).Where("id = ?", id).
		Update("failed_count", gorm.Expr("failed_count + 1")).Error
}

// MarkCompleted finalizes a broadcast after fan-out
func (r *BroadcastRepository) MarkCompleted(id uuid.UUID) error {
	return r.db.Model(&models.Broadcast{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       models.BroadcastStatusCompleted,
		"completed_at": time.Now(),
	}).Error
}

// MarkFailed marks a broadcast that could not run at all
func (r *BroadcastRepository) MarkFailed(id uuid.UUID) error {
	return r.db.Model(&models.Broadcast{}).Where("id = ?", id).
		Update("status", models.BroadcastStatusFailed).Error
}

// Update updates a broadcast while it is still editable
func (r *BroadcastRepository) Update(b *models.Broadcast) error {
	result := r.db.Model(&models.Broadcast{}).
		Where("id = ? AND workspace_id = ? AND status IN ?", b.ID, b.WorkspaceID,
			[]string{models.BroadcastStatusDraft, models.BroadcastStatusScheduled}).
		Updates(map[string]interface{}{
			"name":            b.Name,
			"message":         b.Message,
			"media_url":       b.MediaURL,
			"media_type":      b.MediaType,
			"target_type":     b.TargetType,
			"target_phones":   b.TargetPhones,
			"target_group_id": b.TargetGroupID,
			"scheduled_at":    b.ScheduledAt,
			"status":          b.Status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a broadcast that has not started sending
func (r *BroadcastRepository) Delete(id, workspaceID uuid.UUID) error {
	result := r.db.Where("id = ? AND workspace_id = ? AND status IN ?", id, workspaceID,
		[]string{models.BroadcastStatusDraft, models.BroadcastStatusScheduled}).
		Delete(&models.Broadcast{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByWorkspace lists broadcasts with pagination
func (r *BroadcastRepository) ListByWorkspace(workspaceID uuid.UUID, status string, limit, offset int) (models.PaginationResult[models.Broadcast], error) {
	if limit <= 0 {
		limit = 100
	}

	query := r.db.Model(&models.Broadcast{}).Where("workspace_id = ?", workspaceID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return models.PaginationResult[models.Broadcast]{}, err
	}

	var broadcasts []models.Broadcast
	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&broadcasts).Error
	if err != nil {
		return models.PaginationResult[models.Broadcast]{}, err
	}

	page := (offset / limit) + 1
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return models.PaginationResult[models.Broadcast]{
		Data:       broadcasts,
		Total:      total,
		Page:       page,
		PerPage:    limit,
		TotalPages: totalPages,
	}, nil
}
