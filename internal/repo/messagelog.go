package repo

import (
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageLogRepository handles message log data access
type MessageLogRepository struct {
	db *gorm.DB
}

// NewMessageLogRepository creates a new message log repository
func NewMessageLogRepository(db *gorm.DB) *MessageLogRepository {
	return &MessageLogRepository{db: db}
}

// Create creates a new message log row
func (r *MessageLogRepository) Create(log *models.MessageLog) error {
	return r.db.Create(log).Error
}

// GetByID gets a message log by ID and workspace
func (r *MessageLogRepository) GetByID(id, workspaceID uuid.UUID) (*models.MessageLog, error) {
	var log models.MessageLog
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// GetByMessageID resolves a log row by its provider message id
func (r *MessageLogRepository) GetByMessageID(messageID string) (*models.MessageLog, error) {
	var log models.MessageLog
	err := r.db.Where("message_id = ?", messageID).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// UpdateStatus updates a log row's delivery status and the matching
// timestamp column
func (r *MessageLogRepository) UpdateStatus(id uuid.UUID, status string, at time.Time) error {
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.MessageStatusSent:
		updates["sent_at"] = at
	case models.MessageStatusDelivered:
		updates["delivered_at"] = at
	case models.MessageStatusRead:
		updates["read_at"] = at
	}
	return r.db.Model(&models.MessageLog{}).Where("id = ?", id).Updates(updates).Error
}

// MessageListOptions filters message log listings
type MessageListOptions struct {
	AccountID *uuid.UUID
	Direction string
	Status    string
	Limit     int
	Offset    int
}

// ListByWorkspace lists message logs with pagination
func (r *MessageLogRepository) ListByWorkspace(workspaceID uuid.UUID, opts MessageListOptions) (models.PaginationResult[models.MessageLog], error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	query := r.db.Model(&models.MessageLog{}).Where("workspace_id = ?", workspaceID)
	if opts.AccountID != nil {
		query = query.Where("account_id = ?", *opts.AccountID)
	}
	if opts.Direction != "" {
		query = query.Where("direction = ?", opts.Direction)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return models.PaginationResult[models.MessageLog]{}, err
	}

	var logs []models.MessageLog
	err := query.Order("created_at DESC").
		Limit(opts.Limit).Offset(opts.Offset).
		Find(&logs).Error
	if err != nil {
		return models.PaginationResult[models.MessageLog]{}, err
	}

	page := (opts.Offset / opts.Limit) + 1
	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))

	return models.PaginationResult[models.MessageLog]{
		Data:       logs,
		Total:      total,
		Page:       page,
		PerPage:    opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// Stats summarizes message traffic over the last N days
func (r *MessageLogRepository) Stats(workspaceID uuid.UUID, days int) (*models.MessageStats, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	var stats models.MessageStats
	err := r.db.Raw(`
		SELECT
			COUNT(*) AS total_messages,
			COUNT(*) FILTER (WHERE direction = 'in') AS incoming,
			COUNT(*) FILTER (WHERE direction = 'out') AS outgoing,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed
		FROM message_logs
		WHERE workspace_id = ? AND created_at >= ? AND deleted_at IS NULL
	`, workspaceID, since).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
