package repo

import (
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactRepository handles contact data access
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// GetByID gets a contact by ID and workspace
func (r *ContactRepository) GetByID(id, workspaceID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetByPhone gets a contact by workspace and phone number
func (r *ContactRepository) GetByPhone(workspaceID uuid.UUID, phoneNumber string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where("workspace_id = ? AND phone_number = ?", workspaceID, phoneNumber).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindOrCreate returns the contact for a phone number, creating it on
// first traffic
func (r *ContactRepository) FindOrCreate(workspaceID uuid.UUID, phoneNumber, name string) (*models.Contact, error) {
	contact, err := r.GetByPhone(workspaceID, phoneNumber)
	if err == nil {
		return contact, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	contact = &models.Contact{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		PhoneNumber:        phoneNumber,
		Name:               name,
		Tags:               models.StringList{},
		CustomFields:       models.StringMap{},
	}
	if err := r.db.Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// Create creates a new contact
func (r *ContactRepository) Create(contact *models.Contact) error {
	return r.db.Create(contact).Error
}

// Update updates a contact
func (r *ContactRepository) Update(contact *models.Contact) error {
	return r.db.Save(contact).Error
}

// Delete deletes a contact (soft delete)
func (r *ContactRepository) Delete(id, workspaceID uuid.UUID) error {
	result := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).Delete(&models.Contact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ContactListOptions filters contact listings
type ContactListOptions struct {
	Search    string
	Tag       string
	IsBlocked *bool
	Limit     int
	Offset    int
}

// ListByWorkspace lists contacts with pagination and filters
func (r *ContactRepository) ListByWorkspace(workspaceID uuid.UUID, opts ContactListOptions) (models.PaginationResult[models.Contact], error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	query := r.db.Model(&models.Contact{}).Where("workspace_id = ?", workspaceID)
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where("name ILIKE ? OR phone_number ILIKE ? OR email ILIKE ?", pattern, pattern, pattern)
	}
	if opts.Tag != "" {
		query = query.Where("tags @> ?", `["`+opts.Tag+`"]`)
	}
	if opts.IsBlocked != nil {
		query = query.Where("is_blocked = ?", *opts.IsBlocked)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return models.PaginationResult[models.Contact]{}, err
	}

	var contacts []models.Contact
	err := query.Order("last_message_at DESC NULLS LAST").
		Limit(opts.Limit).Offset(opts.Offset).
		Find(&contacts).Error
	if err != nil {
		return models.PaginationResult[models.Contact]{}, err
	}

	page := (opts.Offset / opts.Limit) + 1
	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))

	return models.PaginationResult[models.Contact]{
		Data:       contacts,
		Total:      total,
		Page:       page,
		PerPage:    opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListAll returns every contact in a workspace, for export
func (r *ContactRepository) ListAll(workspaceID uuid.UUID) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&contacts).Error
	return contacts, err
}

// ListPhonesForBroadcast returns all non-blocked contact phone numbers
// in insertion order
func (r *ContactRepository) ListPhonesForBroadcast(workspaceID uuid.UUID) ([]string, error) {
	var phones []string
	err := r.db.Model(&models.Contact{}).
		Where("workspace_id = ? AND is_blocked = false", workspaceID).
		Order("created_at ASC").
		Pluck("phone_number", &phones).Error
	return phones, err
}

// IncrementMessageStats bumps the message counter and last-message time
// atomically at the store level
func (r *ContactRepository) IncrementMessageStats(workspaceID uuid.UUID, phoneNumber string) error {
	return r.db.Model(&models.Contact{}).
		Where("workspace_id = ? AND phone_number = ?", workspaceID, phoneNumber).
		Updates(map[string]interface{}{
			"message_count":   gorm.Expr("message_count + 1"),
			"last_message_at": time.Now(),
		}).Error
}

// Stats summarizes the contact base of a workspace
func (r *ContactRepository) Stats(workspaceID uuid.UUID) (*models.ContactStats, error) {
	var stats models.ContactStats
	err := r.db.Raw(`
		SELECT
			COUNT(*) AS total_contacts,
			COUNT(*) FILTER (WHERE is_blocked) AS blocked_contacts,
			COUNT(*) FILTER (WHERE last_message_at >= NOW() - INTERVAL '7 days') AS active_contacts7d,
			COUNT(*) FILTER (WHERE last_message_at >= NOW() - INTERVAL '30 days') AS active_contacts30d
		FROM contacts
		WHERE workspace_id = ? AND deleted_at IS NULL
	`, workspaceID).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
