package repo

import (
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountRepository handles messaging account data access
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByIDAndWorkspace gets an account by ID and workspace ID for security
func (r *AccountRepository) GetByIDAndWorkspace(id, workspaceID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByIdentifier gets an account by its provider identifier (globally)
func (r *AccountRepository) GetByIdentifier(identifier string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("account_identifier = ?", identifier).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Create creates a new account
func (r *AccountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// Update updates an account
func (r *AccountRepository) Update(account *models.Account) error {
	return r.db.Save(account).Error
}

// UpdateStatus transitions account lifecycle state; the phone number is
// refreshed when the provider reports one.
func (r *AccountRepository) UpdateStatus(id uuid.UUID, status, phoneNumber string) error {
	updates := map[string]interface{}{"status": status}
	if phoneNumber != "" {
		updates["phone_number"] = phoneNumber
	}
	if status == models.AccountStatusConnected {
		updates["last_connected_at"] = time.Now()
		updates["qr_code"] = ""
		updates["qr_expires_at"] = nil
	}
	return r.db.Model(&models.Account{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateQR stores a fresh pairing code with its expiry
func (r *AccountRepository) UpdateQR(id uuid.UUID, qrCode string, expiresAt time.Time) error {
	return r.db.Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"qr_code":       qrCode,
		"qr_expires_at": expiresAt,
	}).Error
}

// Delete deletes an account (soft delete)
func (r *AccountRepository) Delete(id, workspaceID uuid.UUID) error {
	result := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).Delete(&models.Account{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByWorkspace lists accounts for a workspace
func (r *AccountRepository) ListByWorkspace(workspaceID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

// CountByWorkspace counts accounts for quota enforcement
func (r *AccountRepository) CountByWorkspace(workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Account{}).Where("workspace_id = ?", workspaceID).Count(&count).Error
	return count, err
}
