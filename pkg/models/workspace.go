package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace represents an isolation unit owning accounts, rules, contacts
// and quotas. MaxAccounts and RateLimitPerMinute are derived externally
// from subscription records and pushed in; this service only reads them.
type Workspace struct {
	BaseModel
	Name               string `gorm:"not null" json:"name" validate:"required"`
	Slug               string `gorm:"unique;not null" json:"slug" validate:"required"`
	MaxAccounts        int    `gorm:"default:1" json:"max_accounts"`
	RateLimitPerMinute int    `gorm:"default:60;check:rate_limit_per_minute >= 0" json:"rate_limit_per_minute"`
	IsActive           bool   `gorm:"default:true" json:"is_active"`
}

// APIKey resolves a caller to a workspace. Only the SHA-256 digest of the
// key is stored.
type APIKey struct {
	BaseModel
	WorkspaceID uuid.UUID  `gorm:"type:uuid;index;not null;constraint:OnDelete:RESTRICT" json:"workspace_id"`
	Name        string     `gorm:"not null" json:"name" validate:"required"`
	KeyHash     string     `gorm:"size:64;unique;not null" json:"-"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastUsedAt  *time.Time `json:"last_used_at"`

	// Relations
	Workspace *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
}
