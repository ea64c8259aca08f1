package models

import (
	"time"

	"github.com/google/uuid"
)

// Scheduled message statuses. Sent, failed and cancelled are terminal.
const (
	ScheduledStatusPending   = "pending"
	ScheduledStatusSent      = "sent"
	ScheduledStatusFailed    = "failed"
	ScheduledStatusCancelled = "cancelled"
)

// Broadcast statuses
const (
	BroadcastStatusDraft     = "draft"
	BroadcastStatusScheduled = "scheduled"
	BroadcastStatusSending   = "sending"
	BroadcastStatusCompleted = "completed"
	BroadcastStatusFailed    = "failed"
)

// Broadcast target types
const (
	BroadcastTargetCustom      = "custom"
	BroadcastTargetAllContacts = "all_contacts"
	BroadcastTargetGroup       = "group"
)

// ScheduledMessage is a single message queued for a future sweep
type ScheduledMessage struct {
	BaseWorkspaceModel
	AccountID    uuid.UUID  `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"account_id"`
	Recipient    string     `gorm:"not null" json:"recipient" validate:"required"`
	Message      string     `gorm:"type:text;not null" json:"message" validate:"required"`
	MediaURL     string     `json:"media_url,omitempty"`
	MediaType    string     `json:"media_type,omitempty"`
	ScheduledAt  time.Time  `gorm:"not null;index" json:"scheduled_at" validate:"required"`
	Status       string     `gorm:"default:'pending';index" json:"status"`
	MessageID    string     `json:"message_id,omitempty"` // provider id once sent
	ErrorMessage string     `json:"error_message,omitempty"`
	SentAt       *time.Time `json:"sent_at"`

	// Relations
	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// Broadcast is a bulk campaign. Once a sweep claims it into "sending" it
// runs to completion; there is no mid-flight cancellation.
type Broadcast struct {
	BaseWorkspaceModel
	AccountID       uuid.UUID  `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"account_id"`
	Name            string     `json:"name"`
	Message         string     `gorm:"type:text;not null" json:"message" validate:"required"`
	MediaURL        string     `json:"media_url,omitempty"`
	MediaType       string     `json:"media_type,omitempty"`
	TargetType      string     `gorm:"not null" json:"target_type" validate:"required,oneof=custom all_contacts group"`
	TargetPhones    StringList `gorm:"type:jsonb;default:'[]'" json:"target_phones"`
	TargetGroupID   string     `json:"target_group_id,omitempty"`
	Status          string     `gorm:"default:'draft';index" json:"status"`
	ScheduledAt     *time.Time `gorm:"index" json:"scheduled_at"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	TotalRecipients int        `gorm:"default:0" json:"total_recipients"`
	SentCount       int        `gorm:"default:0" json:"sent_count"`
	FailedCount     int        `gorm:"default:0" json:"failed_count"`

	// Relations
	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}
