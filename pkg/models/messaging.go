package models

import (
	"time"

	"github.com/google/uuid"
)

// Message statuses as reported by the provider
const (
	MessageStatusPending   = "pending"
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
	MessageStatusFailed    = "failed"
	MessageStatusReceived  = "received"
)

// Message directions
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Contact represents a phone number the workspace has exchanged messages
// with. Created on first inbound/outbound traffic (find-or-create).
type Contact struct {
	BaseWorkspaceModel
	PhoneNumber   string     `gorm:"not null;uniqueIndex:idx_contacts_workspace_phone" json:"phone_number" validate:"required"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Tags          StringList `gorm:"type:jsonb;default:'[]'" json:"tags"`
	CustomFields  StringMap  `gorm:"type:jsonb;default:'{}'" json:"custom_fields"`
	Notes         string     `gorm:"type:text" json:"notes"`
	IsBlocked     bool       `gorm:"default:false" json:"is_blocked"`
	MessageCount  int        `gorm:"default:0" json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at"`
}

// MessageLog records every message sent or received through the gateway
type MessageLog struct {
	BaseWorkspaceModel
	AccountID    uuid.UUID  `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"account_id"`
	MessageID    string     `gorm:"index" json:"message_id"` // provider message id
	Direction    string     `gorm:"not null" json:"direction"`
	FromNumber   string     `json:"from_number"`
	ToNumber     string     `json:"to_number"`
	MessageType  string     `gorm:"not null;default:'text'" json:"message_type"` // text, image, document, video, audio
	Content      string     `gorm:"type:text" json:"content"`
	MediaURL     string     `json:"media_url,omitempty"`
	Caption      string     `json:"caption,omitempty"`
	Status       string     `gorm:"default:'pending'" json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	IsGroup      bool       `gorm:"default:false" json:"is_group"`
	SentAt       *time.Time `json:"sent_at"`
	DeliveredAt  *time.Time `json:"delivered_at"`
	ReadAt       *time.Time `json:"read_at"`

	// Relations
	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// Conversation turn roles
const (
	ConversationRoleUser      = "user"
	ConversationRoleAssistant = "assistant"
)

// ConversationLog stores one AI conversation turn for a contact. The last
// N rows form the memory window fed back to the model.
type ConversationLog struct {
	BaseWorkspaceModel
	AccountID    uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"account_id"`
	ContactPhone string    `gorm:"size:50;not null;index" json:"contact_phone"`
	Role         string    `gorm:"not null" json:"role"` // user, assistant
	Content      string    `gorm:"type:text;not null" json:"content"`
}

// MessageTemplate represents a reusable message with {{var}} placeholders
type MessageTemplate struct {
	BaseWorkspaceModel
	Name       string     `gorm:"not null;uniqueIndex:idx_templates_workspace_name" json:"name" validate:"required"`
	Content    string     `gorm:"not null;type:text" json:"content" validate:"required"`
	Variables  StringList `gorm:"type:jsonb;default:'[]'" json:"variables"` // extracted from content
	Category   string     `json:"category"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	UsageCount int        `gorm:"default:0" json:"usage_count"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
