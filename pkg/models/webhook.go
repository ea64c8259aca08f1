package models

import (
	"time"

	"github.com/google/uuid"
)

// Webhook event vocabulary
const (
	EventMessageReceived    = "message.received"
	EventMessageStatus      = "message.status"
	EventConnectionUpdate   = "connection.update"
	EventQRCode             = "qr.code"
	EventWebhookTest        = "webhook.test"
	EventBroadcastCompleted = "broadcast.completed"
)

// WebhookFailureThreshold is the consecutive-failure count at which a
// webhook configuration is auto-disabled.
const WebhookFailureThreshold = 10

// WebhookConfig holds the single callback endpoint for a workspace
type WebhookConfig struct {
	BaseModel
	WorkspaceID     uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null;constraint:OnDelete:CASCADE" json:"workspace_id"`
	URL             string     `gorm:"not null" json:"url" validate:"required,url"`
	Secret          string     `gorm:"not null" json:"-"`
	Events          StringList `gorm:"type:jsonb;default:'[]'" json:"events"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	FailureCount    int        `gorm:"default:0" json:"failure_count"`
	LastTriggeredAt *time.Time `json:"last_triggered_at"`
}
