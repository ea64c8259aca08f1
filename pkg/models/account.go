package models

import "time"

// Supported provider types
const (
	ProviderBaileys = "baileys"
)

// Account lifecycle states
const (
	AccountStatusConnecting   = "connecting"
	AccountStatusConnected    = "connected"
	AccountStatusDisconnected = "disconnected"
	AccountStatusFailed       = "failed"
)

// Account represents one paired messaging account under a workspace
type Account struct {
	BaseWorkspaceModel
	Name              string     `gorm:"not null" json:"name" validate:"required"`
	Provider          string     `gorm:"not null;default:'baileys'" json:"provider"` // baileys
	AccountIdentifier string     `gorm:"unique;not null" json:"account_identifier"`  // identifier used to address the provider
	Status            string     `gorm:"default:'connecting'" json:"status"`         // connecting, connected, disconnected, failed
	PhoneNumber       string     `json:"phone_number"`                               // last known E.164 number
	QRCode            string     `json:"qr_code,omitempty"`
	QRExpiresAt       *time.Time `json:"qr_expires_at,omitempty"`
	LastConnectedAt   *time.Time `json:"last_connected_at"`
}
