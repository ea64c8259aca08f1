package models

import (
	"time"

	"github.com/google/uuid"
)

// RateLimitWindow is one minute-aligned request counter per workspace.
// Rows are incremented with an atomic upsert and pruned periodically;
// the key is self-describing so pruning is not safety-critical.
type RateLimitWindow struct {
	BaseModel
	WorkspaceID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rate_limits_workspace_window" json:"workspace_id"`
	WindowStart  time.Time `gorm:"not null;uniqueIndex:idx_rate_limits_workspace_window" json:"window_start"`
	RequestCount int       `gorm:"default:0" json:"request_count"`
}
