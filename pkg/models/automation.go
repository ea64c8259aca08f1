package models

import "github.com/google/uuid"

// Rule trigger types
const (
	TriggerKeyword       = "keyword"
	TriggerExactMatch    = "exact_match"
	TriggerContains      = "contains"
	TriggerRegex         = "regex"
	TriggerBusinessHours = "business_hours"
	TriggerWelcome       = "welcome"
	TriggerFallback      = "fallback"
)

// Rule reply types
const (
	ReplyTypeText     = "text"
	ReplyTypeTemplate = "template"
)

// AutoReplyRule maps a trigger condition to a reply. AccountID nil means
// the rule applies to every account in the workspace. Rules are evaluated
// by priority desc, then creation order.
type AutoReplyRule struct {
	BaseWorkspaceModel
	AccountID             *uuid.UUID     `gorm:"type:uuid;index;constraint:OnDelete:CASCADE" json:"account_id"`
	Name                  string         `gorm:"not null" json:"name" validate:"required"`
	TriggerType           string         `gorm:"not null" json:"trigger_type" validate:"required,oneof=keyword exact_match contains regex business_hours welcome fallback"`
	TriggerValue          string         `json:"trigger_value"`
	ReplyMessage          string         `gorm:"type:text" json:"reply_message"`
	ReplyType             string         `gorm:"default:'text'" json:"reply_type"` // text, template
	TemplateID            *uuid.UUID     `gorm:"type:uuid" json:"template_id"`
	Priority              int            `gorm:"default:0;index" json:"priority"`
	DelaySeconds          int            `gorm:"default:0" json:"delay_seconds"`
	MaxTriggersPerContact *int           `json:"max_triggers_per_contact"`
	Conditions            RuleConditions `gorm:"type:jsonb;default:'{}'" json:"conditions"`
	IsActive              bool           `gorm:"default:true" json:"is_active"`
}

// AutoReplyTrigger counts how many times a rule fired for a contact,
// backing max_triggers_per_contact enforcement.
type AutoReplyTrigger struct {
	BaseWorkspaceModel
	RuleID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_triggers_rule_contact;constraint:OnDelete:CASCADE" json:"rule_id"`
	ContactPhone string    `gorm:"size:50;not null;uniqueIndex:idx_triggers_rule_contact" json:"contact_phone"`
	TriggerCount int       `gorm:"default:0" json:"trigger_count"`
}

// AIConfig holds the language-model fallback configuration. At most one
// effective config per (workspace, account); a workspace-wide row
// (AccountID nil) is the default when no account-scoped row exists.
type AIConfig struct {
	BaseWorkspaceModel
	AccountID         *uuid.UUID            `gorm:"type:uuid;index;constraint:OnDelete:CASCADE" json:"account_id"`
	IsEnabled         bool                  `gorm:"default:false" json:"is_enabled"`
	AutoReplyEnabled  bool                  `gorm:"default:false" json:"auto_reply_enabled"`
	Model             string                `gorm:"default:'gpt-4'" json:"model"`
	SystemPrompt      string                `gorm:"type:text" json:"system_prompt"`
	Temperature       float32               `gorm:"default:0.7" json:"temperature"`
	MaxTokens         int                   `gorm:"default:500" json:"max_tokens"`
	ReplyDelaySeconds int                   `gorm:"default:2" json:"reply_delay_seconds"`
	FallbackMessage   string                `gorm:"type:text" json:"fallback_message"`
	MemoryEnabled     bool                  `gorm:"default:true" json:"memory_enabled"`
	MemoryMessages    int                   `gorm:"default:10" json:"memory_messages"`
	BusinessHoursOnly bool                  `gorm:"default:false" json:"business_hours_only"`
	BusinessHours     BusinessHoursSchedule `gorm:"type:jsonb;default:'{}'" json:"business_hours"`
}
