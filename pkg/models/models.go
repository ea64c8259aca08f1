package models

// PaginationResult represents paginated results
type PaginationResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// ContactStats summarizes the contact base of a workspace
type ContactStats struct {
	TotalContacts     int64 `json:"total_contacts"`
	BlockedContacts   int64 `json:"blocked_contacts"`
	ActiveContacts7d  int64 `json:"active_contacts_7d"`
	ActiveContacts30d int64 `json:"active_contacts_30d"`
}

// MessageStats summarizes message traffic over a period
type MessageStats struct {
	TotalMessages int64 `json:"total_messages"`
	Incoming      int64 `json:"incoming"`
	Outgoing      int64 `json:"outgoing"`
	Failed        int64 `json:"failed"`
}

// GetAllModels returns all models for GORM AutoMigrate
func GetAllModels() []interface{} {
	return []interface{}{
		// Core models
		&Workspace{},
		&APIKey{},
		&Account{},

		// Messaging models
		&Contact{},
		&MessageLog{},
		&ConversationLog{},
		&MessageTemplate{},

		// Automation models
		&AutoReplyRule{},
		&AutoReplyTrigger{},
		&AIConfig{},

		// Delivery models
		&WebhookConfig{},
		&ScheduledMessage{},
		&Broadcast{},

		// Quota models
		&RateLimitWindow{},
	}
}
