package db

import (
	"fmt"
	"os"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection
func NewDatabase() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "wa_gateway"),
			getEnv("DB_PORT", "5432"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid is used by the trigger and rate limit upserts
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}

	if err := createCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to create custom indexes: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}

// createCustomIndexes creates indexes AutoMigrate cannot express
func createCustomIndexes(db *gorm.DB) error {
	indexes := []string{
		// Conflict targets for the trigger-count and rate-limit upserts
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_auto_reply_triggers_rule_contact ON auto_reply_triggers (rule_id, contact_phone)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_rate_limit_windows_workspace_window ON rate_limit_windows (workspace_id, window_start)",

		// Due-work scans run every sweep
		"CREATE INDEX IF NOT EXISTS idx_scheduled_messages_due ON scheduled_messages (scheduled_at) WHERE status = 'pending'",
		"CREATE INDEX IF NOT EXISTS idx_broadcasts_due ON broadcasts (scheduled_at) WHERE status = 'scheduled'",

		// Event routing lookups
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_identifier ON accounts (account_identifier) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_message_logs_message_id ON message_logs (message_id) WHERE message_id != ''",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_workspace_phone ON contacts (workspace_id, phone_number) WHERE deleted_at IS NULL",

		// Rule evaluation ordering
		"CREATE INDEX IF NOT EXISTS idx_auto_reply_rules_active ON auto_reply_rules (workspace_id, priority DESC) WHERE is_active = true",

		// API key authentication
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_api_keys_key_hash ON api_keys (key_hash)",

		// Conversation memory replay
		"CREATE INDEX IF NOT EXISTS idx_conversation_logs_lookup ON conversation_logs (workspace_id, account_id, contact_phone, created_at)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
