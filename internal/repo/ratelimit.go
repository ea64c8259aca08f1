package repo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateLimitRepository handles per-minute request counting windows
type RateLimitRepository struct {
	db *gorm.DB
}

// NewRateLimitRepository creates a new rate limit repository
func NewRateLimitRepository(db *gorm.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// Increment bumps the counter for a window, creating it on first hit,
// and returns the post-increment count. The upsert keeps concurrent
// requests from double-counting or racing on window creation.
func (r *RateLimitRepository) Increment(workspaceID uuid.UUID, windowStart time.Time) (int, error) {
	var count int
	err := r.db.Raw(`
		INSERT INTO rate_limit_windows (id, workspace_id, window_start, request_count, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, 1, NOW(), NOW())
		ON CONFLICT (workspace_id, window_start)
		DO UPDATE SET request_count = rate_limit_windows.request_count + 1, updated_at = NOW()
		RETURNING request_count
	`, workspaceID, windowStart).Scan(&count).Error
	return count, err
}

// GetCount reads the current count for a window without incrementing
func (r *RateLimitRepository) GetCount(workspaceID uuid.UUID, windowStart time.Time) (int, error) {
	var count int
	err := r.db.Raw(`
		SELECT COALESCE(request_count, 0) FROM rate_limit_windows
		WHERE workspace_id = ? AND window_start = ?
	`, workspaceID, windowStart).Scan(&count).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	return count, err
}

// DeleteOlderThan prunes expired windows
func (r *RateLimitRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Exec(`DELETE FROM rate_limit_windows WHERE window_start < ?`, cutoff)
	return result.RowsAffected, result.Error
}
