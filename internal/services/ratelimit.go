package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// rateLimitStore counts requests per minute window
type rateLimitStore interface {
	Increment(workspaceID uuid.UUID, windowStart time.Time) (int, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// RateLimitDecision is the outcome of one admission check
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitService enforces per-workspace request rates over fixed
// minute windows. The counter lives in the store so every instance
// sees the same window.
type RateLimitService struct {
	repo rateLimitStore
	now  func() time.Time
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(repo rateLimitStore) *RateLimitService {
	return &RateLimitService{repo: repo, now: time.Now}
}

// Allow counts this request against the workspace's current minute
// window and decides admission. A store failure fails open: limiting
// is protection, not a dependency the API can afford to die on.
func (s *RateLimitService) Allow(workspaceID uuid.UUID, limit int) RateLimitDecision {
	now := s.now()
	windowStart := now.Truncate(time.Minute)
	resetAt := windowStart.Add(time.Minute)

	if limit <= 0 {
		return RateLimitDecision{Allowed: true, Limit: limit, ResetAt: resetAt}
	}

	count, err := s.repo.Increment(workspaceID, windowStart)
	if err != nil {
		log.Warn().Err(err).Str("workspace_id", workspaceID.String()).Msg("rate limit store failed, allowing request")
		return RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit, ResetAt: resetAt}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitDecision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// PruneExpired removes windows old enough to be useless even for
// after-the-fact inspection
func (s *RateLimitService) PruneExpired() {
	cutoff := s.now().Add(-24 * time.Hour)
	deleted, err := s.repo.DeleteOlderThan(cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("failed to prune rate limit windows")
		return
	}
	if deleted > 0 {
		log.Debug().Int64("deleted", deleted).Msg("pruned expired rate limit windows")
	}
}
