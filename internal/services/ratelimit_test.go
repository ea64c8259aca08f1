package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRateLimitStore struct {
	counts map[time.Time]int
	err    error
}

func (f *fakeRateLimitStore) Increment(workspaceID uuid.UUID, windowStart time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = make(map[time.Time]int)
	}
	f.counts[windowStart]++
	return f.counts[windowStart], nil
}

func (f *fakeRateLimitStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	return 0, f.err
}

func newTestRateLimiter(store rateLimitStore, now time.Time) *RateLimitService {
	s := NewRateLimitService(store)
	s.now = func() time.Time { return now }
	return s
}

func TestAllowWithinLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 30, 0, time.UTC)
	s := newTestRateLimiter(&fakeRateLimitStore{}, now)
	workspaceID := uuid.New()

	for i := 1; i <= 3; i++ {
		d := s.Allow(workspaceID, 3)
		if !d.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if d.Remaining != 3-i {
			t.Errorf("request %d: remaining = %d, expected %d", i, d.Remaining, 3-i)
		}
	}

	d := s.Allow(workspaceID, 3)
	if d.Allowed {
		t.Error("request over the limit should be denied")
	}
	if d.Remaining != 0 {
		t.Errorf("remaining = %d, expected 0", d.Remaining)
	}
	if !d.ResetAt.Equal(time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC)) {
		t.Errorf("resetAt = %v, expected top of next minute", d.ResetAt)
	}
}

func TestAllowNewWindowResets(t *testing.T) {
	store := &fakeRateLimitStore{}
	workspaceID := uuid.New()

	s := newTestRateLimiter(store, time.Date(2024, 1, 1, 10, 0, 59, 0, time.UTC))
	s.Allow(workspaceID, 1)
	if d := s.Allow(workspaceID, 1); d.Allowed {
		t.Fatal("second request in the same window should be denied")
	}

	// Next minute is a fresh window
	s.now = func() time.Time { return time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC) }
	if d := s.Allow(workspaceID, 1); !d.Allowed {
		t.Fatal("first request of a new window should be allowed")
	}
}

func TestAllowUnlimited(t *testing.T) {
	store := &fakeRateLimitStore{}
	s := newTestRateLimiter(store, time.Now())

	d := s.Allow(uuid.New(), 0)
	if !d.Allowed {
		t.Error("zero limit means unlimited")
	}
	if len(store.counts) != 0 {
		t.Error("unlimited workspaces should not touch the store")
	}
}

func TestAllowFailsOpen(t *testing.T) {
	s := newTestRateLimiter(&fakeRateLimitStore{err: errors.New("db down")}, time.Now())

	d := s.Allow(uuid.New(), 5)
	if !d.Allowed {
		t.Error("store failure should fail open")
	}
	if d.Remaining != 5 {
		t.Errorf("remaining = %d, expected full limit on fail-open", d.Remaining)
	}
}
