package services

import (
	"testing"
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"
)

func TestWithinBusinessHours(t *testing.T) {
	schedule := models.BusinessHoursSchedule{
		"monday":  {"09:00-17:00"},
		"tuesday": {"09:00-12:00", "13:00-17:00"},
	}

	// 2024-01-01 is a Monday
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday inside", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), true},
		{"monday start is inclusive", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), true},
		{"monday end is inclusive", time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC), true},
		{"monday after closing", time.Date(2024, 1, 1, 17, 1, 0, 0, time.UTC), false},
		{"monday before opening", time.Date(2024, 1, 1, 8, 59, 0, 0, time.UTC), false},
		{"tuesday lunch gap", time.Date(2024, 1, 2, 12, 30, 0, 0, time.UTC), false},
		{"tuesday afternoon range", time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC), true},
		{"wednesday not listed", time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), false},
	}

	for _, test := range tests {
		if got := WithinBusinessHours(schedule, test.at); got != test.want {
			t.Errorf("%s: WithinBusinessHours = %v, expected %v", test.name, got, test.want)
		}
	}
}

func TestWithinBusinessHoursEmptySchedule(t *testing.T) {
	if WithinBusinessHours(nil, time.Now()) {
		t.Error("empty schedule should never match")
	}
}

func TestWithinBusinessHoursMalformedRange(t *testing.T) {
	schedule := models.BusinessHoursSchedule{
		"monday": {"not-a-range", "25:00-26:00", "09:00-17:00"},
	}

	// Malformed entries are skipped, the valid one still applies
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !WithinBusinessHours(schedule, at) {
		t.Error("valid range should match despite malformed siblings")
	}

	broken := models.BusinessHoursSchedule{"monday": {"garbage"}}
	if WithinBusinessHours(broken, at) {
		t.Error("schedule with only malformed ranges should not match")
	}
}
