package services

import (
	"strings"
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"
)

// WithinBusinessHours reports whether t falls inside the configured
// schedule. Days are keyed by lowercase weekday name; a day with no
// entry is closed. Ranges are "HH:MM-HH:MM" with both endpoints
// inclusive. A malformed range is skipped rather than matched.
func WithinBusinessHours(schedule models.BusinessHoursSchedule, t time.Time) bool {
	if len(schedule) == 0 {
		return false
	}

	day := strings.ToLower(t.Weekday().String())
	ranges, ok := schedule[day]
	if !ok {
		return false
	}

	minuteOfDay := t.Hour()*60 + t.Minute()
	for _, r := range ranges {
		start, end, ok := parseTimeRange(r)
		if !ok {
			continue
		}
		if minuteOfDay >= start && minuteOfDay <= end {
			return true
		}
	}
	return false
}

// parseTimeRange parses "HH:MM-HH:MM" into minutes of day
func parseTimeRange(r string) (start, end int, ok bool) {
	parts := strings.SplitN(r, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	startT, err := time.Parse("15:04", strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	endT, err := time.Parse("15:04", strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}

	return startT.Hour()*60 + startT.Minute(), endT.Hour()*60 + endT.Minute(), true
}
