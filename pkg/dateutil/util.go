package dateutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var durationPattern = regexp.MustCompile(`^(\d+)\s*([mhd])$`)

// MaxDuration is the longest duration ParseDuration accepts.
const MaxDuration = 366 * 24 * time.Hour

var durationUnits = map[string]time.Duration{
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseDuration accepts the short forms used by admins, e.g. "30m", "4h" or
// "7d".
func ParseDuration(s string) (time.Duration, error) {
	match := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if match == nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	if n <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", s)
	}

	unit := durationUnits[match[2]]
	if n > int64(MaxDuration/unit) {
		return 0, fmt.Errorf("duration %q is longer than %d days", s, int64(MaxDuration/(24*time.Hour)))
	}

	return time.Duration(n) * unit, nil
}

// PreviousOccurrence returns the latest activation time of the schedule that is
// not after now. The search goes back at most lookback.
func PreviousOccurrence(schedule cron.Schedule, now time.Time, lookback time.Duration) (time.Time, bool) {
	var last time.Time
	found := false

	for t := schedule.Next(now.Add(-lookback)); !t.IsZero() && !t.After(now); t = schedule.Next(t) {
		last = t
		found = true
	}

	return last, found
}
