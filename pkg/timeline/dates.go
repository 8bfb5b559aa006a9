package timeline

import (
	"strings"
	"time"

	"github.com/matzehuels/planboard/pkg/errors"
)

const day = 24 * time.Hour

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Day truncates t to midnight UTC of its calendar date, as seen in t's own
// location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO 8601 date ("2024-03-15") or date-time
// ("2024-03-15T10:30:00Z") and returns its calendar day.
// Unparsable input yields an INVALID_CURSOR configuration error.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New(errors.ErrCodeInvalidCursor, "date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidCursor, "invalid date %q (want YYYY-MM-DD)", s)
}

// daysBetween returns the signed number of whole days from a to b.
// Both must be day-truncated.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / day)
}

func maxDay(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDay(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
