package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/planboard/pkg/errors"
)

// =============================================================================
// Granularity
// =============================================================================

// Granularity is the size of the visible window.
type Granularity string

// Supported granularities.
const (
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Half    Granularity = "half"
	Year    Granularity = "year"
)

// Granularities lists all granularities from finest to coarsest.
var Granularities = []Granularity{Month, Quarter, Half, Year}

// ParseGranularity parses a granularity name (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if g.Valid() {
		return g, nil
	}
	return "", errors.New(errors.ErrCodeInvalidGranularity,
		"invalid granularity %q (must be one of: month, quarter, half, year)", s)
}

// Valid reports whether g is a supported granularity.
func (g Granularity) Valid() bool {
	return g.months() > 0
}

// Next returns the next coarser granularity, wrapping from year to month.
func (g Granularity) Next() Granularity {
	for i, candidate := range Granularities {
		if candidate == g {
			return Granularities[(i+1)%len(Granularities)]
		}
	}
	return Month
}

// months returns the window length in months, or 0 if g is unknown.
func (g Granularity) months() int {
	switch g {
	case Month:
		return 1
	case Quarter:
		return 3
	case Half:
		return 6
	case Year:
		return 12
	}
	return 0
}

// =============================================================================
// Window
// =============================================================================

// Window is the contiguous visible date range. Start and End are inclusive.
type Window struct {
	Start       time.Time
	End         time.Time
	TotalDays   int
	Granularity Granularity
}

// Resolve turns a cursor date and granularity into the window containing
// the cursor:
//   - month: first to last day of the cursor's month
//   - quarter: the three-month block starting in Jan, Apr, Jul or Oct
//   - half: January–June or July–December
//   - year: January 1 to December 31
//
// It fails with a configuration error on an unknown granularity or a zero
// cursor. This is the only validation failure in the engine.
func Resolve(cursor time.Time, g Granularity) (Window, error) {
	if cursor.IsZero() {
		return Window{}, errors.New(errors.ErrCodeInvalidCursor, "cursor date is not set")
	}
	n := g.months()
	if n == 0 {
		return Window{}, errors.New(errors.ErrCodeInvalidGranularity,
			"invalid granularity %q (must be one of: month, quarter, half, year)", string(g))
	}

	c := Day(cursor)
	first := (int(c.Month()) - 1) / n * n // 0-based month that opens the window
	start := time.Date(c.Year(), time.Month(first+1), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(c.Year(), time.Month(first+n+1), 0, 0, 0, 0, 0, time.UTC)

	return Window{
		Start:       start,
		End:         end,
		TotalDays:   daysBetween(start, end) + 1,
		Granularity: g,
	}, nil
}

// Shift returns the window n periods away from w (negative n moves back).
func (w Window) Shift(n int) (Window, error) {
	if w.Start.IsZero() {
		return Window{}, errors.New(errors.ErrCodeInvalidCursor, "cannot shift an unresolved window")
	}
	return Resolve(w.Start.AddDate(0, n*w.Granularity.months(), 0), w.Granularity)
}

// Contains reports whether the calendar day of t lies inside w.
func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Label returns a human-readable window title such as "March 2024",
// "Q2 2024", "H1 2024" or "2024".
func (w Window) Label() string {
	y := w.Start.Year()
	switch w.Granularity {
	case Month:
		return fmt.Sprintf("%s %d", w.Start.Month(), y)
	case Quarter:
		return fmt.Sprintf("Q%d %d", (int(w.Start.Month())-1)/3+1, y)
	case Half:
		return fmt.Sprintf("H%d %d", (int(w.Start.Month())-1)/6+1, y)
	case Year:
		return fmt.Sprintf("%d", y)
	}
	return ""
}

// String implements fmt.Stringer.
func (w Window) String() string {
	return fmt.Sprintf("%s [%s..%s] (%d days)",
		w.Label(), w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly), w.TotalDays)
}
