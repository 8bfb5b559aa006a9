package timeline

import (
	"strings"
	"time"
)

// =============================================================================
// Status
// =============================================================================

// Status is the completion flag an item carries into the layout.
type Status string

// Item statuses.
const (
	StatusNormal   Status = "normal"
	StatusComplete Status = "complete"
	StatusOverdue  Status = "overdue"
)

// ParseStatus maps a status string to a Status.
// Unknown or empty values are treated as normal: status is display
// information and never a reason to drop an item.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusComplete:
		return StatusComplete
	case StatusOverdue:
		return StatusOverdue
	default:
		return StatusNormal
	}
}

// =============================================================================
// Item
// =============================================================================

// Item is a date-ranged entity shown on the timeline.
// Start and End are inclusive calendar days.
type Item struct {
	ID       string
	Start    time.Time
	End      time.Time
	Color    string
	Title    string
	Subtitle string
	Status   Status
}

// span returns the item's day-truncated range. An end before the start is
// normalized to the start; normalized reports whether that happened.
func (it Item) span() (start, end time.Time, normalized bool) {
	start, end = Day(it.Start), Day(it.End)
	if end.Before(start) {
		return start, start, true
	}
	return start, end, false
}

// =============================================================================
// Variant
// =============================================================================

// Variant is the label-density class of a laid-out item.
type Variant string

// Variants from least to most horizontal space.
const (
	VariantTinyLabel Variant = "tinyLabel" // floating label outside the bar
	VariantNano      Variant = "nano"      // marker only
	VariantMicro     Variant = "micro"     // title only
	VariantSmall     Variant = "small"     // title and date, compact
	VariantNormal    Variant = "normal"    // title, subtitle and date
)

// =============================================================================
// LaidOutItem
// =============================================================================

// LaidOutItem is an item after packing and projection.
type LaidOutItem struct {
	Item         Item
	ClippedStart time.Time
	ClippedEnd   time.Time
	LeftPct      float64
	WidthPct     float64
	Lane         int
	Variant      Variant

	// Normalized is set when the source item ended before it started and
	// was shrunk to a single day.
	Normalized bool
}

// Overdue reports whether the item is flagged overdue.
func (li LaidOutItem) Overdue() bool { return li.Item.Status == StatusOverdue }

// Complete reports whether the item is flagged complete.
func (li LaidOutItem) Complete() bool { return li.Item.Status == StatusComplete }

// Days returns the number of days the clipped range covers.
func (li LaidOutItem) Days() int { return daysBetween(li.ClippedStart, li.ClippedEnd) + 1 }

// =============================================================================
// Result
// =============================================================================

// Result is the output of [Compute].
type Result struct {
	Window Window
	Items  []LaidOutItem

	// Rows is the number of lanes needed to draw Items; at least 1.
	Rows int

	// Today is the today marker's LeftPct, nil when today lies outside Window.
	Today *float64

	// Normalized counts items whose end date preceded their start date.
	Normalized int
}
