package timeline

import "time"

// Project sets li.LeftPct and li.WidthPct from its clipped range:
//
//	LeftPct  = daysBetween(w.Start, ClippedStart) / TotalDays * 100
//	WidthPct = (daysBetween(ClippedStart, ClippedEnd) + 1) / TotalDays * 100
//
// For a clipped item 0 <= LeftPct and LeftPct+WidthPct <= 100 up to
// floating-point rounding. Values are not clamped and no minimum width is
// applied; both are presentation decisions.
func Project(li *LaidOutItem, w Window) {
	if w.TotalDays <= 0 {
		li.LeftPct, li.WidthPct = 0, 0
		return
	}
	total := float64(w.TotalDays)
	li.LeftPct = float64(daysBetween(w.Start, li.ClippedStart)) / total * 100
	li.WidthPct = float64(daysBetween(li.ClippedStart, li.ClippedEnd)+1) / total * 100
}

// TodayMarker returns the position of today inside w as a percentage, or nil
// when today falls outside the window. It uses the same day-based projection
// as [Project].
func TodayMarker(today time.Time, w Window) *float64 {
	if today.IsZero() || w.TotalDays <= 0 || !w.Contains(today) {
		return nil
	}
	pct := float64(daysBetween(w.Start, Day(today))) / float64(w.TotalDays) * 100
	return &pct
}
