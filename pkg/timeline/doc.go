// Package timeline implements the layout engine behind the planner's
// Gantt-style view.
//
// Given date-ranged items and a visible window, the engine packs overlapping
// items into non-overlapping lanes, clips them to the window, converts dates
// into percentage coordinates and tags each item with a label-density
// variant. It is a pure function of its inputs: no I/O, no shared state,
// safe to call from several goroutines at once (for example a month view and
// a year view of the same data).
//
// # Stages
//
//  1. [Resolve]: cursor date + [Granularity] → [Window]
//  2. [Visible]: overlap test against the window plus optional search
//  3. [Pack]: greedy interval partitioning into lanes
//  4. [Project]: clipped range → LeftPct / WidthPct
//  5. [Classify]: WidthPct → [Variant]
//
// [TodayMarker] is computed independently from the same window.
// [Compute] runs stages 2–5 and the today marker in one call.
//
// # Dates
//
// The engine works in calendar days. Every date is truncated to midnight
// UTC of its calendar date (see [Day]); end dates are inclusive, so an item
// that starts and ends on the same day occupies exactly one day and two items
// touching on the same day conflict.
//
// # Usage
//
//	w, err := timeline.Resolve(cursor, timeline.Quarter)
//	if err != nil {
//	    return err // configuration error: bad granularity or cursor
//	}
//	res := timeline.Compute(items, w, timeline.Options{Search: "müller", Today: time.Now()})
//	for _, li := range res.Items {
//	    fmt.Println(li.Lane, li.LeftPct, li.WidthPct, li.Variant)
//	}
package timeline
