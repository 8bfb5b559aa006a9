package timeline

import (
	"strings"

	"golang.org/x/text/cases"
)

// Visible returns the items that overlap w and match search, in input order.
//
// An item overlaps the window iff End >= w.Start and Start <= w.End, using
// the normalized range (an end before the start counts as a one-day item).
// A non-blank search term must be a substring of Title or Subtitle under
// Unicode case folding, so "MÜLLER" finds "Müller Bad".
func Visible(items []Item, w Window, search string) []Item {
	if w.TotalDays <= 0 {
		return nil
	}
	match := newMatcher(search)

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !overlaps(it, w) {
			continue
		}
		if !match(it) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func overlaps(it Item, w Window) bool {
	start, end, _ := it.span()
	return !end.Before(w.Start) && !start.After(w.End)
}

// newMatcher builds a case-folding substring matcher for search.
// A blank term matches everything.
func newMatcher(search string) func(Item) bool {
	term := strings.TrimSpace(search)
	if term == "" {
		return func(Item) bool { return true }
	}
	// A Caser keeps state between calls and must not be shared.
	fold := cases.Fold()
	needle := fold.String(term)
	return func(it Item) bool {
		return strings.Contains(fold.String(it.Title), needle) ||
			strings.Contains(fold.String(it.Subtitle), needle)
	}
}
