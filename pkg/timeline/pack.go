package timeline

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matzehuels/planboard/pkg/errors"
)

// TieBreak decides the order of items that start on the same clipped day.
type TieBreak string

// Tie-break rules.
const (
	// TieBreakTitle orders ties by locale-aware title collation, then by ID.
	TieBreakTitle TieBreak = "title"

	// TieBreakInput keeps ties in input order.
	TieBreakInput TieBreak = "input"
)

// DefaultCollation is the language used for title collation when none is
// configured.
var DefaultCollation = language.German

// ParseTieBreak parses a tie-break rule name. Empty selects TieBreakTitle.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieBreakTitle:
		return TieBreakTitle, nil
	case TieBreakInput:
		return TieBreakInput, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid tie-break %q (must be one of: title, input)", s)
}

// PackOption configures [Pack].
type PackOption func(*packConfig)

type packConfig struct {
	tieBreak  TieBreak
	collation language.Tag
}

// WithTieBreak selects the tie-break rule. The zero value keeps the default.
func WithTieBreak(tb TieBreak) PackOption {
	return func(c *packConfig) {
		if tb != "" {
			c.tieBreak = tb
		}
	}
}

// WithCollation selects the language used for title collation.
// language.Und keeps the default.
func WithCollation(tag language.Tag) PackOption {
	return func(c *packConfig) {
		if tag != language.Und {
			c.collation = tag
		}
	}
}

// Pack assigns every item to the lowest free lane and returns the items in
// packing order together with the number of lanes used (at least 1).
//
// Items are clipped to w and sorted by clipped start; ties follow the
// configured [TieBreak]. An item goes into the lowest lane whose last item
// ended strictly before the item's clipped start, so items touching on the
// same day never share a lane. Items that do not overlap w are dropped.
//
// The result is overlap-free and deterministic for a given input and
// tie-break rule. It is minimal for the chosen order, which is not a claim
// of global optimality under arbitrary reordering. Cost is O(n·lanes).
func Pack(items []Item, w Window, opts ...PackOption) ([]LaidOutItem, int) {
	cfg := packConfig{tieBreak: TieBreakTitle, collation: DefaultCollation}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]LaidOutItem, 0, len(items))
	for _, it := range items {
		start, end, normalized := it.span()
		if end.Before(w.Start) || start.After(w.End) {
			continue
		}
		if normalized {
			it.End = it.Start
		}
		out = append(out, LaidOutItem{
			Item:         it,
			ClippedStart: maxDay(start, w.Start),
			ClippedEnd:   minDay(end, w.End),
			Normalized:   normalized,
		})
	}

	slices.SortStableFunc(out, cfg.compare())

	var lanesEnd []time.Time
	for i := range out {
		lane := freeLane(lanesEnd, out[i].ClippedStart)
		if lane == len(lanesEnd) {
			lanesEnd = append(lanesEnd, out[i].ClippedEnd)
		} else {
			lanesEnd[lane] = out[i].ClippedEnd
		}
		out[i].Lane = lane
	}

	return out, max(1, len(lanesEnd))
}

// freeLane returns the lowest lane whose last end is strictly before start,
// or len(lanesEnd) when every lane is occupied.
func freeLane(lanesEnd []time.Time, start time.Time) int {
	for lane, end := range lanesEnd {
		if end.Before(start) {
			return lane
		}
	}
	return len(lanesEnd)
}

func (c packConfig) compare() func(a, b LaidOutItem) int {
	var col *collate.Collator
	if c.tieBreak == TieBreakTitle {
		col = collate.New(c.collation)
	}
	return func(a, b LaidOutItem) int {
		if n := a.ClippedStart.Compare(b.ClippedStart); n != 0 {
			return n
		}
		if col == nil {
			return 0
		}
		if n := col.CompareString(a.Item.Title, b.Item.Title); n != 0 {
			return n
		}
		return strings.Compare(a.Item.ID, b.Item.ID)
	}
}
