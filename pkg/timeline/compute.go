package timeline

import (
	"time"

	"golang.org/x/text/language"
)

// Options configures [Compute].
type Options struct {
	// Search filters items by a case-insensitive substring of title or
	// subtitle. Blank disables filtering.
	Search string

	// Today positions the today marker. Zero omits it.
	Today time.Time

	// TieBreak orders items with equal clipped start. Empty means title.
	TieBreak TieBreak

	// Collation is the language for title ordering. Und means DefaultCollation.
	Collation language.Tag
}

// Compute lays out items inside w: filter, pack, project and classify, plus
// the today marker. It never fails; an empty item list or a degenerate
// window yields Rows = 1 and no items.
func Compute(items []Item, w Window, opts Options) Result {
	res := Result{Window: w, Items: []LaidOutItem{}, Rows: 1}
	if !opts.Today.IsZero() {
		res.Today = TodayMarker(opts.Today, w)
	}
	if w.TotalDays <= 0 {
		return res
	}

	visible := Visible(items, w, opts.Search)
	laid, rows := Pack(visible, w, WithTieBreak(opts.TieBreak), WithCollation(opts.Collation))
	for i := range laid {
		Project(&laid[i], w)
		laid[i].Variant = Classify(laid[i].WidthPct)
		if laid[i].Normalized {
			res.Normalized++
		}
	}

	res.Items = laid
	res.Rows = rows
	return res
}
