// Package source loads timeline items from files and from the planner's
// MongoDB collection.
//
// Every source produces a [Snapshot]: the decoded items, a revision hash that
// changes whenever any item changes, and non-fatal warnings (for example
// items whose end date precedes their start date). The revision is the
// "items revision" component of layout cache keys.
package source

import (
	"context"
	"time"

	"github.com/matzehuels/planboard/pkg/cache"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// Source loads the current set of items.
type Source interface {
	// Load returns every item the source holds.
	Load(ctx context.Context) (Snapshot, error)

	// Name identifies the source in logs and cache namespaces.
	Name() string
}

// RangeLoader is implemented by sources that can restrict loading to items
// that may overlap [from, to]. The result is a superset of what
// timeline.Visible keeps for that window.
type RangeLoader interface {
	LoadRange(ctx context.Context, from, to time.Time) (Snapshot, error)
}

// Snapshot is the result of one Load.
type Snapshot struct {
	Items    []timeline.Item
	Revision string
	Warnings []string
}

// LoadWindow loads from src, using LoadRange when src supports it.
func LoadWindow(ctx context.Context, src Source, w timeline.Window) (Snapshot, error) {
	if rl, ok := src.(RangeLoader); ok && w.TotalDays > 0 {
		return rl.LoadRange(ctx, w.Start, w.End)
	}
	return src.Load(ctx)
}

// Revision hashes the records in order. Any change to any field of any
// record, or to their order, yields a different revision.
func Revision(records []Record) string {
	h, _ := cache.HashJSON(records)
	return h
}

// snapshot converts records into a Snapshot, collecting warnings for
// normalized items. Invalid records fail the whole load.
func snapshot(records []Record) (Snapshot, error) {
	snap := Snapshot{Items: make([]timeline.Item, 0, len(records))}
	for i := range records {
		it, err := records[i].Item()
		if err != nil {
			return Snapshot{}, err
		}
		if timeline.Day(it.End).Before(timeline.Day(it.Start)) {
			snap.Warnings = append(snap.Warnings,
				"item "+it.ID+" ends before it starts; shown as a single day")
		}
		snap.Items = append(snap.Items, it)
	}
	snap.Revision = Revision(records)
	return snap, nil
}
