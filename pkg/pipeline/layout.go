package pipeline

import (
	"github.com/matzehuels/planboard/pkg/export"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout resolves the window from opts and lays items out inside it.
// The only failures are invalid navigation state and invalid layout options.
func ComputeLayout(items []timeline.Item, opts Options) (timeline.Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return timeline.Result{}, err
	}
	w, err := opts.Window()
	if err != nil {
		return timeline.Result{}, err
	}
	return timeline.Compute(items, w, opts.EngineOptions()), nil
}

// =============================================================================
// Cached Form
// =============================================================================

// marshalCachedLayout serializes res without its today marker. The marker
// depends on the current date, so it is recomputed after every cache hit.
func marshalCachedLayout(res timeline.Result) ([]byte, error) {
	l := export.FromResult(res)
	l.Today = nil
	return export.Marshal(l)
}

// unmarshalCachedLayout restores a cached layout and places today's marker.
func unmarshalCachedLayout(data []byte, opts Options) (timeline.Result, error) {
	l, err := export.Unmarshal(data)
	if err != nil {
		return timeline.Result{}, err
	}
	res, err := export.ToResult(l)
	if err != nil {
		return timeline.Result{}, err
	}
	if !opts.Today.IsZero() {
		res.Today = timeline.TodayMarker(opts.Today, res.Window)
	}
	return res, nil
}
