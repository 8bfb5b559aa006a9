// Package export defines the serialized form of a computed timeline layout.
//
// A [Layout] is what the layout command writes, what the HTTP API returns and
// what the pipeline stores in its cache. It round-trips losslessly to a
// timeline.Result through [FromResult] and [ToResult].
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"

	"github.com/matzehuels/planboard/pkg/errors"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// =============================================================================
// Layout - Serialized Timeline
// =============================================================================

// Layout is the serialization format for a computed timeline.
type Layout struct {
	Window     Window   `json:"window" bson:"window"`
	Rows       int      `json:"rows" bson:"rows"`
	Today      *float64 `json:"today,omitempty" bson:"today,omitempty"`
	Normalized int      `json:"normalized,omitempty" bson:"normalized,omitempty"`
	Items      []Item   `json:"items" bson:"items"`
}

// Window is the serialized visible range.
type Window struct {
	Start       string `json:"start" bson:"start"`
	End         string `json:"end" bson:"end"`
	TotalDays   int    `json:"total_days" bson:"total_days"`
	Granularity string `json:"granularity" bson:"granularity"`
	Label       string `json:"label,omitempty" bson:"label,omitempty"`
}

// Item is one laid-out item.
type Item struct {
	ID       string `json:"id" bson:"id"`
	Title    string `json:"title" bson:"title"`
	Subtitle string `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Color    string `json:"color,omitempty" bson:"color,omitempty"`
	Status   string `json:"status" bson:"status"`

	Start        string `json:"start" bson:"start"`
	End          string `json:"end" bson:"end"`
	ClippedStart string `json:"clipped_start" bson:"clipped_start"`
	ClippedEnd   string `json:"clipped_end" bson:"clipped_end"`

	Lane       int     `json:"lane" bson:"lane"`
	LeftPct    float64 `json:"left_pct" bson:"left_pct"`
	WidthPct   float64 `json:"width_pct" bson:"width_pct"`
	Variant    string  `json:"variant" bson:"variant"`
	Normalized bool    `json:"normalized,omitempty" bson:"normalized,omitempty"`
}

// =============================================================================
// Result ↔ Layout Conversion
// =============================================================================

// FromResult converts an engine result to its serialized form.
func FromResult(res timeline.Result) Layout {
	l := Layout{
		Window: Window{
			Start:       formatDay(res.Window.Start),
			End:         formatDay(res.Window.End),
			TotalDays:   res.Window.TotalDays,
			Granularity: string(res.Window.Granularity),
			Label:       res.Window.Label(),
		},
		Rows:       res.Rows,
		Normalized: res.Normalized,
		Items:      make([]Item, len(res.Items)),
	}
	if res.Today != nil {
		today := *res.Today
		l.Today = &today
	}
	for i, li := range res.Items {
		l.Items[i] = Item{
			ID:           li.Item.ID,
			Title:        li.Item.Title,
			Subtitle:     li.Item.Subtitle,
			Color:        li.Item.Color,
			Status:       string(li.Item.Status),
			Start:        formatDay(li.Item.Start),
			End:          formatDay(li.Item.End),
			ClippedStart: formatDay(li.ClippedStart),
			ClippedEnd:   formatDay(li.ClippedEnd),
			Lane:         li.Lane,
			LeftPct:      li.LeftPct,
			WidthPct:     li.WidthPct,
			Variant:      string(li.Variant),
			Normalized:   li.Normalized,
		}
	}
	return l
}

// ToResult converts a serialized layout back to an engine result.
func ToResult(l Layout) (timeline.Result, error) {
	g, err := timeline.ParseGranularity(l.Window.Granularity)
	if err != nil {
		return timeline.Result{}, err
	}
	start, err := timeline.ParseDate(l.Window.Start)
	if err != nil {
		return timeline.Result{}, err
	}
	end, err := timeline.ParseDate(l.Window.End)
	if err != nil {
		return timeline.Result{}, err
	}

	res := timeline.Result{
		Window: timeline.Window{
			Start:       start,
			End:         end,
			TotalDays:   l.Window.TotalDays,
			Granularity: g,
		},
		Rows:       l.Rows,
		Normalized: l.Normalized,
		Items:      make([]timeline.LaidOutItem, len(l.Items)),
	}
	if l.Today != nil {
		today := *l.Today
		res.Today = &today
	}

	for i, it := range l.Items {
		var dates [4]time.Time
		for j, s := range [4]string{it.Start, it.End, it.ClippedStart, it.ClippedEnd} {
			if dates[j], err = timeline.ParseDate(s); err != nil {
				return timeline.Result{}, errors.Wrap(errors.ErrCodeInvalidItem, err, "item %s", it.ID)
			}
		}
		res.Items[i] = timeline.LaidOutItem{
			Item: timeline.Item{
				ID:       it.ID,
				Start:    dates[0],
				End:      dates[1],
				Color:    it.Color,
				Title:    it.Title,
				Subtitle: it.Subtitle,
				Status:   timeline.ParseStatus(it.Status),
			},
			ClippedStart: dates[2],
			ClippedEnd:   dates[3],
			LeftPct:      it.LeftPct,
			WidthPct:     it.WidthPct,
			Lane:         it.Lane,
			Variant:      timeline.Variant(it.Variant),
			Normalized:   it.Normalized,
		}
	}
	return res, nil
}

func formatDay(t time.Time) string {
	return t.Format(time.DateOnly)
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// Marshal serializes a Layout to pretty-printed JSON.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal decodes a Layout and checks its structural invariants: a
// non-empty window, at least one row and every lane below Rows.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks the structural invariants of l.
func (l Layout) Validate() error {
	if l.Window.TotalDays <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout window has no days")
	}
	if l.Rows < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "layout must have at least one row")
	}
	for _, it := range l.Items {
		if it.Lane < 0 || it.Lane >= l.Rows {
			return errors.New(errors.ErrCodeInvalidInput, "item %s: lane %d outside [0, %d)", it.ID, it.Lane, l.Rows)
		}
	}
	return nil
}

// WriteFile writes l to path atomically.
func WriteFile(l Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and validates a Layout file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s not found", path)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
