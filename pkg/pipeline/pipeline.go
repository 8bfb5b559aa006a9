// Package pipeline provides the load → layout → render pipeline for Planboard.
//
// The CLI, the HTTP server and the interactive view all go through this
// package so that navigation defaults, validation and caching behave the
// same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read items from a [source.Source], restricted to the window when
//     the source supports range queries
//  2. Layout: Filter, pack, project and classify items for one window
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Granularity: "quarter",
//	    Cursor:      time.Now(),
//	    Formats:     []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, src, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Layout with already loaded items
//	res, err := runner.Layout(ctx, snap.Items, snap.Revision, opts)
//
//	// Render an existing layout
//	artifacts, err := runner.Render(ctx, res, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/matzehuels/planboard/pkg/cache"
	"github.com/matzehuels/planboard/pkg/errors"
	"github.com/matzehuels/planboard/pkg/render/sink"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and View
// =============================================================================

const (
	// DefaultGranularity is the window size used when none is given.
	DefaultGranularity = timeline.Month

	// DefaultTheme is the default SVG colour theme.
	DefaultTheme = "light"

	// DefaultWidth is the default image width in pixels.
	DefaultWidth = sink.DefaultWidth

	// DefaultLaneHeight is the default lane height in pixels.
	DefaultLaneHeight = sink.DefaultLaneHeight

	// DefaultPNGScale is the pixel density of PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Navigation state
	Granularity string    `json:"granularity,omitempty"`
	Cursor      time.Time `json:"cursor,omitzero"`
	Offset      int       `json:"offset,omitempty"` // periods to shift from the cursor's window

	// Layout options
	Search    string    `json:"search,omitempty"`
	Today     time.Time `json:"today,omitzero"`
	TieBreak  string    `json:"tie_break,omitempty"`
	Collation string    `json:"collation,omitempty"` // BCP 47 tag, e.g. "de" or "sv"

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Width      float64  `json:"width,omitempty"`
	LaneHeight float64  `json:"lane_height,omitempty"`
	Theme      string   `json:"theme,omitempty"`
	Title      string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Window is the resolved date range.
	Window timeline.Window

	// Revision identifies the loaded item set.
	Revision string

	// Layout is the computed lane layout, including the today marker.
	Layout timeline.Result

	// Warnings are non-fatal problems reported by the source.
	Warnings []string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int // items returned by the source
	LaidOut    int // items visible in the window
	Rows       int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the lane layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme name is valid.
func ValidateTheme(theme string) error {
	_, err := sink.ParseTheme(theme)
	return err
}

// ParseFormats splits a comma-separated format list, dropping blanks.
func ParseFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks navigation state and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
// A zero cursor falls back to Today, then to the current date.
func (o *Options) SetLayoutDefaults() {
	if o.Granularity == "" {
		o.Granularity = string(DefaultGranularity)
	}
	if o.Cursor.IsZero() {
		o.Cursor = o.Today
	}
	if o.Cursor.IsZero() {
		o.Cursor = time.Now()
	}
	if o.TieBreak == "" {
		o.TieBreak = string(timeline.TieBreakTitle)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
// Granularity and tie-break names are normalized in place.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()

	g, err := timeline.ParseGranularity(o.Granularity)
	if err != nil {
		return err
	}
	o.Granularity = string(g)

	tb, err := timeline.ParseTieBreak(o.TieBreak)
	if err != nil {
		return err
	}
	o.TieBreak = string(tb)

	_, err = o.collation()
	return err
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.LaneHeight == 0 {
		o.LaneHeight = DefaultLaneHeight
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Width < 0 || o.LaneHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width and lane height must be positive")
	}
	return ValidateTheme(o.Theme)
}

// Window resolves the window containing Cursor and shifts it by Offset
// periods. Options must have passed ValidateForLayout.
func (o *Options) Window() (timeline.Window, error) {
	w, err := timeline.Resolve(o.Cursor, timeline.Granularity(o.Granularity))
	if err != nil || o.Offset == 0 {
		return w, err
	}
	return w.Shift(o.Offset)
}

// EngineOptions returns the layout engine options.
func (o *Options) EngineOptions() timeline.Options {
	tag, _ := o.collation()
	return timeline.Options{
		Search:    o.Search,
		Today:     o.Today,
		TieBreak:  timeline.TieBreak(o.TieBreak),
		Collation: tag,
	}
}

// SVGOptions returns the sink options for the configured geometry and theme.
func (o *Options) SVGOptions() []sink.SVGOption {
	theme, _ := sink.ParseTheme(o.Theme)
	opts := []sink.SVGOption{
		sink.WithWidth(o.Width),
		sink.WithLaneHeight(o.LaneHeight),
		sink.WithTheme(theme),
	}
	if o.Title != "" {
		opts = append(opts, sink.WithTitle(o.Title))
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
// The window bounds are part of the key, so shifted windows never collide.
func (o *Options) LayoutKeyOpts(w timeline.Window) cache.LayoutKeyOpts {
	tag, _ := o.collation()
	opts := cache.LayoutKeyOpts{
		Granularity: string(w.Granularity),
		Start:       w.Start.Format(time.DateOnly),
		End:         w.End.Format(time.DateOnly),
		Search:      strings.TrimSpace(o.Search),
		TieBreak:    o.TieBreak,
	}
	if tag != language.Und {
		opts.Collation = tag.String()
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:     format,
		Theme:      o.Theme,
		Width:      o.Width,
		LaneHeight: o.LaneHeight,
	}
	if !o.Today.IsZero() {
		opts.Today = o.Today.Format(time.DateOnly)
	}
	return opts
}

func (o *Options) collation() (language.Tag, error) {
	if strings.TrimSpace(o.Collation) == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(o.Collation)
	if err != nil {
		return language.Und, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid collation %q", o.Collation)
	}
	return tag, nil
}
