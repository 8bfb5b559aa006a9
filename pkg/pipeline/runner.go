package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/planboard/pkg/cache"
	"github.com/matzehuels/planboard/pkg/export"
	"github.com/matzehuels/planboard/pkg/observability"
	"github.com/matzehuels/planboard/pkg/source"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and the interactive view use it to share caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the layout and artifact cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	w, err := opts.Window()
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{Window: w}

	// Stage 1: Load
	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, src.Name())
	snap, err := source.LoadWindow(ctx, src, w)
	result.Stats.LoadTime = time.Since(loadStart)
	observability.Pipeline().OnLoadComplete(ctx, src.Name(), len(snap.Items), result.Stats.LoadTime, err)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	result.Revision = snap.Revision
	result.Warnings = snap.Warnings
	result.Stats.ItemCount = len(snap.Items)

	for _, warning := range snap.Warnings {
		opts.Logger.Warn(warning, "source", src.Name())
	}
	opts.Logger.Info("loaded items",
		"source", src.Name(),
		"items", len(snap.Items),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.LayoutWithCacheInfo(ctx, snap.Items, snap.Revision, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.LaidOut = len(res.Items)
	result.Stats.Rows = res.Rows
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"window", w.Label(),
		"items", len(res.Items),
		"rows", res.Rows,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo lays items out with caching and returns cache hit info.
// revision identifies the item set (see source.Revision); an empty revision
// disables caching for this call.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, items []timeline.Item, revision string, opts Options) (timeline.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return timeline.Result{}, false, err
	}

	w, err := opts.Window()
	if err != nil {
		return timeline.Result{}, false, err
	}

	cacheKey := ""
	if revision != "" {
		cacheKey = r.Keyer.LayoutKey(revision, opts.LayoutKeyOpts(w))
	}

	// Try cache first
	if cacheKey != "" {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := unmarshalCachedLayout(data, opts)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeLayout)
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
			opts.Logger.Debug("discarding unreadable cached layout", "key", cacheKey, "error", err)
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	}

	// Compute layout
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Granularity, len(items))
	res := timeline.Compute(items, w, opts.EngineOptions())
	observability.Pipeline().OnLayoutComplete(ctx, opts.Granularity, res.Rows, time.Since(start), nil)

	if res.Normalized > 0 {
		opts.Logger.Debug("normalized reversed date ranges", "count", res.Normalized)
	}

	// Cache the result
	if cacheKey != "" {
		if data, err := marshalCachedLayout(res); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err != nil {
				opts.Logger.Warn("cache write failed", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
			}
		}
	}

	return res, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, items []timeline.Item, revision string, opts Options) (timeline.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, items, revision, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res timeline.Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutHash, err := cache.HashJSON(export.FromResult(res))
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}

	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	// Render all formats
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderResult(ctx, res, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res timeline.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// ttl returns r.TTL when set, else def.
func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
// It must run before validation, which installs a discard logger.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
