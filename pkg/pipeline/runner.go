package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanegraph/pkg/cache"
	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the lifetime of cached layouts and artifacts when
	// positive.
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

// Execute runs the layout → render pipeline over h with caching.
func (r *Runner) Execute(ctx context.Context, h History, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		HistoryHash: h.Key,
		Stats: Stats{
			EventCount: h.EventCount,
			EdgeCount:  h.EdgeCount,
		},
	}

	// Stage 1: Layout
	layoutStart := time.Now()
	view, layoutHit, err := r.LayoutWithCacheInfo(ctx, h, opts)
	if err != nil {
		return nil, err
	}
	result.View = view
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Rows = len(view.Rows)
	result.Stats.Lanes = view.Lanes()
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"rows", len(view.Rows),
		"lanes", result.Stats.Lanes,
		"truncated", view.Truncated,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, view, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo lays out h with caching and returns cache hit info.
// Histories without a key are never cached.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, h History, opts Options) (*layout.View, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	frontiers := h.frontiers(opts)
	cacheKey := ""
	if h.Key != "" {
		cacheKey = r.Keyer.LayoutKey(h.Key, opts.LayoutKeyOpts(frontiers))
	}

	// Try cache first (unless refresh requested)
	if cacheKey != "" && !opts.Refresh {
		if view, ok := r.cachedLayout(ctx, cacheKey); ok {
			if err := checkUnresolved(view, opts); err != nil {
				return nil, true, err
			}
			return view, true, nil // Cache hit
		}
	}

	view, err := ComputeLayout(ctx, h.Resolver, frontiers, opts)
	if err != nil {
		return nil, false, err
	}
	if err := checkUnresolved(view, opts); err != nil {
		return nil, false, err
	}

	// Cache the result
	if cacheKey != "" {
		if data, err := lgio.MarshalLayout(view); err == nil {
			r.store(ctx, "layout", cacheKey, data, r.ttl(cache.TTLLayout))
		}
	}

	return view, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, h History, opts Options) (*layout.View, error) {
	view, _, err := r.LayoutWithCacheInfo(ctx, h, opts)
	return view, err
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (*layout.View, bool) {
	data, ok := r.lookup(ctx, "layout", key)
	if !ok {
		return nil, false
	}
	view, err := lgio.UnmarshalLayout(data)
	if err != nil {
		// Corrupt entry: fall through to recompute
		r.Logger.Debug("discarding cached layout", "key", key, "err", err)
		return nil, false
	}
	return view, true
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, view *layout.View, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := lgio.MarshalLayout(view)
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	// Collect cached formats, render the rest
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, ok := r.lookup(ctx, "artifact", key); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, true, nil // All artifacts from cache
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, view, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, "artifact", key, data, r.ttl(cache.TTLArtifact))
		artifacts[format] = data
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, view *layout.View, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, view, opts)
	return artifacts, err
}

// LoadHistory returns the dataset cached under key, or calls load and
// caches its result for [cache.TTLHistory]. It is meant for sources that are
// expensive to query, such as a remote event store.
func (r *Runner) LoadHistory(ctx context.Context, key string, refresh bool, load func(context.Context) (*lgio.Dataset, error)) (*lgio.Dataset, bool, error) {
	if !refresh {
		if data, ok := r.lookup(ctx, "history", key); ok {
			ds, err := lgio.ReadDataset(bytes.NewReader(data), lgio.FormatJSON)
			if err == nil {
				return ds, true, nil
			}
			r.Logger.Debug("discarding cached history", "key", key, "err", err)
		}
	}

	ds, err := load(ctx)
	if err != nil {
		return nil, false, Classify(err)
	}

	var buf bytes.Buffer
	if err := lgio.WriteDataset(ds, &buf, lgio.FormatJSON); err == nil {
		r.store(ctx, "history", key, buf.Bytes(), cache.TTLHistory)
	}
	return ds, false, nil
}

// lookup reads key from the cache. Backend failures count as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes key to the cache. Failures are logged, never returned.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
