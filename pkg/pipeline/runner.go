package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartkit/pkg/cache"
	"github.com/matzehuels/chartkit/pkg/data"
	chartio "github.com/matzehuels/chartkit/pkg/io"
	"github.com/matzehuels/chartkit/pkg/observability"
	"github.com/matzehuels/chartkit/pkg/render"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP host use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete scene → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	specHash, err := opts.SpecHash()
	if err != nil {
		return nil, err
	}
	result := &Result{SpecHash: specHash}

	// Stage 1: Scene
	sceneStart := time.Now()
	s, warnings, sceneHit, err := r.SceneWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	result.Scene = render.BuildScene(s, render.WithJSONKind(string(opts.Config.Kind)))
	result.Warnings = warnings
	result.Stats.Points = len(opts.Data)
	result.Stats.Elements = s.Len()
	result.Stats.SceneTime = time.Since(sceneStart)
	result.CacheInfo.SceneHit = sceneHit

	r.Logger.Info("settled scene",
		"kind", opts.Config.Kind,
		"points", result.Stats.Points,
		"elements", result.Stats.Elements,
		"cached", sceneHit,
		"duration", result.Stats.SceneTime)
	for _, w := range warnings {
		r.Logger.Warn("skipped point", "index", w.Index, "field", w.Field)
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, s, specHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
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

// SceneWithCacheInfo returns the settled surface for opts and whether it
// came from the cache.
func (r *Runner) SceneWithCacheInfo(ctx context.Context, opts Options) (*surface.Surface, []data.Warning, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForScene(); err != nil {
		return nil, nil, false, err
	}
	specHash, err := opts.SpecHash()
	if err != nil {
		return nil, nil, false, err
	}
	cacheKey := r.Keyer.SceneKey(specHash)
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if raw, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if sc, err := chartio.ReadScene(bytes.NewReader(raw)); err == nil {
				hooks.OnCacheHit(ctx, "scene")
				return chartio.Restore(sc), nil, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		hooks.OnCacheMiss(ctx, "scene")
	}

	pipelineHooks := observability.Pipeline()
	kind := string(opts.Config.Kind)
	pipelineHooks.OnLayoutStart(ctx, kind, len(opts.Data))
	start := time.Now()
	s, warnings, err := BuildScene(ctx, opts)
	pipelineHooks.OnLayoutComplete(ctx, kind, time.Since(start), err)
	if err != nil {
		return nil, nil, false, err
	}

	raw, err := render.RenderJSON(s, render.WithJSONKind(kind), render.WithJSONData())
	if err == nil {
		if err := r.Cache.Set(ctx, cacheKey, raw, cache.TTLScene); err != nil {
			r.Logger.Warn("cache scene", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "scene", len(raw))
		}
	}

	return s, warnings, false, nil
}

// Scene is a convenience wrapper that calls SceneWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Scene(ctx context.Context, opts Options) (*surface.Surface, error) {
	s, _, _, err := r.SceneWithCacheInfo(ctx, opts)
	return s, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. specHash keys the artifacts; it must be the hash of the spec s
// was built from.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *surface.Surface, specHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	// Try to get all formats from cache
	if !opts.Refresh {
		allCached := true
		artifacts := make(map[string][]byte)
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(specHash, opts.ArtifactKeyOpts(format))
			if raw, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = raw
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			hooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		hooks.OnCacheMiss(ctx, "artifact")
	}

	pipelineHooks := observability.Pipeline()
	pipelineHooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderScene(ctx, s, opts)
	pipelineHooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, raw := range rendered {
		cacheKey := r.Keyer.ArtifactKey(specHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, raw, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache artifact", "format", format, "err", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(raw))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, s *surface.Surface, specHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, specHash, opts)
	return artifacts, err
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
