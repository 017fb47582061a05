// Package pipeline provides the offline chart pipeline for chartkit.
//
// The pipeline turns a chart spec (a config plus a data series) into
// rendered artifacts. It is shared by the CLI and the HTTP host so both
// produce identical output for identical input.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Scene: mount a chart on an offscreen surface, apply the data and
//     settle every transition. The settled scene is cached as JSON.
//  2. Render: write the settled surface in each requested format
//     (SVG, PNG, PDF, JSON, DOT). Each artifact is cached separately.
//
// Cache keys derive from a hash of the spec, so editing either the config
// or the data invalidates both stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config:  cfg,
//	    Data:    series,
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartkit/pkg/cache"
	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultFormat is rendered when no format is requested.
	DefaultFormat = string(render.FormatSVG)
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Spec
	Config chart.Config `json:"config"`
	Data   data.Series  `json:"data"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Interactive bool     `json:"interactive,omitempty"` // Hover highlighting in SVG
	Pinned      bool     `json:"pinned,omitempty"`      // Keep chart positions in DOT
	Refresh     bool     `json:"refresh,omitempty"`     // Bypass cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the settled scene the artifacts were rendered from.
	Scene render.Scene

	// SpecHash is the content hash of config and data.
	SpecHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings lists the points dropped by the layout. Empty on a scene
	// cache hit.
	Warnings []data.Warning

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Points     int
	Elements   int
	SceneTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SceneHit  bool // Whether the settled scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults validates the chart config and the requested
// formats and applies defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForScene(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForScene validates the chart config.
func (o *Options) ValidateForScene() error {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Config.ValidateAndSetDefaults()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and normalizes the format names,
// so "SVG" and ".svg" both become "svg".
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	formats := make([]string, 0, len(o.Formats))
	seen := make(map[string]bool, len(o.Formats))
	for _, f := range o.Formats {
		format, err := render.ParseFormat(f)
		if err != nil {
			return err
		}
		if !seen[string(format)] {
			seen[string(format)] = true
			formats = append(formats, string(format))
		}
	}
	o.Formats = formats
	return nil
}

// SpecHash hashes the config and data. Equal specs hash equally.
func (o *Options) SpecHash() (string, error) {
	return cache.HashJSON(struct {
		Config chart.Config `json:"config"`
		Data   data.Series  `json:"data"`
	}{o.Config, o.Data})
}

// RenderOptions returns the sink settings for this run.
func (o *Options) RenderOptions() render.Options {
	return render.Options{
		Title:       o.Config.Title,
		Kind:        string(o.Config.Kind),
		Scale:       o.Scale,
		MarkLayer:   chart.LayerMarks,
		Interactive: o.Interactive,
		Pinned:      o.Pinned,
	}
}

// ArtifactKeyOpts returns cache key options for one artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Title: o.Config.Title}
	switch render.Format(format) {
	case render.FormatPNG:
		opts.Scale = o.Scale
	case render.FormatSVG, render.FormatPDF:
		opts.Interactive = o.Interactive
	case render.FormatDOT:
		opts.Pinned = o.Pinned
	}
	return opts
}
