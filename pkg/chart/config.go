package chart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/layout"
	"github.com/matzehuels/chartkit/pkg/scale"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default surface width in pixels.
	DefaultWidth = 640.0

	// DefaultHeight is the default surface height in pixels.
	DefaultHeight = 400.0

	// DefaultTransitionMs is the default transition length.
	DefaultTransitionMs = 750

	// DefaultCoalesceMs is the quiet period of the coalesce policy.
	DefaultCoalesceMs = 100

	// DefaultSeed is the default random seed for network layouts.
	DefaultSeed = uint64(42)

	// DefaultGroupPadding is the inner gap between grouped bars.
	DefaultGroupPadding = 0.1

	// DefaultBandPadding is the gap between category bands.
	DefaultBandPadding = 0.1
)

// DefaultMargins leave room for a bottom and a left axis.
var DefaultMargins = layout.Margins{Top: 20, Right: 20, Bottom: 40, Left: 50}

// UpdatePolicy selects how change notifications become passes.
type UpdatePolicy string

const (
	// Retarget reconciles every notification immediately. Transitions in
	// flight are retargeted from their current position.
	Retarget UpdatePolicy = "retarget"

	// Coalesce holds notifications and runs one pass with the latest state
	// once no notification has arrived for CoalesceMs.
	Coalesce UpdatePolicy = "coalesce"
)

// =============================================================================
// Config
// =============================================================================

// Config describes one chart. It is loadable from JSON or TOML and can be
// replaced on a mounted chart with SetConfig.
type Config struct {
	Kind    layout.Kind     `json:"kind" toml:"kind" bson:"kind"`
	Width   float64         `json:"width,omitempty" toml:"width" bson:"width,omitempty"`
	Height  float64         `json:"height,omitempty" toml:"height" bson:"height,omitempty"`
	Margins *layout.Margins `json:"margins,omitempty" toml:"margins" bson:"margins,omitempty"`
	Title   string          `json:"title,omitempty" toml:"title" bson:"title,omitempty"`

	// Data fields
	Keys    data.Keys          `json:"keys" toml:"keys" bson:"keys"`
	Missing data.MissingPolicy `json:"missing,omitempty" toml:"missing" bson:"missing,omitempty"`

	// Scales
	XScale        scale.Kind `json:"x_scale,omitempty" toml:"x_scale" bson:"x_scale,omitempty"` // linear, log or time for continuous x
	YScale        scale.Kind `json:"y_scale,omitempty" toml:"y_scale" bson:"y_scale,omitempty"` // linear or log
	Domain        []float64  `json:"domain,omitempty" toml:"domain" bson:"domain,omitempty"`    // Fixed value domain [lo, hi]
	XDomain       []float64  `json:"x_domain,omitempty" toml:"x_domain" bson:"x_domain,omitempty"`
	Categories    []string   `json:"categories,omitempty" toml:"categories" bson:"categories,omitempty"` // Category order
	DomainPadding float64    `json:"domain_padding,omitempty" toml:"domain_padding" bson:"domain_padding,omitempty"`
	IncludeZero   *bool      `json:"include_zero,omitempty" toml:"include_zero" bson:"include_zero,omitempty"`
	Nice          bool       `json:"nice,omitempty" toml:"nice" bson:"nice,omitempty"`
	BandPadding   *float64   `json:"band_padding,omitempty" toml:"band_padding" bson:"band_padding,omitempty"`
	Colors        []string   `json:"colors,omitempty" toml:"colors" bson:"colors,omitempty"`

	// Layout
	StackOrder   []string `json:"stack_order,omitempty" toml:"stack_order" bson:"stack_order,omitempty"`
	GroupPadding float64  `json:"group_padding,omitempty" toml:"group_padding" bson:"group_padding,omitempty"`
	Stacked      bool     `json:"stacked,omitempty" toml:"stacked" bson:"stacked,omitempty"`
	Markers      bool     `json:"markers,omitempty" toml:"markers" bson:"markers,omitempty"`
	Seed         uint64   `json:"seed,omitempty" toml:"seed" bson:"seed,omitempty"`
	Iterations   int      `json:"iterations,omitempty" toml:"iterations" bson:"iterations,omitempty"`
	Thresholds   int      `json:"thresholds,omitempty" toml:"thresholds" bson:"thresholds,omitempty"`
	Bandwidth    float64  `json:"bandwidth,omitempty" toml:"bandwidth" bson:"bandwidth,omitempty"`
	Separator    string   `json:"separator,omitempty" toml:"separator" bson:"separator,omitempty"`
	Beta         float64  `json:"beta,omitempty" toml:"beta" bson:"beta,omitempty"`

	// Guides
	HideAxes   bool   `json:"hide_axes,omitempty" toml:"hide_axes" bson:"hide_axes,omitempty"`
	Grid       bool   `json:"grid,omitempty" toml:"grid" bson:"grid,omitempty"`
	Legend     bool   `json:"legend,omitempty" toml:"legend" bson:"legend,omitempty"`
	XTitle     string `json:"x_title,omitempty" toml:"x_title" bson:"x_title,omitempty"`
	YTitle     string `json:"y_title,omitempty" toml:"y_title" bson:"y_title,omitempty"`
	Background string `json:"background,omitempty" toml:"background" bson:"background,omitempty"`

	// Transitions
	TransitionMs int          `json:"transition_ms,omitempty" toml:"transition_ms" bson:"transition_ms,omitempty"`
	DelayMs      int          `json:"delay_ms,omitempty" toml:"delay_ms" bson:"delay_ms,omitempty"`
	StaggerMs    int          `json:"stagger_ms,omitempty" toml:"stagger_ms" bson:"stagger_ms,omitempty"`
	Easing       string       `json:"easing,omitempty" toml:"easing" bson:"easing,omitempty"`
	Immediate    bool         `json:"immediate,omitempty" toml:"immediate" bson:"immediate,omitempty"` // Disable transitions
	UpdatePolicy UpdatePolicy `json:"update_policy,omitempty" toml:"update_policy" bson:"update_policy,omitempty"`
	CoalesceMs   int          `json:"coalesce_ms,omitempty" toml:"coalesce_ms" bson:"coalesce_ms,omitempty"`
}

// SetDefaults fills zero-valued fields. It is idempotent.
func (c *Config) SetDefaults() {
	if c.Kind == "" {
		c.Kind = layout.KindBar
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.Margins == nil {
		m := DefaultMargins
		c.Margins = &m
	}
	c.Keys = c.Keys.WithDefaults()
	if c.Missing == "" {
		c.Missing = data.MissingSkip
	}
	if c.GroupPadding == 0 {
		c.GroupPadding = DefaultGroupPadding
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.TransitionMs == 0 && !c.Immediate {
		c.TransitionMs = DefaultTransitionMs
	}
	if c.Easing == "" {
		c.Easing = scene.DefaultEasing
	}
	if c.UpdatePolicy == "" {
		c.UpdatePolicy = Retarget
	}
	if c.CoalesceMs == 0 {
		c.CoalesceMs = DefaultCoalesceMs
	}
}

// Validate checks the config. Call SetDefaults first.
func (c *Config) Validate() error {
	if !c.Kind.Valid() {
		names := make([]string, len(layout.Kinds))
		for i, k := range layout.Kinds {
			names[i] = string(k)
		}
		return errors.New(errors.ErrCodeInvalidChartKind, "unknown chart kind %q (must be one of: %s)", string(c.Kind), strings.Join(names, ", "))
	}
	if c.Width < 0 || c.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "width and height must not be negative")
	}
	if err := c.Keys.Validate(); err != nil {
		return err
	}
	if err := c.Missing.Validate(); err != nil {
		return err
	}
	for _, d := range [][]float64{c.Domain, c.XDomain} {
		if len(d) != 0 && len(d) != 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "domain must have exactly two values, got %d", len(d))
		}
	}
	switch c.XScale {
	case "", scale.KindLinear, scale.KindLog, scale.KindTime:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid x_scale %q (must be linear, log or time)", string(c.XScale))
	}
	switch c.YScale {
	case "", scale.KindLinear, scale.KindLog:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid y_scale %q (must be linear or log)", string(c.YScale))
	}
	if _, err := scene.EasingByName(c.Easing); err != nil {
		return err
	}
	switch c.UpdatePolicy {
	case Retarget, Coalesce:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid update_policy %q (must be retarget or coalesce)", string(c.UpdatePolicy))
	}
	if c.TransitionMs < 0 || c.DelayMs < 0 || c.StaggerMs < 0 || c.CoalesceMs < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (c *Config) ValidateAndSetDefaults() error {
	c.SetDefaults()
	return c.Validate()
}

// Timeline returns the transition schedule described by the config.
func (c *Config) Timeline() scene.Timeline {
	if c.Immediate {
		return scene.Immediate
	}
	// An unknown name falls back to the default easing; Validate reports it.
	ease, _ := scene.EasingByName(c.Easing)
	return scene.Timeline{
		Duration: time.Duration(c.TransitionMs) * time.Millisecond,
		Delay:    time.Duration(c.DelayMs) * time.Millisecond,
		Stagger:  time.Duration(c.StaggerMs) * time.Millisecond,
		Ease:     ease,
	}
}

// CoalesceWindow returns the quiet period of the coalesce policy.
func (c *Config) CoalesceWindow() time.Duration {
	return time.Duration(c.CoalesceMs) * time.Millisecond
}

// includeZero reports whether derived value domains extend to zero. Bars and
// areas default to true, other kinds to false.
func (c *Config) includeZero() bool {
	if c.IncludeZero != nil {
		return *c.IncludeZero
	}
	switch c.Kind {
	case layout.KindBar, layout.KindGrouped, layout.KindStacked, layout.KindArea:
		return true
	}
	return false
}

// bandPadding returns the band padding fraction, DefaultBandPadding when unset.
func (c *Config) bandPadding() float64 {
	if c.BandPadding != nil {
		return *c.BandPadding
	}
	return DefaultBandPadding
}

// =============================================================================
// Loading
// =============================================================================

// ParseConfig decodes a config from JSON or TOML. format is "json", "toml",
// or "" to detect from the first non-space byte.
func ParseConfig(b []byte, format string) (Config, error) {
	var c Config
	if format == "" {
		format = "toml"
		if s := strings.TrimSpace(string(b)); strings.HasPrefix(s, "{") {
			format = "json"
		}
	}
	switch format {
	case "json":
		if err := json.Unmarshal(b, &c); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode json config")
		}
	case "toml":
		if _, err := toml.Decode(string(b), &c); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml config")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config format %q", format)
	}
	return c, nil
}

// LoadConfig reads a config file, choosing the decoder by extension.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	format := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = "json"
	case ".toml":
		format = "toml"
	}
	return ParseConfig(b, format)
}
