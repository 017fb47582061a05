package chart

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/guide"
	"github.com/matzehuels/chartkit/pkg/layout"
	"github.com/matzehuels/chartkit/pkg/observability"
	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// Surface layers, bottom first.
const (
	LayerGuides = "guides"
	LayerMarks  = "marks"
)

// State is the lifecycle state of a Chart.
type State int

const (
	// Unmounted charts hold config and data but draw nothing.
	Unmounted State = iota
	// Mounted charts own a surface but have not completed a pass yet.
	Mounted
	// Rendered charts have drawn at least one pass.
	Rendered
)

func (s State) String() string {
	switch s {
	case Mounted:
		return "mounted"
	case Rendered:
		return "rendered"
	}
	return "unmounted"
}

// Pass summarizes one completed update.
type Pass struct {
	At       time.Time
	Marks    scene.Diff
	Guides   scene.Diff
	Warnings []data.Warning
	Duration time.Duration
}

// Options configures New.
type Options struct {
	// Clock supplies pass times. Nil uses the system clock.
	Clock scene.Clock
	// Logger receives pass logs. Nil discards.
	Logger *log.Logger
	// ID overrides the generated chart id.
	ID string
}

// Chart is a reactive chart component. Every change notification (SetData,
// Resize, SetConfig) rebuilds scales, runs the layout of the configured kind
// and reconciles the result with what is already on the surface, so marks
// whose keys persist animate in place.
//
// A Chart is not safe for concurrent use; hosts serialize access.
type Chart struct {
	id     string
	cfg    Config
	series data.Series
	clock  scene.Clock
	logger *log.Logger

	state   State
	surface *surface.Surface
	marks   *scene.Reconciler
	guides  *scene.Reconciler

	last    Pass
	lastErr error

	// Coalesce policy bookkeeping.
	pending    bool
	lastNotify time.Time

	hover []func(surface.Hit)
	click []func(surface.Hit)
}

// New returns an unmounted chart. The config is validated after defaults are
// applied.
func New(cfg Config, opts Options) (*Chart, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = scene.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	return &Chart{
		id:     opts.ID,
		cfg:    cfg,
		clock:  opts.Clock,
		logger: opts.Logger.With("chart", opts.ID),
	}, nil
}

// ID returns the chart's unique id.
func (c *Chart) ID() string { return c.id }

// State returns the lifecycle state.
func (c *Chart) State() State { return c.state }

// Config returns a copy of the current config.
func (c *Chart) Config() Config { return c.cfg }

// Data returns the current series.
func (c *Chart) Data() data.Series { return c.series }

// Surface returns the mounted surface, or nil.
func (c *Chart) Surface() *surface.Surface { return c.surface }

// LastPass returns the summary of the latest successful pass.
func (c *Chart) LastPass() Pass { return c.last }

// Err returns the error of the latest pass, or nil if it succeeded. Passes
// run from Tick under the coalesce policy report their errors here.
func (c *Chart) Err() error { return c.lastErr }

// Mount attaches the chart to s and runs a pass when data is present.
//
// A surface without area leaves the chart mounted with nothing drawn and
// returns a SURFACE_UNAVAILABLE error; the next notification retries.
func (c *Chart) Mount(s *surface.Surface) error {
	if c.state != Unmounted {
		return errors.New(errors.ErrCodeInvalidConfig, "chart %s is already mounted", c.id)
	}
	if s == nil {
		return errors.New(errors.ErrCodeSurfaceUnavailable, "nil surface")
	}
	c.surface = s
	tl := c.cfg.Timeline()
	c.marks = scene.NewReconciler(s, scene.Options{Layer: LayerMarks, Timeline: tl, Logger: c.logger})
	c.guides = scene.NewReconciler(s, scene.Options{Layer: LayerGuides, Timeline: tl, Logger: c.logger})
	s.SetLayerOrder(LayerGuides, LayerMarks)
	s.OnPointer(c.pointer)
	c.state = Mounted
	c.logger.Debug("mounted")

	if err := s.Available(); err != nil {
		c.lastErr = err
		c.logger.Warn("surface unavailable", "err", err)
		return err
	}
	if c.series == nil {
		return nil
	}
	return c.pass(c.clock.Now())
}

// SetData replaces the series. On an unmounted chart the data is kept for
// the next Mount.
func (c *Chart) SetData(s data.Series) error {
	c.series = s
	return c.notify("data")
}

// Resize changes the surface dimensions and runs a pass with rebuilt scales.
func (c *Chart) Resize(width, height float64) error {
	c.cfg.Width, c.cfg.Height = width, height
	if c.surface != nil {
		c.surface.Resize(width, height)
	}
	return c.notify("resize")
}

// SetConfig replaces the config. The new timeline applies to transitions
// scheduled from now on.
func (c *Chart) SetConfig(cfg Config) error {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}
	c.cfg = cfg
	if c.state != Unmounted {
		tl := cfg.Timeline()
		c.marks.SetTimeline(tl)
		c.guides.SetTimeline(tl)
	}
	return c.notify("config")
}

// Unmount cancels every transition and releases the surface. Later Tick
// calls are no-ops.
func (c *Chart) Unmount() {
	if c.state == Unmounted {
		return
	}
	c.marks.Cancel()
	c.guides.Cancel()
	c.surface.Close()
	c.surface, c.marks, c.guides = nil, nil, nil
	c.pending = false
	c.state = Unmounted
	c.logger.Debug("unmounted")
}

// OnHover registers fn for pointer moves over data marks.
func (c *Chart) OnHover(fn func(surface.Hit)) {
	if fn != nil {
		c.hover = append(c.hover, fn)
	}
}

// OnClick registers fn for clicks on data marks.
func (c *Chart) OnClick(fn func(surface.Hit)) {
	if fn != nil {
		c.click = append(c.click, fn)
	}
}

// Pointer delivers a pointer event from the host. It reports the mark that
// was hit, if any.
func (c *Chart) Pointer(ev surface.Event) (surface.Hit, bool) {
	if c.state == Unmounted {
		return surface.Hit{}, false
	}
	return c.surface.Dispatch(ev)
}

func (c *Chart) pointer(h surface.Hit) {
	if h.Layer != LayerMarks {
		return
	}
	fns := c.hover
	if h.Type == surface.PointerClick {
		fns = c.click
	}
	for _, fn := range fns {
		fn(h)
	}
}

// Tick advances transitions to now and, under the coalesce policy, runs the
// held pass once the quiet period has elapsed. It reports whether more
// frames are needed.
func (c *Chart) Tick(now time.Time) bool {
	if c.state == Unmounted {
		return false
	}
	if c.pending && now.Sub(c.lastNotify) >= c.cfg.CoalesceWindow() {
		c.pending = false
		if err := c.pass(now); err != nil {
			c.logger.Warn("coalesced pass failed", "err", err)
		}
	}
	active := c.marks.Advance(now)
	active = c.guides.Advance(now) || active
	return active || c.pending
}

// Active reports whether transitions or a held pass are outstanding.
func (c *Chart) Active() bool {
	if c.state == Unmounted {
		return false
	}
	return c.pending || c.marks.Active() || c.guides.Active()
}

// Settle flushes a held pass and completes every transition.
func (c *Chart) Settle() error {
	if c.state == Unmounted {
		return nil
	}
	var err error
	if c.pending {
		c.pending = false
		err = c.pass(c.clock.Now())
	}
	c.marks.Settle()
	c.guides.Settle()
	return err
}

// Elements returns snapshots of the data marks in draw order.
func (c *Chart) Elements() []scene.Snapshot {
	if c.marks == nil {
		return nil
	}
	return c.marks.Elements()
}

// notify handles a change notification according to the update policy.
func (c *Chart) notify(reason string) error {
	if c.state == Unmounted {
		return nil
	}
	if c.cfg.UpdatePolicy == Coalesce {
		c.pending = true
		c.lastNotify = c.clock.Now()
		c.logger.Debug("notification held", "reason", reason)
		return nil
	}
	c.logger.Debug("notification", "reason", reason)
	return c.pass(c.clock.Now())
}

// pass runs one full update at now. On failure the scene and surface are
// left exactly as they were.
func (c *Chart) pass(now time.Time) (err error) {
	start := time.Now()
	defer func() { c.lastErr = err }()

	if err := c.surface.Available(); err != nil {
		c.logger.Warn("surface unavailable", "err", err)
		return err
	}

	kind := string(c.cfg.Kind)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(context.Background(), kind, len(c.series))
	marks, guides, warnings, err := c.build()
	hooks.OnLayoutComplete(context.Background(), kind, time.Since(start), err)
	if err != nil {
		c.logger.Error("pass failed", "kind", kind, "err", err)
		return err
	}

	// Both layers are checked up front so a bad guide key cannot leave the
	// marks reconciled and the guides stale.
	if err := scene.CheckKeys(marks); err != nil {
		c.logger.Error("pass failed", "kind", kind, "err", err)
		return err
	}
	if err := scene.CheckKeys(guides); err != nil {
		c.logger.Error("pass failed", "kind", kind, "err", err)
		return err
	}
	md, err := c.marks.Reconcile(marks, now)
	if err != nil {
		return err
	}
	gd, err := c.guides.Reconcile(guides, now)
	if err != nil {
		return err
	}

	for _, w := range warnings {
		c.logger.Warn("point skipped", "index", w.Index, "field", w.Field)
	}
	c.last = Pass{At: now, Marks: md, Guides: gd, Warnings: warnings, Duration: time.Since(start)}
	c.state = Rendered
	c.logger.Debug("pass", "kind", kind, "entering", len(md.Entering),
		"persisting", len(md.Persisting), "exiting", len(md.Exiting), "warnings", len(warnings))
	return nil
}

// build plans scales, runs the layout and builds guides for the current
// config, data and surface size.
func (c *Chart) build() (marks, guides []scene.Primitive, warnings []data.Warning, err error) {
	w, h := c.surface.Size()
	frame := layout.NewFrame(w, h, *c.cfg.Margins)

	plan, err := planners[c.cfg.Kind](&c.cfg, c.series, frame)
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := layout.Layout(c.cfg.Kind, c.series, plan.scales, plan.opts)
	if err != nil {
		return nil, nil, nil, err
	}
	return res.Primitives, c.guidePrimitives(plan, frame), res.Warnings, nil
}

// guidePrimitives builds axes, legend and title for a plan.
func (c *Chart) guidePrimitives(p plan, frame layout.Frame) []scene.Primitive {
	var out []scene.Primitive
	if p.axes && !c.cfg.HideAxes {
		out = append(out, guide.Axis(p.scales.X, guide.AxisOptions{
			Name: "x", Orient: guide.Bottom, Frame: frame, Title: c.cfg.XTitle,
		})...)
		out = append(out, guide.Axis(p.scales.Y, guide.AxisOptions{
			Name: "y", Orient: guide.Left, Frame: frame, Title: c.cfg.YTitle, Grid: c.cfg.Grid,
		})...)
	}
	if c.cfg.Legend && p.scales.Color != nil {
		out = append(out, guide.Legend(p.scales.Color, guide.LegendOptions{
			X: frame.Right + 10,
			Y: frame.Top,
		})...)
	}
	if c.cfg.Title != "" {
		w, _ := c.surface.Size()
		out = append(out, scene.Primitive{
			Kind: scene.KindText,
			Key:  "title",
			Attrs: scene.Attrs{
				X: w / 2, Y: max(guide.DefaultFontSize, c.cfg.Margins.Top*0.7),
				Text: c.cfg.Title, Fill: guide.DefaultColor, Anchor: "middle", Opacity: 1,
			},
		})
	}
	return out
}

// Keys returns the keys of the live data marks in draw order.
func (c *Chart) Keys() []string {
	if c.marks == nil {
		return nil
	}
	return c.marks.Keys()
}
