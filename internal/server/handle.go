package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/render"
	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/store"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// handle owns one mounted chart. Charts are not safe for concurrent use, so
// every access goes through mu.
//
// Each handle runs on its own manual clock starting at the zero time, so
// frame requests address transitions by milliseconds since creation.
type handle struct {
	mu    sync.Mutex
	def   store.Definition
	chart *chart.Chart
	clock *scene.ManualClock
}

// clockStart is the time of t=0 on every handle clock.
var clockStart = time.Unix(0, 0).UTC()

// newHandle mounts a chart for def and applies its data. A failing first
// pass unmounts the chart and returns the error.
func newHandle(def store.Definition, logger *log.Logger) (*handle, error) {
	clock := scene.NewManualClock(clockStart)
	c, err := chart.New(def.Config, chart.Options{Clock: clock, Logger: logger, ID: def.ID})
	if err != nil {
		return nil, err
	}
	cfg := c.Config()
	def.Config = cfg
	if err := c.Mount(surface.New(cfg.Width, cfg.Height, surface.WithBackground(cfg.Background))); err != nil {
		c.Unmount()
		return nil, err
	}
	if def.Data != nil {
		if err := c.SetData(def.Data); err != nil {
			c.Unmount()
			return nil, err
		}
	}
	return &handle{def: def, chart: c, clock: clock}, nil
}

// status is the JSON view of a handle.
type status struct {
	ID        string         `json:"id"`
	State     string         `json:"state"`
	Active    bool           `json:"active"`
	Clock     int64          `json:"clock_ms"`
	Config    chart.Config   `json:"config"`
	Points    int            `json:"points"`
	Elements  int            `json:"elements"`
	LastPass  *passSummary   `json:"last_pass,omitempty"`
	Warnings  []data.Warning `json:"warnings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// passSummary counts the mark partitions of a pass.
type passSummary struct {
	Entering   int   `json:"entering"`
	Persisting int   `json:"persisting"`
	Unchanged  int   `json:"unchanged"`
	Exiting    int   `json:"exiting"`
	ClockMs    int64 `json:"clock_ms"`
}

// statusLocked snapshots the handle. h.mu must be held.
func (h *handle) statusLocked() status {
	st := status{
		ID:        h.def.ID,
		State:     h.chart.State().String(),
		Active:    h.chart.Active(),
		Clock:     h.elapsedLocked(),
		Config:    h.chart.Config(),
		Points:    len(h.def.Data),
		Elements:  len(h.chart.Elements()),
		CreatedAt: h.def.CreatedAt,
		UpdatedAt: h.def.UpdatedAt,
	}
	if h.chart.State() == chart.Rendered {
		last := h.chart.LastPass()
		st.LastPass = &passSummary{
			Entering:   len(last.Marks.Entering),
			Persisting: len(last.Marks.Persisting),
			Unchanged:  len(last.Marks.Unchanged),
			Exiting:    len(last.Marks.Exiting),
			ClockMs:    last.At.Sub(clockStart).Milliseconds(),
		}
		st.Warnings = last.Warnings
	}
	return st
}

func (h *handle) elapsedLocked() int64 {
	return h.clock.Now().Sub(clockStart).Milliseconds()
}

// setData runs a data pass. The definition only changes when the pass
// succeeds.
func (h *handle) setData(s data.Series, now time.Time) (status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.chart.SetData(s); err != nil {
		return status{}, err
	}
	h.def.Data = s
	h.def.UpdatedAt = now
	return h.statusLocked(), nil
}

// resize runs a resize pass. The chart keeps the new size even when the pass
// fails, so the definition follows it either way.
func (h *handle) resize(width, height float64, now time.Time) (status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	err := h.chart.Resize(width, height)
	h.def.Config.Width, h.def.Config.Height = width, height
	h.def.UpdatedAt = now
	if err != nil {
		return status{}, err
	}
	return h.statusLocked(), nil
}

// frame advances the clock to t milliseconds (never backwards) and returns
// the current surface as SVG. A negative t keeps the clock where it is.
func (h *handle) frame(ctx context.Context, t int64) ([]byte, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t >= 0 {
		if at := clockStart.Add(time.Duration(t) * time.Millisecond); at.After(h.clock.Now()) {
			h.clock.Set(at)
		}
	}
	active := h.chart.Tick(h.clock.Now())
	svg, err := render.Render(ctx, h.chart.Surface(), render.FormatSVG, render.Options{
		Title:       h.def.Config.Title,
		MarkLayer:   chart.LayerMarks,
		Interactive: true,
	})
	return svg, active, err
}

// definition returns a copy of the stored definition.
func (h *handle) definition() store.Definition {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.def
}

func (h *handle) status() status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statusLocked()
}

func (h *handle) unmount() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.chart.Unmount()
}
