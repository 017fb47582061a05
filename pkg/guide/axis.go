package guide

import (
	"math"
	"slices"

	"github.com/matzehuels/chartkit/pkg/layout"
	"github.com/matzehuels/chartkit/pkg/scale"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// Orient is the side of the plot frame an axis is drawn on.
type Orient string

// Axis orientations.
const (
	Bottom Orient = "bottom"
	Left   Orient = "left"
	Top    Orient = "top"
	Right  Orient = "right"
)

// horizontal reports whether the axis runs along x.
func (o Orient) horizontal() bool { return o == Bottom || o == Top }

// Axis defaults.
const (
	DefaultTicks    = 6
	DefaultTickSize = 6.0
	DefaultPadding  = 3.0
	DefaultFontSize = 11.0
	DefaultColor    = "#333333"
	DefaultGrid     = "#e5e5e5"
)

// AxisOptions configures Axis.
type AxisOptions struct {
	Name     string       // Used in keys: axis:<name>:...; defaults to the orientation
	Orient   Orient       // Side of the frame (default Bottom)
	Frame    layout.Frame // Plot area the axis borders
	Ticks    int          // Maximum number of ticks
	TickSize float64      // Tick length in pixels
	Padding  float64      // Gap between tick and label
	FontSize float64      // Label size, used to offset labels
	Title    string       // Optional axis title
	Color    string       // Line and label color
	Grid     bool         // Draw grid lines across the frame
	Hidden   bool         // Emit nothing
}

func (o *AxisOptions) setDefaults() {
	if o.Orient == "" {
		o.Orient = Bottom
	}
	if o.Name == "" {
		o.Name = string(o.Orient)
	}
	if o.Ticks <= 0 {
		o.Ticks = DefaultTicks
	}
	if o.TickSize <= 0 {
		o.TickSize = DefaultTickSize
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.Color == "" {
		o.Color = DefaultColor
	}
}

// Axis returns the primitives of an axis for sc: a domain line, one tick
// and label per scale tick, optional grid lines and an optional title.
//
// Keys are axis:<name>:domain, axis:<name>:tick:<label>,
// axis:<name>:label:<label>, axis:<name>:grid:<label> and
// axis:<name>:title, so ticks that survive a rescale slide to their new
// position instead of being replaced.
func Axis(sc scale.Scale, opts AxisOptions) []scene.Primitive {
	opts.setDefaults()
	if sc == nil || opts.Hidden {
		return nil
	}
	f := opts.Frame
	prefix := "axis:" + opts.Name + ":"

	// Cross coordinate of the axis line and the outward direction of ticks.
	var at, dir float64
	switch opts.Orient {
	case Top:
		at, dir = f.Top, -1
	case Left:
		at, dir = f.Left, -1
	case Right:
		at, dir = f.Right, 1
	default:
		at, dir = f.Bottom, 1
	}

	line := func(key string, a0, a1, c0, c1 float64, stroke string) scene.Primitive {
		p := scene.Primitive{
			Kind:  scene.KindLine,
			Key:   key,
			Attrs: scene.Attrs{Stroke: stroke, StrokeWidth: 1, Opacity: 1},
		}
		if opts.Orient.horizontal() {
			p.Attrs.X, p.Attrs.X2, p.Attrs.Y, p.Attrs.Y2 = a0, a1, c0, c1
		} else {
			p.Attrs.Y, p.Attrs.Y2, p.Attrs.X, p.Attrs.X2 = a0, a1, c0, c1
		}
		return p
	}

	var out []scene.Primitive
	r0, r1 := sc.Range()
	out = append(out, line(prefix+"domain", r0, r1, at, at, opts.Color))

	// Labels double as keys, so ticks rounding to the same label are dropped.
	seen := make(map[string]bool)
	ticks := slices.DeleteFunc(sc.Ticks(opts.Ticks), func(t scale.Tick) bool {
		drop := math.IsNaN(t.Pos) || seen[t.Label]
		seen[t.Label] = true
		return drop
	})
	if opts.Grid {
		lo, hi := f.Top, f.Bottom
		if !opts.Orient.horizontal() {
			lo, hi = f.Left, f.Right
		}
		for _, t := range ticks {
			out = append(out, line(prefix+"grid:"+t.Label, t.Pos, t.Pos, lo, hi, DefaultGrid))
		}
	}

	for _, t := range ticks {
		out = append(out, line(prefix+"tick:"+t.Label, t.Pos, t.Pos, at, at+dir*opts.TickSize, opts.Color))

		label := scene.Primitive{
			Kind:  scene.KindText,
			Key:   prefix + "label:" + t.Label,
			Attrs: scene.Attrs{Text: t.Label, Fill: opts.Color, Opacity: 1},
		}
		off := opts.TickSize + opts.Padding
		switch opts.Orient {
		case Bottom:
			label.Attrs.X, label.Attrs.Y, label.Attrs.Anchor = t.Pos, at+off+opts.FontSize*0.8, "middle"
		case Top:
			label.Attrs.X, label.Attrs.Y, label.Attrs.Anchor = t.Pos, at-off, "middle"
		case Left:
			label.Attrs.X, label.Attrs.Y, label.Attrs.Anchor = at-off, t.Pos+opts.FontSize*0.35, "end"
		case Right:
			label.Attrs.X, label.Attrs.Y, label.Attrs.Anchor = at+off, t.Pos+opts.FontSize*0.35, "start"
		}
		out = append(out, label)
	}

	if opts.Title != "" {
		title := scene.Primitive{
			Kind:  scene.KindText,
			Key:   prefix + "title",
			Attrs: scene.Attrs{Text: opts.Title, Fill: opts.Color, Opacity: 1, Anchor: "middle"},
		}
		mid := (r0 + r1) / 2
		gap := opts.TickSize + opts.Padding + 2.5*opts.FontSize
		if opts.Orient.horizontal() {
			title.Attrs.X, title.Attrs.Y = mid, at+dir*gap
		} else {
			title.Attrs.X, title.Attrs.Y, title.Attrs.Anchor = at+dir*gap, mid, "middle"
		}
		out = append(out, title)
	}
	return out
}
