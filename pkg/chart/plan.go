package chart

import (
	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/layout"
	"github.com/matzehuels/chartkit/pkg/scale"
)

// plan is everything a pass needs besides the data: scales mapped onto the
// current frame and the layout options derived from the config.
type plan struct {
	scales layout.Scales
	opts   layout.Options
	axes   bool // cartesian kinds draw x and y axes
}

// planner builds the plan for one chart kind. It runs on every pass so that
// scales always reflect the latest data, config and surface size.
type planner func(c *Config, s data.Series, frame layout.Frame) (plan, error)

var planners = map[layout.Kind]planner{
	layout.KindBar:     planBars,
	layout.KindGrouped: planBars,
	layout.KindStacked: planBars,
	layout.KindLine:    planXY,
	layout.KindArea:    planXY,
	layout.KindScatter: planXY,
	layout.KindContour: planXY,
	layout.KindNetwork: planGraph,
	layout.KindBundle:  planGraph,
}

// layoutOptions copies the layout-relevant fields of c.
func layoutOptions(c *Config, frame layout.Frame) layout.Options {
	return layout.Options{
		Keys:         c.Keys,
		Missing:      c.Missing,
		Frame:        frame,
		GroupPadding: c.GroupPadding,
		StackOrder:   c.StackOrder,
		Stacked:      c.Stacked,
		Markers:      c.Markers,
		Seed:         c.Seed,
		Iterations:   c.Iterations,
		Thresholds:   c.Thresholds,
		Bandwidth:    c.Bandwidth,
		Separator:    c.Separator,
		Beta:         c.Beta,
	}
}

func scaleOptions(c *Config) scale.Options {
	return scale.Options{
		Padding:      c.DomainPadding,
		IncludeZero:  c.includeZero(),
		Nice:         c.Nice,
		Order:        c.Categories,
		PaddingInner: c.bandPadding(),
		PaddingOuter: c.bandPadding() / 2,
	}
}

// valueScale builds the y scale over the value domain of the kind, or over
// the configured fixed domain.
func valueScale(c *Config, s data.Series, opts layout.Options, frame layout.Frame) (scale.Scale, error) {
	kind := c.YScale
	if kind == "" {
		kind = scale.KindLinear
	}
	dom := layout.ValueDomain(c.Kind, s, opts)
	if len(c.Domain) == 2 {
		dom = scale.Fixed(c.Domain[0], c.Domain[1])
	}
	return scale.Build(kind, dom, frame.YRange(), scaleOptions(c))
}

// colors builds the color scale over the series key. Ungrouped data is
// colored by field, or by the fixed names when field is empty.
func colors(c *Config, s data.Series, field string, names ...string) *scale.Colors {
	switch {
	case c.Keys.Series != "":
		return scale.NewColors(s.Unique(c.Keys.Series), c.Colors)
	case field == "":
		return scale.NewColors(names, c.Colors)
	}
	cats := s.Unique(field)
	if field == c.Keys.Category && len(c.Categories) > 0 {
		cats = mergeOrder(c.Categories, cats)
	}
	return scale.NewColors(cats, c.Colors)
}

// mergeOrder returns order followed by the entries of rest not in order.
func mergeOrder(order, rest []string) []string {
	out := append([]string(nil), order...)
	have := make(map[string]bool, len(order))
	for _, o := range order {
		have[o] = true
	}
	for _, r := range rest {
		if !have[r] {
			out = append(out, r)
		}
	}
	return out
}

// planBars: band x over categories, linear (or log) y over values or stack
// totals.
func planBars(c *Config, s data.Series, frame layout.Frame) (plan, error) {
	opts := layoutOptions(c, frame)
	x, err := scale.Build(scale.KindBand, scale.FromSeries(s, c.Keys.Category), frame.XRange(), scaleOptions(c))
	if err != nil {
		return plan{}, err
	}
	y, err := valueScale(c, s, opts, frame)
	if err != nil {
		return plan{}, err
	}
	return plan{
		scales: layout.Scales{X: x, Y: y, Color: colors(c, s, c.Keys.Category)},
		opts:   opts,
		axes:   true,
	}, nil
}

// xScale builds the x scale for line, area, scatter and contour charts. An
// unset x_scale picks linear for numeric fields, time for date strings and
// an ordinal (point) scale for anything else.
func xScale(c *Config, s data.Series, field string, frame layout.Frame) (scale.Scale, error) {
	kind := c.XScale
	if kind == "" {
		kind = detectScale(s, field)
	}
	opts := scaleOptions(c)
	opts.IncludeZero = false
	if kind == scale.KindOrdinal {
		return scale.Build(kind, scale.FromSeries(s, field), frame.XRange(), opts)
	}
	dom := scale.FromSeries(s, field)
	if len(c.XDomain) == 2 {
		dom = scale.Fixed(c.XDomain[0], c.XDomain[1])
	}
	return scale.Build(kind, dom, frame.XRange(), opts)
}

// detectScale inspects the first point carrying field.
func detectScale(s data.Series, field string) scale.Kind {
	for _, p := range s {
		if !p.Has(field) {
			continue
		}
		if _, ok := p.Number(field); ok {
			return scale.KindLinear
		}
		if _, ok := p.Time(field); ok {
			return scale.KindTime
		}
		return scale.KindOrdinal
	}
	return scale.KindLinear
}

// planXY: continuous (or detected) x, value y. Used by line, area, scatter
// and contour charts.
func planXY(c *Config, s data.Series, frame layout.Frame) (plan, error) {
	opts := layoutOptions(c, frame)
	x, err := xScale(c, s, c.Keys.XOrCategory(), frame)
	if err != nil {
		return plan{}, err
	}
	y, err := valueScale(c, s, opts, frame)
	if err != nil {
		return plan{}, err
	}
	return plan{
		scales: layout.Scales{X: x, Y: y, Color: colors(c, s, "", c.Keys.Value)},
		opts:   opts,
		axes:   true,
	}, nil
}

// planGraph: network and bundle position nodes in the frame directly.
func planGraph(c *Config, s data.Series, frame layout.Frame) (plan, error) {
	field := c.Keys.Category
	if c.Kind == layout.KindBundle {
		field = ""
	}
	return plan{
		scales: layout.Scales{Color: colors(c, s, field)},
		opts:   layoutOptions(c, frame),
	}, nil
}
