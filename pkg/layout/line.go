package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/scale"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// sample is one point of a line or area series after x mapping.
type sample struct {
	x       float64
	order   float64 // sort key: the order field when configured, else x
	v       float64 // value in data units
	defined bool
	label   string // x value as a string, used for keys and stacking
	datum   data.Point
}

// samples maps the points of g to x positions sorted by the order field,
// or by x when none is configured. A missing value
// keeps its slot as an undefined sample so the caller can break the path.
func (l *layouter) samples(g data.Group, x scale.Scale) ([]sample, error) {
	k := l.opts.Keys
	xf, yf := k.XOrCategory(), k.YOrValue()

	var out []sample
	for j, p := range g.Points {
		idx := g.Indices[j]
		ok, err := l.check.Require(p, idx, k.Series, xf)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		px, ok := xPosition(x, p, xf)
		if !ok {
			continue
		}
		label, _ := p.String(xf)
		s := sample{x: px, order: px, label: label, datum: p}
		if k.Order != "" {
			o, ok, err := l.check.RequireNumber(p, idx, k.Order)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			s.order = o
		}
		if v, ok := p.Number(yf); ok {
			s.v, s.defined = v, true
		} else if l.opts.Missing == data.MissingFail {
			return nil, errors.MissingField(idx, yf)
		} else {
			l.check.Warnings = append(l.check.Warnings, data.Warning{Index: idx, Field: yf})
		}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b sample) int { return cmp.Compare(a.order, b.order) })
	return out, nil
}

// seriesDatum is the datum attached to whole-series shapes.
func (l *layouter) seriesDatum(g data.Group) data.Point {
	if l.opts.Keys.Series == "" {
		return data.Point{}
	}
	return data.P(l.opts.Keys.Series, g.Key)
}

// runs splits samples into maximal runs of defined samples.
func runs(ss []sample) [][]sample {
	var out [][]sample
	start := -1
	for i, s := range ss {
		switch {
		case s.defined && start < 0:
			start = i
		case !s.defined && start >= 0:
			out = append(out, ss[start:i])
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, ss[start:])
	}
	return out
}

// line emits one path per series, key line:<series>. Each run of defined
// values is a separate subpath.
func (l *layouter) line() error {
	y, err := continuous(l.scales.Y, "y")
	if err != nil {
		return err
	}
	if l.scales.X == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "x axis needs a scale")
	}
	base := baseline(y)

	var markers []scene.Primitive
	for _, g := range l.validGroups() {
		name := l.seriesName(g)
		ss, err := l.samples(g, l.scales.X)
		if err != nil {
			return err
		}
		var paths [][]scene.Point
		for _, run := range runs(ss) {
			sub := make([]scene.Point, len(run))
			for i, s := range run {
				sub[i] = scene.Point{X: s.x, Y: y.Map(s.v)}
				if l.opts.Markers {
					markers = append(markers, scene.Primitive{
						Kind:  scene.KindCircle,
						Key:   "point:" + name + ":" + s.label,
						Attrs: scene.Attrs{X: s.x, Y: y.Map(s.v), R: l.opts.MarkerRadius, Fill: l.color(name), Opacity: 1},
						Datum: s.datum,
					})
				}
			}
			paths = append(paths, sub)
		}
		if len(paths) == 0 {
			continue
		}
		l.emit(scene.Primitive{
			Kind: scene.KindPath,
			Key:  "line:" + name,
			Attrs: scene.Attrs{
				Paths:       paths,
				Baseline:    base,
				Fill:        "none",
				Stroke:      l.color(name),
				StrokeWidth: l.opts.StrokeWidth,
				Opacity:     1,
			},
			Datum: l.seriesDatum(g),
		})
	}
	for _, m := range markers {
		l.emit(m)
	}
	return nil
}

// area emits one filled shape per series, key area:<series>. Each run of
// defined values becomes a closed ring between the lower bound (the baseline,
// or the series below when stacked) and the value.
func (l *layouter) area() error {
	y, err := continuous(l.scales.Y, "y")
	if err != nil {
		return err
	}
	if l.scales.X == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "x axis needs a scale")
	}
	lo, hi := y.Domain()
	zero := max(lo, min(hi, 0))
	base := y.Map(zero)

	groups := l.validGroups()
	if l.opts.Stacked {
		groups = orderGroups(groups, l.opts.StackOrder)
	}
	pos := make(map[string]float64)
	neg := make(map[string]float64)

	for _, g := range groups {
		name := l.seriesName(g)
		ss, err := l.samples(g, l.scales.X)
		if err != nil {
			return err
		}
		var rings [][]scene.Point
		for _, run := range runs(ss) {
			top := make([]scene.Point, len(run))
			bottom := make([]scene.Point, len(run))
			for i, s := range run {
				floor, ceil := zero, s.v
				if l.opts.Stacked {
					if s.v >= 0 {
						floor = pos[s.label]
						ceil = floor + s.v
						pos[s.label] = ceil
					} else {
						floor = neg[s.label]
						ceil = floor + s.v
						neg[s.label] = ceil
					}
				}
				top[i] = scene.Point{X: s.x, Y: y.Map(ceil)}
				bottom[len(run)-1-i] = scene.Point{X: s.x, Y: y.Map(floor)}
			}
			rings = append(rings, append(top, bottom...))
		}
		if len(rings) == 0 {
			continue
		}
		color := l.color(name)
		l.emit(scene.Primitive{
			Kind: scene.KindPolygon,
			Key:  "area:" + name,
			Attrs: scene.Attrs{
				Paths:       rings,
				Baseline:    base,
				Fill:        color,
				Stroke:      color,
				StrokeWidth: 1,
				Opacity:     0.8,
			},
			Datum: l.seriesDatum(g),
		})
	}
	return nil
}
