package layout

import (
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// scatter emits one circle per point, key point:<series>:<category>. Points
// without a category are keyed by their coordinates instead. When a size
// field is configured, radius follows a sqrt scale clamped to
// [MinRadius, MaxRadius].
func (l *layouter) scatter() error {
	y, err := continuous(l.scales.Y, "y")
	if err != nil {
		return err
	}
	if l.scales.X == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "x axis needs a scale")
	}
	k := l.opts.Keys
	xf, yf := k.XOrCategory(), k.YOrValue()

	radius := l.sizeScale()

	for _, g := range l.validGroups() {
		name := l.seriesName(g)
		for j, p := range g.Points {
			idx := g.Indices[j]
			ok, err := l.check.Require(p, idx, k.Series, xf, k.Size)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			v, ok, err := l.check.RequireNumber(p, idx, yf)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			px, ok := xPosition(l.scales.X, p, xf)
			if !ok {
				continue
			}
			py := y.Map(v)
			if math.IsNaN(py) {
				continue
			}

			cat, ok := p.String(k.Category)
			if !ok {
				xs, _ := p.String(xf)
				ys, _ := p.String(yf)
				cat = xs + "," + ys
			}
			r := l.opts.MarkerRadius
			if k.Size != "" {
				sz, _ := p.Number(k.Size)
				r = radius(sz)
			}
			l.emit(scene.Primitive{
				Kind:  scene.KindCircle,
				Key:   "point:" + name + ":" + cat,
				Attrs: scene.Attrs{X: px, Y: py, R: r, Baseline: py, Fill: l.color(name), Opacity: 0.85},
				Datum: p,
			})
		}
	}
	return nil
}

// sizeScale returns a sqrt mapping from the size field's extent onto
// [MinRadius, MaxRadius]. A constant size maps to the midpoint.
func (l *layouter) sizeScale() func(float64) float64 {
	rmin, rmax := l.opts.MinRadius, max(l.opts.MinRadius, l.opts.MaxRadius)
	if l.opts.Keys.Size == "" {
		return func(float64) float64 { return l.opts.MarkerRadius }
	}
	sizes := l.series.Numbers(l.opts.Keys.Size)
	if len(sizes) == 0 {
		return func(float64) float64 { return rmin }
	}
	lo, hi := stats.Bounds(sizes)
	lo = max(0, lo)
	if hi <= lo {
		return func(float64) float64 { return (rmin + rmax) / 2 }
	}
	return func(v float64) float64 {
		t := (math.Sqrt(max(0, v)) - math.Sqrt(lo)) / (math.Sqrt(hi) - math.Sqrt(lo))
		return rmin + max(0, min(1, t))*(rmax-rmin)
	}
}
