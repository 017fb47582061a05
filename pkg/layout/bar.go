package layout

import (
	"math"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// barRect builds a rect spanning y0..y1 (pixels) at band position x.
func barRect(key string, x, w, y0, y1, base float64, fill string, datum data.Point) scene.Primitive {
	return scene.Primitive{
		Kind: scene.KindRect,
		Key:  key,
		Attrs: scene.Attrs{
			X:        x,
			Y:        math.Min(y0, y1),
			W:        math.Max(0, w),
			H:        math.Abs(y1 - y0),
			Baseline: base,
			Fill:     fill,
			Opacity:  1,
		},
		Datum: datum,
	}
}

// bar emits one rect per category, key bar:<category>, from the baseline
// to the value.
func (l *layouter) bar() error {
	x, err := categorical(l.scales.X, "x")
	if err != nil {
		return err
	}
	y, err := continuous(l.scales.Y, "y")
	if err != nil {
		return err
	}
	k := l.opts.Keys
	base := baseline(y)

	for i, p := range l.series {
		ok, err := l.check.Require(p, i, k.Category)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		v, ok, err := l.check.RequireNumber(p, i, k.Value)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		cat, _ := p.String(k.Category)
		px, ok := x.Map(cat)
		if !ok {
			continue
		}
		fill := l.color(cat)
		if k.Series != "" {
			s, _ := p.String(k.Series)
			fill = l.color(s)
		}
		l.emit(barRect("bar:"+cat, px, x.Bandwidth(), base, y.Map(v), base, fill, p))
	}
	return nil
}

// grouped emits one rect per (series, category), key bar:<series>:<category>.
// Each category band is split into one inner band per series.
func (l *layouter) grouped() error {
	x, err := categorical(l.scales.X, "x")
	if err != nil {
		return err
	}
	y, err := continuous(l.scales.Y, "y")
	if err != nil {
		return err
	}
	k := l.opts.Keys
	base := baseline(y)

	groups := l.validGroups()
	n := float64(max(1, len(groups)))
	inner := x.Bandwidth() / n
	gap := inner * max(0, min(1, l.opts.GroupPadding))

	for gi, g := range groups {
		name := l.seriesName(g)
		for j, p := range g.Points {
			idx := g.Indices[j]
			ok, err := l.check.Require(p, idx, k.Series, k.Category)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			v, ok, err := l.check.RequireNumber(p, idx, k.Value)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			cat, _ := p.String(k.Category)
			px, ok := x.Map(cat)
			if !ok {
				continue
			}
			bx := px + float64(gi)*inner + gap/2
			l.emit(barRect("bar:"+name+":"+cat, bx, inner-gap, base, y.Map(v), base, l.color(name), p))
		}
	}
	return nil
}

// validGroups groups the series by the series key. Under the skip policy,
// points without a series value are dropped here with a warning; under the
// fail policy the error surfaces when the group is laid out.
func (l *layouter) validGroups() []data.Group {
	k := l.opts.Keys
	if k.Series == "" {
		return l.series.GroupBy("")
	}
	var kept data.Series
	var idx []int
	for i, p := range l.series {
		if !p.Has(k.Series) && l.opts.Missing != data.MissingFail {
			l.check.Warnings = append(l.check.Warnings, data.Warning{Index: i, Field: k.Series})
			continue
		}
		kept = append(kept, p)
		idx = append(idx, i)
	}
	groups := kept.GroupBy(k.Series)
	for gi := range groups {
		for j, local := range groups[gi].Indices {
			groups[gi].Indices[j] = idx[local]
		}
	}
	return groups
}

// stacked emits one rect per (series, category), key bar:<series>:<category>,
// stacked per category in stacking order. Positive values stack upward from
// the baseline and negative values downward, independently.
func (l *layouter) stacked() error {
	x, err := categorical(l.scales.X, "x")
	if err != nil {
		return err
	}
	y, err := continuous(l.scales.Y, "y")
	if err != nil {
		return err
	}
	k := l.opts.Keys

	groups := orderGroups(l.validGroups(), l.opts.StackOrder)
	pos := make(map[string]float64)
	neg := make(map[string]float64)

	for _, g := range groups {
		name := l.seriesName(g)
		for j, p := range g.Points {
			idx := g.Indices[j]
			if ok, err := l.check.Require(p, idx, k.Series, k.Category); err != nil {
				return err
			} else if !ok {
				continue
			}
			v, ok, err := l.check.RequireNumber(p, idx, k.Value)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			cat, _ := p.String(k.Category)
			px, ok := x.Map(cat)
			if !ok {
				continue
			}

			var lo, hi float64
			if v >= 0 {
				lo = pos[cat]
				hi = lo + v
				pos[cat] = hi
			} else {
				hi = neg[cat]
				lo = hi + v
				neg[cat] = lo
			}
			floor := lo
			if v < 0 {
				floor = hi
			}
			l.emit(barRect("bar:"+name+":"+cat, px, x.Bandwidth(), y.Map(lo), y.Map(hi), y.Map(floor), l.color(name), p))
		}
	}
	return nil
}

// StackExtent returns the lowest and highest cumulative value reached by
// stacking s. The extent always includes zero. For stacked areas the stack
// position is the x field rather than the category.
func StackExtent(kind Kind, s data.Series, opts Options) (lo, hi float64) {
	opts.SetDefaults()
	k := opts.Keys
	at, field := k.Category, k.Value
	if kind == KindArea {
		at, field = k.XOrCategory(), k.YOrValue()
	}
	pos := make(map[string]float64)
	neg := make(map[string]float64)
	for _, p := range s {
		c, ok := p.String(at)
		if !ok {
			continue
		}
		v, ok := p.Number(field)
		if !ok {
			continue
		}
		if v >= 0 {
			pos[c] += v
			hi = max(hi, pos[c])
		} else {
			neg[c] += v
			lo = min(lo, neg[c])
		}
	}
	return lo, hi
}
