package scale

import (
	"fmt"
	"math"
	"slices"
)

// Band divides a pixel range into equal bands, one per category.
// With point set it behaves as an ordinal (point) scale: zero bandwidth,
// categories at evenly spaced positions.
type Band struct {
	categories []string
	index      map[string]int
	r0, r1     float64
	inner      float64
	outer      float64
	align      float64
	point      bool

	positions []float64
	step      float64
	bandwidth float64
}

// NewBand returns a band scale. Padding values are fractions of the step
// and are clamped to [0, 1].
func NewBand(categories []string, r0, r1, paddingInner, paddingOuter float64) *Band {
	b := &Band{
		categories: slices.Clone(categories),
		r0:         r0,
		r1:         r1,
		inner:      clamp01(paddingInner),
		outer:      max(0, paddingOuter),
		align:      0.5,
	}
	b.rescale()
	return b
}

// NewOrdinal returns a point scale: categories map to evenly spaced
// positions with outer padding in multiples of the step.
func NewOrdinal(categories []string, r0, r1, padding float64) *Band {
	b := &Band{
		categories: slices.Clone(categories),
		r0:         r0,
		r1:         r1,
		inner:      1,
		outer:      max(0, padding),
		align:      0.5,
		point:      true,
	}
	b.rescale()
	return b
}

func (b *Band) rescale() {
	n := len(b.categories)
	b.index = make(map[string]int, n)
	for i, c := range b.categories {
		b.index[c] = i
	}

	start, stop := b.r0, b.r1
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	b.step = (stop - start) / math.Max(1, float64(n)-b.inner+b.outer*2)
	start += (stop - start - b.step*(float64(n)-b.inner)) * b.align
	b.bandwidth = b.step * (1 - b.inner)

	b.positions = make([]float64, n)
	for i := range n {
		b.positions[i] = start + b.step*float64(i)
	}
	if reverse {
		slices.Reverse(b.positions)
	}
}

// WithAlign sets how outer space is distributed: 0 packs the bands at the
// range start, 1 at the end. The default is 0.5.
func (b *Band) WithAlign(align float64) *Band {
	b.align = clamp01(align)
	b.rescale()
	return b
}

func (b *Band) String() string {
	name := "band"
	if b.point {
		name = "ordinal"
	}
	return fmt.Sprintf("%s %v => [%g,%g]", name, b.categories, b.r0, b.r1)
}

// Kind implements Scale.
func (b *Band) Kind() Kind {
	if b.point {
		return KindOrdinal
	}
	return KindBand
}

// Range implements Scale.
func (b *Band) Range() (float64, float64) { return b.r0, b.r1 }

// Categories implements Categorical.
func (b *Band) Categories() []string { return slices.Clone(b.categories) }

// Bandwidth implements Categorical.
func (b *Band) Bandwidth() float64 { return b.bandwidth }

// Step implements Categorical.
func (b *Band) Step() float64 { return b.step }

// Map implements Categorical.
func (b *Band) Map(category string) (float64, bool) {
	i, ok := b.index[category]
	if !ok {
		return math.NaN(), false
	}
	return b.positions[i], true
}

// Center returns the middle of the category's band.
func (b *Band) Center(category string) (float64, bool) {
	p, ok := b.Map(category)
	return p + b.bandwidth/2, ok
}

// Invert implements Categorical. A band scale returns the category whose
// band contains px; a point scale returns the nearest category.
func (b *Band) Invert(px float64) (string, bool) {
	if len(b.categories) == 0 {
		return "", false
	}
	if b.point {
		best, bestD := 0, math.Inf(1)
		for i, p := range b.positions {
			if d := math.Abs(p - px); d < bestD {
				best, bestD = i, d
			}
		}
		return b.categories[best], true
	}
	for i, p := range b.positions {
		if px >= p && px <= p+b.bandwidth {
			return b.categories[i], true
		}
	}
	return "", false
}

// Ticks implements Scale. Ticks sit at band centers; when there are more
// categories than max, every k-th category is labeled.
func (b *Band) Ticks(max int) []Tick {
	n := len(b.categories)
	stride := 1
	if max > 0 && n > max {
		stride = int(math.Ceil(float64(n) / float64(max)))
	}
	var ticks []Tick
	for i := 0; i < n; i += stride {
		ticks = append(ticks, Tick{
			Value: float64(i),
			Pos:   b.positions[i] + b.bandwidth/2,
			Label: b.categories[i],
		})
	}
	return ticks
}
