package scale

import (
	"math"
	"slices"

	"github.com/aclements/go-moremath/stats"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/errors"
)

// Kind names a scale type.
type Kind string

// Scale kinds.
const (
	KindLinear  Kind = "linear"
	KindLog     Kind = "log"
	KindTime    Kind = "time"
	KindBand    Kind = "band"
	KindOrdinal Kind = "ordinal"
)

// Scale is the behavior shared by every scale kind. Axis and legend helpers
// only need this much.
type Scale interface {
	// Kind reports the scale type.
	Kind() Kind
	// Range returns the output interval in pixels, in configured order.
	Range() (r0, r1 float64)
	// Ticks returns at most max guide positions with labels.
	Ticks(max int) []Tick
}

// Continuous is a scale over a numeric interval.
type Continuous interface {
	Scale
	Map(x float64) float64
	Invert(y float64) float64
	Domain() (lo, hi float64)
}

// Categorical is a scale over a discrete, ordered set of categories.
type Categorical interface {
	Scale
	// Map returns the start of the category's band (or its point) and
	// whether the category is part of the domain.
	Map(category string) (float64, bool)
	// Invert returns the category at pixel position px.
	Invert(px float64) (string, bool)
	Categories() []string
	Bandwidth() float64
	Step() float64
}

// Tick is one guide position produced by a scale.
type Tick struct {
	Value float64 // Domain value (category index for categorical scales)
	Pos   float64 // Position in range coordinates
	Label string  // Formatted label
}

// Options configures Build. The zero value is usable.
type Options struct {
	// Padding expands a derived numeric domain by this fraction of its span
	// on both sides.
	Padding float64 `json:"padding,omitempty" toml:"padding"`

	// IncludeZero extends a derived numeric domain to contain 0.
	IncludeZero bool `json:"include_zero,omitempty" toml:"include_zero"`

	// Epsilon is the half-width used to widen a degenerate (min == max)
	// numeric domain. Default: 1 (one second for time scales).
	Epsilon float64 `json:"epsilon,omitempty" toml:"epsilon"`

	// Nice rounds a continuous domain outwards to tick boundaries.
	Nice bool `json:"nice,omitempty" toml:"nice"`

	// Clamp restricts continuous output to the range.
	Clamp bool `json:"clamp,omitempty" toml:"clamp"`

	// Base is the logarithm base for log scales. Default: 10.
	Base int `json:"base,omitempty" toml:"base"`

	// Order fixes the category order of band and ordinal scales. Categories
	// present in the data but absent from Order are appended in first-seen order.
	Order []string `json:"order,omitempty" toml:"order"`

	// PaddingInner and PaddingOuter are band padding fractions of the step.
	PaddingInner float64 `json:"padding_inner,omitempty" toml:"padding_inner"`
	PaddingOuter float64 `json:"padding_outer,omitempty" toml:"padding_outer"`

	// Align places band and point positions within leftover outer space
	// (0 = start, 1 = end). Nil means centered.
	Align *float64 `json:"align,omitempty" toml:"align"`
}

// DefaultEpsilon is the degenerate-domain half-width used when Options.Epsilon is 0.
const DefaultEpsilon = 1.0

// Domain describes where a scale's domain comes from: a fixed interval, a
// fixed category list, or values derived from a series.
type Domain struct {
	fixed      bool
	lo, hi     float64
	categories []string
	values     []float64
	series     data.Series
	fields     []string
}

// Fixed returns an explicit numeric domain. It is used as given, apart from
// degenerate widening.
func Fixed(lo, hi float64) Domain {
	return Domain{fixed: true, lo: lo, hi: hi}
}

// Categories returns an explicit categorical domain.
func Categories(cats ...string) Domain {
	return Domain{fixed: true, categories: slices.Clone(cats)}
}

// Values returns a numeric domain derived from raw values, such as stacked
// totals computed by a layout.
func Values(vs ...float64) Domain {
	return Domain{values: slices.Clone(vs)}
}

// FromSeries returns a domain derived from the given fields of every point.
func FromSeries(s data.Series, fields ...string) Domain {
	return Domain{series: s, fields: slices.Clone(fields)}
}

// IsFixed reports whether the domain was given explicitly.
func (d Domain) IsFixed() bool { return d.fixed }

// bounds derives a numeric [lo, hi] for the domain. ok is false when no
// numeric value is available.
func (d Domain) bounds(timeFields bool) (lo, hi float64, ok bool) {
	if d.fixed && d.categories == nil {
		lo, hi = d.lo, d.hi
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi, !math.IsNaN(lo) && !math.IsNaN(hi)
	}

	xs := slices.Clone(d.values)
	for _, p := range d.series {
		for _, f := range d.fields {
			if timeFields {
				if t, ok := p.Time(f); ok {
					xs = append(xs, unixSeconds(t))
				}
				continue
			}
			if v, ok := p.Number(f); ok {
				xs = append(xs, v)
			}
		}
	}
	if len(xs) == 0 {
		return 0, 0, false
	}
	lo, hi = stats.Bounds(xs)
	return lo, hi, true
}

// categoryList derives the ordered categories for the domain.
func (d Domain) categoryList(order []string) []string {
	var seen []string
	if d.categories != nil {
		seen = d.categories
	} else {
		for _, f := range d.fields {
			seen = append(seen, d.series.Unique(f)...)
		}
	}

	out := make([]string, 0, len(seen)+len(order))
	have := make(map[string]bool, len(seen))
	for _, c := range order {
		if !have[c] {
			have[c] = true
			out = append(out, c)
		}
	}
	for _, c := range seen {
		if !have[c] {
			have[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Build constructs a scale of the given kind mapping dom onto rng.
//
// Derived numeric domains are padded by opts.Padding and optionally extended
// to zero; a degenerate domain is widened by ±opts.Epsilon so the mapping
// never divides by zero. A log domain touching zero or negative values fails
// with a DOMAIN_ERROR.
func Build(kind Kind, dom Domain, rng [2]float64, opts Options) (Scale, error) {
	for _, r := range rng {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, errors.New(errors.ErrCodeDomain, "range [%g, %g] is not finite", rng[0], rng[1])
		}
	}

	switch kind {
	case KindBand, KindOrdinal:
		var b *Band
		if kind == KindBand {
			b = NewBand(dom.categoryList(opts.Order), rng[0], rng[1], opts.PaddingInner, opts.PaddingOuter)
		} else {
			b = NewOrdinal(dom.categoryList(opts.Order), rng[0], rng[1], opts.PaddingOuter)
		}
		if opts.Align != nil {
			b.WithAlign(*opts.Align)
		}
		return b, nil
	case KindLinear, KindLog, KindTime:
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown scale kind %q", string(kind))
	}

	lo, hi, ok := dom.bounds(kind == KindTime)
	if !ok {
		lo, hi = 0, 1
		if kind == KindLog {
			lo, hi = 1, 10
		}
	}

	if !dom.fixed {
		if opts.IncludeZero && kind == KindLinear {
			lo, hi = min(lo, 0), max(hi, 0)
		}
		if opts.Padding > 0 {
			lo, hi = pad(kind, lo, hi, opts.Padding)
		}
	}

	eps := opts.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	switch kind {
	case KindLog:
		if lo <= 0 || hi <= 0 {
			return nil, errors.New(errors.ErrCodeDomain, "log domain [%g, %g] must be strictly positive", lo, hi)
		}
		base := opts.Base
		if base == 0 {
			base = 10
		}
		if base < 2 {
			return nil, errors.New(errors.ErrCodeDomain, "log base %d must be at least 2", base)
		}
		if lo == hi {
			// Widen multiplicatively so the domain stays positive.
			lo, hi = lo/float64(base), hi*float64(base)
		}
		s := NewLog(lo, hi, rng[0], rng[1], base)
		s.log.SetClamp(opts.Clamp)
		if opts.Nice {
			s.nice()
		}
		return s, nil

	case KindTime:
		if lo == hi {
			lo, hi = lo-eps, hi+eps
		}
		s := &Time{Linear: *NewLinear(lo, hi, rng[0], rng[1])}
		s.clamp = opts.Clamp
		if opts.Nice {
			s.nice()
		}
		return s, nil

	default:
		if lo == hi {
			lo, hi = lo-eps, hi+eps
		}
		s := NewLinear(lo, hi, rng[0], rng[1])
		s.clamp = opts.Clamp
		if opts.Nice {
			s.nice()
		}
		return s, nil
	}
}

// pad widens [lo, hi] by frac of its span on each side. Log domains are
// padded in log space so they stay positive.
func pad(kind Kind, lo, hi, frac float64) (float64, float64) {
	if kind == KindLog && lo > 0 {
		llo, lhi := math.Log(lo), math.Log(hi)
		d := (lhi - llo) * frac
		return math.Exp(llo - d), math.Exp(lhi + d)
	}
	d := (hi - lo) * frac
	return lo - d, hi + d
}

// MustContinuous asserts that s is continuous. It is a convenience for
// layouts that built the scale themselves.
func MustContinuous(s Scale) Continuous {
	c, ok := s.(Continuous)
	if !ok {
		panic("scale: " + string(s.Kind()) + " scale is not continuous")
	}
	return c
}

// MustCategorical asserts that s is categorical.
func MustCategorical(s Scale) Categorical {
	c, ok := s.(Categorical)
	if !ok {
		panic("scale: " + string(s.Kind()) + " scale is not categorical")
	}
	return c
}
