package layout

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/scale"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// Kind names a chart layout.
type Kind string

// Layout kinds.
const (
	KindBar     Kind = "bar"
	KindGrouped Kind = "grouped"
	KindStacked Kind = "stacked"
	KindLine    Kind = "line"
	KindArea    Kind = "area"
	KindScatter Kind = "scatter"
	KindNetwork Kind = "network"
	KindContour Kind = "contour"
	KindBundle  Kind = "bundle"
)

// Kinds lists every layout kind.
var Kinds = []Kind{
	KindBar, KindGrouped, KindStacked, KindLine, KindArea,
	KindScatter, KindNetwork, KindContour, KindBundle,
}

// Valid reports whether k is a known layout kind.
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// Scales are the scales a layout maps data through. Which ones are required
// depends on the kind: cartesian kinds need X and Y, network and bundle
// ignore them and use Options.Frame.
type Scales struct {
	X     scale.Scale
	Y     scale.Scale
	Color *scale.Colors
}

// Options configures a layout pass. The zero value plus Keys and Frame is
// usable; SetDefaults fills the rest.
type Options struct {
	Keys    data.Keys
	Missing data.MissingPolicy
	Frame   Frame

	// Bars
	GroupPadding float64  // Fraction of each inner band left empty (grouped)
	StackOrder   []string // Series stacking order (stacked, stacked area)

	// Lines and areas
	Stacked      bool    // Stack area series on top of each other
	Markers      bool    // Emit point markers on lines
	MarkerRadius float64 // Marker and default scatter radius
	StrokeWidth  float64

	// Scatter
	MinRadius float64
	MaxRadius float64

	// Network
	Seed       uint64
	Iterations int
	NodeRadius float64

	// Contour
	CellSize   float64 // Grid cell size in pixels
	Bandwidth  float64 // Gaussian kernel bandwidth in pixels; 0 derives one from the data
	Thresholds int     // Number of density levels

	// Bundle
	Separator string
	Beta      float64
	Samples   int // Spline samples per control segment
}

// Layout defaults.
const (
	DefaultMarkerRadius = 3.0
	DefaultStrokeWidth  = 2.0
	DefaultMinRadius    = 2.0
	DefaultMaxRadius    = 12.0
	DefaultIterations   = 300
	DefaultNodeRadius   = 6.0
	DefaultCellSize     = 4.0
	DefaultThresholds   = 8
	DefaultSeparator    = "."
	DefaultBeta         = 0.85
	DefaultSamples      = 8
)

// SetDefaults fills zero-valued options.
func (o *Options) SetDefaults() {
	o.Keys = o.Keys.WithDefaults()
	if o.Missing == "" {
		o.Missing = data.MissingSkip
	}
	if o.MarkerRadius <= 0 {
		o.MarkerRadius = DefaultMarkerRadius
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = DefaultStrokeWidth
	}
	if o.MinRadius <= 0 {
		o.MinRadius = DefaultMinRadius
	}
	if o.MaxRadius <= 0 {
		o.MaxRadius = DefaultMaxRadius
	}
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.NodeRadius <= 0 {
		o.NodeRadius = DefaultNodeRadius
	}
	if o.CellSize <= 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Thresholds <= 0 {
		o.Thresholds = DefaultThresholds
	}
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.Beta <= 0 {
		o.Beta = DefaultBeta
	}
	if o.Samples <= 0 {
		o.Samples = DefaultSamples
	}
}

// Result is the output of a layout pass.
type Result struct {
	// Primitives in draw order. Keys are unique for well-formed input.
	Primitives []scene.Primitive
	// Warnings lists points skipped under the skip policy.
	Warnings []data.Warning
}

// Layout turns a series into keyed primitives for the given kind.
//
// Points lacking a required field are skipped with a warning, or abort the
// pass with a MISSING_FIELD error under the fail policy. Every kind is
// deterministic: the same input yields the same primitives.
func Layout(kind Kind, s data.Series, sc Scales, opts Options) (Result, error) {
	opts.SetDefaults()
	if err := opts.Missing.Validate(); err != nil {
		return Result{}, err
	}
	if sc.Color == nil {
		sc.Color = scale.NewColors(nil, nil)
	}

	l := &layouter{series: s, scales: sc, opts: opts, check: &data.Checker{Policy: opts.Missing}}
	var err error
	switch kind {
	case KindBar:
		err = l.bar()
	case KindGrouped:
		err = l.grouped()
	case KindStacked:
		err = l.stacked()
	case KindLine:
		err = l.line()
	case KindArea:
		err = l.area()
	case KindScatter:
		err = l.scatter()
	case KindNetwork:
		err = l.network()
	case KindContour:
		err = l.contour()
	case KindBundle:
		err = l.bundle()
	default:
		return Result{}, errors.New(errors.ErrCodeInvalidChartKind, "unknown chart kind %q", string(kind))
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Primitives: l.out, Warnings: l.check.Warnings}, nil
}

// layouter carries the state of one pass.
type layouter struct {
	series data.Series
	scales Scales
	opts   Options
	check  *data.Checker
	out    []scene.Primitive
	seen   map[string]int
}

// emit appends p, suffixing its key with #2, #3, ... when an earlier
// primitive of this pass already holds it. Occurrences are counted in emit
// order, so repeated data keeps the same keys from pass to pass.
func (l *layouter) emit(p scene.Primitive) {
	if l.seen == nil {
		l.seen = make(map[string]int)
	}
	base := p.Key
	for n := l.seen[base]; l.seen[p.Key] > 0; {
		n++
		p.Key = fmt.Sprintf("%s#%d", base, n)
		l.seen[base] = n
	}
	l.seen[p.Key]++
	l.out = append(l.out, p)
}

// continuous returns sc as a continuous scale or an INVALID_CONFIG error
// naming the axis.
func continuous(sc scale.Scale, axis string) (scale.Continuous, error) {
	c, ok := sc.(scale.Continuous)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s axis needs a continuous scale", axis)
	}
	return c, nil
}

func categorical(sc scale.Scale, axis string) (scale.Categorical, error) {
	c, ok := sc.(scale.Categorical)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s axis needs a band or ordinal scale", axis)
	}
	return c, nil
}

// baseline returns the pixel position of zero on y, clamped into the domain
// so bars on a domain that excludes zero grow from its nearest edge.
func baseline(y scale.Continuous) float64 {
	lo, hi := y.Domain()
	return y.Map(max(lo, min(hi, 0)))
}

// seriesName is the name used in keys for a group. Ungrouped data is named
// after its value field.
func (l *layouter) seriesName(g data.Group) string {
	if g.Key != "" || l.opts.Keys.Series != "" {
		return g.Key
	}
	return l.opts.Keys.Value
}

func (l *layouter) color(name string) string { return l.scales.Color.Color(name) }

// xPosition maps the x field of p through x. Categorical scales return the
// band center. ok is false when the value is missing or outside the domain.
func xPosition(x scale.Scale, p data.Point, field string) (px float64, ok bool) {
	switch s := x.(type) {
	case scale.Categorical:
		v, ok := p.String(field)
		if !ok {
			return 0, false
		}
		pos, ok := s.Map(v)
		return pos + s.Bandwidth()/2, ok
	case *scale.Time:
		t, ok := p.Time(field)
		if !ok {
			return 0, false
		}
		return s.MapTime(t), true
	case scale.Continuous:
		v, ok := p.Number(field)
		if !ok {
			return 0, false
		}
		px = s.Map(v)
		return px, !math.IsNaN(px)
	}
	return 0, false
}

// orderGroups sorts groups so that names listed in order come first, in
// that order; the rest keep first-seen order.
func orderGroups(groups []data.Group, order []string) []data.Group {
	if len(order) == 0 {
		return groups
	}
	rank := make(map[string]int, len(order))
	for i, name := range order {
		if _, ok := rank[name]; !ok {
			rank[name] = i
		}
	}
	out := slices.Clone(groups)
	slices.SortStableFunc(out, func(a, b data.Group) int {
		ra, oka := rank[a.Key]
		rb, okb := rank[b.Key]
		switch {
		case oka && okb:
			return cmp.Compare(ra, rb)
		case oka:
			return -1
		case okb:
			return 1
		}
		return 0
	})
	return out
}

// ValueDomain returns the domain a planner should use for the value (y)
// scale of kind. Stacked layouts need the extent of the stacks rather than
// the raw values.
func ValueDomain(kind Kind, s data.Series, opts Options) scale.Domain {
	opts.SetDefaults()
	switch {
	case kind == KindStacked || (kind == KindArea && opts.Stacked):
		lo, hi := StackExtent(kind, s, opts)
		return scale.Values(lo, hi)
	case kind == KindBar || kind == KindGrouped:
		return scale.FromSeries(s, opts.Keys.Value)
	}
	return scale.FromSeries(s, opts.Keys.YOrValue())
}
