package scene

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/chartkit/pkg/errors"
)

// Easing maps linear progress t in [0, 1] to eased progress.
type Easing func(t float64) float64

// Easing names accepted by EasingByName.
const (
	EaseLinear     = "linear"
	EaseQuadIn     = "quad-in"
	EaseQuadOut    = "quad-out"
	EaseQuadInOut  = "quad-in-out"
	EaseCubicIn    = "cubic-in"
	EaseCubicOut   = "cubic-out"
	EaseCubicInOut = "cubic-in-out"
	EaseSinInOut   = "sin-in-out"
)

var easings = map[string]Easing{
	EaseLinear:  func(t float64) float64 { return t },
	EaseQuadIn:  func(t float64) float64 { return t * t },
	EaseQuadOut: func(t float64) float64 { return t * (2 - t) },
	EaseQuadInOut: func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	},
	EaseCubicIn: func(t float64) float64 { return t * t * t },
	EaseCubicOut: func(t float64) float64 {
		t--
		return t*t*t + 1
	},
	EaseCubicInOut: func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		t = 2*t - 2
		return t*t*t/2 + 1
	},
	EaseSinInOut: func(t float64) float64 { return (1 - math.Cos(math.Pi*t)) / 2 },
}

// DefaultEasing is the easing used when none is configured.
const DefaultEasing = EaseCubicInOut

// EasingByName returns the named easing. The empty name selects DefaultEasing.
func EasingByName(name string) (Easing, error) {
	if name == "" {
		name = DefaultEasing
	}
	e, ok := easings[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown easing %q (valid: %v)", name, EasingNames())
	}
	return e, nil
}

// EasingNames lists the registered easings in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lerp interpolates between two attribute sets at t in [0, 1]. Numbers
// interpolate linearly, colors blend in CIE L*a*b*, and paths are padded to
// equal shape first. Discrete fields (text, anchor) switch at the midpoint.
func Lerp(a, b Attrs, t float64) Attrs {
	if t <= 0 {
		return a.Clone()
	}
	if t >= 1 {
		return b.Clone()
	}
	out := Attrs{
		X:           num(a.X, b.X, t),
		Y:           num(a.Y, b.Y, t),
		X2:          num(a.X2, b.X2, t),
		Y2:          num(a.Y2, b.Y2, t),
		W:           num(a.W, b.W, t),
		H:           num(a.H, b.H, t),
		R:           num(a.R, b.R, t),
		Baseline:    num(a.Baseline, b.Baseline, t),
		StrokeWidth: num(a.StrokeWidth, b.StrokeWidth, t),
		Opacity:     num(a.Opacity, b.Opacity, t),
		Fill:        color(a.Fill, b.Fill, t),
		Stroke:      color(a.Stroke, b.Stroke, t),
		Paths:       paths(a.Paths, b.Paths, t),
		Text:        b.Text,
		Anchor:      b.Anchor,
	}
	if t < 0.5 {
		out.Text, out.Anchor = a.Text, a.Anchor
	}
	return out
}

func num(a, b, t float64) float64 { return a + (b-a)*t }

// color blends two hex colors. Values that do not parse as hex (named
// colors, "none") switch at the midpoint.
func color(a, b string, t float64) string {
	if a == b {
		return a
	}
	ca, errA := colorful.Hex(a)
	cb, errB := colorful.Hex(b)
	if errA != nil || errB != nil {
		if t < 0.5 {
			return a
		}
		return b
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}

// paths interpolates subpath by subpath. When the shapes differ, the shorter
// side is padded by repeating its last subpath and, within a subpath, its
// last point.
func paths(a, b [][]Point, t float64) [][]Point {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	a, b = padEqual(a, b)
	out := make([][]Point, len(a))
	for i := range a {
		pa, pb := padEqual(a[i], b[i])
		sub := make([]Point, len(pa))
		for j := range pa {
			sub[j] = Point{X: num(pa[j].X, pb[j].X, t), Y: num(pa[j].Y, pb[j].Y, t)}
		}
		out[i] = sub
	}
	return out
}

// padEqual extends the shorter slice by repeating its last element. An empty
// side takes the other side's elements.
func padEqual[T any](a, b []T) ([]T, []T) {
	switch {
	case len(a) == 0:
		a = b
	case len(b) == 0:
		b = a
	}
	for len(a) < len(b) {
		a = append(a[:len(a):len(a)], a[len(a)-1])
	}
	for len(b) < len(a) {
		b = append(b[:len(b):len(b)], b[len(b)-1])
	}
	return a, b
}
