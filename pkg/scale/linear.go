package scale

import (
	"fmt"
	"math"

	mscale "github.com/aclements/go-moremath/scale"
)

// Linear maps a numeric interval linearly onto a pixel range.
type Linear struct {
	lin    mscale.Linear
	r0, r1 float64
	clamp  bool
}

// NewLinear returns a linear scale from [lo, hi] onto [r0, r1].
// The caller is responsible for lo != hi; Build guarantees it.
func NewLinear(lo, hi, r0, r1 float64) *Linear {
	return &Linear{
		lin: mscale.Linear{Min: lo, Max: hi, Base: 10},
		r0:  r0,
		r1:  r1,
	}
}

func (s *Linear) String() string {
	return fmt.Sprintf("linear [%g,%g] => [%g,%g]", s.lin.Min, s.lin.Max, s.r0, s.r1)
}

// Kind implements Scale.
func (s *Linear) Kind() Kind { return KindLinear }

// Domain implements Continuous.
func (s *Linear) Domain() (float64, float64) { return s.lin.Min, s.lin.Max }

// Range implements Scale.
func (s *Linear) Range() (float64, float64) { return s.r0, s.r1 }

// Map implements Continuous.
func (s *Linear) Map(x float64) float64 {
	t := s.lin.Map(x)
	if s.clamp {
		t = clamp01(t)
	}
	return s.r0 + t*(s.r1-s.r0)
}

// Invert implements Continuous. A collapsed range inverts to the domain minimum.
func (s *Linear) Invert(y float64) float64 {
	if s.r1 == s.r0 {
		return s.lin.Min
	}
	t := (y - s.r0) / (s.r1 - s.r0)
	if s.clamp {
		t = clamp01(t)
	}
	return s.lin.Min + t*(s.lin.Max-s.lin.Min)
}

// Ticks implements Scale.
func (s *Linear) Ticks(max int) []Tick {
	major := s.tickValues(max)
	ticks := make([]Tick, len(major))
	for i, v := range major {
		ticks[i] = Tick{Value: v, Pos: s.Map(v), Label: formatNumber(v)}
	}
	return ticks
}

func (s *Linear) tickValues(max int) []float64 {
	if max < 2 {
		max = 2
	}
	major, _ := s.lin.Ticks(mscale.TickOptions{Max: max})
	return major
}

// nice rounds the domain outwards to the tick step.
func (s *Linear) nice() {
	major := s.tickValues(10)
	if len(major) < 2 {
		return
	}
	step := major[1] - major[0]
	if step <= 0 {
		return
	}
	s.lin.Min = math.Floor(s.lin.Min/step) * step
	s.lin.Max = math.Ceil(s.lin.Max/step) * step
}

func clamp01(t float64) float64 {
	return max(0, min(1, t))
}

// formatNumber formats tick values without trailing float noise.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	if math.Abs(v) >= 1e6 || math.Abs(v) < 1e-4 {
		return fmt.Sprintf("%.3g", v)
	}
	return fmt.Sprintf("%.6g", v)
}
