package scale

import (
	"fmt"

	mscale "github.com/aclements/go-moremath/scale"
)

// Log maps a strictly positive interval onto a pixel range logarithmically.
type Log struct {
	log    mscale.Log
	r0, r1 float64
}

// NewLog returns a log scale. lo and hi must be strictly positive and
// distinct; Build validates this and reports a DOMAIN_ERROR otherwise.
func NewLog(lo, hi, r0, r1 float64, base int) *Log {
	return &Log{
		log: mscale.Log{Min: lo, Max: hi, Base: base},
		r0:  r0,
		r1:  r1,
	}
}

func (s *Log) String() string {
	return fmt.Sprintf("log%d [%g,%g] => [%g,%g]", s.log.Base, s.log.Min, s.log.Max, s.r0, s.r1)
}

// Kind implements Scale.
func (s *Log) Kind() Kind { return KindLog }

// Domain implements Continuous.
func (s *Log) Domain() (float64, float64) { return s.log.Min, s.log.Max }

// Range implements Scale.
func (s *Log) Range() (float64, float64) { return s.r0, s.r1 }

// Map implements Continuous. Non-positive input maps to NaN.
func (s *Log) Map(x float64) float64 {
	return s.r0 + s.log.Map(x)*(s.r1-s.r0)
}

// Invert implements Continuous.
func (s *Log) Invert(y float64) float64 {
	if s.r1 == s.r0 {
		return s.log.Min
	}
	t := (y - s.r0) / (s.r1 - s.r0)
	if s.log.Clamp {
		t = clamp01(t)
	}
	return s.log.Unmap(t)
}

// Ticks implements Scale. Ticks sit on powers of the base; when the domain
// holds fewer than two of them the linear tick rule is used instead.
func (s *Log) Ticks(max int) []Tick {
	if max < 2 {
		max = 2
	}
	values, _ := s.log.Ticks(mscale.TickOptions{Max: max})
	if len(values) < 2 {
		values = NewLinear(s.log.Min, s.log.Max, s.r0, s.r1).tickValues(max)
	}

	ticks := make([]Tick, 0, len(values))
	for _, v := range values {
		if v <= 0 {
			continue
		}
		ticks = append(ticks, Tick{Value: v, Pos: s.Map(v), Label: formatNumber(v)})
	}
	return ticks
}

// nice rounds the domain outwards to powers of the base.
func (s *Log) nice() {
	s.log.Nice(mscale.TickOptions{Max: 10})
}
