package scale

import (
	"fmt"
	"math"
	"time"
)

// Time is a linear scale over instants, measured in Unix seconds.
type Time struct {
	Linear
}

func (s *Time) String() string {
	lo, hi := s.Domain()
	return fmt.Sprintf("time [%s,%s] => [%g,%g]",
		fromUnixSeconds(lo).Format(time.RFC3339), fromUnixSeconds(hi).Format(time.RFC3339), s.r0, s.r1)
}

// Kind implements Scale.
func (s *Time) Kind() Kind { return KindTime }

// MapTime maps an instant to range coordinates.
func (s *Time) MapTime(t time.Time) float64 {
	return s.Map(unixSeconds(t))
}

// InvertTime maps a range coordinate back to an instant.
func (s *Time) InvertTime(y float64) time.Time {
	return fromUnixSeconds(s.Invert(y))
}

// Ticks implements Scale with labels formatted for the domain's span.
func (s *Time) Ticks(max int) []Tick {
	lo, hi := s.Domain()
	layout := timeLayout(time.Duration((hi - lo) * float64(time.Second)))

	values := s.tickValues(max)
	ticks := make([]Tick, len(values))
	for i, v := range values {
		ticks[i] = Tick{Value: v, Pos: s.Map(v), Label: fromUnixSeconds(v).Format(layout)}
	}
	return ticks
}

func timeLayout(span time.Duration) string {
	switch {
	case span <= 2*time.Minute:
		return "15:04:05"
	case span <= 2*24*time.Hour:
		return "15:04"
	case span <= 400*24*time.Hour:
		return "Jan 02"
	default:
		return "2006"
	}
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func fromUnixSeconds(v float64) time.Time {
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
