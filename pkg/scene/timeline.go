package scene

import (
	"sync"
	"time"
)

// Clock supplies the current time to whoever drives transitions. Hosts use
// SystemClock; tests use a ManualClock so frames are deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Add moves the clock forward by d and returns the new time.
func (c *ManualClock) Add(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Timeline describes how transitions are scheduled. The element at sequence
// index i starts Delay + i*Stagger after the pass and runs for Duration.
type Timeline struct {
	Duration time.Duration
	Delay    time.Duration
	Stagger  time.Duration
	Ease     Easing
}

// DefaultDuration is the transition length used by charts when none is configured.
const DefaultDuration = 750 * time.Millisecond

// Immediate is a timeline whose transitions complete in the frame they start.
var Immediate = Timeline{}

func (tl Timeline) ease() Easing {
	if tl.Ease == nil {
		return easings[DefaultEasing]
	}
	return tl.Ease
}

// transition is one scheduled attribute change of an element.
type transition struct {
	from, to Attrs
	start    time.Time
	duration time.Duration
	ease     Easing
}

func (tl Timeline) schedule(from, to Attrs, now time.Time, index int) *transition {
	return &transition{
		from:     from,
		to:       to,
		start:    now.Add(tl.Delay + time.Duration(index)*tl.Stagger),
		duration: tl.Duration,
		ease:     tl.ease(),
	}
}

// at returns the interpolated attributes at now and whether the transition
// has completed.
func (tr *transition) at(now time.Time) (Attrs, bool) {
	if now.Before(tr.start) {
		return tr.from.Clone(), false
	}
	if tr.duration <= 0 {
		return tr.to.Clone(), true
	}
	p := float64(now.Sub(tr.start)) / float64(tr.duration)
	if p >= 1 {
		return tr.to.Clone(), true
	}
	return Lerp(tr.from, tr.to, tr.ease(p)), false
}
