package surface

import "github.com/matzehuels/chartkit/pkg/data"

// EventType is the kind of pointer event a host delivers.
type EventType string

// Pointer event types.
const (
	PointerMove  EventType = "move"
	PointerClick EventType = "click"
)

// Event is a pointer event in surface coordinates.
type Event struct {
	Type EventType
	X, Y float64
}

// Hit is a pointer event resolved to the element under it.
type Hit struct {
	Type  EventType
	X, Y  float64
	Layer string
	Key   string
	Datum data.Point
}

// OnPointer registers fn to receive every resolved pointer event.
func (s *Surface) OnPointer(fn func(Hit)) {
	if s.closed || fn == nil {
		return
	}
	s.listeners = append(s.listeners, fn)
}

// Dispatch resolves ev against the stored elements and notifies listeners.
// Events that hit nothing are dropped.
func (s *Surface) Dispatch(ev Event) (Hit, bool) {
	if s.closed {
		return Hit{}, false
	}
	it, ok := s.HitTest(ev.X, ev.Y)
	if !ok {
		return Hit{}, false
	}
	h := Hit{Type: ev.Type, X: ev.X, Y: ev.Y, Layer: it.Layer, Key: it.Key, Datum: it.Datum}
	for _, fn := range s.listeners {
		fn(h)
	}
	return h, true
}
