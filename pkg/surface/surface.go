// Package surface provides a retained drawable surface for charts.
//
// A [Surface] stores the latest snapshot of every scene element, grouped by
// layer, and answers hit-test queries for pointer events. Render sinks read
// it back with [Surface.Items]. It implements scene.Drawable.
//
// A surface with a non-positive width or height is unavailable: charts
// mounted on it wait for a resize before running a pass.
package surface

import (
	"math"
	"slices"

	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// DefaultTolerance is the hit distance in pixels for strokes (paths, edges, lines).
const DefaultTolerance = 3.0

// Item is an element as stored on the surface.
type Item struct {
	Layer string
	scene.Snapshot
}

// Surface is a retained, in-memory drawing target. It is not safe for
// concurrent use; hosts serialize access to a chart and its surface.
type Surface struct {
	width, height float64
	background    string
	tolerance     float64

	layers   []string
	elements map[string]map[scene.ElementID]scene.Snapshot

	listeners []func(Hit)
	closed    bool
}

// Option configures a Surface.
type Option func(*Surface)

// WithBackground sets the background fill used by render sinks.
func WithBackground(color string) Option {
	return func(s *Surface) { s.background = color }
}

// WithTolerance sets the stroke hit distance.
func WithTolerance(px float64) Option {
	return func(s *Surface) { s.tolerance = px }
}

// New returns a surface of the given size.
func New(width, height float64, opts ...Option) *Surface {
	s := &Surface{
		width:     width,
		height:    height,
		tolerance: DefaultTolerance,
		elements:  make(map[string]map[scene.ElementID]scene.Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size returns the surface dimensions.
func (s *Surface) Size() (width, height float64) { return s.width, s.height }

// Background returns the configured background fill, or "" for transparent.
func (s *Surface) Background() string { return s.background }

// Resize changes the surface dimensions. Stored elements are kept; the owner
// is expected to run a new pass.
func (s *Surface) Resize(width, height float64) {
	s.width, s.height = width, height
}

// Available reports whether the surface can be drawn on. It returns a
// SURFACE_UNAVAILABLE error when the surface is closed or has no area.
func (s *Surface) Available() error {
	if s.closed {
		return errors.New(errors.ErrCodeSurfaceUnavailable, "surface released")
	}
	return errors.ValidateDimensions(s.width, s.height)
}

// SetLayerOrder fixes the paint order of layers, bottom first. Layers drawn
// later that are not listed are painted on top in first-seen order.
func (s *Surface) SetLayerOrder(layers ...string) {
	order := slices.Clone(layers)
	for _, l := range s.layers {
		if !slices.Contains(order, l) {
			order = append(order, l)
		}
	}
	s.layers = order
}

// Layers returns the paint order.
func (s *Surface) Layers() []string { return slices.Clone(s.layers) }

// Draw implements scene.Drawable. It is a no-op on a closed surface.
func (s *Surface) Draw(layer string, snap scene.Snapshot) {
	if s.closed {
		return
	}
	m, ok := s.elements[layer]
	if !ok {
		m = make(map[scene.ElementID]scene.Snapshot)
		s.elements[layer] = m
		if !slices.Contains(s.layers, layer) {
			s.layers = append(s.layers, layer)
		}
	}
	m[snap.ID] = snap
}

// Erase implements scene.Drawable.
func (s *Surface) Erase(layer string, id scene.ElementID) {
	if m, ok := s.elements[layer]; ok {
		delete(m, id)
	}
}

// Clear removes every element from layer.
func (s *Surface) Clear(layer string) {
	delete(s.elements, layer)
}

// Len returns the number of stored elements.
func (s *Surface) Len() int {
	n := 0
	for _, m := range s.elements {
		n += len(m)
	}
	return n
}

// Items returns every element in paint order: by layer, then by element
// order, then by key.
func (s *Surface) Items() []Item {
	var out []Item
	for _, layer := range s.layers {
		m := s.elements[layer]
		start := len(out)
		for _, snap := range m {
			out = append(out, Item{Layer: layer, Snapshot: snap})
		}
		slices.SortFunc(out[start:], func(a, b Item) int {
			if a.Order != b.Order {
				return a.Order - b.Order
			}
			if a.Key < b.Key {
				return -1
			}
			if a.Key > b.Key {
				return 1
			}
			return 0
		})
	}
	return out
}

// Close releases the surface. Stored elements and listeners are dropped and
// later draws are ignored.
func (s *Surface) Close() {
	s.closed = true
	s.elements = make(map[string]map[scene.ElementID]scene.Snapshot)
	s.listeners = nil
}

// Closed reports whether Close has been called.
func (s *Surface) Closed() bool { return s.closed }

// HitTest returns the topmost element under (x, y). Exiting elements and
// text are not hit targets.
func (s *Surface) HitTest(x, y float64) (Item, bool) {
	items := s.Items()
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if it.Exiting {
			continue
		}
		if contains(it.Kind, it.Attrs, x, y, s.tolerance) {
			return it, true
		}
	}
	return Item{}, false
}

func contains(kind scene.Kind, a scene.Attrs, x, y, tol float64) bool {
	switch kind {
	case scene.KindRect:
		y0, y1 := a.Y, a.Y+a.H
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		return x >= a.X && x <= a.X+a.W && y >= y0 && y <= y1
	case scene.KindCircle, scene.KindNode:
		return math.Hypot(x-a.X, y-a.Y) <= math.Max(a.R, tol)
	case scene.KindPolygon:
		for _, ring := range a.Paths {
			if insideRing(ring, x, y) {
				return true
			}
		}
		return false
	case scene.KindPath, scene.KindEdge:
		for _, sub := range a.Paths {
			for i := 1; i < len(sub); i++ {
				if segmentDist(sub[i-1], sub[i], x, y) <= tol {
					return true
				}
			}
		}
		return false
	case scene.KindLine:
		return segmentDist(scene.Point{X: a.X, Y: a.Y}, scene.Point{X: a.X2, Y: a.Y2}, x, y) <= tol
	}
	return false
}

// insideRing is the even-odd ray casting test.
func insideRing(ring []scene.Point, x, y float64) bool {
	in := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > y) != (pj.Y > y) && x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			in = !in
		}
	}
	return in
}

func segmentDist(a, b scene.Point, x, y float64) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(x-a.X, y-a.Y)
	}
	t := max(0, min(1, ((x-a.X)*dx+(y-a.Y)*dy)/l2))
	return math.Hypot(x-(a.X+t*dx), y-(a.Y+t*dy))
}
