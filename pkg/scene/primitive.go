package scene

import (
	"slices"

	"github.com/matzehuels/chartkit/pkg/data"
)

// Kind identifies the shape of a primitive.
type Kind string

// Primitive kinds.
const (
	KindRect    Kind = "rect"
	KindCircle  Kind = "circle"
	KindPath    Kind = "path"
	KindPolygon Kind = "polygon"
	KindNode    Kind = "node"
	KindEdge    Kind = "edge"
	KindLine    Kind = "line"
	KindText    Kind = "text"
)

// Point is a position in surface coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Attrs are the drawable attributes of a primitive. Which fields matter
// depends on the kind:
//
//	rect:    X, Y, W, H
//	circle:  X, Y (center), R
//	node:    X, Y (center), R, Text (label)
//	path:    Paths (open subpaths)
//	polygon: Paths (closed rings)
//	edge:    Paths (one polyline)
//	line:    X, Y to X2, Y2
//	text:    X, Y, Text, Anchor
//
// Baseline is the y coordinate a rect, path or polygon collapses onto when
// it enters or exits.
type Attrs struct {
	X           float64   `json:"x,omitempty"`
	Y           float64   `json:"y,omitempty"`
	X2          float64   `json:"x2,omitempty"`
	Y2          float64   `json:"y2,omitempty"`
	W           float64   `json:"w,omitempty"`
	H           float64   `json:"h,omitempty"`
	R           float64   `json:"r,omitempty"`
	Paths       [][]Point `json:"paths,omitempty"`
	Baseline    float64   `json:"baseline,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"stroke_width,omitempty"`
	Opacity     float64   `json:"opacity"`
	Text        string    `json:"text,omitempty"`
	Anchor      string    `json:"anchor,omitempty"`
}

// Clone returns a deep copy of a.
func (a Attrs) Clone() Attrs {
	if a.Paths != nil {
		paths := make([][]Point, len(a.Paths))
		for i, p := range a.Paths {
			paths[i] = slices.Clone(p)
		}
		a.Paths = paths
	}
	return a
}

// Equal reports whether a and b draw identically.
func (a Attrs) Equal(b Attrs) bool {
	if a.X != b.X || a.Y != b.Y || a.X2 != b.X2 || a.Y2 != b.Y2 ||
		a.W != b.W || a.H != b.H || a.R != b.R || a.Baseline != b.Baseline ||
		a.Fill != b.Fill || a.Stroke != b.Stroke || a.StrokeWidth != b.StrokeWidth ||
		a.Opacity != b.Opacity || a.Text != b.Text || a.Anchor != b.Anchor {
		return false
	}
	return slices.EqualFunc(a.Paths, b.Paths, func(x, y []Point) bool { return slices.Equal(x, y) })
}

// Primitive is a renderable unit with a stable identity. Two primitives with
// the same Key in consecutive passes are the same visual entity.
type Primitive struct {
	Kind  Kind
	Key   string
	Attrs Attrs

	// Datum is the data point the primitive was laid out from, if any. It is
	// handed to pointer hooks.
	Datum data.Point
}

// Enter returns the attributes a primitive is created with before it
// transitions to its final attributes: rects collapse onto the baseline,
// circles shrink to radius 0, paths flatten onto the baseline, and polygons,
// nodes, edges, lines and text fade from opacity 0.
func (p Primitive) Enter() Attrs {
	return collapse(p.Kind, p.Attrs)
}

// Exit returns the terminal attributes an exiting element transitions to
// before it is removed.
func (p Primitive) Exit() Attrs {
	return collapse(p.Kind, p.Attrs)
}

func collapse(kind Kind, a Attrs) Attrs {
	a = a.Clone()
	switch kind {
	case KindRect:
		a.Y = a.Baseline
		a.H = 0
	case KindCircle:
		a.R = 0
	case KindPath:
		flatten(a.Paths, a.Baseline)
	case KindPolygon:
		flatten(a.Paths, a.Baseline)
		a.Opacity = 0
	case KindNode:
		a.R = 0
		a.Opacity = 0
	default:
		a.Opacity = 0
	}
	return a
}

func flatten(paths [][]Point, y float64) {
	for _, sub := range paths {
		for i := range sub {
			sub[i].Y = y
		}
	}
}
