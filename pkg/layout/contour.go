package layout

import (
	"math"
	"strconv"

	"github.com/aclements/go-moremath/stats"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/chartkit/pkg/scene"
)

// Contour color ramp endpoints, lowest density first.
const (
	contourLow  = "#deebf7"
	contourHigh = "#08519c"
)

// contour estimates the density of the (x, y) points with a Gaussian kernel
// on a pixel grid and traces Thresholds evenly spaced density levels with
// marching squares. Each level becomes one polygon, key contour:<level>,
// made of closed rings. Every level is emitted, even when empty, so keys stay
// stable as the data changes.
func (l *layouter) contour() error {
	x, err := continuous(l.scales.X, "x")
	if err != nil {
		return err
	}
	y, err := continuous(l.scales.Y, "y")
	if err != nil {
		return err
	}
	k := l.opts.Keys
	xf, yf := k.XOrCategory(), k.YOrValue()

	var xs, ys []float64
	for i, p := range l.series {
		vx, ok, err := l.check.RequireNumber(p, i, xf)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		vy, ok, err := l.check.RequireNumber(p, i, yf)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		xs = append(xs, x.Map(vx))
		ys = append(ys, y.Map(vy))
	}

	frame := l.opts.Frame
	cell := l.opts.CellSize
	bw := l.opts.Bandwidth
	if bw <= 0 {
		bw = scottBandwidth(xs, ys)
	}

	grid := density(xs, ys, frame, cell, bw)
	peak := 0.0
	for _, v := range grid.v {
		peak = math.Max(peak, v)
	}

	n := l.opts.Thresholds
	low, _ := colorful.Hex(contourLow)
	high, _ := colorful.Hex(contourHigh)
	for i := 0; i < n; i++ {
		var rings [][]scene.Point
		if peak > 0 {
			level := peak * float64(i+1) / float64(n+1)
			rings = grid.isolines(level)
		}
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		fill := low.BlendLab(high, t).Clamped().Hex()
		l.emit(scene.Primitive{
			Kind: scene.KindPolygon,
			Key:  "contour:" + strconv.Itoa(i),
			Attrs: scene.Attrs{
				Paths:       rings,
				Baseline:    frame.CenterY(),
				Fill:        fill,
				Stroke:      contourHigh,
				StrokeWidth: 0.5,
				Opacity:     0.6,
			},
		})
	}
	return nil
}

// scottBandwidth returns Scott's rule bandwidth averaged over both axes,
// falling back to 20 pixels for degenerate samples.
func scottBandwidth(xs, ys []float64) float64 {
	if len(xs) < 2 {
		return 20
	}
	bx := stats.BandwidthScott(stats.Sample{Xs: xs})
	by := stats.BandwidthScott(stats.Sample{Xs: ys})
	bw := (bx + by) / 2
	if bw <= 0 || math.IsNaN(bw) {
		return 20
	}
	return bw
}

// field is a scalar grid. Vertex (i, j) sits at (x0 + i*cell, y0 + j*cell).
// The outermost ring of vertices is kept at zero so every isoline closes.
type field struct {
	nx, ny int
	x0, y0 float64
	cell   float64
	v      []float64
}

func (f *field) at(i, j int) float64 { return f.v[j*f.nx+i] }

// density evaluates a Gaussian kernel density estimate on the frame.
func density(xs, ys []float64, frame Frame, cell, bw float64) *field {
	cols := int(math.Ceil(frame.Width()/cell)) + 1
	rows := int(math.Ceil(frame.Height()/cell)) + 1
	f := &field{
		nx:   cols + 2,
		ny:   rows + 2,
		x0:   frame.Left - cell,
		y0:   frame.Top - cell,
		cell: cell,
	}
	f.v = make([]float64, f.nx*f.ny)

	inv := 1 / (2 * bw * bw)
	cutoff := 4 * bw
	for p := range xs {
		px, py := xs[p], ys[p]
		i0 := max(1, int(math.Floor((px-cutoff-f.x0)/cell)))
		i1 := min(f.nx-2, int(math.Ceil((px+cutoff-f.x0)/cell)))
		j0 := max(1, int(math.Floor((py-cutoff-f.y0)/cell)))
		j1 := min(f.ny-2, int(math.Ceil((py+cutoff-f.y0)/cell)))
		for j := j0; j <= j1; j++ {
			gy := f.y0 + float64(j)*cell
			for i := i0; i <= i1; i++ {
				gx := f.x0 + float64(i)*cell
				dx, dy := gx-px, gy-py
				f.v[j*f.nx+i] += math.Exp(-(dx*dx + dy*dy) * inv)
			}
		}
	}
	return f
}

// Cell edges. Corner bits: top-left 8, top-right 4, bottom-right 2,
// bottom-left 1.
const (
	edgeTop = iota
	edgeRight
	edgeBottom
	edgeLeft
)

// segments lists the edge pairs crossed for each corner configuration.
// Saddles (5 and 10) separate the two inside corners.
var segments = [16][][2]int{
	0:  nil,
	1:  {{edgeLeft, edgeBottom}},
	2:  {{edgeBottom, edgeRight}},
	3:  {{edgeLeft, edgeRight}},
	4:  {{edgeTop, edgeRight}},
	5:  {{edgeTop, edgeRight}, {edgeLeft, edgeBottom}},
	6:  {{edgeTop, edgeBottom}},
	7:  {{edgeLeft, edgeTop}},
	8:  {{edgeLeft, edgeTop}},
	9:  {{edgeTop, edgeBottom}},
	10: {{edgeLeft, edgeTop}, {edgeBottom, edgeRight}},
	11: {{edgeTop, edgeRight}},
	12: {{edgeLeft, edgeRight}},
	13: {{edgeBottom, edgeRight}},
	14: {{edgeLeft, edgeBottom}},
	15: nil,
}

// isolines traces the closed rings where the field crosses level. Crossing
// points are identified by the grid edge they lie on, which makes stitching
// exact: every crossing belongs to exactly two segments.
func (f *field) isolines(level float64) [][]scene.Point {
	adj := make(map[int][]int)
	var order []int
	link := func(a, b int) {
		if _, ok := adj[a]; !ok {
			order = append(order, a)
		}
		if _, ok := adj[b]; !ok {
			order = append(order, b)
		}
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}

	for j := 0; j < f.ny-1; j++ {
		for i := 0; i < f.nx-1; i++ {
			code := 0
			if f.at(i, j) >= level {
				code |= 8
			}
			if f.at(i+1, j) >= level {
				code |= 4
			}
			if f.at(i+1, j+1) >= level {
				code |= 2
			}
			if f.at(i, j+1) >= level {
				code |= 1
			}
			for _, s := range segments[code] {
				link(f.edgeID(i, j, s[0]), f.edgeID(i, j, s[1]))
			}
		}
	}

	visited := make(map[int]bool, len(order))
	var rings [][]scene.Point
	for _, start := range order {
		if visited[start] {
			continue
		}
		var ring []scene.Point
		prev, cur := -1, start
		for !visited[cur] {
			visited[cur] = true
			ring = append(ring, f.crossing(cur, level))
			next := -1
			for _, n := range adj[cur] {
				if n != prev && !visited[n] {
					next = n
					break
				}
			}
			if next < 0 {
				break
			}
			prev, cur = cur, next
		}
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	return rings
}

// edgeID numbers grid edges: horizontal edge from vertex (i, j) to (i+1, j)
// is 2*(j*nx+i), vertical edge from (i, j) to (i, j+1) is 2*(j*nx+i)+1.
func (f *field) edgeID(i, j, edge int) int {
	switch edge {
	case edgeTop:
		return 2 * (j*f.nx + i)
	case edgeBottom:
		return 2 * ((j+1)*f.nx + i)
	case edgeLeft:
		return 2*(j*f.nx+i) + 1
	default:
		return 2*(j*f.nx+i+1) + 1
	}
}

// crossing returns the point on edge id where the field equals level,
// interpolated linearly between the edge's vertices.
func (f *field) crossing(id int, level float64) scene.Point {
	v := id / 2
	i, j := v%f.nx, v/f.nx
	i2, j2 := i+1, j
	if id%2 == 1 {
		i2, j2 = i, j+1
	}
	a, b := f.at(i, j), f.at(i2, j2)
	t := 0.5
	if b != a {
		t = (level - a) / (b - a)
	}
	return scene.Point{
		X: f.x0 + (float64(i)+t*float64(i2-i))*f.cell,
		Y: f.y0 + (float64(j)+t*float64(j2-j))*f.cell,
	}
}
