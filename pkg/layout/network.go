package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// graph is the node/link structure read from a series for network and
// bundle layouts.
type graph struct {
	ids   []string
	index map[string]int
	data  []data.Point
	group []string
	links [][2]int
}

func (g *graph) add(id string, p data.Point, group string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	g.index[id] = len(g.ids)
	g.ids = append(g.ids, id)
	g.data = append(g.data, p)
	g.group = append(g.group, group)
	return len(g.ids) - 1
}

// readGraph builds nodes from the category field and links from the link
// field. Link targets that are not listed as points become nodes of their
// own, after the listed ones. Self links and repeated links are dropped.
func (l *layouter) readGraph() (*graph, error) {
	k := l.opts.Keys
	g := &graph{index: make(map[string]int)}
	targets := make([][]string, 0, len(l.series))
	sources := make([]int, 0, len(l.series))

	for i, p := range l.series {
		ok, err := l.check.Require(p, i, k.Category)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		id, _ := p.String(k.Category)
		grp, _ := p.String(k.Series)
		sources = append(sources, g.add(id, p, grp))
		ts, _ := p.Strings(k.Links)
		targets = append(targets, ts)
	}

	seen := make(map[[2]int]bool)
	for i, src := range sources {
		for _, t := range targets[i] {
			dst := g.add(t, data.P(k.Category, t), "")
			e := [2]int{src, dst}
			if src == dst || seen[e] {
				continue
			}
			seen[e] = true
			g.links = append(g.links, e)
		}
	}
	return g, nil
}

// network lays out a node-link diagram with the Fruchterman-Reingold force
// model. Initial positions come from a PCG generator seeded with Options.Seed
// and the simulation runs a fixed number of iterations, so equal input gives
// bit-identical output. Edges are emitted before nodes so nodes paint on top.
func (l *layouter) network() error {
	g, err := l.readGraph()
	if err != nil {
		return err
	}
	if len(g.ids) == 0 {
		return nil
	}

	frame := l.opts.Frame.Inset(l.opts.NodeRadius)
	pos := forceLayout(len(g.ids), g.links, frame.Width(), frame.Height(), l.opts.Seed, l.opts.Iterations)
	fit(pos, frame)

	for _, e := range g.links {
		src, dst := g.ids[e[0]], g.ids[e[1]]
		l.emit(scene.Primitive{
			Kind: scene.KindEdge,
			Key:  "edge:" + src + "->" + dst,
			Attrs: scene.Attrs{
				Paths:       [][]scene.Point{{pos[e[0]], pos[e[1]]}},
				Stroke:      "#999999",
				StrokeWidth: 1,
				Opacity:     0.6,
			},
			Datum: g.data[e[0]],
		})
	}
	for i, id := range g.ids {
		color := g.group[i]
		if color == "" {
			color = id
		}
		l.emit(scene.Primitive{
			Kind: scene.KindNode,
			Key:  "node:" + id,
			Attrs: scene.Attrs{
				X:           pos[i].X,
				Y:           pos[i].Y,
				R:           l.opts.NodeRadius,
				Fill:        l.color(color),
				Stroke:      "#ffffff",
				StrokeWidth: 1,
				Opacity:     1,
				Text:        id,
			},
			Datum: g.data[i],
		})
	}
	return nil
}

// forceLayout runs Fruchterman-Reingold on n nodes in a w x h box. The
// temperature cools linearly to zero over the iterations.
func forceLayout(n int, links [][2]int, w, h float64, seed uint64, iterations int) []scene.Point {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	pos := make([]scene.Point, n)
	for i := range pos {
		pos[i] = scene.Point{X: rng.Float64() * w, Y: rng.Float64() * h}
	}
	if n == 1 {
		return pos
	}

	w, h = max(w, 1), max(h, 1)
	k := math.Sqrt(w * h / float64(n))
	temp := w / 10
	disp := make([]scene.Point, n)

	for it := 0; it < iterations; it++ {
		clear(disp)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := pos[i].X-pos[j].X, pos[i].Y-pos[j].Y
				d := math.Max(math.Hypot(dx, dy), 0.01)
				f := k * k / d
				disp[i].X += dx / d * f
				disp[i].Y += dy / d * f
				disp[j].X -= dx / d * f
				disp[j].Y -= dy / d * f
			}
		}
		for _, e := range links {
			a, b := e[0], e[1]
			dx, dy := pos[a].X-pos[b].X, pos[a].Y-pos[b].Y
			d := math.Max(math.Hypot(dx, dy), 0.01)
			f := d * d / k
			disp[a].X -= dx / d * f
			disp[a].Y -= dy / d * f
			disp[b].X += dx / d * f
			disp[b].Y += dy / d * f
		}

		t := temp * (1 - float64(it)/float64(iterations))
		for i := range pos {
			d := math.Hypot(disp[i].X, disp[i].Y)
			if d > 0 {
				step := math.Min(d, t)
				pos[i].X += disp[i].X / d * step
				pos[i].Y += disp[i].Y / d * step
			}
			pos[i].X = math.Max(0, math.Min(w, pos[i].X))
			pos[i].Y = math.Max(0, math.Min(h, pos[i].Y))
		}
	}
	return pos
}

// fit scales positions uniformly to fill frame, centered. A single point
// lands in the frame center.
func fit(pos []scene.Point, frame Frame) {
	if len(pos) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	bw, bh := maxX-minX, maxY-minY
	s := math.Inf(1)
	if bw > 0 {
		s = frame.Width() / bw
	}
	if bh > 0 {
		s = math.Min(s, frame.Height()/bh)
	}
	if math.IsInf(s, 1) {
		s = 0
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	for i := range pos {
		pos[i].X = frame.CenterX() + (pos[i].X-cx)*s
		pos[i].Y = frame.CenterY() + (pos[i].Y-cy)*s
	}
}
