package layout

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// hnode is a node of the name hierarchy used by hierarchical edge bundling.
type hnode struct {
	name     string // full dotted name; "" for the root
	label    string // last name segment
	parent   *hnode
	children []*hnode
	depth    int
	height   int
	angle    float64
	radius   float64
	leaf     bool
	datum    data.Point
}

// hierarchy builds a tree from separator-delimited names. Intermediate
// packages are created as needed; children are sorted by label.
func hierarchy(names []string, sep string, datum map[string]data.Point) (*hnode, map[string]*hnode) {
	root := &hnode{}
	byName := map[string]*hnode{"": root}
	for _, name := range names {
		parts := strings.Split(name, sep)
		cur := root
		for i, part := range parts {
			full := strings.Join(parts[:i+1], sep)
			n, ok := byName[full]
			if !ok {
				n = &hnode{name: full, label: part, parent: cur, depth: cur.depth + 1}
				byName[full] = n
				cur.children = append(cur.children, n)
			}
			cur = n
		}
		cur.leaf = true
		cur.datum = datum[name]
	}
	var sortTree func(n *hnode) int
	sortTree = func(n *hnode) int {
		slices.SortFunc(n.children, func(a, b *hnode) int { return strings.Compare(a.label, b.label) })
		h := 0
		for _, c := range n.children {
			h = max(h, sortTree(c)+1)
		}
		n.height = h
		return h
	}
	sortTree(root)
	return root, byName
}

// cluster places leaves evenly on the circle in tree order and every internal
// node at the mean angle of its children. All leaves share the outer radius;
// internal nodes sit closer to the center the taller their subtree.
func cluster(root *hnode, radius float64) []*hnode {
	var leaves []*hnode
	var collect func(n *hnode)
	collect = func(n *hnode) {
		if len(n.children) == 0 {
			leaves = append(leaves, n)
			return
		}
		for _, c := range n.children {
			collect(c)
		}
	}
	collect(root)
	if len(leaves) == 0 {
		return nil
	}

	step := 2 * math.Pi / float64(len(leaves))
	for i, n := range leaves {
		n.angle = float64(i) * step
	}
	var place func(n *hnode)
	place = func(n *hnode) {
		if root.height > 0 {
			n.radius = radius * (1 - float64(n.height)/float64(root.height))
		}
		if len(n.children) == 0 {
			return
		}
		sum := 0.0
		for _, c := range n.children {
			place(c)
			sum += c.angle
		}
		n.angle = sum / float64(len(n.children))
	}
	place(root)
	return leaves
}

// pathTo returns the nodes from a up to the lowest common ancestor of a and
// b and back down to b.
func pathTo(a, b *hnode) []*hnode {
	ancestors := make(map[*hnode]bool)
	for n := a; n != nil; n = n.parent {
		ancestors[n] = true
	}
	lca := b
	for !ancestors[lca] {
		lca = lca.parent
	}
	var up []*hnode
	for n := a; n != lca; n = n.parent {
		up = append(up, n)
	}
	up = append(up, lca)
	var down []*hnode
	for n := b; n != lca; n = n.parent {
		down = append(down, n)
	}
	slices.Reverse(down)
	return append(up, down...)
}

// bundle lays out hierarchical edge bundling. Leaves are names split by
// Separator, placed on a circle by a cluster layout; every link is routed
// along the hierarchy through the lowest common ancestor, straightened by
// Beta and drawn as a uniform cubic B-spline. Keys are node:<name> and
// edge:<src>-><dst>; edges are emitted first.
func (l *layouter) bundle() error {
	k := l.opts.Keys
	var names []string
	datum := make(map[string]data.Point)
	links := make(map[string][]string)
	for i, p := range l.series {
		ok, err := l.check.Require(p, i, k.Category)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		name, _ := p.String(k.Category)
		if _, dup := datum[name]; !dup {
			names = append(names, name)
		}
		datum[name] = p
		ts, _ := p.Strings(k.Links)
		links[name] = append(links[name], ts...)
	}
	if len(names) == 0 {
		return nil
	}

	frame := l.opts.Frame
	radius := math.Max(0, math.Min(frame.Width(), frame.Height())/2-l.opts.NodeRadius)
	root, byName := hierarchy(names, l.opts.Separator, datum)
	leaves := cluster(root, radius)
	cx, cy := frame.CenterX(), frame.CenterY()
	point := func(n *hnode) scene.Point {
		a := n.angle - math.Pi/2
		return scene.Point{X: cx + n.radius*math.Cos(a), Y: cy + n.radius*math.Sin(a)}
	}

	seen := make(map[[2]string]bool)
	for _, src := range names {
		a := byName[src]
		if !a.leaf {
			continue
		}
		for _, dst := range links[src] {
			b, ok := byName[dst]
			if !ok || !b.leaf || a == b || seen[[2]string{src, dst}] {
				continue
			}
			seen[[2]string{src, dst}] = true

			nodes := pathTo(a, b)
			ctrl := make([]scene.Point, len(nodes))
			for i, n := range nodes {
				ctrl[i] = point(n)
			}
			l.emit(scene.Primitive{
				Kind: scene.KindEdge,
				Key:  "edge:" + src + "->" + dst,
				Attrs: scene.Attrs{
					Paths:       [][]scene.Point{bspline(straighten(ctrl, l.opts.Beta), l.opts.Samples)},
					Stroke:      l.color(topLevel(a)),
					StrokeWidth: 1,
					Opacity:     0.4,
				},
				Datum: datum[src],
			})
		}
	}

	if len(leaves) == 0 {
		return nil
	}
	// A name that also prefixes other names is drawn at its internal
	// position, where its edges start and end.
	var named []*hnode
	var walk func(n *hnode)
	walk = func(n *hnode) {
		if n.leaf {
			named = append(named, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)

	for _, n := range named {
		anchor := "start"
		if math.Mod(n.angle, 2*math.Pi) > math.Pi {
			anchor = "end"
		}
		pt := point(n)
		l.emit(scene.Primitive{
			Kind: scene.KindNode,
			Key:  "node:" + n.name,
			Attrs: scene.Attrs{
				X:       pt.X,
				Y:       pt.Y,
				R:       math.Max(1, l.opts.NodeRadius/3),
				Fill:    l.color(topLevel(n)),
				Opacity: 1,
				Text:    n.label,
				Anchor:  anchor,
			},
			Datum: n.datum,
		})
	}
	return nil
}

// topLevel returns the name of n's ancestor directly below the root, used
// to color whole subtrees alike.
func topLevel(n *hnode) string {
	for n.parent != nil && n.parent.parent != nil {
		n = n.parent
	}
	return n.name
}

// straighten pulls control points toward the straight line from first to
// last: beta 1 keeps the hierarchy path, beta 0 gives a straight line.
func straighten(ctrl []scene.Point, beta float64) []scene.Point {
	n := len(ctrl)
	if n < 3 {
		return ctrl
	}
	p0, pn := ctrl[0], ctrl[n-1]
	out := make([]scene.Point, n)
	for i, p := range ctrl {
		t := float64(i) / float64(n-1)
		out[i] = scene.Point{
			X: beta*p.X + (1-beta)*(p0.X+t*(pn.X-p0.X)),
			Y: beta*p.Y + (1-beta)*(p0.Y+t*(pn.Y-p0.Y)),
		}
	}
	return out
}

// bspline samples the uniform cubic B-spline through ctrl. End points are
// tripled so the curve starts and ends exactly at the first and last control
// point.
func bspline(ctrl []scene.Point, samples int) []scene.Point {
	if len(ctrl) < 3 {
		return slices.Clone(ctrl)
	}
	q := make([]scene.Point, 0, len(ctrl)+4)
	q = append(q, ctrl[0], ctrl[0])
	q = append(q, ctrl...)
	q = append(q, ctrl[len(ctrl)-1], ctrl[len(ctrl)-1])

	var out []scene.Point
	for s := 0; s+3 < len(q); s++ {
		p0, p1, p2, p3 := q[s], q[s+1], q[s+2], q[s+3]
		for i := 0; i < samples; i++ {
			t := float64(i) / float64(samples)
			out = append(out, basis(p0, p1, p2, p3, t))
		}
	}
	out = append(out, ctrl[len(ctrl)-1])
	return out
}

func basis(p0, p1, p2, p3 scene.Point, t float64) scene.Point {
	t2, t3 := t*t, t*t*t
	b0 := (1 - 3*t + 3*t2 - t3) / 6
	b1 := (4 - 6*t2 + 3*t3) / 6
	b2 := (1 + 3*t + 3*t2 - 3*t3) / 6
	b3 := t3 / 6
	return scene.Point{
		X: b0*p0.X + b1*p1.X + b2*p2.X + b3*p3.X,
		Y: b0*p0.Y + b1*p1.Y + b2*p2.Y + b3*p3.Y,
	}
}
