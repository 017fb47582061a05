package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// DOTOptions configures Graphviz export of node-link charts.
type DOTOptions struct {
	// Engine is the Graphviz layout engine. Empty means "neato" when
	// positions are pinned and "dot" otherwise.
	Engine string

	// Pinned keeps the chart's own node positions instead of letting
	// Graphviz lay the graph out again.
	Pinned bool
}

// ToDOT converts the node and edge elements of a network or bundle chart to
// Graphviz DOT. Nodes come from elements keyed node:<id> and edges from
// elements keyed edge:<src>-><dst>. It returns an UNSUPPORTED error if the
// surface holds no nodes.
func ToDOT(s *surface.Surface, opts DOTOptions) (string, error) {
	engine := opts.Engine
	if engine == "" {
		engine = "dot"
		if opts.Pinned {
			engine = "neato"
		}
	}
	_, h := s.Size()

	var nodes, edges []scene.Snapshot
	for _, it := range s.Items() {
		if it.Exiting {
			continue
		}
		switch it.Kind {
		case scene.KindNode:
			nodes = append(nodes, it.Snapshot)
		case scene.KindEdge:
			edges = append(edges, it.Snapshot)
		}
	}
	if len(nodes) == 0 {
		return "", errors.New(errors.ErrCodeUnsupported, "dot output needs a network or bundle chart")
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", engine)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontsize=10, color=white];\n")
	buf.WriteString("  edge [color=\"#999999\"];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		id := strings.TrimPrefix(n.Key, "node:")
		attrs := []string{
			fmt.Sprintf("label=%q", n.Attrs.Text),
			fmt.Sprintf("fillcolor=%q", n.Attrs.Fill),
			fmt.Sprintf("width=%s", num(2*n.Attrs.R/72)),
		}
		if n.Attrs.Text == "" {
			attrs[0] = fmt.Sprintf("label=%q", id)
		}
		if opts.Pinned {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(n.Attrs.X), num(h-n.Attrs.Y)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		src, dst, ok := strings.Cut(strings.TrimPrefix(e.Key, "edge:"), "->")
		if !ok {
			continue
		}
		if e.Attrs.Stroke != "" {
			fmt.Fprintf(&buf, "  %q -- %q [color=%q];\n", src, dst, e.Attrs.Stroke)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", src, dst)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// RenderDOT renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [ToPDF].
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
