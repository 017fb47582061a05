package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// DefaultFontSize is the text size of labels, in pixels.
const DefaultFontSize = 11.0

const markInteractionCSS = `
    .mark { transition: opacity 0.2s ease; }
    svg.hovering .mark { opacity: 0.35; }
    svg.hovering .mark.highlight { opacity: 1; }`

const markInteractionJS = `
    const root = document.currentScript.closest('svg');
    root.querySelectorAll('.mark').forEach(el => {
      el.addEventListener('mouseenter', () => { root.classList.add('hovering'); el.classList.add('highlight'); });
      el.addEventListener('mouseleave', () => { root.classList.remove('hovering'); el.classList.remove('highlight'); });
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title       string
	background  string
	fontSize    float64
	interactive bool
	markLayer   string
}

// WithTitle sets the document <title>.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithBackground overrides the surface background color.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithFontSize sets the label font size.
func WithFontSize(px float64) SVGOption { return func(r *svgRenderer) { r.fontSize = px } }

// WithInteraction adds hover highlighting for elements of the marks layer.
func WithInteraction(markLayer string) SVGOption {
	return func(r *svgRenderer) { r.interactive, r.markLayer = true, markLayer }
}

// RenderSVG renders every element of s in paint order. Each layer becomes a
// <g> group and each element carries its key in data-key.
func RenderSVG(s *surface.Surface, opts ...SVGOption) []byte {
	r := svgRenderer{background: s.Background(), fontSize: DefaultFontSize}
	for _, opt := range opts {
		opt(&r)
	}
	w, h := s.Size()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="sans-serif" font-size="%s">`+"\n",
		w, h, w, h, num(r.fontSize))
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, "  <rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", r.background)
	}

	layer := ""
	for _, it := range s.Items() {
		if it.Layer != layer {
			if layer != "" {
				buf.WriteString("  </g>\n")
			}
			layer = it.Layer
			fmt.Fprintf(&buf, "  <g class=\"layer-%s\">\n", html.EscapeString(layer))
		}
		class := ""
		if r.interactive && it.Layer == r.markLayer {
			class = "mark"
		}
		writeElement(&buf, it.Snapshot, class, r.fontSize)
	}
	if layer != "" {
		buf.WriteString("  </g>\n")
	}

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", markInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", markInteractionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeElement(buf *bytes.Buffer, el scene.Snapshot, class string, fontSize float64) {
	a := el.Attrs
	common := fmt.Sprintf(`data-key="%s"`, html.EscapeString(el.Key))
	if class != "" {
		common += fmt.Sprintf(` class="%s"`, class)
	}
	paint := paintAttrs(a)

	switch el.Kind {
	case scene.KindRect:
		x, y, w, h := a.X, a.Y, a.W, a.H
		if w < 0 {
			x, w = x+w, -w
		}
		if h < 0 {
			y, h = y+h, -h
		}
		fmt.Fprintf(buf, "    <rect %s x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\"%s/>\n",
			common, num(x), num(y), num(w), num(h), paint)
	case scene.KindCircle:
		fmt.Fprintf(buf, "    <circle %s cx=\"%s\" cy=\"%s\" r=\"%s\"%s/>\n",
			common, num(a.X), num(a.Y), num(max(a.R, 0)), paint)
	case scene.KindNode:
		fmt.Fprintf(buf, "    <g %s>\n      <circle cx=\"%s\" cy=\"%s\" r=\"%s\"%s/>\n",
			common, num(a.X), num(a.Y), num(max(a.R, 0)), paint)
		if a.Text != "" {
			fmt.Fprintf(buf, "      <text x=\"%s\" y=\"%s\" fill=\"#333333\" opacity=\"%s\">%s</text>\n",
				num(a.X+a.R+3), num(a.Y+fontSize*0.35), num(a.Opacity), html.EscapeString(a.Text))
		}
		buf.WriteString("    </g>\n")
	case scene.KindPath, scene.KindEdge:
		fmt.Fprintf(buf, "    <path %s d=\"%s\"%s/>\n", common, pathData(a.Paths, false), paint)
	case scene.KindPolygon:
		fmt.Fprintf(buf, "    <path %s d=\"%s\" fill-rule=\"evenodd\"%s/>\n", common, pathData(a.Paths, true), paint)
	case scene.KindLine:
		fmt.Fprintf(buf, "    <line %s x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\"%s/>\n",
			common, num(a.X), num(a.Y), num(a.X2), num(a.Y2), paint)
	case scene.KindText:
		anchor := a.Anchor
		if anchor == "" {
			anchor = "start"
		}
		fmt.Fprintf(buf, "    <text %s x=\"%s\" y=\"%s\" text-anchor=\"%s\"%s>%s</text>\n",
			common, num(a.X), num(a.Y), anchor, paint, html.EscapeString(a.Text))
	}
}

func paintAttrs(a scene.Attrs) string {
	var b strings.Builder
	if a.Fill != "" {
		fmt.Fprintf(&b, ` fill="%s"`, a.Fill)
	}
	if a.Stroke != "" {
		fmt.Fprintf(&b, ` stroke="%s"`, a.Stroke)
		if a.StrokeWidth > 0 {
			fmt.Fprintf(&b, ` stroke-width="%s"`, num(a.StrokeWidth))
		}
	}
	if a.Opacity < 1 {
		fmt.Fprintf(&b, ` opacity="%s"`, num(max(a.Opacity, 0)))
	}
	return b.String()
}

func pathData(paths [][]scene.Point, closed bool) string {
	var b strings.Builder
	for _, p := range paths {
		for i, pt := range p {
			if i == 0 {
				b.WriteByte('M')
			} else {
				b.WriteByte('L')
			}
			b.WriteString(num(pt.X))
			b.WriteByte(',')
			b.WriteString(num(pt.Y))
		}
		if closed && len(p) > 0 {
			b.WriteByte('Z')
		}
	}
	return b.String()
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(v float64) string {
	s := strings.TrimRight(strconv.FormatFloat(v, 'f', 2, 64), "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
