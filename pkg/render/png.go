package render

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background string
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGBackground overrides the surface background. The default for a
// surface without one is white.
func WithPNGBackground(c string) PNGOption {
	return func(r *pngRenderer) { r.background = c }
}

// RenderPNG rasterizes the surface with gg. Text uses gg's built-in bitmap
// face.
func RenderPNG(s *surface.Surface, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: s.Background()}
	for _, opt := range opts {
		opt(&r)
	}
	if r.background == "" {
		r.background = "#ffffff"
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("invalid png scale %v", r.scale)
	}
	if err := s.Available(); err != nil {
		return nil, err
	}

	w, h := s.Size()
	dc := gg.NewContext(int(w*r.scale+0.5), int(h*r.scale+0.5))
	setColor(dc, r.background, 1)
	dc.Clear()
	dc.Scale(r.scale, r.scale)

	for _, it := range s.Items() {
		drawElement(dc, it.Snapshot)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawElement(dc *gg.Context, el scene.Snapshot) {
	a := el.Attrs
	switch el.Kind {
	case scene.KindRect:
		dc.DrawRectangle(a.X, a.Y, a.W, a.H)
		paint(dc, a)
	case scene.KindCircle:
		if a.R > 0 {
			dc.DrawCircle(a.X, a.Y, a.R)
			paint(dc, a)
		}
	case scene.KindNode:
		if a.R > 0 {
			dc.DrawCircle(a.X, a.Y, a.R)
			paint(dc, a)
		}
		if a.Text != "" {
			setColor(dc, "#333333", a.Opacity)
			dc.DrawStringAnchored(a.Text, a.X+a.R+3, a.Y, 0, 0.5)
		}
	case scene.KindPath, scene.KindEdge, scene.KindPolygon:
		closed := el.Kind == scene.KindPolygon
		for _, p := range a.Paths {
			if len(p) == 0 {
				continue
			}
			dc.NewSubPath()
			dc.MoveTo(p[0].X, p[0].Y)
			for _, pt := range p[1:] {
				dc.LineTo(pt.X, pt.Y)
			}
			if closed {
				dc.ClosePath()
			}
		}
		if closed {
			dc.SetFillRuleEvenOdd()
		}
		paint(dc, a)
		dc.SetFillRuleWinding()
	case scene.KindLine:
		dc.DrawLine(a.X, a.Y, a.X2, a.Y2)
		paint(dc, a)
	case scene.KindText:
		ax := 0.0
		switch a.Anchor {
		case "middle":
			ax = 0.5
		case "end":
			ax = 1
		}
		setColor(dc, a.Fill, a.Opacity)
		dc.DrawString(a.Text, a.X-ax*textWidth(dc, a.Text), a.Y)
	}
}

func textWidth(dc *gg.Context, s string) float64 {
	w, _ := dc.MeasureString(s)
	return w
}

// paint fills then strokes the current path, skipping "none" and empty
// colors, and clears it.
func paint(dc *gg.Context, a scene.Attrs) {
	if a.Fill != "" && a.Fill != "none" {
		setColor(dc, a.Fill, a.Opacity)
		dc.FillPreserve()
	}
	if a.Stroke != "" && a.Stroke != "none" {
		setColor(dc, a.Stroke, a.Opacity)
		w := a.StrokeWidth
		if w <= 0 {
			w = 1
		}
		dc.SetLineWidth(w)
		dc.StrokePreserve()
	}
	dc.ClearPath()
}

func setColor(dc *gg.Context, hex string, opacity float64) {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{}
	}
	dc.SetRGBA(c.R, c.G, c.B, max(0, min(opacity, 1)))
}
