package render

import (
	"context"
	"strings"

	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// Format is an artifact format.
type Format string

// Supported formats.
const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// ParseFormat validates a format name, ignoring case and a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (must be svg, png, pdf, json or dot)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}

// Options are the sink settings shared by [Render].
type Options struct {
	Title       string  // SVG document title
	Kind        string  // chart kind recorded in JSON output
	Scale       float64 // PNG scale factor (0 means 2)
	MarkLayer   string  // layer to make interactive in SVG output
	Interactive bool    // add hover highlighting to SVG output
	Pinned      bool    // keep chart positions in DOT output
}

// Render writes the surface in the given format.
func Render(ctx context.Context, s *surface.Surface, format Format, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Available(); err != nil {
		return nil, err
	}
	svgOpts := []SVGOption{WithTitle(opts.Title)}
	if opts.Interactive {
		svgOpts = append(svgOpts, WithInteraction(opts.MarkLayer))
	}

	switch format {
	case FormatSVG:
		return RenderSVG(s, svgOpts...), nil
	case FormatPNG:
		scale := opts.Scale
		if scale == 0 {
			scale = 2
		}
		return RenderPNG(s, WithScale(scale))
	case FormatPDF:
		return RenderPDF(ctx, s, WithPDFSVGOptions(svgOpts...))
	case FormatJSON:
		return RenderJSON(s, WithJSONKind(opts.Kind), WithJSONData())
	case FormatDOT:
		dot, err := ToDOT(s, DOTOptions{Pinned: opts.Pinned})
		if err != nil {
			return nil, err
		}
		return []byte(dot), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", string(format))
}
