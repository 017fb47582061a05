package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// pdfConverter is the librsvg tool that turns SVG into PDF.
var pdfConverter = "rsvg-convert"

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// RenderPDF renders the surface as SVG and converts it with rsvg-convert.
// A missing converter is an UNSUPPORTED error naming the package to install
// (brew install librsvg, apt install librsvg2-bin).
func RenderPDF(ctx context.Context, s *surface.Surface, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if err := s.Available(); err != nil {
		return nil, err
	}
	return ToPDF(ctx, RenderSVG(s, r.svgOpts...))
}

// ToPDF converts an SVG document to PDF. The conversion stops when ctx is
// cancelled.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	path, err := exec.LookPath(pdfConverter)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"pdf output requires %s (brew install librsvg, apt install librsvg2-bin)", pdfConverter)
	}

	cmd := exec.CommandContext(ctx, path, "-f", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", pdfConverter, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
