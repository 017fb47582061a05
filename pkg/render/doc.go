// Package render turns a chart surface into artifacts.
//
// # Overview
//
// Sinks read the retained elements of a [surface.Surface] in paint order and
// serialize them:
//
//   - [RenderSVG]: standalone SVG with optional hover interaction
//   - [RenderPNG]: raster image drawn with fogleman/gg
//   - [RenderPDF]: SVG converted with rsvg-convert
//   - [ToDOT], [RenderDOT]: Graphviz source and Graphviz-laid-out SVG for
//     network and bundle charts
//   - [RenderJSON]: the scene as a JSON document
//
// [Render] dispatches on a [Format] name and is what the CLI and the HTTP
// host call.
//
// # Format Conversion
//
// [ToPDF] converts any SVG using the external rsvg-convert tool (from
// librsvg). Without it, PDF output fails with an UNSUPPORTED error:
//
//	svg := render.RenderSVG(s)
//	pdf, err := render.ToPDF(ctx, svg)
//
// Exiting elements are included; render a settled chart to get the final
// scene only.
//
// [surface.Surface]: github.com/matzehuels/chartkit/pkg/surface
package render
