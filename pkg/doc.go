// Package pkg provides the core libraries for chartkit, a reactive chart
// renderer.
//
// # Overview
//
// A chart is mounted on a retained surface. Every data update, resize or
// config change runs a pass: the data is laid out into keyed primitives,
// reconciled against what is already on the surface, and the differences
// animate from their old attributes to their new ones. The pkg directory
// is organized into four main areas:
//
//  1. [data], [scale], [layout], [guide] - Pure functions from a data series
//     to positioned primitives
//  2. [scene], [surface], [chart] - Keyed reconciliation, transitions and the
//     mounted chart lifecycle
//  3. [render], [io] - Output formats and spec import/export
//  4. [pipeline], [cache], [store] - Offline rendering shared by the CLI and
//     the HTTP host
//
// # Architecture
//
// The data flow of one pass:
//
//	data.Series
//	     ↓
//	[scale] (domains and ranges from the config and the data)
//	     ↓
//	[layout] (keyed primitives for the chart kind) + [guide] (axes, legend)
//	     ↓
//	[scene] (enter, update and exit against the live elements)
//	     ↓
//	[surface] (retained items, hit testing, pointer hooks)
//	     ↓
//	[render] (SVG, PNG, PDF, JSON, DOT)
//
// # Quick Start
//
// Mount a bar chart and settle it:
//
//	c, _ := chart.New(chart.Config{Kind: layout.KindBar, Width: 640, Height: 400}, chart.Options{})
//	_ = c.Mount(surface.New(640, 400))
//	_ = c.SetData(data.Series{
//	    data.P("category", "a", "value", 3),
//	    data.P("category", "b", "value", 5),
//	})
//	_ = c.Settle()
//	svg, _ := render.Render(ctx, c.Surface(), render.FormatSVG, render.Options{})
//
// Or run the cached pipeline from a spec:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{Config: cfg, Data: series})
//
// # Main Packages
//
// [errors] - Coded errors shared by every package and mapped to HTTP status
// codes by [httputil].
//
// [observability] - Hook interfaces for load, layout, render, cache,
// reconcile and HTTP events. No-ops by default.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/scene/...              # Specific package
//	go test -race ./...                 # Everything, with the race detector
package pkg
