// Package layout turns a data series into keyed scene primitives.
//
// A layout is a pure function of its input: the same series, scales and
// options always produce the same primitives in the same order. Randomized
// layouts (network) draw from a generator seeded through [Options.Seed].
//
// # Kinds
//
//   - bar, grouped, stacked: rects on a band x scale
//   - line, area: paths and polygons over a continuous or time x scale
//   - scatter: circles, optionally sized by a field
//   - network: a force-directed node-link diagram
//   - contour: density isolines of (x, y) points
//   - bundle: hierarchical edge bundling of dotted names on a circle
//
// # Keys
//
// Every primitive carries a key that identifies the same datum across passes
// so the scene can animate it in place: bar:<category>, bar:<series>:<category>,
// line:<series>, area:<series>, point:<series>:<category>, node:<id>,
// edge:<src>-><dst> and contour:<level>.
//
// # Missing Fields
//
// Points lacking a required field are handled by [data.MissingPolicy]: skip
// drops the point and records a warning in [Result.Warnings], fail aborts the
// pass with a MISSING_FIELD error.
package layout
