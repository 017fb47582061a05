// Package data defines the input records charts bind to.
//
// A [Point] is an immutable record with named fields; a [Series] is an
// ordered sequence of points that is replaced wholesale on every update.
// Charts declare which fields carry the category, value, series grouping and
// so on through [Keys].
//
// Points that lack a required field are handled by a [MissingPolicy]: the
// default "skip" policy drops the point and records a [Warning], while
// "fail" aborts the render pass with a MISSING_FIELD error. Every chart kind
// applies the policy the same way through a [Checker].
package data
