// Package scene reconciles keyed primitives into a persistent, animated scene.
//
// # Overview
//
// Layouts produce a fresh sequence of [Primitive] values on every pass. A
// [Reconciler] compares each sequence with the scene it already holds and
// partitions keys into entering, persisting and exiting sets:
//
//   - entering elements are created at their [Primitive.Enter] attributes
//     and transition to their final attributes
//   - persisting elements keep their identity and transition from wherever
//     they currently are, even mid-flight, to the new attributes
//   - exiting elements transition to [Primitive.Exit] and are removed only
//     once that transition completes
//
// Time never advances on its own. Reconcile schedules transitions on a
// [Timeline] relative to the time it is given, and the host moves them
// forward with [Reconciler.Advance], [Reconciler.Settle] or
// [Reconciler.Cancel]. A [Clock] abstracts the time source so tests can use a
// [ManualClock].
//
// # Drawing
//
// Each applied frame is pushed to a [Drawable], typically a retained surface,
// as element snapshots grouped by layer. The reconciler itself never renders.
package scene
