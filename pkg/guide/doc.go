// Package guide builds axes and legends as keyed scene primitives.
//
// Guides depend only on scales and their own options, never on the data or
// chart that produced the scales. Their primitives are reconciled like any
// other, usually on a separate layer from the data marks, so a tick whose
// label survives a rescale animates to its new position.
package guide
