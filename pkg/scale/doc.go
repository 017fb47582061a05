// Package scale builds the one-dimensional mappings charts use to place data.
//
// # Overview
//
// A scale maps a data domain onto a pixel range. [Build] constructs one of:
//
//   - linear: numeric interval, linear mapping ([Linear])
//   - log: strictly positive interval, logarithmic mapping ([Log])
//   - time: instants, linear in Unix seconds ([Time])
//   - band: categories onto equal bands with padding ([Band])
//   - ordinal: categories onto evenly spaced points ([NewOrdinal])
//
// The domain comes from a [Domain]: an explicit interval ([Fixed]), an
// explicit category list ([Categories]), raw values ([Values]) or fields of a
// series ([FromSeries]). Derived numeric domains may be padded and extended to
// zero; a degenerate domain (min == max) is always widened by ±Epsilon.
//
// Scales are pure values. Several layouts may share one scale within a pass.
//
// Tick generation for continuous scales uses the level search from
// github.com/aclements/go-moremath/scale, and numeric domain derivation uses
// its stats package.
//
// # Example
//
//	s, err := scale.Build(scale.KindLinear, scale.Fixed(0, 2), [2]float64{0, 100}, scale.Options{})
//	if err != nil {
//	    return err
//	}
//	y := scale.MustContinuous(s).Map(1) // 50
package scale
