package data

import (
	"fmt"

	"github.com/matzehuels/chartkit/pkg/errors"
)

// Series is an ordered sequence of points. It is replaced wholesale on
// every update; callers never diff it incrementally.
type Series []Point

// Group is the subset of a series sharing one series-key value.
type Group struct {
	Key     string // Series-key value ("" for ungrouped data)
	Points  Series // Points in original order
	Indices []int  // Original index of every point, parallel to Points
}

// GroupBy splits s by the string value of field. Groups are returned in
// first-seen order. An empty field yields a single group holding every point.
// Points without the field are collected under the empty key.
func (s Series) GroupBy(field string) []Group {
	if field == "" {
		idx := make([]int, len(s))
		for i := range s {
			idx[i] = i
		}
		return []Group{{Points: s, Indices: idx}}
	}

	var groups []Group
	pos := make(map[string]int)
	for i, p := range s {
		k, _ := p.String(field)
		gi, ok := pos[k]
		if !ok {
			gi = len(groups)
			pos[k] = gi
			groups = append(groups, Group{Key: k})
		}
		groups[gi].Points = append(groups[gi].Points, p)
		groups[gi].Indices = append(groups[gi].Indices, i)
	}
	return groups
}

// Unique returns the distinct string values of field in first-seen order.
func (s Series) Unique(field string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range s {
		v, ok := p.String(field)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Numbers returns the numeric values of the given fields across all points.
// Missing or non-numeric values are skipped.
func (s Series) Numbers(fields ...string) []float64 {
	var out []float64
	for _, p := range s {
		for _, f := range fields {
			if v, ok := p.Number(f); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// MissingPolicy selects how a point lacking a required field is handled.
// The same policy applies to every chart kind.
type MissingPolicy string

const (
	// MissingSkip drops the point, records a warning and continues the pass.
	MissingSkip MissingPolicy = "skip"
	// MissingFail aborts the whole pass with a MissingFieldError.
	MissingFail MissingPolicy = "fail"
)

// Validate checks that the policy is known. The empty policy means skip.
func (m MissingPolicy) Validate() error {
	switch m {
	case "", MissingSkip, MissingFail:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidConfig, "invalid missing policy %q (must be skip or fail)", string(m))
}

// Warning records a point that was skipped during layout.
type Warning struct {
	Index int    `json:"index"` // Index of the point in the input series
	Field string `json:"field"` // Field that was missing or malformed
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	return fmt.Sprintf("point %d skipped: missing field %q", w.Index, w.Field)
}

// Checker applies a MissingPolicy to required fields and accumulates warnings.
type Checker struct {
	Policy   MissingPolicy
	Warnings []Warning
}

// Require reports whether every named field is present on p. Under the skip
// policy a missing field is recorded as a warning and false is returned with
// a nil error; under the fail policy a MissingFieldError is returned.
// Empty field names are ignored.
func (c *Checker) Require(p Point, index int, fields ...string) (bool, error) {
	for _, f := range fields {
		if f == "" || p.Has(f) {
			continue
		}
		if c.Policy == MissingFail {
			return false, errors.MissingField(index, f)
		}
		c.Warnings = append(c.Warnings, Warning{Index: index, Field: f})
		return false, nil
	}
	return true, nil
}

// RequireNumber is like Require but also demands a numeric value.
func (c *Checker) RequireNumber(p Point, index int, field string) (float64, bool, error) {
	if ok, err := c.Require(p, index, field); !ok || err != nil {
		return 0, false, err
	}
	v, ok := p.Number(field)
	if ok {
		return v, true, nil
	}
	if c.Policy == MissingFail {
		return 0, false, errors.MissingField(index, field)
	}
	c.Warnings = append(c.Warnings, Warning{Index: index, Field: field})
	return 0, false, nil
}
