package data

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Point is an immutable record with named fields.
//
// Points are built once from decoded input (JSON objects, TOML tables, or
// literal maps) and never modified afterwards, which makes them safe to
// share between the layout of one pass and the primitives it produces.
type Point struct {
	fields map[string]any
}

// NewPoint returns a Point holding a copy of fields.
func NewPoint(fields map[string]any) Point {
	return Point{fields: maps.Clone(fields)}
}

// P is shorthand for building a Point from alternating key/value pairs.
// It panics on an odd argument count or a non-string key, so it is meant
// for literals in tests and examples.
//
//	data.P("cat", "a", "val", 1)
func P(kv ...any) Point {
	if len(kv)%2 != 0 {
		panic("data.P: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("data.P: key %v is not a string", kv[i]))
		}
		m[k] = kv[i+1]
	}
	return Point{fields: m}
}

// Get returns the raw value of a field.
// A field explicitly set to nil is reported as absent.
func (p Point) Get(name string) (any, bool) {
	v, ok := p.fields[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Has reports whether the field is present and non-nil.
func (p Point) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// String returns a field formatted as a string. Numbers are formatted in
// their shortest round-tripping form so that a category of 2 and "2" match.
func (p Point) String(name string) (string, bool) {
	v, ok := p.Get(name)
	if !ok {
		return "", false
	}
	switch v := v.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		return v.Format(time.RFC3339), true
	default:
		return fmt.Sprint(v), true
	}
}

// Number returns a field as a float64. Numeric strings are accepted.
// NaN and infinities are treated as missing values.
func (p Point) Number(name string) (float64, bool) {
	v, ok := p.Get(name)
	if !ok {
		return 0, false
	}
	var f float64
	switch v := v.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = n
	case time.Time:
		f = float64(v.UnixNano()) / 1e9
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Time returns a field as a time. RFC 3339 strings, plain dates
// (2006-01-02) and numbers (Unix seconds) are accepted.
func (p Point) Time(name string) (time.Time, bool) {
	v, ok := p.Get(name)
	if !ok {
		return time.Time{}, false
	}
	switch v := v.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.DateOnly, time.DateTime} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	if f, ok := p.Number(name); ok {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	}
	return time.Time{}, false
}

// Strings returns a list-valued field, used for network and bundle links.
// A single string is split on commas.
func (p Point) Strings(name string) ([]string, bool) {
	v, ok := p.Get(name)
	if !ok {
		return nil, false
	}
	switch v := v.(type) {
	case []string:
		return slices.Clone(v), true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if e == nil {
				continue
			}
			if s, ok := e.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(e))
			}
		}
		return out, true
	case string:
		if v == "" {
			return nil, true
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, true
	}
	return nil, false
}

// Fields returns a copy of the point's fields.
func (p Point) Fields() map[string]any {
	return maps.Clone(p.fields)
}

// Names returns the field names in sorted order.
func (p Point) Names() []string {
	return slices.Sorted(maps.Keys(p.fields))
}

// MarshalJSON encodes the point as a JSON object.
func (p Point) MarshalJSON() ([]byte, error) {
	if p.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.fields)
}

// UnmarshalJSON decodes a JSON object into the point.
func (p *Point) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decode point: %w", err)
	}
	p.fields = m
	return nil
}
