package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateFieldName validates a data field name used in chart keys.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 128 characters
func ValidateFieldName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "field name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidConfig, "field name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "field name contains invalid control characters")
		}
	}
	return nil
}

// ValidateChartID validates a chart instance identifier (a UUID).
func ValidateChartID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "chart id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid chart id %q", id)
	}
	return nil
}

// ValidateDimensions validates a surface size.
// Width and height must be finite and strictly positive.
func ValidateDimensions(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return New(ErrCodeSurfaceUnavailable, "invalid surface size %gx%g", width, height)
		}
	}
	return nil
}

// colorRegex matches #rgb and #rrggbb hex colors.
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a hex color string as used in palettes.
func ValidateColor(c string) error {
	if !colorRegex.MatchString(strings.TrimSpace(c)) {
		return New(ErrCodeInvalidConfig, "invalid color %q (want #rgb or #rrggbb)", c)
	}
	return nil
}
