package guide

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/chartkit/pkg/scale"
	"github.com/matzehuels/chartkit/pkg/scene"
)

// Legend defaults.
const (
	DefaultSwatch  = 10.0
	DefaultSpacing = 18.0
)

// LegendOptions configures Legend.
type LegendOptions struct {
	X, Y       float64  // Top-left corner
	Horizontal bool     // Lay entries out in a row instead of a column
	Swatch     float64  // Swatch edge length
	Spacing    float64  // Distance between entries (row height or column width)
	Title      string   // Optional heading above the entries
	Categories []string // Entries to show; defaults to the scale's categories
	Color      string   // Label color
	FontSize   float64
	Hidden     bool
}

func (o *LegendOptions) setDefaults() {
	if o.Swatch <= 0 {
		o.Swatch = DefaultSwatch
	}
	if o.Spacing <= 0 {
		o.Spacing = DefaultSpacing
	}
	if o.Color == "" {
		o.Color = DefaultColor
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
}

// Legend returns one swatch and label per category of colors. Keys are
// legend:swatch:<category>, legend:label:<category> and legend:title.
//
// Swatches are outlined with a darker shade of their fill so light palette
// entries stay visible on a white background.
func Legend(colors *scale.Colors, opts LegendOptions) []scene.Primitive {
	opts.setDefaults()
	if colors == nil || opts.Hidden {
		return nil
	}
	cats := opts.Categories
	if cats == nil {
		cats = colors.Categories()
	}
	if len(cats) == 0 {
		return nil
	}

	var out []scene.Primitive
	x, y := opts.X, opts.Y
	if opts.Title != "" {
		out = append(out, scene.Primitive{
			Kind:  scene.KindText,
			Key:   "legend:title",
			Attrs: scene.Attrs{X: x, Y: y + opts.FontSize, Text: opts.Title, Fill: opts.Color, Anchor: "start", Opacity: 1},
		})
		y += opts.Spacing
	}

	seen := make(map[string]bool, len(cats))
	for _, cat := range cats {
		if seen[cat] {
			continue
		}
		seen[cat] = true
		fill := colors.Color(cat)
		out = append(out,
			scene.Primitive{
				Kind: scene.KindRect,
				Key:  "legend:swatch:" + cat,
				Attrs: scene.Attrs{
					X: x, Y: y, W: opts.Swatch, H: opts.Swatch,
					Baseline:    y + opts.Swatch,
					Fill:        fill,
					Stroke:      Shade(fill, 0.25),
					StrokeWidth: 1,
					Opacity:     1,
				},
			},
			scene.Primitive{
				Kind: scene.KindText,
				Key:  "legend:label:" + cat,
				Attrs: scene.Attrs{
					X:       x + opts.Swatch + 6,
					Y:       y + opts.Swatch/2 + opts.FontSize*0.35,
					Text:    cat,
					Fill:    opts.Color,
					Anchor:  "start",
					Opacity: 1,
				},
			},
		)
		if opts.Horizontal {
			x += opts.Spacing
		} else {
			y += opts.Spacing
		}
	}
	return out
}

// Shade darkens a hex color toward black by t in Lab space. Colors that do
// not parse are returned unchanged.
func Shade(hex string, t float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return c.BlendLab(colorful.Color{}, t).Clamped().Hex()
}

// Ramp returns n colors evenly spaced between from and to in Lab space, for
// legends of sequential color scales. Endpoints that do not parse yield a
// ramp of the raw strings.
func Ramp(from, to string, n int) []string {
	if n <= 0 {
		return nil
	}
	a, errA := colorful.Hex(from)
	b, errB := colorful.Hex(to)
	out := make([]string, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		switch {
		case errA != nil || errB != nil:
			out[i] = from
			if t >= 0.5 {
				out[i] = to
			}
		default:
			out[i] = a.BlendLab(b, t).Clamped().Hex()
		}
	}
	return out
}
