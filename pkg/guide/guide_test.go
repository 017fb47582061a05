package guide

import (
	"strings"
	"testing"

	"github.com/matzehuels/chartkit/pkg/layout"
	"github.com/matzehuels/chartkit/pkg/scale"
	"github.com/matzehuels/chartkit/pkg/scene"
)

var frame = layout.Frame{Left: 40, Right: 240, Top: 10, Bottom: 110}

func find(prims []scene.Primitive, key string) (scene.Primitive, bool) {
	for _, p := range prims {
		if p.Key == key {
			return p, true
		}
	}
	return scene.Primitive{}, false
}

func TestBandAxis(t *testing.T) {
	x := scale.NewBand([]string{"a", "b"}, frame.Left, frame.Right, 0, 0)
	prims := Axis(x, AxisOptions{Name: "x", Frame: frame})

	tests := []struct {
		key  string
		kind scene.Kind
		x, y float64
	}{
		{"axis:x:domain", scene.KindLine, 40, 110},
		{"axis:x:tick:a", scene.KindLine, 90, 110},
		{"axis:x:tick:b", scene.KindLine, 190, 110},
		{"axis:x:label:a", scene.KindText, 90, 110 + DefaultTickSize + DefaultPadding + DefaultFontSize*0.8},
	}
	for _, tt := range tests {
		p, ok := find(prims, tt.key)
		if !ok {
			t.Errorf("missing %s", tt.key)
			continue
		}
		if p.Kind != tt.kind || p.Attrs.X != tt.x || p.Attrs.Y != tt.y {
			t.Errorf("%s = %s (%v, %v), want %s (%v, %v)", tt.key, p.Kind, p.Attrs.X, p.Attrs.Y, tt.kind, tt.x, tt.y)
		}
	}
	if p, _ := find(prims, "axis:x:tick:a"); p.Attrs.Y2 != 110+DefaultTickSize {
		t.Errorf("tick end = %v, want %v", p.Attrs.Y2, 110+DefaultTickSize)
	}
	if p, _ := find(prims, "axis:x:label:b"); p.Attrs.Text != "b" || p.Attrs.Anchor != "middle" {
		t.Errorf("label = %q anchor %q", p.Attrs.Text, p.Attrs.Anchor)
	}
}

func TestLinearAxisLeft(t *testing.T) {
	y := scale.NewLinear(0, 10, frame.Bottom, frame.Top)
	prims := Axis(y, AxisOptions{Name: "y", Orient: Left, Frame: frame, Grid: true, Title: "count"})

	p, ok := find(prims, "axis:y:tick:10")
	if !ok {
		t.Fatalf("missing tick 10 in %d primitives", len(prims))
	}
	if p.Attrs.Y != 10 || p.Attrs.X != 40 || p.Attrs.X2 != 40-DefaultTickSize {
		t.Errorf("tick 10 = (%v, %v)-(%v, %v)", p.Attrs.X, p.Attrs.Y, p.Attrs.X2, p.Attrs.Y2)
	}
	if p, _ := find(prims, "axis:y:label:0"); p.Attrs.Anchor != "end" || p.Attrs.X >= 40 {
		t.Errorf("label 0 at x %v anchor %q", p.Attrs.X, p.Attrs.Anchor)
	}
	g, ok := find(prims, "axis:y:grid:0")
	if !ok || g.Attrs.X != frame.Left || g.Attrs.X2 != frame.Right || g.Attrs.Y != 110 {
		t.Errorf("grid 0 = %+v", g.Attrs)
	}
	if _, ok := find(prims, "axis:y:title"); !ok {
		t.Error("missing title")
	}
}

func TestAxisKeysUnique(t *testing.T) {
	scales := []scale.Scale{
		scale.NewLinear(0, 1e-9, 0, 100),
		scale.NewLinear(1e6, 1.0001e6, 0, 100),
		scale.NewLog(1, 1e4, 0, 100, 10),
		scale.NewBand([]string{"a", "b", "c"}, 0, 100, 0.1, 0.1),
	}
	for _, sc := range scales {
		seen := map[string]bool{}
		for _, p := range Axis(sc, AxisOptions{Frame: frame, Grid: true}) {
			if seen[p.Key] {
				t.Errorf("%v: duplicate key %s", sc, p.Key)
			}
			seen[p.Key] = true
		}
	}
}

func TestAxisHidden(t *testing.T) {
	if got := Axis(scale.NewLinear(0, 1, 0, 1), AxisOptions{Hidden: true}); got != nil {
		t.Errorf("Axis(hidden) = %v, want nil", got)
	}
	if got := Axis(nil, AxisOptions{}); got != nil {
		t.Errorf("Axis(nil) = %v, want nil", got)
	}
}

func TestLegend(t *testing.T) {
	colors := scale.NewColors([]string{"x", "y", "x"}, nil)
	prims := Legend(colors, LegendOptions{X: 250, Y: 10, Title: "series"})

	var keys []string
	for _, p := range prims {
		keys = append(keys, p.Key)
	}
	want := "legend:title legend:swatch:x legend:label:x legend:swatch:y legend:label:y"
	if got := strings.Join(keys, " "); got != want {
		t.Fatalf("keys = %s, want %s", got, want)
	}

	sx, _ := find(prims, "legend:swatch:x")
	sy, _ := find(prims, "legend:swatch:y")
	if sx.Attrs.Fill != scale.Tableau10[0] || sy.Attrs.Fill != scale.Tableau10[1] {
		t.Errorf("fills = %s, %s", sx.Attrs.Fill, sy.Attrs.Fill)
	}
	if sy.Attrs.Y-sx.Attrs.Y != DefaultSpacing {
		t.Errorf("row spacing = %v, want %v", sy.Attrs.Y-sx.Attrs.Y, DefaultSpacing)
	}
	if sx.Attrs.Stroke == sx.Attrs.Fill {
		t.Error("swatch outline not shaded")
	}
}

func TestLegendHorizontal(t *testing.T) {
	colors := scale.NewColors([]string{"a", "b"}, nil)
	prims := Legend(colors, LegendOptions{Horizontal: true, Spacing: 60})
	a, _ := find(prims, "legend:swatch:a")
	b, _ := find(prims, "legend:swatch:b")
	if b.Attrs.X-a.Attrs.X != 60 || a.Attrs.Y != b.Attrs.Y {
		t.Errorf("swatches at (%v,%v) and (%v,%v)", a.Attrs.X, a.Attrs.Y, b.Attrs.X, b.Attrs.Y)
	}
}

func TestShade(t *testing.T) {
	tests := []struct {
		in   string
		t    float64
		want string
	}{
		{"#ffffff", 0, "#ffffff"},
		{"#ffffff", 1, "#000000"},
		{"not-a-color", 0.5, "not-a-color"},
	}
	for _, tt := range tests {
		if got := Shade(tt.in, tt.t); got != tt.want {
			t.Errorf("Shade(%q, %v) = %q, want %q", tt.in, tt.t, got, tt.want)
		}
	}
}

func TestRamp(t *testing.T) {
	r := Ramp("#000000", "#ffffff", 3)
	if len(r) != 3 || r[0] != "#000000" || r[2] != "#ffffff" {
		t.Errorf("Ramp = %v", r)
	}
	if Ramp("#000000", "#ffffff", 0) != nil {
		t.Error("Ramp(0) should be nil")
	}
}
