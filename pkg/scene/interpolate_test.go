package scene

import (
	"math"
	"testing"

	"github.com/matzehuels/chartkit/pkg/errors"
)

func TestEasings(t *testing.T) {
	for _, name := range EasingNames() {
		e, err := EasingByName(name)
		if err != nil {
			t.Fatalf("EasingByName(%q): %v", name, err)
		}
		if got := e(0); math.Abs(got) > 1e-12 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := e(1); math.Abs(got-1) > 1e-12 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
}

func TestEasingByName(t *testing.T) {
	if _, err := EasingByName(""); err != nil {
		t.Errorf("EasingByName(\"\") error = %v", err)
	}
	_, err := EasingByName("bounce")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("EasingByName(bounce) error = %v, want INVALID_CONFIG", err)
	}
}

func TestLerpNumbers(t *testing.T) {
	a := Attrs{X: 0, Y: 10, Opacity: 0}
	b := Attrs{X: 100, Y: 20, Opacity: 1}
	got := Lerp(a, b, 0.25)
	if got.X != 25 || got.Y != 12.5 || got.Opacity != 0.25 {
		t.Errorf("Lerp = %+v", got)
	}
}

func TestLerpColors(t *testing.T) {
	a := Attrs{Fill: "#000000"}
	b := Attrs{Fill: "#ffffff"}
	if got := Lerp(a, b, 0).Fill; got != "#000000" {
		t.Errorf("Lerp(0).Fill = %s", got)
	}
	if got := Lerp(a, b, 1).Fill; got != "#ffffff" {
		t.Errorf("Lerp(1).Fill = %s", got)
	}
	mid := Lerp(a, b, 0.5).Fill
	if mid == "#000000" || mid == "#ffffff" || len(mid) != 7 {
		t.Errorf("Lerp(0.5).Fill = %s, want an intermediate gray", mid)
	}

	named := Lerp(Attrs{Fill: "none"}, Attrs{Fill: "#ffffff"}, 0.4).Fill
	if named != "none" {
		t.Errorf("non-hex fill before midpoint = %s, want none", named)
	}
}

func TestLerpPathsPadded(t *testing.T) {
	a := Attrs{Paths: [][]Point{{{0, 0}, {10, 0}}}}
	b := Attrs{Paths: [][]Point{{{0, 10}, {10, 10}, {20, 10}}, {{30, 10}}}}

	got := Lerp(a, b, 0.5)
	if len(got.Paths) != 2 {
		t.Fatalf("len(Paths) = %d, want 2", len(got.Paths))
	}
	if len(got.Paths[0]) != 3 {
		t.Fatalf("len(Paths[0]) = %d, want 3", len(got.Paths[0]))
	}
	// The missing third point of a repeats a's last point (10, 0).
	if p := got.Paths[0][2]; p.X != 15 || p.Y != 5 {
		t.Errorf("padded point = %+v, want {15 5}", p)
	}
	if len(a.Paths[0]) != 2 {
		t.Error("Lerp mutated its input")
	}
}

func TestLerpTextSwitchesAtMidpoint(t *testing.T) {
	a := Attrs{Text: "old"}
	b := Attrs{Text: "new"}
	if got := Lerp(a, b, 0.49).Text; got != "old" {
		t.Errorf("Text at 0.49 = %q", got)
	}
	if got := Lerp(a, b, 0.5).Text; got != "new" {
		t.Errorf("Text at 0.5 = %q", got)
	}
}

func TestAttrsEqual(t *testing.T) {
	a := Attrs{X: 1, Paths: [][]Point{{{1, 2}}}}
	b := a.Clone()
	if !a.Equal(b) {
		t.Error("clone not equal")
	}
	b.Paths[0][0].X = 9
	if a.Equal(b) {
		t.Error("path change not detected")
	}
	if a.Paths[0][0].X != 1 {
		t.Error("Clone shares path storage")
	}
}
