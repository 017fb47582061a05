package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/layout"
	"github.com/matzehuels/chartkit/pkg/render"
	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

func TestReadData(t *testing.T) {
	tests := []struct {
		name, in, format string
	}{
		{"json array", `[{"category": "a", "value": 1}, {"category": "b", "value": 2.5}]`, ""},
		{"json object", `{"data": [{"category": "a", "value": 1}, {"category": "b", "value": 2.5}]}`, FormatJSON},
		{"toml", "[[data]]\ncategory = \"a\"\nvalue = 1\n\n[[data]]\ncategory = \"b\"\nvalue = 2.5\n", ""},
		{"csv", "category,value\na,1\nb,2.5\n", FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadData(strings.NewReader(tt.in), tt.format)
			if err != nil {
				t.Fatalf("ReadData: %v", err)
			}
			if len(s) != 2 {
				t.Fatalf("len = %d, want 2", len(s))
			}
			if c, _ := s[1].String("category"); c != "b" {
				t.Errorf("category = %q, want b", c)
			}
			if v, ok := s[1].Number("value"); !ok || v != 2.5 {
				t.Errorf("value = %v, %v, want 2.5", v, ok)
			}
			if v, ok := s[0].Number("value"); !ok || v != 1 {
				t.Errorf("value = %v, %v, want 1", v, ok)
			}
		})
	}
}

func TestReadDataCSVMissingCells(t *testing.T) {
	s, err := ReadData(strings.NewReader("category,value\na,\nb,3\n"), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if s[0].Has("value") {
		t.Error("empty cell should be a missing field")
	}
}

func TestReadDataErrors(t *testing.T) {
	if _, err := ReadData(strings.NewReader(`[{"a": `), FormatJSON); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad json = %v", err)
	}
	if _, err := ReadData(strings.NewReader(""), "xml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("xml = %v", err)
	}
	if _, err := ReadData(strings.NewReader(""), FormatCSV); err == nil {
		t.Error("empty csv accepted")
	}
}

func TestReadSpec(t *testing.T) {
	jsonSpec := `{
  "config": {"kind": "line", "keys": {"x": "day"}},
  "data": [{"day": 1, "value": 3}, {"day": 2, "value": 4}]
}`
	tomlSpec := `
[config]
kind = "line"

[config.keys]
x = "day"

[[data]]
day = 1
value = 3

[[data]]
day = 2
value = 4
`
	for name, in := range map[string]string{"json": jsonSpec, "toml": tomlSpec} {
		t.Run(name, func(t *testing.T) {
			spec, err := ReadSpec(strings.NewReader(in), "")
			if err != nil {
				t.Fatalf("ReadSpec: %v", err)
			}
			if spec.Config.Kind != layout.KindLine || spec.Config.Keys.X != "day" {
				t.Errorf("config = %v %+v", spec.Config.Kind, spec.Config.Keys)
			}
			if len(spec.Data) != 2 {
				t.Fatalf("data = %d points", len(spec.Data))
			}
			if v, _ := spec.Data[1].Number("value"); v != 4 {
				t.Errorf("value = %v, want 4", v)
			}
		})
	}
}

func TestSpecFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	spec := Spec{Data: data.Series{data.P("category", "a", "value", 1.5)}}
	spec.Config.Kind = layout.KindBar

	for _, name := range []string{"spec.json", "spec.toml"} {
		path := filepath.Join(dir, name)
		if err := ExportSpec(spec, path); err != nil {
			t.Fatalf("ExportSpec(%s): %v", name, err)
		}
		got, err := ImportSpec(path)
		if err != nil {
			b, _ := os.ReadFile(path)
			t.Fatalf("ImportSpec(%s): %v\n%s", name, err, b)
		}
		if got.Config.Kind != layout.KindBar || len(got.Data) != 1 {
			t.Errorf("%s: got %v with %d points", name, got.Config.Kind, len(got.Data))
		}
		if err := got.Config.ValidateAndSetDefaults(); err != nil {
			t.Errorf("%s: re-imported config invalid: %v", name, err)
		}
	}
}

func TestWriteData(t *testing.T) {
	s := data.Series{data.P("category", "a", "value", 1.0)}
	var buf bytes.Buffer
	if err := WriteData(s, &buf, FormatTOML); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[[data]]") {
		t.Errorf("toml output:\n%s", buf.String())
	}
	back, err := ReadData(&buf, FormatTOML)
	if err != nil || len(back) != 1 {
		t.Fatalf("ReadData = %v, %v", back, err)
	}
	if err := WriteData(s, &buf, FormatCSV); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("WriteData(csv) = %v", err)
	}
}

func TestRestore(t *testing.T) {
	src := surface.New(120, 80, surface.WithBackground("#fafafa"))
	src.SetLayerOrder("guides", "marks")
	src.Draw("marks", scene.Snapshot{ID: 7, Key: "bar:a", Kind: scene.KindRect, Attrs: scene.Attrs{X: 1, W: 2, H: 3, Opacity: 1}, Datum: data.P("category", "a")})
	src.Draw("guides", scene.Snapshot{ID: 9, Key: "axis:x:domain", Kind: scene.KindLine, Attrs: scene.Attrs{X2: 100, Opacity: 1}})

	b, err := render.RenderJSON(src, render.WithJSONData())
	if err != nil {
		t.Fatal(err)
	}
	sc, err := ReadScene(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	s := Restore(sc)

	if w, h := s.Size(); w != 120 || h != 80 {
		t.Errorf("size = %vx%v", w, h)
	}
	if s.Background() != "#fafafa" {
		t.Errorf("background = %q", s.Background())
	}
	if !bytes.Equal(render.RenderSVG(s), render.RenderSVG(src)) {
		t.Errorf("restored svg differs:\n%s\nvs\n%s", render.RenderSVG(s), render.RenderSVG(src))
	}
	items := s.Items()
	if c, _ := items[1].Datum.String("category"); c != "a" {
		t.Errorf("datum = %v", items[1].Datum.Names())
	}
}
