package chart

import (
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/layout"
	"github.com/matzehuels/chartkit/pkg/scale"
	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// barConfig is a 100x100 bar chart with no margins, a fixed [0, 2] value
// domain and a fixed category order, so pixel values are easy to check.
func barConfig() Config {
	return Config{
		Kind:       layout.KindBar,
		Width:      100,
		Height:     100,
		Margins:    &layout.Margins{},
		Domain:     []float64{0, 2},
		Categories: []string{"a", "b", "c"},
		HideAxes:   true,
	}
}

func newChart(t *testing.T, cfg Config) (*Chart, *scene.ManualClock, *surface.Surface) {
	t.Helper()
	cfg.SetDefaults()
	clock := scene.NewManualClock(epoch)
	c, err := New(cfg, Options{Clock: clock})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := surface.New(cfg.Width, cfg.Height)
	if err := c.Mount(s); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return c, clock, s
}

func element(t *testing.T, c *Chart, key string) scene.Snapshot {
	t.Helper()
	for _, el := range c.Elements() {
		if el.Key == key {
			return el
		}
	}
	t.Fatalf("no element %s in %v", key, c.Keys())
	return scene.Snapshot{}
}

func TestEndToEnd(t *testing.T) {
	c, _, _ := newChart(t, barConfig())
	if c.State() != Mounted {
		t.Fatalf("State = %v, want mounted", c.State())
	}

	err := c.SetData(data.Series{
		data.P("category", "a", "value", 1),
		data.P("category", "b", "value", 2),
	})
	if err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if c.State() != Rendered {
		t.Errorf("State = %v, want rendered", c.State())
	}
	if got := c.LastPass().Marks.Entering; !reflect.DeepEqual(got, []string{"bar:a", "bar:b"}) {
		t.Errorf("Entering = %v", got)
	}
	c.Settle()

	for key, want := range map[string]float64{"bar:a": 50, "bar:b": 100} {
		if h := element(t, c, key).Attrs.H; h != want {
			t.Errorf("%s height = %v, want %v", key, h, want)
		}
	}

	err = c.SetData(data.Series{
		data.P("category", "a", "value", 1),
		data.P("category", "b", "value", 2),
		data.P("category", "c", "value", 1),
	})
	if err != nil {
		t.Fatalf("SetData: %v", err)
	}
	d := c.LastPass().Marks
	if !reflect.DeepEqual(d.Entering, []string{"bar:c"}) {
		t.Errorf("Entering = %v, want [bar:c]", d.Entering)
	}
	if !reflect.DeepEqual(d.Persisting, []string{"bar:a", "bar:b"}) {
		t.Errorf("Persisting = %v, want [bar:a bar:b]", d.Persisting)
	}
	if !reflect.DeepEqual(d.Unchanged, []string{"bar:a", "bar:b"}) {
		t.Errorf("Unchanged = %v, want [bar:a bar:b]", d.Unchanged)
	}
	if len(d.Exiting) != 0 {
		t.Errorf("Exiting = %v, want none", d.Exiting)
	}
}

func TestKeyStability(t *testing.T) {
	c, _, _ := newChart(t, barConfig())
	c.SetData(data.Series{
		data.P("category", "a", "value", 1),
		data.P("category", "b", "value", 1),
	})
	c.Settle()
	id := element(t, c, "bar:a").ID

	// One value changes and one point is added.
	err := c.SetData(data.Series{
		data.P("category", "a", "value", 2),
		data.P("category", "b", "value", 1),
		data.P("category", "c", "value", 1),
	})
	if err != nil {
		t.Fatalf("SetData: %v", err)
	}
	d := c.LastPass().Marks
	if len(d.Entering) != 1 || d.Entering[0] != "bar:c" {
		t.Errorf("Entering = %v, want [bar:c]", d.Entering)
	}
	if changed := len(d.Persisting) - len(d.Unchanged); changed != 1 {
		t.Errorf("persisting with new attributes = %d, want 1 (persisting %v, unchanged %v)", changed, d.Persisting, d.Unchanged)
	}
	if !reflect.DeepEqual(d.Unchanged, []string{"bar:b"}) {
		t.Errorf("Unchanged = %v, want [bar:b]", d.Unchanged)
	}
	if len(d.Exiting) != 0 {
		t.Errorf("Exiting = %v, want none", d.Exiting)
	}
	if got := element(t, c, "bar:a").ID; got != id {
		t.Errorf("bar:a id = %v, want %v", got, id)
	}
}

func TestTransitionsFollowClock(t *testing.T) {
	cfg := barConfig()
	cfg.TransitionMs = 100
	cfg.Easing = scene.EaseLinear
	c, clock, _ := newChart(t, cfg)

	c.SetData(data.Series{data.P("category", "a", "value", 2)})
	if h := element(t, c, "bar:a").Attrs.H; h != 0 {
		t.Errorf("height at start = %v, want 0", h)
	}
	if !c.Tick(clock.Add(50 * time.Millisecond)) {
		t.Error("Tick mid-transition reported idle")
	}
	if h := element(t, c, "bar:a").Attrs.H; h != 50 {
		t.Errorf("height at half = %v, want 50", h)
	}
	if c.Tick(clock.Add(50 * time.Millisecond)) {
		t.Error("Tick after transition reported active")
	}
	if h := element(t, c, "bar:a").Attrs.H; h != 100 {
		t.Errorf("height at end = %v, want 100", h)
	}
}

func TestRetargetMidFlight(t *testing.T) {
	cfg := barConfig()
	cfg.TransitionMs = 100
	cfg.Easing = scene.EaseLinear
	c, clock, _ := newChart(t, cfg)

	c.SetData(data.Series{data.P("category", "a", "value", 2)})
	c.Tick(clock.Add(50 * time.Millisecond))

	// Retarget from 50px down to 25px; the old 100px target must not win.
	c.SetData(data.Series{data.P("category", "a", "value", 0.5)})
	c.Tick(clock.Add(50 * time.Millisecond))
	if h := element(t, c, "bar:a").Attrs.H; h != 37.5 {
		t.Errorf("height = %v, want 37.5", h)
	}
	c.Tick(clock.Add(time.Second))
	if h := element(t, c, "bar:a").Attrs.H; h != 25 {
		t.Errorf("height = %v, want 25", h)
	}
}

func TestExitRemovedAfterTransition(t *testing.T) {
	cfg := barConfig()
	cfg.TransitionMs = 100
	c, clock, s := newChart(t, cfg)

	c.SetData(data.Series{data.P("category", "a", "value", 1), data.P("category", "b", "value", 1)})
	c.Settle()
	c.SetData(data.Series{data.P("category", "a", "value", 1)})
	if got := c.LastPass().Marks.Exiting; !reflect.DeepEqual(got, []string{"bar:b"}) {
		t.Fatalf("Exiting = %v", got)
	}
	if !element(t, c, "bar:b").Exiting {
		t.Error("bar:b not marked exiting")
	}
	c.Tick(clock.Add(99 * time.Millisecond))
	if s.Len() != 2 {
		t.Errorf("surface elements = %d before exit completes, want 2", s.Len())
	}
	c.Tick(clock.Add(time.Millisecond))
	if s.Len() != 1 {
		t.Errorf("surface elements = %d after exit, want 1", s.Len())
	}
}

func TestUnmountCancelsTransitions(t *testing.T) {
	cfg := barConfig()
	cfg.TransitionMs = 100
	c, clock, s := newChart(t, cfg)
	c.SetData(data.Series{data.P("category", "a", "value", 1)})
	if !c.Active() {
		t.Fatal("no transition in flight")
	}

	c.Unmount()
	if c.State() != Unmounted {
		t.Errorf("State = %v, want unmounted", c.State())
	}
	if !s.Closed() {
		t.Error("surface not released")
	}
	if c.Active() || c.Tick(clock.Add(50*time.Millisecond)) {
		t.Error("chart still active after unmount")
	}
	if err := c.SetData(data.Series{data.P("category", "b", "value", 1)}); err != nil {
		t.Errorf("SetData after unmount: %v", err)
	}
	c.Unmount()
}

func TestCoalesce(t *testing.T) {
	cfg := barConfig()
	cfg.UpdatePolicy = Coalesce
	cfg.CoalesceMs = 100
	cfg.Immediate = true
	c, clock, _ := newChart(t, cfg)

	c.SetData(data.Series{data.P("category", "a", "value", 1)})
	clock.Add(50 * time.Millisecond)
	c.SetData(data.Series{data.P("category", "b", "value", 1)})
	clock.Add(30 * time.Millisecond)
	c.SetData(data.Series{data.P("category", "c", "value", 1)})

	if c.State() != Mounted || len(c.Keys()) != 0 {
		t.Fatalf("pass ran before quiet period: state %v keys %v", c.State(), c.Keys())
	}
	if !c.Tick(clock.Add(70 * time.Millisecond)) {
		t.Error("Tick during quiet period reported idle")
	}
	if len(c.Keys()) != 0 {
		t.Fatalf("pass ran early: %v", c.Keys())
	}

	c.Tick(clock.Add(30 * time.Millisecond))
	if got := c.Keys(); !reflect.DeepEqual(got, []string{"bar:c"}) {
		t.Errorf("Keys = %v, want only the last notification [bar:c]", got)
	}
	if got := c.LastPass().Marks.Entering; !reflect.DeepEqual(got, []string{"bar:c"}) {
		t.Errorf("Entering = %v", got)
	}
}

func TestCoalesceSettleFlushes(t *testing.T) {
	cfg := barConfig()
	cfg.UpdatePolicy = Coalesce
	c, _, _ := newChart(t, cfg)
	c.SetData(data.Series{data.P("category", "a", "value", 1)})
	if err := c.Settle(); err != nil {
		t.Fatal(err)
	}
	if got := c.Keys(); !reflect.DeepEqual(got, []string{"bar:a"}) {
		t.Errorf("Keys = %v", got)
	}
}

func TestDomainErrorKeepsState(t *testing.T) {
	cfg := barConfig()
	cfg.Domain = nil
	cfg.YScale = scale.KindLog
	cfg.Immediate = true
	c, _, s := newChart(t, cfg)

	if err := c.SetData(data.Series{data.P("category", "a", "value", 10)}); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	before := c.Elements()
	items := s.Items()

	err := c.SetData(data.Series{data.P("category", "a", "value", 0)})
	if !errors.Is(err, errors.ErrCodeDomain) {
		t.Fatalf("err = %v, want DOMAIN_ERROR", err)
	}
	if !errors.Is(c.Err(), errors.ErrCodeDomain) {
		t.Errorf("Err() = %v", c.Err())
	}
	if !reflect.DeepEqual(c.Elements(), before) {
		t.Error("scene changed after failed pass")
	}
	if !reflect.DeepEqual(s.Items(), items) {
		t.Error("surface changed after failed pass")
	}
}

func TestRepeatedCategoryRenders(t *testing.T) {
	c, _, _ := newChart(t, barConfig())
	err := c.SetData(data.Series{
		data.P("category", "b", "value", 1),
		data.P("category", "b", "value", 2),
	})
	if err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if c.State() != Rendered {
		t.Errorf("State = %v, want rendered", c.State())
	}
	want := []string{"bar:b", "bar:b#2"}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
}

func TestSurfaceUnavailable(t *testing.T) {
	c, err := New(barConfig(), Options{Clock: scene.NewManualClock(epoch)})
	if err != nil {
		t.Fatal(err)
	}
	c.SetData(data.Series{data.P("category", "a", "value", 1)})

	err = c.Mount(surface.New(0, 0))
	if !errors.Is(err, errors.ErrCodeSurfaceUnavailable) {
		t.Fatalf("Mount err = %v, want SURFACE_UNAVAILABLE", err)
	}
	if c.State() != Mounted || len(c.Keys()) != 0 {
		t.Errorf("State = %v keys %v, want mounted with nothing drawn", c.State(), c.Keys())
	}

	if err := c.Resize(100, 100); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if c.State() != Rendered {
		t.Errorf("State after resize = %v, want rendered", c.State())
	}
}

func TestResizeRescales(t *testing.T) {
	cfg := barConfig()
	cfg.Immediate = true
	c, _, _ := newChart(t, cfg)
	c.SetData(data.Series{data.P("category", "a", "value", 2)})
	c.Resize(100, 200)
	if h := element(t, c, "bar:a").Attrs.H; h != 200 {
		t.Errorf("height after resize = %v, want 200", h)
	}
	if d := c.LastPass().Marks; len(d.Persisting) != 1 || len(d.Entering) != 0 {
		t.Errorf("resize diff = %v", d)
	}
}

func TestPointerHooks(t *testing.T) {
	cfg := barConfig()
	cfg.Immediate = true
	cfg.HideAxes = false
	c, _, _ := newChart(t, cfg)
	c.SetData(data.Series{data.P("category", "a", "value", 2, "note", "hi")})

	var hovered, clicked []string
	c.OnHover(func(h surface.Hit) { hovered = append(hovered, h.Key) })
	c.OnClick(func(h surface.Hit) {
		clicked = append(clicked, h.Key)
		if note, _ := h.Datum.String("note"); note != "hi" {
			t.Errorf("datum note = %q", note)
		}
	})

	a := element(t, c, "bar:a").Attrs
	x, y := a.X+a.W/2, a.Y+a.H/2
	c.Pointer(surface.Event{Type: surface.PointerMove, X: x, Y: y})
	c.Pointer(surface.Event{Type: surface.PointerClick, X: x, Y: y})
	c.Pointer(surface.Event{Type: surface.PointerClick, X: 99, Y: 1})

	if !reflect.DeepEqual(hovered, []string{"bar:a"}) || !reflect.DeepEqual(clicked, []string{"bar:a"}) {
		t.Errorf("hovered %v clicked %v", hovered, clicked)
	}
}

func TestMissingFieldWarnings(t *testing.T) {
	c, _, _ := newChart(t, barConfig())
	err := c.SetData(data.Series{
		data.P("category", "a", "value", 1),
		data.P("category", "b"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if w := c.LastPass().Warnings; len(w) != 1 || w[0].Index != 1 {
		t.Errorf("Warnings = %v", w)
	}

	cfg := barConfig()
	cfg.Missing = data.MissingFail
	if err := c.SetConfig(cfg); err == nil || !errors.Is(err, errors.ErrCodeMissingField) {
		t.Errorf("SetConfig(fail) err = %v, want MISSING_FIELD", err)
	}
}

func TestGuidesLayer(t *testing.T) {
	cfg := barConfig()
	cfg.HideAxes = false
	cfg.Legend = true
	cfg.Title = "Sales"
	m := layout.Margins{Top: 20, Right: 80, Bottom: 30, Left: 40}
	cfg.Margins = &m
	cfg.Width, cfg.Height = 300, 200
	c, _, s := newChart(t, cfg)
	c.SetData(data.Series{data.P("category", "a", "value", 1)})

	g := c.LastPass().Guides
	want := map[string]bool{"axis:x:tick:a": false, "axis:y:domain": false, "legend:swatch:a": false, "title": false}
	for _, k := range g.Entering {
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, ok := range want {
		if !ok {
			t.Errorf("guide %s not drawn", k)
		}
	}
	if got := c.LastPass().Marks.Entering; !reflect.DeepEqual(got, []string{"bar:a"}) {
		t.Errorf("marks = %v, guides leaked into marks", got)
	}
	items := s.Items()
	if items[len(items)-1].Layer != LayerMarks {
		t.Error("marks not painted above guides")
	}
}

func TestEveryKindRenders(t *testing.T) {
	series := data.Series{
		data.P("category", "vis.a", "value", 1, "x", 1, "y", 2, "series", "s", "links", "vis.b"),
		data.P("category", "vis.b", "value", 3, "x", 2, "y", 1, "series", "t", "links", "util.c"),
		data.P("category", "util.c", "value", 2, "x", 3, "y", 3, "series", "s"),
	}
	for _, kind := range layout.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			cfg := Config{
				Kind:       kind,
				Keys:       data.Keys{Series: "series", X: "x", Y: "y"},
				Immediate:  true,
				Legend:     true,
				Iterations: 50,
			}
			if kind == layout.KindBar {
				cfg.Keys.Series = ""
			}
			c, _, _ := newChart(t, cfg)
			if err := c.SetData(series); err != nil {
				t.Fatalf("SetData: %v", err)
			}
			if len(c.Keys()) == 0 {
				t.Error("nothing drawn")
			}
		})
	}
}

func TestMountTwice(t *testing.T) {
	c, _, _ := newChart(t, barConfig())
	if err := c.Mount(surface.New(10, 10)); err == nil {
		t.Error("second Mount succeeded")
	}
}
