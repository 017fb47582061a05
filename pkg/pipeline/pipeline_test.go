package pipeline

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/matzehuels/chartkit/pkg/cache"
	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/layout"
	"github.com/matzehuels/chartkit/pkg/observability"
	"github.com/matzehuels/chartkit/pkg/render"
)

func barOptions() Options {
	return Options{
		Config: chart.Config{
			Kind:       layout.KindBar,
			Width:      100,
			Height:     100,
			Margins:    &layout.Margins{},
			Domain:     []float64{0, 2},
			Categories: []string{"a", "b"},
			HideAxes:   true,
		},
		Data: data.Series{
			data.P("category", "a", "value", 1),
			data.P("category", "b", "value", 2),
		},
	}
}

func findElement(sc render.Scene, key string) (render.Element, bool) {
	for _, el := range sc.Elements {
		if el.Key == key {
			return el, true
		}
	}
	return render.Element{}, false
}

func TestValidateForRender(t *testing.T) {
	tests := []struct {
		formats []string
		want    []string
		wantErr bool
	}{
		{nil, []string{"svg"}, false},
		{[]string{"SVG", ".png", "svg"}, []string{"svg", "png"}, false},
		{[]string{"json", "dot"}, []string{"json", "dot"}, false},
		{[]string{"svg", "gif"}, nil, true},
	}
	for _, tt := range tests {
		opts := Options{Formats: tt.formats}
		err := opts.ValidateForRender()
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateForRender(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("ValidateForRender(%v) code = %v, want %v", tt.formats, errors.GetCode(err), errors.ErrCodeInvalidFormat)
			}
			continue
		}
		if len(opts.Formats) != len(tt.want) {
			t.Errorf("Formats = %v, want %v", opts.Formats, tt.want)
			continue
		}
		for i := range tt.want {
			if opts.Formats[i] != tt.want[i] {
				t.Errorf("Formats = %v, want %v", opts.Formats, tt.want)
				break
			}
		}
		if opts.Scale != DefaultScale {
			t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
		}
	}
}

func TestValidateAndSetDefaultsRejectsConfig(t *testing.T) {
	opts := barOptions()
	opts.Config.Kind = "pie"
	err := opts.ValidateAndSetDefaults()
	if !errors.Is(err, errors.ErrCodeInvalidChartKind) {
		t.Errorf("ValidateAndSetDefaults() = %v, want %v", err, errors.ErrCodeInvalidChartKind)
	}
}

func TestSpecHash(t *testing.T) {
	a, b := barOptions(), barOptions()
	ha, err := a.SpecHash()
	if err != nil {
		t.Fatalf("SpecHash: %v", err)
	}
	hb, _ := b.SpecHash()
	if ha != hb {
		t.Errorf("equal specs hash %s and %s", ha, hb)
	}

	b.Data = append(b.Data, data.P("category", "c", "value", 1))
	if hc, _ := b.SpecHash(); hc == ha {
		t.Error("data change did not change the hash")
	}
	c := barOptions()
	c.Config.Title = "sales"
	if hc, _ := c.SpecHash(); hc == ha {
		t.Error("config change did not change the hash")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 3, Interactive: true, Pinned: true}
	opts.Config.Title = "t"

	if got := opts.ArtifactKeyOpts("png"); got.Scale != 3 || got.Interactive || got.Pinned {
		t.Errorf("png key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts("svg"); got.Scale != 0 || !got.Interactive {
		t.Errorf("svg key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts("dot"); !got.Pinned || got.Interactive {
		t.Errorf("dot key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts("json"); got.Title != "t" {
		t.Errorf("json key opts title = %q, want %q", got.Title, "t")
	}
}

func TestBuildScene(t *testing.T) {
	opts := barOptions()
	opts.Data = append(opts.Data, data.P("category", "a"))
	s, warnings, err := BuildScene(context.Background(), opts)
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Index != 2 || warnings[0].Field != "value" {
		t.Errorf("warnings = %v, want point 2 missing value", warnings)
	}
	sc := render.BuildScene(s)
	a, ok := findElement(sc, "bar:a")
	if !ok {
		t.Fatalf("missing bar:a in %d elements", len(sc.Elements))
	}
	if a.Attrs.H != 50 || a.Layer != chart.LayerMarks {
		t.Errorf("bar:a height = %v layer %q, want 50 on %q", a.Attrs.H, a.Layer, chart.LayerMarks)
	}
}

func TestBuildSceneCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := BuildScene(ctx, barOptions()); err == nil {
		t.Error("BuildScene with cancelled context should fail")
	}
}

func TestRenderScene(t *testing.T) {
	opts := barOptions()
	s, _, err := BuildScene(context.Background(), opts)
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	opts.Formats = []string{"svg", "json", "png"}
	artifacts, err := RenderScene(context.Background(), s, opts)
	if err != nil {
		t.Fatalf("RenderScene: %v", err)
	}
	if !bytes.HasPrefix(artifacts["svg"], []byte("<svg")) {
		t.Errorf("svg = %.40q", artifacts["svg"])
	}
	if !bytes.Contains(artifacts["json"], []byte(`"kind":"bar"`)) {
		t.Errorf("json = %.80q", artifacts["json"])
	}
	if !bytes.HasPrefix(artifacts["png"], []byte("\x89PNG")) {
		t.Error("png missing signature")
	}
}

func TestRenderSceneDOTUnsupported(t *testing.T) {
	opts := barOptions()
	s, _, _ := BuildScene(context.Background(), opts)
	opts.Formats = []string{"dot"}
	_, err := RenderScene(context.Background(), s, opts)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("RenderScene(dot) = %v, want %v", err, errors.ErrCodeUnsupported)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func (h *countingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[keyType]++
}

func (h *countingHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses[keyType]++
}

func TestRunnerCaching(t *testing.T) {
	hooks := &countingHooks{hits: map[string]int{}, misses: map[string]int{}}
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	runner := NewRunner(cache.NewMemoryCache(), nil, nil)
	defer runner.Close()

	opts := barOptions()
	opts.Formats = []string{"svg", "json"}
	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.SceneHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want no hits", first.CacheInfo)
	}
	if first.Stats.Points != 2 || first.Stats.Elements != 2 {
		t.Errorf("Stats = %+v, want 2 points and 2 elements", first.Stats)
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.SceneHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want both hits", second.CacheInfo)
	}
	if second.SpecHash != first.SpecHash {
		t.Errorf("SpecHash = %s, want %s", second.SpecHash, first.SpecHash)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs from rendered svg")
	}

	// A new format re-renders from the cached scene.
	opts.Formats = []string{"png"}
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !third.CacheInfo.SceneHit || third.CacheInfo.RenderHit {
		t.Errorf("third run CacheInfo = %+v, want scene hit only", third.CacheInfo)
	}
	if _, ok := findElement(third.Scene, "bar:b"); !ok {
		t.Error("restored scene missing bar:b")
	}

	if hooks.hits["scene"] != 2 || hooks.misses["scene"] != 1 {
		t.Errorf("scene hits/misses = %d/%d, want 2/1", hooks.hits["scene"], hooks.misses["scene"])
	}
	if hooks.hits["artifact"] != 1 || hooks.misses["artifact"] != 2 {
		t.Errorf("artifact hits/misses = %d/%d, want 1/2", hooks.hits["artifact"], hooks.misses["artifact"])
	}
}

func TestRunnerRefresh(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(cache.NewMemoryCache(), nil, nil)
	opts := barOptions()
	if _, err := runner.Execute(ctx, opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	opts.Refresh = true
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheInfo.SceneHit || res.CacheInfo.RenderHit {
		t.Errorf("refresh CacheInfo = %+v, want no hits", res.CacheInfo)
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := barOptions()
	opts.Formats = []string{"bmp"}
	if _, err := runner.Execute(context.Background(), opts); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Execute(bmp) = %v, want %v", err, errors.ErrCodeInvalidFormat)
	}
}
