package render

import (
	"encoding/json"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	kind   string
	datums bool
	indent bool
}

// WithJSONKind records the chart kind in the output.
func WithJSONKind(kind string) JSONOption { return func(r *jsonRenderer) { r.kind = kind } }

// WithJSONData includes the data point each element was laid out from.
func WithJSONData() JSONOption { return func(r *jsonRenderer) { r.datums = true } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// Scene is the JSON document written by [RenderJSON].
type Scene struct {
	Kind       string    `json:"kind,omitempty"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Background string    `json:"background,omitempty"`
	Layers     []string  `json:"layers"`
	Elements   []Element `json:"elements"`
}

// Element is one scene element in a [Scene].
type Element struct {
	Layer   string      `json:"layer"`
	Key     string      `json:"key"`
	Kind    scene.Kind  `json:"kind"`
	Attrs   scene.Attrs `json:"attrs"`
	Exiting bool        `json:"exiting,omitempty"`
	Datum   *data.Point `json:"datum,omitempty"`
}

// RenderJSON serializes the elements of s in paint order.
func RenderJSON(s *surface.Surface, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.indent {
		return json.MarshalIndent(BuildScene(s, opts...), "", "  ")
	}
	return json.Marshal(BuildScene(s, opts...))
}

// BuildScene returns the document [RenderJSON] would write.
func BuildScene(s *surface.Surface, opts ...JSONOption) Scene {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	w, h := s.Size()
	out := Scene{
		Kind:       r.kind,
		Width:      w,
		Height:     h,
		Background: s.Background(),
		Layers:     s.Layers(),
		Elements:   []Element{},
	}
	for _, it := range s.Items() {
		el := Element{
			Layer:   it.Layer,
			Key:     it.Key,
			Kind:    it.Kind,
			Attrs:   it.Attrs,
			Exiting: it.Exiting,
		}
		if r.datums && len(it.Datum.Names()) > 0 {
			d := it.Datum
			el.Datum = &d
		}
		out.Elements = append(out.Elements, el)
	}
	return out
}
