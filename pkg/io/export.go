package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chartkit/pkg/data"
	chartkiterrors "github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/render"
	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

func records(s data.Series) []map[string]any {
	out := make([]map[string]any, len(s))
	for i, p := range s {
		out[i] = p.Fields()
	}
	return out
}

// WriteData encodes a series as a JSON array or as TOML [[data]] tables.
// The output can be re-imported with [ReadData].
func WriteData(s data.Series, w io.Writer, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records(s)); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatTOML:
		doc := struct {
			Data []map[string]any `toml:"data"`
		}{records(s)}
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
	return chartkiterrors.New(chartkiterrors.ErrCodeInvalidFormat, "cannot export data as %q", format)
}

// ExportData writes a series to path, choosing the encoder by extension.
func ExportData(s data.Series, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteData(s, w, FormatFromPath(path))
	})
}

// WriteSpec encodes a spec as JSON or TOML.
func WriteSpec(spec Spec, w io.Writer, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(spec); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatTOML:
		doc := struct {
			Config any              `toml:"config"`
			Data   []map[string]any `toml:"data"`
		}{spec.Config, records(spec.Data)}
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
	return chartkiterrors.New(chartkiterrors.ErrCodeInvalidFormat, "cannot export spec as %q", format)
}

// ExportSpec writes a spec to path, choosing the encoder by extension.
func ExportSpec(spec Spec, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteSpec(spec, w, FormatFromPath(path))
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadScene decodes a scene written by render.RenderJSON.
func ReadScene(r io.Reader) (render.Scene, error) {
	var sc render.Scene
	if err := json.NewDecoder(r).Decode(&sc); err != nil {
		return render.Scene{}, fmt.Errorf("decode scene: %w", err)
	}
	return sc, nil
}

// Restore rebuilds a surface holding the elements of sc in the same paint
// order. Element IDs are reassigned.
func Restore(sc render.Scene) *surface.Surface {
	s := surface.New(sc.Width, sc.Height, surface.WithBackground(sc.Background))
	s.SetLayerOrder(sc.Layers...)
	for i, el := range sc.Elements {
		snap := scene.Snapshot{
			ID:      scene.ElementID(i + 1),
			Key:     el.Key,
			Kind:    el.Kind,
			Attrs:   el.Attrs,
			Order:   i,
			Exiting: el.Exiting,
		}
		if el.Datum != nil {
			snap.Datum = *el.Datum
		}
		s.Draw(el.Layer, snap)
	}
	return s
}
