package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/data"
	chartkiterrors "github.com/matzehuels/chartkit/pkg/errors"
)

// Input formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatCSV  = "csv"
)

// FormatFromPath picks the format from the file extension. Unknown
// extensions return "", which the readers treat as "detect".
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	case ".csv":
		return FormatCSV
	}
	return ""
}

// detect guesses JSON for documents starting with { or [ and TOML otherwise.
func detect(b []byte) string {
	s := bytes.TrimSpace(b)
	if len(s) > 0 && (s[0] == '{' || s[0] == '[') {
		return FormatJSON
	}
	return FormatTOML
}

// ReadData decodes a data payload. An empty format is detected from the
// content (JSON or TOML; CSV must be named).
func ReadData(r io.Reader, format string) (data.Series, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if format == "" {
		format = detect(b)
	}

	var records []map[string]any
	switch format {
	case FormatJSON:
		records, err = decodeJSONRecords(b)
	case FormatTOML:
		var doc struct {
			Data []map[string]any `toml:"data"`
		}
		_, err = toml.Decode(string(b), &doc)
		records = doc.Data
	case FormatCSV:
		records, err = decodeCSV(b)
	default:
		return nil, chartkiterrors.New(chartkiterrors.ErrCodeInvalidFormat, "unknown data format %q", format)
	}
	if err != nil {
		return nil, chartkiterrors.Wrap(chartkiterrors.ErrCodeInvalidInput, err, "decode %s data", format)
	}

	s := make(data.Series, len(records))
	for i, rec := range records {
		s[i] = data.NewPoint(rec)
	}
	return s, nil
}

// ImportData reads a data file, choosing the decoder by extension.
func ImportData(path string) (data.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadData(f, FormatFromPath(path))
}

func decodeJSONRecords(b []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if s := bytes.TrimSpace(b); len(s) > 0 && s[0] == '{' {
		var doc struct {
			Data []map[string]any `json:"data"`
		}
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Data, nil
	}
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeCSV(b []byte) ([]map[string]any, error) {
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1 // short rows leave trailing fields missing
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("missing header row")
	}
	header := rows[0]
	out := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(header))
		for i, name := range header {
			if i >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				rec[name] = f
			} else {
				rec[name] = cell
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Spec is a chart config together with its data.
type Spec struct {
	Config chart.Config `json:"config" toml:"config"`
	Data   data.Series  `json:"data" toml:"-"`
}

// ReadSpec decodes a spec document. An empty format is detected from the
// content. The config is returned as written; callers apply defaults.
func ReadSpec(r io.Reader, format string) (Spec, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Spec{}, fmt.Errorf("read spec: %w", err)
	}
	if format == "" {
		format = detect(b)
	}

	var spec Spec
	switch format {
	case FormatJSON:
		var doc struct {
			Config json.RawMessage `json:"config"`
			Data   json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return Spec{}, chartkiterrors.Wrap(chartkiterrors.ErrCodeInvalidInput, err, "decode json spec")
		}
		if len(doc.Config) > 0 {
			if spec.Config, err = chart.ParseConfig(doc.Config, FormatJSON); err != nil {
				return Spec{}, err
			}
		}
		if len(doc.Data) > 0 {
			if spec.Data, err = ReadData(bytes.NewReader(doc.Data), FormatJSON); err != nil {
				return Spec{}, err
			}
		}
	case FormatTOML:
		var doc struct {
			Config toml.Primitive   `toml:"config"`
			Data   []map[string]any `toml:"data"`
		}
		md, err := toml.Decode(string(b), &doc)
		if err != nil {
			return Spec{}, chartkiterrors.Wrap(chartkiterrors.ErrCodeInvalidInput, err, "decode toml spec")
		}
		if md.IsDefined("config") {
			if err := md.PrimitiveDecode(doc.Config, &spec.Config); err != nil {
				return Spec{}, chartkiterrors.Wrap(chartkiterrors.ErrCodeInvalidConfig, err, "decode toml config")
			}
		}
		spec.Data = make(data.Series, len(doc.Data))
		for i, rec := range doc.Data {
			spec.Data[i] = data.NewPoint(rec)
		}
	default:
		return Spec{}, chartkiterrors.New(chartkiterrors.ErrCodeInvalidFormat, "unknown spec format %q", format)
	}
	return spec, nil
}

// ImportSpec reads a spec file, choosing the decoder by extension.
func ImportSpec(path string) (Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return Spec{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSpec(f, FormatFromPath(path))
}
