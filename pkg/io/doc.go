// Package io reads and writes chart inputs and scenes.
//
// # Data
//
// A data payload is a list of records. [ReadData] accepts:
//
//   - JSON: an array of objects, or an object with a "data" array
//   - TOML: an array of tables named data ([[data]])
//   - CSV: a header row followed by records; numeric cells become numbers
//     and empty cells are missing fields
//
//	series, err := io.ImportData("sales.csv")
//
// # Specs
//
// A spec bundles a chart config with its data in one document, which is what
// the CLI renders and what the HTTP host accepts on POST /charts:
//
//	{
//	  "config": {"kind": "bar", "keys": {"category": "month"}},
//	  "data": [{"month": "jan", "value": 3}]
//	}
//
// The TOML form uses a [config] table and [[data]] tables.
//
// # Scenes
//
// [ReadScene] decodes the JSON written by the render package and [Restore]
// rebuilds a surface from it, so a cached scene can be rendered to any
// format without running the chart again.
package io
