package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/pipeline"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		name string
		ci   pipeline.CacheInfo
		want []string
	}{
		{"fresh", pipeline.CacheInfo{}, []string{"scene fresh", "artifacts fresh"}},
		{"scene hit", pipeline.CacheInfo{SceneHit: true}, []string{"scene cached", "artifacts fresh"}},
		{"all hits", pipeline.CacheInfo{SceneHit: true, RenderHit: true}, []string{"scene cached", "artifacts cached"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStdout(t)
			printStats(pipeline.Stats{Points: 42, Elements: 57}, tt.ci)
			got := buf.String()
			for _, want := range append([]string{"42 points", "57 elements"}, tt.want...) {
				if !strings.Contains(got, want) {
					t.Errorf("printStats output %q missing %q", got, want)
				}
			}
		})
	}
}

func TestPrintSkipped(t *testing.T) {
	buf := captureStdout(t)
	printSkipped(nil)
	if buf.Len() != 0 {
		t.Fatalf("no warnings printed %q", buf.String())
	}

	var ws []data.Warning
	for _, i := range []int{9, 1, 3, 4, 7, 12, 15} {
		ws = append(ws, data.Warning{Index: i, Field: "value"})
	}
	ws = append(ws, data.Warning{Index: 2, Field: "category"})
	printSkipped(ws)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want one per field: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], `1 point skipped, missing "category" (2)`) {
		t.Errorf("category line = %q", lines[0])
	}
	if !strings.Contains(lines[1], `7 points skipped, missing "value" (1, 3, 4, 7, 9, +2 more)`) {
		t.Errorf("value line = %q", lines[1])
	}
}
