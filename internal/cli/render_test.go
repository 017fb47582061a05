package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and empties", " svg, ,json ", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg"}, false},
		{[]string{"svg", "png", "pdf", "json", "dot"}, false},
		{[]string{"SVG"}, false},
		{[]string{"gif"}, true},
		{[]string{"svg", "bmp"}, true},
	}
	for _, tt := range tests {
		err := validateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "charts/sales.toml", "charts/sales"},
		{"out/chart.svg", "sales.toml", "out/chart"},
		{"out/chart", "sales.toml", "out/chart"},
		{"out/chart.v2", "sales.toml", "out/chart.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("png", []string{"png"}, "out/chart.image", "in.json"); got != "out/chart.image" {
		t.Errorf("single format keeps explicit path, got %q", got)
	}
	if got := outputPath("png", []string{"svg", "png"}, "out/chart.svg", "in.json"); got != "out/chart.png" {
		t.Errorf("multiple formats derive from base, got %q", got)
	}
	if got := outputPath("svg", []string{"svg"}, "", "in.json"); got != "in.svg" {
		t.Errorf("no output derives from input, got %q", got)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifacts, []string{"SVG", "json", "svg"}, filepath.Join(dir, "nested", "chart"), "in.toml")
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 (deduplicated)", paths)
	}
	b, err := os.ReadFile(filepath.Join(dir, "nested", "chart.svg"))
	if err != nil || string(b) != "<svg/>" {
		t.Errorf("chart.svg = %q, %v", b, err)
	}

	if _, err := writeArtifacts(artifacts, []string{"png"}, filepath.Join(dir, "x"), "in.toml"); err == nil {
		t.Error("missing artifact should fail")
	}
}

const renderSpec = `[config]
kind = "bar"
width = 120
height = 80
title = "Quarterly"
transition_ms = 300

[[data]]
category = "q1"
value = 3

[[data]]
category = "q2"
value = 5

[[data]]
category = "q3"
`

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "sales.toml")
	if err := os.WriteFile(specPath, []byte(renderSpec), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"render", specPath, "--no-cache", "-f", "svg,json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "sales.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "Quarterly") {
		t.Errorf("svg output missing root or title: %.200s", svg)
	}
	if _, err := os.Stat(filepath.Join(dir, "sales.json")); err != nil {
		t.Errorf("json output: %v", err)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "sales.toml")
	if err := os.WriteFile(specPath, []byte(strings.Replace(renderSpec, `"bar"`, `"pie"`, 1)), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", specPath, "-f", "gif"}},
		{"unknown kind", []string{"render", specPath, "--no-cache"}},
		{"missing file", []string{"render", filepath.Join(dir, "nope.json"), "--no-cache"}},
		{"no args", []string{"render"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(os.Stderr, LogInfo)
			root := c.RootCommand()
			root.SetArgs(tt.args)
			if err := root.Execute(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
