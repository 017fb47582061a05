package cli

import (
	"bytes"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg", "png", "pdf", "json", "dot"}},
		{"svg,", []string{"svg,png", "svg,pdf", "svg,json", "svg,dot"}},
		{"svg,png,p", []string{"svg,png,pdf", "svg,png,json", "svg,png,dot"}},
	}
	for _, tt := range tests {
		got, dir := completeFormats(nil, nil, tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("completeFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if dir&cobra.ShellCompDirectiveNoSpace == 0 {
			t.Errorf("completeFormats(%q) directive %d should suppress the trailing space", tt.in, dir)
		}
	}
}

func TestCompleteFiles(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	render, play := c.renderCommand(), c.playCommand()

	tests := []struct {
		name string
		cmd  *cobra.Command
		args []string
		want []string
		dir  cobra.ShellCompDirective
	}{
		{"render spec", render, nil, specExts, cobra.ShellCompDirectiveFilterFileExt},
		{"render extra", render, []string{"chart.toml"}, nil, cobra.ShellCompDirectiveNoFileComp},
		{"play spec", play, nil, specExts, cobra.ShellCompDirectiveFilterFileExt},
		{"play data", play, []string{"chart.toml", "q1.csv"}, dataExts, cobra.ShellCompDirectiveFilterFileExt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dir := completeFiles(tt.cmd, tt.args, "")
			if !reflect.DeepEqual(got, tt.want) || dir != tt.dir {
				t.Errorf("completeFiles(%v) = %v, %d; want %v, %d", tt.args, got, dir, tt.want, tt.dir)
			}
		})
	}
}

func TestCompletionThroughRoot(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{cobra.ShellCompRequestCmd, "render", "chart.toml", "-f", "json,"})
	if err := root.Execute(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) == 0 || lines[0] != "json,svg" {
		t.Fatalf("completions = %q, want json,svg first", lines)
	}
	if last := lines[len(lines)-1]; last != ":6" {
		t.Errorf("directive line = %q, want :6", last)
	}
}

func TestCompletionScript(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		root := New(os.Stderr, LogInfo).RootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"completion", shell})
		if err := root.Execute(); err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out.String(), "chartkit") {
			t.Errorf("%s script does not mention chartkit", shell)
		}
	}
}
