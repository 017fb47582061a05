package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/chartkit/pkg/observability"
)

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Rendering chart...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Rendering chart...") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output %q does not end by clearing the line", out)
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := newSpinner(ctx, &bytes.Buffer{}, "Waiting...")
	s.Start()
	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner still running after context ended")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Stopping...")
	s.Start()
	s.Stop()
	s.Stop()

	// Never started.
	newSpinner(context.Background(), &bytes.Buffer{}, "Idle").Stop()
}

func TestSpinnerFollowsPipelineStages(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Starting...")
	restore := s.Track()
	defer restore()

	ctx := context.Background()
	hooks := observability.Pipeline()
	tests := []struct {
		stage func()
		want  string
	}{
		{func() { hooks.OnLoadStart(ctx, "/tmp/specs/sales.toml") }, "Reading sales.toml..."},
		{func() { hooks.OnLayoutStart(ctx, "bar", 3) }, "Laying out bar chart (3 points)..."},
		{func() { hooks.OnRenderStart(ctx, []string{"svg", "png"}) }, "Rendering svg, png..."},
	}
	for _, tt := range tests {
		tt.stage()
		if got := s.Message(); got != tt.want {
			t.Errorf("Message = %q, want %q", got, tt.want)
		}
	}

	restore()
	if _, ok := observability.Pipeline().(*Spinner); ok {
		t.Error("restore left the spinner installed")
	}
}
