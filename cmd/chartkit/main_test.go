package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	charterr "github.com/matzehuels/chartkit/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"interrupted", fmt.Errorf("render: %w", context.Canceled), exitInterrupted},
		{"log domain", charterr.New(charterr.ErrCodeDomain, "log domain [0, 10] includes zero"), exitBadInput},
		{"unknown kind", charterr.New(charterr.ErrCodeInvalidChartKind, "pie"), exitBadInput},
		{"missing field", fmt.Errorf("load: %w", charterr.MissingField(3, "value")), exitBadInput},
		{"no pdf converter", charterr.New(charterr.ErrCodeUnsupported, "pdf output requires rsvg-convert"), exitUnsupported},
		{"internal", charterr.New(charterr.ErrCodeInternal, "write failed"), exitFailure},
		{"plain", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	if err := run(context.Background(), []string{"version", "-v"}); err != nil {
		t.Fatalf("run version: %v", err)
	}
	err := run(context.Background(), []string{"render"})
	if err == nil {
		t.Fatal("render without a spec should fail")
	}
	if got := exitCode(err); got != exitFailure {
		t.Errorf("exitCode = %d, want %d", got, exitFailure)
	}
}
