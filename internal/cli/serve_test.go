package cli

import (
	"context"
	"testing"

	"github.com/matzehuels/chartkit/pkg/cache"
)

func TestDisplayAddr(t *testing.T) {
	tests := map[string]string{
		":8080":           "http://localhost:8080",
		"0.0.0.0:9000":    "http://0.0.0.0:9000",
		"charts.local:80": "http://charts.local:80",
	}
	for in, want := range tests {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewSharedCacheFallsBack(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	c, err := newSharedCache(ctx, "", false)
	if err != nil {
		t.Fatalf("newSharedCache: %v", err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("no redis url: got %T, want *cache.FileCache", c)
	}

	c, err = newSharedCache(ctx, "redis://127.0.0.1:1", true)
	if err != nil {
		t.Fatalf("newSharedCache: %v", err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("no-cache: got %T, want *cache.NullCache", c)
	}
}

func TestNewSharedCacheBadURL(t *testing.T) {
	if _, err := newSharedCache(context.Background(), "not a url", false); err == nil {
		t.Error("invalid redis url should fail")
	}
}
