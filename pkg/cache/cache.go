// Package cache stores rendered scenes and artifacts keyed by content hash.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under the XDG cache dir (CLI)
//   - [MemoryCache]: in-process map with expiry (HTTP host default, tests)
//   - [RedisCache]: shared cache for multi-instance HTTP hosts
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] turns a spec hash (the hash of a chart config plus its data) and
// render options into cache keys. Wrap it with [NewScopedKeyer] to give
// tenants separate namespaces.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLScene is how long a settled scene is kept.
	TTLScene = 24 * time.Hour

	// TTLArtifact is how long a rendered artifact is kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// SceneKey is the key of the settled scene of a spec.
	SceneKey(specHash string) string

	// ArtifactKey is the key of one rendered artifact of a spec.
	ArtifactKey(specHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Scale       float64 `json:"scale,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	Pinned      bool    `json:"pinned,omitempty"`
	Title       string  `json:"title,omitempty"`
}

// DefaultKeyer hashes its inputs under fixed prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SceneKey implements Keyer.
func (DefaultKeyer) SceneKey(specHash string) string {
	return "scene:" + specHash
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(specHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", specHash, opts)
}
