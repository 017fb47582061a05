// Package store persists chart definitions (config plus data) for the HTTP
// host, so charts can be re-mounted after a restart or on another instance.
//
//   - [MemoryStore]: process-local, the default
//   - [MongoStore]: a MongoDB collection shared between instances
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/data"
)

// ErrNotFound is returned when no definition has the requested ID.
var ErrNotFound = errors.New("chart definition not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// Definition is everything needed to rebuild a chart.
type Definition struct {
	ID        string       `json:"id"`
	Config    chart.Config `json:"config"`
	Data      data.Series  `json:"data"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Store is the interface for definition storage backends.
type Store interface {
	// Get returns the definition or ErrNotFound.
	Get(ctx context.Context, id string) (*Definition, error)

	// Put inserts or replaces a definition. CreatedAt is kept on replace.
	Put(ctx context.Context, def *Definition) error

	// Delete removes a definition or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns up to limit definitions, most recently updated first.
	List(ctx context.Context, limit int) ([]Definition, error)

	Close() error
}
