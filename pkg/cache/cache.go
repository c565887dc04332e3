// Package cache stores rendered constellation artifacts.
//
// Rendering a registry is cheap, but PNG and PDF conversion shell out to
// rsvg-convert and the DOT export runs Graphviz, so artifacts are cached by
// a key derived from the registry content and the render options.
//
// Backends:
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for the preview server and CI runners
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer]; wrap one in [NewScopedKeyer] to namespace a
// shared backend.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	TTLArtifact = 7 * 24 * time.Hour
	TTLRegistry = time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired or
	// unreadable entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
