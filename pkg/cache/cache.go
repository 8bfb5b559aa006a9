// Package cache stores computed lane layouts and rendered artifacts so that
// repeated requests for the same items, window and search skip the engine.
//
// Four backends implement [Cache]:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry under the user cache directory (CLI)
//   - [MemoryCache]: bounded in-process LRU (server, interactive view)
//   - [RedisCache]: shared across server instances
//
// Keys are produced by a [Keyer] so that the same inputs always map to the
// same entry regardless of backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default time-to-live values.
const (
	// TTLLayout applies to lane layouts. Layout keys include the items
	// revision, so stale entries are never served; the TTL only bounds size.
	TTLLayout = 24 * time.Hour

	// TTLArtifact applies to rendered SVG/PNG/PDF/JSON output.
	TTLArtifact = 24 * time.Hour
)
