// Package store provides the bounded eviction container owned by the
// coordinator process. Workers never hold one.
package store

import "time"

// Store is a mapping from cache key to marshalled value, bounded by size
// and/or age, evicting entries per the backend's own policy.
type Store interface {
	// Get retrieves a value. Returns the value and true if present.
	Get(key string) ([]byte, bool)

	// Has reports whether the key is present without touching recency.
	Has(key string) bool

	// Set stores a value. Returns false if the backend rejected the write.
	Set(key string, value []byte) bool

	// Reset removes all entries.
	Reset()

	// Len returns the number of live entries.
	Len() int

	// Metrics returns hit/miss counters.
	Metrics() Metrics

	// Close releases backend resources.
	Close()
}

// Metrics represents store counters.
type Metrics struct {
	Hits   int64
	Misses int64
	Size   int64
}

// Factory creates Store instances.
type Factory interface {
	// Create creates a new store instance.
	Create() (Store, error)
}

// Config configures a store backend. MaxEntries and MaxAge apply to every
// backend; the remaining knobs are ristretto-specific.
type Config struct {
	// MaxEntries is the maximum number of entries before eviction.
	MaxEntries int

	// MaxAge is the lifetime of an entry; zero means no age limit.
	MaxAge time.Duration

	// NumCounters is the number of frequency counters (ristretto only).
	// Recommended: 10 * MaxEntries.
	NumCounters int64

	// MaxCost is the maximum total cost of entries (ristretto only).
	MaxCost int64

	// BufferItems is the eviction buffer size (ristretto only).
	BufferItems int64
}

// DefaultConfig returns a default store configuration.
func DefaultConfig() Config {
	return Config{
		MaxEntries:  10000,
		MaxAge:      0,
		NumCounters: 1e5,
		MaxCost:     1 << 26,
		BufferItems: 64,
	}
}
