package store

import (
	"sync/atomic"

	lfu "github.com/dgraph-io/ristretto"
)

// LFUFactory creates ristretto store instances.
type LFUFactory struct {
	config Config
}

// NewLFUFactory creates a new ristretto store factory.
func NewLFUFactory(config Config) Factory {
	return &LFUFactory{config: config}
}

// Create creates a new ristretto store instance.
func (f *LFUFactory) Create() (Store, error) {
	return NewLFUStore(f.config)
}

// LFUStore is a frequency-based store backed by ristretto. Writes wait for
// the admission buffer to drain so a set is visible to the next get.
type LFUStore struct {
	cache  *lfu.Cache
	hits   int64
	misses int64
}

// NewLFUStore creates a new ristretto-based store.
func NewLFUStore(config Config) (*LFUStore, error) {
	cache, err := lfu.NewCache(&lfu.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	return &LFUStore{cache: cache}, nil
}

// Get retrieves a value from the store.
func (s *LFUStore) Get(key string) ([]byte, bool) {
	value, found := s.cache.Get(key)
	if !found {
		atomic.AddInt64(&s.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&s.hits, 1)
	data, ok := value.([]byte)
	return data, ok
}

// Has reports whether the key is present.
func (s *LFUStore) Has(key string) bool {
	_, found := s.cache.Get(key)
	return found
}

// Set stores a value.
func (s *LFUStore) Set(key string, value []byte) bool {
	ok := s.cache.Set(key, value, int64(len(value))+1)
	s.cache.Wait()
	return ok
}

// Reset removes all entries.
func (s *LFUStore) Reset() {
	s.cache.Clear()
}

// Len returns an approximation of the number of live entries; ristretto does
// not expose an exact count.
func (s *LFUStore) Len() int {
	return int(s.cache.Metrics.KeysAdded() - s.cache.Metrics.KeysEvicted())
}

// Metrics returns store counters.
func (s *LFUStore) Metrics() Metrics {
	return Metrics{
		Hits:   atomic.LoadInt64(&s.hits),
		Misses: atomic.LoadInt64(&s.misses),
		Size:   int64(s.Len()),
	}
}

// Close closes the store.
func (s *LFUStore) Close() {
	s.cache.Close()
}
