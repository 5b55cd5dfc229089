package store

import (
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUFactory creates LRU store instances.
type LRUFactory struct {
	config Config
}

// NewLRUFactory creates a new LRU store factory.
func NewLRUFactory(config Config) Factory {
	return &LRUFactory{config: config}
}

// Create creates a new LRU store instance.
func (f *LRUFactory) Create() (Store, error) {
	return NewLRUStore(f.config), nil
}

// LRUStore is a least-recently-used store backed by golang-lru. The expirable
// variant covers the max-age bound alongside the entry cap.
type LRUStore struct {
	cache     *expirable.LRU[string, []byte]
	hits      int64
	misses    int64
	evictions int64
}

// NewLRUStore creates a new LRU-based store.
func NewLRUStore(config Config) *LRUStore {
	s := &LRUStore{}
	s.cache = expirable.NewLRU[string, []byte](config.MaxEntries, func(string, []byte) {
		atomic.AddInt64(&s.evictions, 1)
	}, config.MaxAge)
	return s
}

// Get retrieves a value and marks the entry recently used.
func (s *LRUStore) Get(key string) ([]byte, bool) {
	value, found := s.cache.Get(key)
	if found {
		atomic.AddInt64(&s.hits, 1)
	} else {
		atomic.AddInt64(&s.misses, 1)
	}
	return value, found
}

// Has reports presence without updating recency.
func (s *LRUStore) Has(key string) bool {
	return s.cache.Contains(key)
}

// Set stores a value.
func (s *LRUStore) Set(key string, value []byte) bool {
	s.cache.Add(key, value)
	return true
}

// Reset removes all entries.
func (s *LRUStore) Reset() {
	s.cache.Purge()
}

// Len returns the number of live entries.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}

// Metrics returns store counters.
func (s *LRUStore) Metrics() Metrics {
	return Metrics{
		Hits:   atomic.LoadInt64(&s.hits),
		Misses: atomic.LoadInt64(&s.misses),
		Size:   int64(s.cache.Len()),
	}
}

// Close releases the store.
func (s *LRUStore) Close() {
	s.cache.Purge()
}
