package store

import (
	"sync/atomic"

	"github.com/jellydator/ttlcache/v3"
)

// TTLFactory creates ttlcache store instances.
type TTLFactory struct {
	config Config
}

// NewTTLFactory creates a new ttlcache store factory.
func NewTTLFactory(config Config) Factory {
	return &TTLFactory{config: config}
}

// Create creates a new ttlcache store instance.
func (f *TTLFactory) Create() (Store, error) {
	return NewTTLStore(f.config), nil
}

// TTLStore is an age-first store backed by ttlcache. Reads refresh an entry's
// lifetime, so the eviction order approximates least-recently-used.
type TTLStore struct {
	cache  *ttlcache.Cache[string, []byte]
	hits   int64
	misses int64
}

// NewTTLStore creates a new ttlcache-based store.
func NewTTLStore(config Config) *TTLStore {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithCapacity[string, []byte](uint64(config.MaxEntries)),
	}
	if config.MaxAge > 0 {
		opts = append(opts, ttlcache.WithTTL[string, []byte](config.MaxAge))
	}

	cache := ttlcache.New[string, []byte](opts...)
	go cache.Start()

	return &TTLStore{cache: cache}
}

// Get retrieves a value from the store.
func (s *TTLStore) Get(key string) ([]byte, bool) {
	item := s.cache.Get(key)
	if item == nil {
		atomic.AddInt64(&s.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&s.hits, 1)
	return item.Value(), true
}

// Has reports presence without refreshing the entry's lifetime.
func (s *TTLStore) Has(key string) bool {
	return s.cache.Has(key)
}

// Set stores a value.
func (s *TTLStore) Set(key string, value []byte) bool {
	s.cache.Set(key, value, ttlcache.DefaultTTL)
	return true
}

// Reset removes all entries.
func (s *TTLStore) Reset() {
	s.cache.DeleteAll()
}

// Len returns the number of live entries.
func (s *TTLStore) Len() int {
	return s.cache.Len()
}

// Metrics returns store counters.
func (s *TTLStore) Metrics() Metrics {
	return Metrics{
		Hits:   atomic.LoadInt64(&s.hits),
		Misses: atomic.LoadInt64(&s.misses),
		Size:   int64(s.cache.Len()),
	}
}

// Close stops the expiration loop and releases the store.
func (s *TTLStore) Close() {
	s.cache.Stop()
	s.cache.DeleteAll()
}
