package store

import (
	"testing"
	"time"
)

func TestLRUStoreSetGet(t *testing.T) {
	s := NewLRUStore(Config{MaxEntries: 10})
	defer s.Close()

	if !s.Set("key1", []byte("value1")) {
		t.Fatal("Set should succeed")
	}

	value, found := s.Get("key1")
	if !found {
		t.Fatal("Value should be found")
	}
	if string(value) != "value1" {
		t.Errorf("Expected value1, got %s", value)
	}
}

func TestLRUStoreGetMissing(t *testing.T) {
	s := NewLRUStore(Config{MaxEntries: 10})
	defer s.Close()

	if _, found := s.Get("missing"); found {
		t.Fatal("Missing key should not be found")
	}
}

func TestLRUStoreHas(t *testing.T) {
	s := NewLRUStore(Config{MaxEntries: 10})
	defer s.Close()

	s.Set("key1", []byte("value1"))

	if !s.Has("key1") {
		t.Fatal("Has should report present key")
	}
	if s.Has("missing") {
		t.Fatal("Has should not report missing key")
	}

	// Has is idempotent without an intervening set.
	for i := 0; i < 3; i++ {
		if !s.Has("key1") {
			t.Fatal("Repeated Has should return the same answer")
		}
	}
}

func TestLRUStoreEviction(t *testing.T) {
	s := NewLRUStore(Config{MaxEntries: 2})
	defer s.Close()

	s.Set("key1", []byte("value1"))
	s.Set("key2", []byte("value2"))

	// Touch key1 so key2 is the eviction candidate.
	s.Get("key1")
	s.Set("key3", []byte("value3"))

	if !s.Has("key1") {
		t.Error("Recently used key1 should survive")
	}
	if s.Has("key2") {
		t.Error("Least recently used key2 should be evicted")
	}
	if !s.Has("key3") {
		t.Error("New key3 should be present")
	}
}

func TestLRUStoreMaxAge(t *testing.T) {
	s := NewLRUStore(Config{MaxEntries: 10, MaxAge: 20 * time.Millisecond})
	defer s.Close()

	s.Set("key1", []byte("value1"))
	time.Sleep(50 * time.Millisecond)

	if _, found := s.Get("key1"); found {
		t.Fatal("Expired entry should not be returned")
	}
}

func TestLRUStoreReset(t *testing.T) {
	s := NewLRUStore(Config{MaxEntries: 10})
	defer s.Close()

	s.Set("key1", []byte("value1"))
	s.Set("key2", []byte("value2"))

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("Expected empty store after reset, got %d entries", s.Len())
	}
	if s.Has("key1") || s.Has("key2") {
		t.Fatal("No key should survive a reset")
	}
}

func TestLRUStoreMetrics(t *testing.T) {
	s := NewLRUStore(Config{MaxEntries: 10})
	defer s.Close()

	s.Set("key1", []byte("value1"))
	s.Get("key1")
	s.Get("missing")

	m := s.Metrics()
	if m.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", m.Hits)
	}
	if m.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", m.Misses)
	}
	if m.Size != 1 {
		t.Errorf("Expected size 1, got %d", m.Size)
	}
}

func TestLRUFactory(t *testing.T) {
	factory := NewLRUFactory(Config{MaxEntries: 5})

	s, err := factory.Create()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	s.Set("key1", []byte("value1"))
	if !s.Has("key1") {
		t.Fatal("Factory-created store should work")
	}
}
