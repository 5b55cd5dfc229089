package store

import (
	"testing"
	"time"
)

func TestTTLStoreSetGet(t *testing.T) {
	s := NewTTLStore(Config{MaxEntries: 10, MaxAge: time.Minute})
	defer s.Close()

	s.Set("key1", []byte("value1"))

	value, found := s.Get("key1")
	if !found {
		t.Fatal("Value should be found")
	}
	if string(value) != "value1" {
		t.Errorf("Expected value1, got %s", value)
	}
}

func TestTTLStoreExpiry(t *testing.T) {
	s := NewTTLStore(Config{MaxEntries: 10, MaxAge: 20 * time.Millisecond})
	defer s.Close()

	s.Set("key1", []byte("value1"))
	time.Sleep(50 * time.Millisecond)

	if _, found := s.Get("key1"); found {
		t.Fatal("Expired entry should not be returned")
	}
}

func TestTTLStoreReset(t *testing.T) {
	s := NewTTLStore(Config{MaxEntries: 10, MaxAge: time.Minute})
	defer s.Close()

	s.Set("key1", []byte("value1"))
	s.Set("key2", []byte("value2"))

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("Expected empty store after reset, got %d entries", s.Len())
	}
}

func TestTTLFactory(t *testing.T) {
	factory := NewTTLFactory(Config{MaxEntries: 5, MaxAge: time.Minute})

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
