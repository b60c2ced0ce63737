package util

import (
	"testing"
	"time"
)

func TestLRUEvictsOldest(t *testing.T) {
	cache, err := NewLRU[string, int](2, 0)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Get("a") // a 变为最近使用
	cache.Set("c", 3)

	if _, ok := cache.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v; want 1, true", v, ok)
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	cache, err := NewLRU[string, int](4, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}

	cache.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.Get("a"); ok {
		t.Error("expired entry still returned")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expired read", cache.Len())
	}
}

func TestLRUInvalidCapacity(t *testing.T) {
	if _, err := NewLRU[string, int](0, 0); err == nil {
		t.Error("NewLRU(0) error = nil, want error")
	}
}
