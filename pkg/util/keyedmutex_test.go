package util

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("user-1")
			counter++
			km.Unlock("user-1")
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}

func TestKeyedMutexDifferentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock("user-a")
	defer km.Unlock("user-a")

	done := make(chan struct{})
	go func() {
		km.Lock("user-b")
		km.Unlock("user-b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked behind user-a")
	}
}

func TestKeyedMutexReclaimsEntries(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock("user-1")
	km.Unlock("user-1")

	km.mu.Lock()
	n := len(km.entries)
	km.mu.Unlock()
	if n != 0 {
		t.Errorf("entries = %d, want 0 after last holder unlocks", n)
	}
}

func TestKeyedMutexUnlockWithoutLockPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Unlock of an unheld key did not panic")
		}
	}()
	NewKeyedMutex().Unlock("never-locked")
}
