package wallet

import (
	"sync"
	"testing"
)

func TestCachePutGetInvalidate(t *testing.T) {
	cache := NewCache()

	if _, ok := cache.Get("u1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	entry := Entry{UserID: "u1", Address: "addr1", Material: []byte("seed")}
	cache.Put("u1", entry)

	got, ok := cache.Get("u1")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got.Address != "addr1" {
		t.Fatalf("expected addr1, got %s", got.Address)
	}

	cache.Invalidate("u1")
	if _, ok := cache.Get("u1"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestCacheReplacesOnPut(t *testing.T) {
	cache := NewCache()
	cache.Put("u1", Entry{UserID: "u1", Address: "old"})
	cache.Put("u1", Entry{UserID: "u1", Address: "new"})

	got, _ := cache.Get("u1")
	if got.Address != "new" {
		t.Fatalf("expected replacement, got %s", got.Address)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Put("shared", Entry{UserID: "shared", Address: "a"})
				cache.Get("shared")
				cache.Invalidate("shared")
			}
		}()
	}
	wg.Wait()
}
