package formula

import "testing"

func TestCacheGetPut(t *testing.T) {
	cache := NewCache()
	addr := Cell(0, 0)

	if _, ok := cache.Get(addr); ok {
		t.Fatal("expected empty cache to miss")
	}

	cache.Put(addr, NumberToken("42", 0))
	tok, ok := cache.Get(addr)
	if !ok || tok.Content != "42" {
		t.Fatalf("got %+v, %v; want Number 42, true", tok, ok)
	}
}

func TestCacheInvalidateClearsEverything(t *testing.T) {
	cache := NewCache()
	cache.Put(Cell(0, 0), NumberToken("1", 0))
	cache.Put(Cell(0, 1), NumberToken("2", 0))

	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}

	cache.Invalidate()

	if cache.Len() != 0 {
		t.Errorf("Len() after Invalidate = %d, want 0 (Testable Property 6)", cache.Len())
	}
	if _, ok := cache.Get(Cell(0, 0)); ok {
		t.Error("expected no cache entry to survive Invalidate")
	}
}

func TestCacheGenerationChangesOnInvalidate(t *testing.T) {
	cache := NewCache()
	before := cache.Generation()
	cache.Invalidate()
	after := cache.Generation()
	if before == after {
		t.Error("expected Generation() to change after Invalidate")
	}
}
