package formula

import (
	"sync"

	"github.com/google/uuid"
)

// Cache is the coarse, invalidate-on-any-edit recompute cache from §4.8: a
// map from cell address to its last-rendered Token, cleared wholesale on
// every write rather than tracked through a dependency graph (§9 Design
// Notes explicitly warns against building one prematurely).
type Cache struct {
	mu         sync.RWMutex
	entries    map[Reference]Token
	generation uuid.UUID
}

// NewCache creates an empty cache stamped with a fresh random generation id.
func NewCache() *Cache {
	return &Cache{
		entries:    make(map[Reference]Token),
		generation: uuid.New(),
	}
}

// Get returns the cached Token for addr, if present.
func (c *Cache) Get(addr Reference) (Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tok, ok := c.entries[addr]
	return tok, ok
}

// Put stores the evaluated Token for addr.
func (c *Cache) Put(addr Reference, tok Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[addr] = tok
}

// Invalidate clears every cached entry and stamps a fresh generation id,
// per §4.8's "any cell write discards the entire cache" rule (Testable
// Property 6: "no cache entry survives" a write).
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Reference]Token)
	c.generation = uuid.New()
}

// Generation returns the cache's current generation id, which changes on
// every Invalidate call. A consumer holding a stale generation id knows
// without re-deriving a dependency graph that something may have changed.
func (c *Cache) Generation() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Len reports how many entries are currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
