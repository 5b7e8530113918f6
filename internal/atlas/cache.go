package atlas

import (
	"fmt"
	"sync"

	"uiraster/internal/logx"
)

// Resolver resolves an atlas name to a loaded atlas.
type Resolver interface {
	Resolve(name string) (*Atlas, error)
}

// Cache is a concurrency-safe atlas cache. Atlases are loaded once and shared
// read-only by every frame that names them.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	atlas *Atlas
	err   error
}

// NewCache creates a new atlas cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches an atlas by name. Load failures are cached too so
// a broken atlas is reported once per name, not once per scene.
func (c *Cache) Resolve(name string) (*Atlas, error) {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return nil, fmt.Errorf("atlas: resolve %s: not found", name)
	}

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.atlas, entry.err
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	a, err := Load(path)
	if err == nil {
		logx.Logger().Debug("atlas loaded", "path", path, "paths", len(a.Paths()))
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[path]; exists {
		return entry.atlas, entry.err
	}
	c.items[path] = &cacheEntry{atlas: a, err: err}
	return a, err
}
