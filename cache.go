package quadbatch

import (
	"fmt"
	"log/slog"
	"sync"
)

// AtlasLoader produces an atlas on first use of a name.
type AtlasLoader func() (*Atlas, error)

// AtlasCache holds loaded atlases for one render context. Create one per
// context and pass it to whatever builds meshes; there is no process-wide
// instance. Close drops every entry and disposes page images.
type AtlasCache struct {
	mu      sync.Mutex
	entries map[string]*Atlas
	closed  bool
}

// NewAtlasCache returns an empty cache.
func NewAtlasCache() *AtlasCache {
	return &AtlasCache{entries: make(map[string]*Atlas)}
}

// Load returns the cached atlas for name, calling load on a miss. Failed
// loads are not cached.
func (c *AtlasCache) Load(name string, load AtlasLoader) (*Atlas, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("quadbatch: atlas cache closed, loading %q", name)
	}
	if a, ok := c.entries[name]; ok {
		return a, nil
	}
	a, err := load()
	if err != nil {
		return nil, fmt.Errorf("quadbatch: load atlas %q: %w", name, err)
	}
	c.entries[name] = a
	Logger().Debug("quadbatch: atlas cached", slog.String("name", name), slog.Int("frames", a.Len()))
	return a, nil
}

// Get returns the cached atlas for name without loading.
func (c *AtlasCache) Get(name string) (*Atlas, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[name]
	return a, ok
}

// Len returns the number of cached atlases.
func (c *AtlasCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Evict removes name from the cache, disposing its page images.
func (c *AtlasCache) Evict(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.entries[name]; ok {
		disposePages(a)
		delete(c.entries, name)
	}
}

// Close empties the cache and disposes every page image. Later loads fail.
func (c *AtlasCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, a := range c.entries {
		disposePages(a)
		delete(c.entries, name)
	}
	c.closed = true
}

func disposePages(a *Atlas) {
	for _, p := range a.Pages {
		if p != nil {
			p.Deallocate()
		}
	}
}
