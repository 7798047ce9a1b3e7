package inventory

import (
	"slices"
	"sync"
	"time"
)

// Collection is the local copy of the remote item list. The remote service
// stays the source of truth; every write here comes from a completed fetch.
type Collection struct {
	mu       sync.RWMutex
	items    []Item
	loaded   bool
	loadedAt time.Time
	version  uint64
}

func NewCollection() *Collection {
	return &Collection{items: []Item{}}
}

// Items returns a copy in the order the service returned them.
func (c *Collection) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Loaded reports whether a fetch has ever succeeded.
func (c *Collection) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Collection) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Version increments on every write, including clears.
func (c *Collection) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *Collection) replace(items []Item, at time.Time) {
	next := slices.Clone(items)
	if next == nil {
		next = []Item{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = next
	c.loaded = true
	c.loadedAt = at
	c.version++
}

func (c *Collection) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []Item{}
	c.version++
}
