package memory

import (
	"sync"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/ports"
)

// Cache is the process-local AnalysisCache. It is never persisted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]domain.AnalysisCacheEntry
}

var _ ports.AnalysisCache = (*Cache)(nil)

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]domain.AnalysisCacheEntry)}
}

func (c *Cache) Get(productCode string) (domain.AnalysisCacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[productCode]
	return entry, ok
}

func (c *Cache) Put(entry domain.AnalysisCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.ProductCode] = entry
}

func (c *Cache) Delete(productCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, productCode)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
