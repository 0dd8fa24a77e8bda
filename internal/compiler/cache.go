package compiler

import (
	"strings"
	"sync"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"
)

// Cache memoizes accessors by path and comparisons by comparator. It is
// safe for concurrent use and may be shared by any number of compilers.
type Cache struct {
	mu          sync.RWMutex
	accessors   map[string]Accessor
	comparisons map[queryir.Comparator]Comparison
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		accessors:   make(map[string]Accessor),
		comparisons: make(map[queryir.Comparator]Comparison),
	}
}

// Accessor returns the accessor for a pre-split path.
func (c *Cache) Accessor(path []string) Accessor {
	key := strings.Join(path, ".")

	c.mu.RLock()
	acc, ok := c.accessors[key]
	c.mu.RUnlock()
	if ok {
		return acc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if acc, ok := c.accessors[key]; ok {
		return acc
	}
	acc = newAccessor(path)
	c.accessors[key] = acc
	return acc
}

// Comparison returns the comparison for cmp.
func (c *Cache) Comparison(cmp queryir.Comparator) Comparison {
	c.mu.RLock()
	fn, ok := c.comparisons[cmp]
	c.mu.RUnlock()
	if ok {
		return fn
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if fn, ok := c.comparisons[cmp]; ok {
		return fn
	}
	fn = newComparison(cmp)
	c.comparisons[cmp] = fn
	return fn
}

// Len returns the number of cached accessors and comparisons.
func (c *Cache) Len() (accessors, comparisons int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.accessors), len(c.comparisons)
}
