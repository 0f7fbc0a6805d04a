package merger

import (
	"maps"
	"slices"

	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/object"
)

// Cache maps each non-seed producer to its latest decoded payload.
type Cache struct {
	entries map[ir.SourceID]object.Representation
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[ir.SourceID]object.Representation)}
}

// Put stores rep for source, replacing any previous entry.
func (c *Cache) Put(source ir.SourceID, rep object.Representation) {
	c.entries[source] = rep
}

// Get returns the entry for source.
func (c *Cache) Get(source ir.SourceID) (object.Representation, bool) {
	rep, ok := c.entries[source]
	return rep, ok
}

// Sources returns the cached producers in sorted order.
func (c *Cache) Sources() []ir.SourceID {
	return slices.Sorted(maps.Keys(c.entries))
}

// ForEach calls fn for every entry in sorted producer order and stops at
// the first error.
func (c *Cache) ForEach(fn func(ir.SourceID, object.Representation) error) error {
	for _, source := range c.Sources() {
		if err := fn(source, c.entries[source]); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of cached producers.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	clear(c.entries)
}
