package palette

// Cache memoizes converted palettes by palette chunk index for one run.
// Palette chunks are immutable while a run is in progress, so entries are
// written once and never invalidated. A Cache is not safe for concurrent use.
type Cache struct {
	entries map[int][]byte
}

// NewCache creates an empty palette cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[int][]byte),
	}
}

// Get returns the converted palette for a chunk index, if present
func (c *Cache) Get(index int) ([]byte, bool) {
	pal, ok := c.entries[index]
	return pal, ok
}

// Lookup returns the canonical 8-bit palette for the chunk at index,
// converting payload on first use. payload is ignored on later calls.
func (c *Cache) Lookup(index int, payload []byte) []byte {
	if pal, ok := c.entries[index]; ok {
		return pal
	}
	pal := Canonical(payload)
	c.entries[index] = pal
	return pal
}

// Len returns the number of cached palettes
func (c *Cache) Len() int {
	return len(c.entries)
}
