package catalog

import "fmt"

// Catalog is the resolved map of asset path hash to decoded blob bytes,
// assembled by fetch.Resolve from the manifest chain.
type Catalog struct {
	byHash map[int32][]byte
}

// New wraps an already-resolved hash->bytes map.
func New(byHash map[int32][]byte) *Catalog {
	if byHash == nil {
		byHash = make(map[int32][]byte)
	}
	return &Catalog{byHash: byHash}
}

// Lookup resolves a path to its bytes via Hash32.
func (c *Catalog) Lookup(path string) ([]byte, error) {
	b, ok := c.byHash[Hash32(path)]
	if !ok {
		return nil, fmt.Errorf("catalog: no blob for path %q", path)
	}
	return b, nil
}

// LookupHash resolves a precomputed hash directly.
func (c *Catalog) LookupHash(h int32) ([]byte, bool) {
	b, ok := c.byHash[h]
	return b, ok
}

// Len reports how many entries were resolved.
func (c *Catalog) Len() int {
	return len(c.byHash)
}
