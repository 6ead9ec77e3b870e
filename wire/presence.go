package wire

import "fmt"

// PresenceSet is a bitset of optional-field flags, stored as
// max(1, ceil(fieldCount/64)) u64 varint words, low bit of word 0 first.
type PresenceSet struct {
	words      []uint64
	fieldCount int
}

// ReadPresenceSet reads the presence header for a class with the given
// field count.
func ReadPresenceSet(r *Reader, fieldCount int) (PresenceSet, error) {
	n := fieldCount / 64
	if fieldCount%64 != 0 || n == 0 {
		n++
	}

	words := make([]uint64, n)
	for i := range words {
		w, err := r.ReadUint64()
		if err != nil {
			return PresenceSet{}, fmt.Errorf("presence word %d: %w", i, err)
		}
		words[i] = w
	}

	return PresenceSet{words: words, fieldCount: fieldCount}, nil
}

// Exists reports whether field i is marked present. It panics if i is out
// of range for the field count the set was constructed with, mirroring the
// source format's own bounds assumption; callers at the blob boundary
// recover from this via the panic-containment wrapper.
func (p PresenceSet) Exists(i int) bool {
	if i < 0 || i >= p.fieldCount {
		panic(fmt.Sprintf("wire: presence index %d out of range (fields=%d)", i, p.fieldCount))
	}
	word := p.words[i/64]
	return word&(1<<uint(i%64)) != 0
}
