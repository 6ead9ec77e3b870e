// Package catalog implements asset path hashing and the resolved lookup
// table (path hash -> blob bytes) that the batch driver reads from.
package catalog

// Hash32 computes the DJBX33A-style dual-accumulator 32-bit hash used to
// key the asset catalog. It is a pure function of the path string; all
// arithmetic wraps the way 32-bit signed integer arithmetic wraps in the
// reference implementation, hence the int32 conversions at every step
// rather than computing in a wider type and truncating once at the end.
func Hash32(s string) int32 {
	var hash1 int32 = 5381
	hash2 := hash1

	b := []byte(s)
	n := len(b)

	for i := 0; i < n; i += 2 {
		hash1 = (hash1<<5 + hash1) ^ int32(b[i])
		if i+1 < n {
			hash2 = (hash2<<5 + hash2) ^ int32(b[i+1])
		}
	}

	return hash1 + hash2*1566083941
}
