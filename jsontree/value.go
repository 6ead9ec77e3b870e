// Package jsontree holds the decoded value tree that every decoder in
// gcparse produces. It exists because the decoded documents must preserve
// field declaration order, a guarantee neither a plain Go map nor
// goccy/go-json's generic decode target gives you.
package jsontree

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// Value is any node in a decoded document: nil, bool, float64, int64,
// uint64, string, Array, or *Object.
type Value interface{}

// Array is an ordered sequence of values.
type Array []Value

// Object is an ordered set of key/value pairs. Unlike map[string]Value it
// preserves the order fields were appended in, which callers rely on to
// reproduce the source schema's field declaration order in output JSON.
type Object struct {
	keys   []string
	values []Value
	index  map[string]int
}

// NewObject returns an empty Object ready for Set calls.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Set appends key/value, or overwrites the value in place if key was
// already set (order is unaffected by overwrite).
func (o *Object) Set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.values[i] = v
		return
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.values = append(o.values, v)
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.values[i], true
}

// Len reports the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the fields in insertion order. Callers must not mutate it.
func (o *Object) Keys() []string {
	return o.keys
}

// MarshalJSON writes the fields in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, k := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// EnumString renders an integer enum discriminant that has no label
// mapping, as the decimal-string fallback the schema format specifies.
func EnumString(v int64) string {
	return strconv.FormatInt(v, 10)
}
