// Package schema models the externally supplied data.json type descriptions
// that drive the generic decoder: classes (field lists with a presence
// bitset), structs (field lists without one), type indices (discriminant to
// concrete class dispatch), and enums (discriminant to label).
package schema

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// KindTag discriminates the shapes a ValueKind can take.
type KindTag int

const (
	KindPrimitive KindTag = iota
	KindArray
	KindDictionary
	KindClass
)

// ValueKind describes the type of a field, array element, or top-level
// parse target.
type ValueKind struct {
	Tag  KindTag
	Name string     // primitive name ("Int32", "String", ...) or class name
	Elem *ValueKind // array element kind, or dictionary value kind
	Key  *ValueKind // dictionary key kind
}

// Field is one entry in a Class or Struct's field list.
type Field struct {
	Name string
	Kind ValueKind
}

// Entry is implemented by every schema entry kind.
type Entry interface {
	entryKind() string
}

// ClassEntry has a presence-flag header: each field may be absent.
type ClassEntry struct {
	Name   string
	Fields []Field
}

func (*ClassEntry) entryKind() string { return "class" }

// StructEntry has no presence-flag header: every field is always present.
type StructEntry struct {
	Name   string
	Fields []Field
}

func (*StructEntry) entryKind() string { return "struct" }

// TypeIndexEntry maps an integer discriminant to the name of a concrete
// ClassEntry. A tag that names another TypeIndex is collapsed exactly one
// level, through that TypeIndex's tag-0 entry, which must name a class.
type TypeIndexEntry struct {
	Name       string
	ByTag      map[int64]string
	WidthBytes int // 1 (byte), 2 (ushort), 4 (int/uint), 8 (long)
}

func (*TypeIndexEntry) entryKind() string { return "typeindex" }

// EnumEntry maps an integer discriminant to a label. Unknown discriminants
// fall back to their decimal string form.
type EnumEntry struct {
	Name       string
	Labels     map[int64]string
	WidthBytes int
}

func (*EnumEntry) entryKind() string { return "enum" }

// Set is the full collection of schema entries, keyed by fully qualified
// type name.
type Set struct {
	entries map[string]Entry
}

// Lookup returns the entry for name.
func (s *Set) Lookup(name string) (Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Class returns the entry for name if it is a ClassEntry.
func (s *Set) Class(name string) (*ClassEntry, bool) {
	e, ok := s.entries[name]
	if !ok {
		return nil, false
	}
	c, ok := e.(*ClassEntry)
	return c, ok
}

// rawEntry is the wire shape data.json uses per entry before the kind tag
// fans it out into one of the four concrete Entry types.
type rawEntry struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Fields []struct {
		Name string    `json:"name"`
		Kind rawKind   `json:"kind"`
		_    struct{} `json:"-"`
	} `json:"fields"`
	Tags       map[string]string `json:"tags"`  // typeindex: tag -> class name
	Labels     map[string]string `json:"labels"` // enum: discriminant -> label
	WidthBytes int                `json:"widthBytes"`
}

type rawKind struct {
	Tag  string   `json:"tag"`
	Name string   `json:"name"`
	Elem *rawKind `json:"elem"`
	Key  *rawKind `json:"key"`
}

func (rk rawKind) toValueKind() ValueKind {
	vk := ValueKind{Name: rk.Name}
	switch rk.Tag {
	case "array":
		vk.Tag = KindArray
		if rk.Elem != nil {
			e := rk.Elem.toValueKind()
			vk.Elem = &e
		}
	case "dictionary":
		vk.Tag = KindDictionary
		if rk.Elem != nil {
			e := rk.Elem.toValueKind()
			vk.Elem = &e
		}
		if rk.Key != nil {
			k := rk.Key.toValueKind()
			vk.Key = &k
		}
	case "class":
		vk.Tag = KindClass
	default:
		vk.Tag = KindPrimitive
	}
	return vk
}

// Parse decodes the data.json payload into a Set.
func Parse(data []byte) (*Set, error) {
	var raws []rawEntry
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	s := &Set{entries: make(map[string]Entry, len(raws))}
	for _, re := range raws {
		switch re.Kind {
		case "class", "struct":
			fields := make([]Field, len(re.Fields))
			for i, f := range re.Fields {
				fields[i] = Field{Name: f.Name, Kind: f.Kind.toValueKind()}
			}
			if re.Kind == "class" {
				s.entries[re.Name] = &ClassEntry{Name: re.Name, Fields: fields}
			} else {
				s.entries[re.Name] = &StructEntry{Name: re.Name, Fields: fields}
			}
		case "typeindex":
			byTag := make(map[int64]string, len(re.Tags))
			for k, v := range re.Tags {
				var tag int64
				if _, err := fmt.Sscanf(k, "%d", &tag); err != nil {
					return nil, fmt.Errorf("schema: typeindex %s: bad tag %q: %w", re.Name, k, err)
				}
				byTag[tag] = v
			}
			width := re.WidthBytes
			if width == 0 {
				width = 4
			}
			s.entries[re.Name] = &TypeIndexEntry{Name: re.Name, ByTag: byTag, WidthBytes: width}
		case "enum":
			labels := make(map[int64]string, len(re.Labels))
			for k, v := range re.Labels {
				var tag int64
				if _, err := fmt.Sscanf(k, "%d", &tag); err != nil {
					return nil, fmt.Errorf("schema: enum %s: bad discriminant %q: %w", re.Name, k, err)
				}
				labels[tag] = v
			}
			width := re.WidthBytes
			if width == 0 {
				width = 4
			}
			s.entries[re.Name] = &EnumEntry{Name: re.Name, Labels: labels, WidthBytes: width}
		default:
			return nil, fmt.Errorf("schema: unknown entry kind %q for %q", re.Kind, re.Name)
		}
	}

	return s, nil
}
