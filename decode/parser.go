// Package decode implements the generic recursive-descent parser that
// walks a schema.Set alongside a wire.Reader to produce an ordered
// jsontree.Value, plus the closed registry of specialized decoders for
// class names the schema format never describes structurally.
package decode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kardessa/gcparse/jsontree"
	"github.com/kardessa/gcparse/schema"
	"github.com/kardessa/gcparse/wire"
)

// MaxCollectionLength is the invariant cap on array, dictionary, and string
// lengths. Lengths beyond this are almost certainly a cursor desync against
// the wrong schema and are rejected rather than used to allocate.
const MaxCollectionLength = 1_000_000

// ErrAllocationTooLarge is returned when a decoded length exceeds MaxCollectionLength.
var ErrAllocationTooLarge = errors.New("decode: collection length exceeds limit")

// ErrUnknownClass is returned when a schema references a class name with no entry.
var ErrUnknownClass = errors.New("decode: unknown class")

// ErrUnknownTag is returned when a TypeIndex discriminant has no mapped class.
var ErrUnknownTag = errors.New("decode: unknown type-index tag")

// Parser decodes one blob against one schema.Set. It holds no state beyond
// the cursor and is safe to discard after a single Parse call; a fresh
// Parser is created per blob so decoding stays a pure function of
// (schema, bytes, kind).
type Parser struct {
	r      wire.Reader
	schema *schema.Set
}

// NewParser creates a Parser over data using set for type lookups.
func NewParser(set *schema.Set, data []byte) *Parser {
	return &Parser{r: wire.NewReader(data), schema: set}
}

// Parse decodes one value of kind from the current cursor position.
// includeType, when true, injects a "$type" field into any class resolved
// through a TypeIndex.
func (p *Parser) Parse(kind schema.ValueKind, includeType bool) (jsontree.Value, error) {
	if p.r.BytesLeft() == 0 {
		return softEOFDefault(kind), nil
	}

	switch kind.Tag {
	case schema.KindPrimitive:
		return p.parsePrimitive(kind.Name)
	case schema.KindArray:
		return p.parseArray(kind, includeType)
	case schema.KindDictionary:
		return p.parseDictionary(kind, includeType)
	case schema.KindClass:
		return p.parseClassByName(kind.Name, includeType)
	default:
		return nil, fmt.Errorf("decode: unhandled value kind tag %d", kind.Tag)
	}
}

// softEOFDefault returns the typed zero value a blob invoked with zero
// bytes remaining must produce, instead of an error. This keeps batch
// decoding resilient against truncated or partially downloaded blobs.
func softEOFDefault(kind schema.ValueKind) jsontree.Value {
	switch kind.Tag {
	case schema.KindArray:
		return jsontree.Array{}
	case schema.KindDictionary, schema.KindClass:
		return jsontree.NewObject()
	default:
		switch kind.Name {
		case "String":
			return ""
		case "Boolean":
			return false
		case "Int32", "Int64", "UInt32", "UInt64", "Byte", "SByte", "Int16", "UInt16":
			return int64(0)
		case "Float32", "Float64":
			return float64(0)
		default:
			return nil
		}
	}
}

func (p *Parser) parsePrimitive(name string) (jsontree.Value, error) {
	switch name {
	case "Boolean":
		return p.r.ReadBool()
	case "Byte":
		v, err := p.r.ReadUint8()
		return int64(v), err
	case "SByte":
		v, err := p.r.ReadInt8()
		return int64(v), err
	case "Int16":
		v, err := p.r.ReadInt16()
		return int64(v), err
	case "UInt16":
		v, err := p.r.ReadUint16()
		return int64(v), err
	case "Int32":
		v, err := p.r.ReadInt32()
		return int64(v), err
	case "UInt32":
		v, err := p.r.ReadUint32()
		return int64(v), err
	case "Int64":
		v, err := p.r.ReadInt64()
		return int64(v), err
	case "UInt64":
		v, err := p.r.ReadUint64()
		return int64(v), err
	case "Float32":
		v, err := p.r.ReadFloat32()
		return float64(v), err
	case "Float64":
		return p.r.ReadFloat64()
	case "String":
		return p.readLengthCheckedString()
	default:
		if fn, ok := specialized[name]; ok {
			return fn(p)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
}

func (p *Parser) readLengthCheckedString() (string, error) {
	l, err := p.r.ReadVarint()
	if err != nil {
		return "", err
	}
	if l > MaxCollectionLength {
		return "", fmt.Errorf("%w: string length %d", ErrAllocationTooLarge, l)
	}
	b, err := p.r.Read(uint(l))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

func (p *Parser) parseArray(kind schema.ValueKind, includeType bool) (jsontree.Value, error) {
	l, err := p.r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if l > MaxCollectionLength {
		return nil, fmt.Errorf("%w: array length %d", ErrAllocationTooLarge, l)
	}

	out := make(jsontree.Array, 0, l)
	for i := uint64(0); i < l; i++ {
		if kind.Elem == nil {
			return nil, fmt.Errorf("decode: array with no element kind")
		}
		v, err := p.Parse(*kind.Elem, includeType)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *Parser) parseDictionary(kind schema.ValueKind, includeType bool) (jsontree.Value, error) {
	l, err := p.r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if l > MaxCollectionLength {
		return nil, fmt.Errorf("%w: dictionary length %d", ErrAllocationTooLarge, l)
	}

	obj := jsontree.NewObject()
	for i := uint64(0); i < l; i++ {
		if kind.Key == nil || kind.Elem == nil {
			return nil, fmt.Errorf("decode: dictionary missing key/value kind")
		}
		key, err := p.Parse(*kind.Key, false)
		if err != nil {
			return nil, fmt.Errorf("dictionary[%d] key: %w", i, err)
		}
		val, err := p.Parse(*kind.Elem, includeType)
		if err != nil {
			return nil, fmt.Errorf("dictionary[%d] value: %w", i, err)
		}
		obj.Set(fmt.Sprint(key), val)
	}
	return obj, nil
}

func (p *Parser) parseClassByName(name string, includeType bool) (jsontree.Value, error) {
	if fn, ok := specialized[name]; ok {
		return fn(p)
	}
	entry, ok := p.schema.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}

	switch e := entry.(type) {
	case *schema.ClassEntry:
		return p.parseClass(e, includeType)
	case *schema.StructEntry:
		return p.parseStruct(e, includeType)
	case *schema.TypeIndexEntry:
		return p.parseTypeIndex(e, includeType)
	case *schema.EnumEntry:
		return p.parseEnum(e)
	default:
		return nil, fmt.Errorf("decode: unsupported entry type for %q", name)
	}
}

func (p *Parser) parseClass(c *schema.ClassEntry, includeType bool) (jsontree.Value, error) {
	flags, err := wire.ReadPresenceSet(&p.r, len(c.Fields))
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", c.Name, err)
	}

	obj := jsontree.NewObject()
	for i, f := range c.Fields {
		if !flags.Exists(i) {
			continue
		}
		v, err := p.Parse(f.Kind, includeType)
		if err != nil {
			return nil, fmt.Errorf("class %s.%s: %w", c.Name, f.Name, err)
		}
		obj.Set(f.Name, v)
	}
	return obj, nil
}

func (p *Parser) parseStruct(s *schema.StructEntry, includeType bool) (jsontree.Value, error) {
	obj := jsontree.NewObject()
	for _, f := range s.Fields {
		v, err := p.Parse(f.Kind, includeType)
		if err != nil {
			return nil, fmt.Errorf("struct %s.%s: %w", s.Name, f.Name, err)
		}
		obj.Set(f.Name, v)
	}
	return obj, nil
}

// parseTypeIndex resolves a discriminant to a concrete class and decodes
// it. A resolved name that itself names another TypeIndex collapses
// through that TypeIndex's tag-0 entry rather than reading a second
// discriminant from the wire; $type still reports the final concrete
// class name.
func (p *Parser) parseTypeIndex(t *schema.TypeIndexEntry, includeType bool) (jsontree.Value, error) {
	tag, err := p.readDiscriminant(t.WidthBytes)
	if err != nil {
		return nil, fmt.Errorf("typeindex %s: %w", t.Name, err)
	}

	className, ok := t.ByTag[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s tag %d", ErrUnknownTag, t.Name, tag)
	}

	classEntry, className, err := p.collapseTypeIndex(t.Name, className)
	if err != nil {
		return nil, err
	}

	v, err := p.parseClass(classEntry, includeType)
	if err != nil {
		return nil, err
	}
	if includeType {
		if obj, ok := v.(*jsontree.Object); ok {
			withType := jsontree.NewObject()
			withType.Set("$type", className)
			for _, k := range obj.Keys() {
				val, _ := obj.Get(k)
				withType.Set(k, val)
			}
			return withType, nil
		}
	}
	return v, nil
}

// collapseTypeIndex resolves name to a ClassEntry. A name that denotes a
// nested TypeIndexEntry is collapsed exactly one level, through that
// entry's tag-0 mapping, which must itself name a ClassEntry. It returns
// the final ClassEntry and the name it was resolved from.
func (p *Parser) collapseTypeIndex(parentName, name string) (*schema.ClassEntry, string, error) {
	entry, ok := p.schema.Lookup(name)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q (resolved from %s)", ErrUnknownClass, name, parentName)
	}

	switch e := entry.(type) {
	case *schema.ClassEntry:
		return e, name, nil
	case *schema.TypeIndexEntry:
		next, ok := e.ByTag[0]
		if !ok {
			return nil, "", fmt.Errorf("%w: %s tag 0", ErrUnknownTag, e.Name)
		}
		inner, ok := p.schema.Lookup(next)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q (resolved from %s)", ErrUnknownClass, next, e.Name)
		}
		c, ok := inner.(*schema.ClassEntry)
		if !ok {
			return nil, "", fmt.Errorf("decode: %q (resolved from %s) is not a class", next, e.Name)
		}
		return c, next, nil
	default:
		return nil, "", fmt.Errorf("decode: %q (resolved from %s) is not a class or type-index", name, parentName)
	}
}

func (p *Parser) parseEnum(e *schema.EnumEntry) (jsontree.Value, error) {
	tag, err := p.readDiscriminant(e.WidthBytes)
	if err != nil {
		return nil, fmt.Errorf("enum %s: %w", e.Name, err)
	}
	if label, ok := e.Labels[tag]; ok {
		return label, nil
	}
	return jsontree.EnumString(tag), nil
}

func (p *Parser) readDiscriminant(widthBytes int) (int64, error) {
	switch widthBytes {
	case 1:
		v, err := p.r.ReadUint8()
		return int64(v), err
	case 2:
		v, err := p.r.ReadUint16()
		return int64(v), err
	case 8:
		v, err := p.r.ReadUint64()
		return int64(v), err
	default:
		v, err := p.r.ReadUint32()
		return int64(v), err
	}
}
