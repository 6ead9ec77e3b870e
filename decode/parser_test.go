package decode

import (
	"testing"

	"github.com/kardessa/gcparse/jsontree"
	"github.com/kardessa/gcparse/schema"
)

func testSet(t *testing.T) *schema.Set {
	t.Helper()
	data := []byte(`[
		{"kind":"class","name":"Demo.Point","fields":[
			{"name":"X","kind":{"tag":"primitive","name":"Int32"}},
			{"name":"Y","kind":{"tag":"primitive","name":"Int32"}}
		]}
	]`)
	set, err := schema.Parse(data)
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}
	return set
}

func TestParseSoftEOF(t *testing.T) {
	set := testSet(t)
	p := NewParser(set, nil)

	v, err := p.Parse(schema.ValueKind{Tag: schema.KindClass, Name: "Demo.Point"}, false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	obj, ok := v.(*jsontree.Object)
	if !ok {
		t.Fatalf("expected *jsontree.Object, got %T", v)
	}
	if obj.Len() != 0 {
		t.Errorf("soft-EOF class should decode to an empty object, got %d fields", obj.Len())
	}
}

func TestParseClassWithPresence(t *testing.T) {
	set := testSet(t)

	// presence word = 0b01 (only X present), X = zigzag(5) -> 10 (0x0A)
	data := []byte{0b01, 10}
	p := NewParser(set, data)

	v, err := p.Parse(schema.ValueKind{Tag: schema.KindClass, Name: "Demo.Point"}, false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	obj := v.(*jsontree.Object)

	x, ok := obj.Get("X")
	if !ok || x != int64(5) {
		t.Errorf("X = %v (ok=%v), want 5", x, ok)
	}
	if _, ok := obj.Get("Y"); ok {
		t.Error("Y should be omitted entirely when its presence bit is unset")
	}
}

func TestParseArrayLengthGuard(t *testing.T) {
	set := testSet(t)
	// varint length far beyond MaxCollectionLength: 0xFFFFFFFF encoded.
	data := []byte{0xff, 0xff, 0xff, 0xff, 0x0f}
	p := NewParser(set, data)

	kind := schema.ValueKind{Tag: schema.KindArray, Elem: &schema.ValueKind{Tag: schema.KindPrimitive, Name: "Int32"}}
	if _, err := p.Parse(kind, false); err == nil {
		t.Error("expected allocation-too-large error")
	}
}

func TestParseTypeIndexCollapsesNestedTypeIndex(t *testing.T) {
	// A -> TypeIndex resolving tag 0 to B, itself a TypeIndex whose tag 0
	// resolves to the concrete class C. Parsing A must read only A's
	// discriminant from the wire and land directly on C's fields, with
	// $type reporting "Demo.C".
	data := []byte(`[
		{"kind":"typeindex","name":"Demo.A","widthBytes":1,"tags":{"0":"Demo.B"}},
		{"kind":"typeindex","name":"Demo.B","widthBytes":1,"tags":{"0":"Demo.C"}},
		{"kind":"class","name":"Demo.C","fields":[
			{"name":"Z","kind":{"tag":"primitive","name":"Int32"}}
		]}
	]`)
	set, err := schema.Parse(data)
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}

	// discriminant byte 0, presence word 0b1, Z = zigzag(7) -> 14
	buf := []byte{0, 0b1, 14}
	p := NewParser(set, buf)

	v, err := p.Parse(schema.ValueKind{Tag: schema.KindClass, Name: "Demo.A"}, true)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	obj := v.(*jsontree.Object)

	if got, _ := obj.Get("$type"); got != "Demo.C" {
		t.Errorf("$type = %v, want Demo.C", got)
	}
	if got, _ := obj.Get("Z"); got != int64(7) {
		t.Errorf("Z = %v, want 7", got)
	}
}

func TestDecodeFixPoint(t *testing.T) {
	// zigzag(4294967296) == 2^32 -> FixPoint value 1.0
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x20}
	set := testSet(t)
	p := NewParser(set, data)

	v, err := decodeFixPoint(p)
	if err != nil {
		t.Fatalf("decodeFixPoint: %v", err)
	}
	obj, ok := v.(*jsontree.Object)
	if !ok {
		t.Fatalf("expected *jsontree.Object, got %T", v)
	}
	raw, ok := obj.Get("Value")
	if !ok {
		t.Fatalf("expected a Value field, got %+v", obj)
	}
	f, ok := raw.(float64)
	if !ok {
		t.Fatalf("Value field = %v, want float64", raw)
	}
	if f < 0.999 || f > 1.001 {
		t.Errorf("decodeFixPoint().Value = %v, want ~1.0", f)
	}
}

func TestDecodeDynamicValueString(t *testing.T) {
	// tag=5 (string), zigzag-encoded as 10; length 3 (plain varint), "abc"
	data := []byte{10, 3, 'a', 'b', 'c'}
	set := testSet(t)
	p := NewParser(set, data)

	v, err := decodeDynamicValue(p)
	if err != nil {
		t.Fatalf("decodeDynamicValue: %v", err)
	}
	obj, ok := v.(*jsontree.Object)
	if !ok {
		t.Fatalf("expected *jsontree.Object, got %T", v)
	}
	if got, _ := obj.Get("Type"); got != "String" {
		t.Errorf("Type = %v, want String", got)
	}
	if got, _ := obj.Get("Value"); got != "abc" {
		t.Errorf("Value = %v, want abc", got)
	}
}

func TestDecodeReadInfoObfuscatedFields(t *testing.T) {
	// raw-byte bool gate (1 = present), string "hi" (varint length 2),
	// v17 = zigzag(2) = 4.
	data := []byte{1, 2, 'h', 'i', 4}
	set := testSet(t)
	p := NewParser(set, data)

	v, err := decodeReadInfo(p)
	if err != nil {
		t.Fatalf("decodeReadInfo: %v", err)
	}
	obj := v.(*jsontree.Object)
	if got, _ := obj.Get("AKFKONMJCEC"); got != "hi" {
		t.Errorf("AKFKONMJCEC = %v, want hi", got)
	}
	if got, _ := obj.Get("EGMAFIOOKJJ"); got != int64(2) {
		t.Errorf("EGMAFIOOKJJ = %v, want 2", got)
	}
}

func TestDecodeReadInfoAbsentIsNull(t *testing.T) {
	data := []byte{0}
	set := testSet(t)
	p := NewParser(set, data)

	v, err := decodeReadInfo(p)
	if err != nil {
		t.Fatalf("decodeReadInfo: %v", err)
	}
	if v != nil {
		t.Errorf("decodeReadInfo() = %v, want nil for absent gate", v)
	}
}
