package schema

import "testing"

func TestParseClass(t *testing.T) {
	data := []byte(`[
		{"kind":"class","name":"Demo.Point","fields":[
			{"name":"X","kind":{"tag":"primitive","name":"Int32"}},
			{"name":"Y","kind":{"tag":"primitive","name":"Int32"}}
		]}
	]`)
	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	c, ok := set.Class("Demo.Point")
	if !ok {
		t.Fatal("expected Demo.Point to be a ClassEntry")
	}
	if len(c.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(c.Fields))
	}
	if c.Fields[0].Name != "X" || c.Fields[0].Kind.Tag != KindPrimitive {
		t.Errorf("Fields[0] = %+v, want primitive X", c.Fields[0])
	}
}

func TestParseStructHasNoPresenceSemantics(t *testing.T) {
	data := []byte(`[
		{"kind":"struct","name":"Demo.Vec2","fields":[
			{"name":"X","kind":{"tag":"primitive","name":"Float32"}}
		]}
	]`)
	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	e, ok := set.Lookup("Demo.Vec2")
	if !ok {
		t.Fatal("expected Demo.Vec2 entry")
	}
	if _, ok := e.(*StructEntry); !ok {
		t.Fatalf("expected *StructEntry, got %T", e)
	}
}

func TestParseTypeIndex(t *testing.T) {
	data := []byte(`[
		{"kind":"typeindex","name":"Demo.Shape","widthBytes":1,"tags":{
			"0":"Demo.Circle",
			"1":"Demo.Square"
		}}
	]`)
	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	e, ok := set.Lookup("Demo.Shape")
	if !ok {
		t.Fatal("expected Demo.Shape entry")
	}
	ti, ok := e.(*TypeIndexEntry)
	if !ok {
		t.Fatalf("expected *TypeIndexEntry, got %T", e)
	}
	if ti.WidthBytes != 1 {
		t.Errorf("WidthBytes = %d, want 1", ti.WidthBytes)
	}
	if ti.ByTag[0] != "Demo.Circle" || ti.ByTag[1] != "Demo.Square" {
		t.Errorf("ByTag = %v", ti.ByTag)
	}
}

func TestParseEnumDefaultsWidthTo4(t *testing.T) {
	data := []byte(`[
		{"kind":"enum","name":"Demo.Color","labels":{"0":"Red","1":"Blue"}}
	]`)
	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	e, _ := set.Lookup("Demo.Color")
	en, ok := e.(*EnumEntry)
	if !ok {
		t.Fatalf("expected *EnumEntry, got %T", e)
	}
	if en.WidthBytes != 4 {
		t.Errorf("WidthBytes = %d, want default 4", en.WidthBytes)
	}
	if en.Labels[1] != "Blue" {
		t.Errorf("Labels[1] = %q, want Blue", en.Labels[1])
	}
}

func TestParseNestedArrayAndDictionaryKinds(t *testing.T) {
	data := []byte(`[
		{"kind":"class","name":"Demo.Bag","fields":[
			{"name":"Items","kind":{"tag":"array","elem":{"tag":"primitive","name":"Int32"}}},
			{"name":"Index","kind":{"tag":"dictionary","key":{"tag":"primitive","name":"String"},"elem":{"tag":"primitive","name":"Int32"}}}
		]}
	]`)
	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	c, _ := set.Class("Demo.Bag")
	items := c.Fields[0].Kind
	if items.Tag != KindArray || items.Elem == nil || items.Elem.Name != "Int32" {
		t.Errorf("Items kind = %+v", items)
	}
	index := c.Fields[1].Kind
	if index.Tag != KindDictionary || index.Key == nil || index.Key.Name != "String" || index.Elem == nil || index.Elem.Name != "Int32" {
		t.Errorf("Index kind = %+v", index)
	}
}

func TestParseUnknownKindErrors(t *testing.T) {
	data := []byte(`[{"kind":"bogus","name":"Demo.Nope"}]`)
	if _, err := Parse(data); err == nil {
		t.Error("expected error for unknown entry kind")
	}
}

func TestParseBadTagErrors(t *testing.T) {
	data := []byte(`[{"kind":"typeindex","name":"Demo.Bad","tags":{"not-a-number":"Demo.X"}}]`)
	if _, err := Parse(data); err == nil {
		t.Error("expected error for non-numeric typeindex tag")
	}
}
