package wire

import "testing"

func TestPresenceSet(t *testing.T) {
	// fieldCount=3 fits in one u64 word; varint-encoded word value 0b101 = 5.
	r := NewReader([]byte{5})
	flags, err := ReadPresenceSet(&r, 3)
	if err != nil {
		t.Fatalf("ReadPresenceSet: %v", err)
	}

	if !flags.Exists(0) {
		t.Error("field 0 should be present")
	}
	if flags.Exists(1) {
		t.Error("field 1 should be absent")
	}
	if !flags.Exists(2) {
		t.Error("field 2 should be present")
	}
}

func TestPresenceSetOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range field index")
		}
	}()
	r := NewReader([]byte{0})
	flags, _ := ReadPresenceSet(&r, 3)
	flags.Exists(10)
}
