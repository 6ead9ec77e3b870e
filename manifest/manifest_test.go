package manifest

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"testing"
)

func TestParseMiniAsset(t *testing.T) {
	data := []byte{
		83, 82, 77, 73, 0, 3, 0, 1, 66, 0, 0, 0, 0, 0, 12, 0, 3, 0, 0, 0, 2, 0, 0, 0, 234, 255,
		151, 0, 202, 110, 28, 223, 138, 63, 212, 4, 63, 130, 138, 178, 68, 22, 219, 131, 234,
		55, 0, 0, 0, 0, 0, 0, 210, 249, 237, 103, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	got, err := ParseMiniAsset(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseMiniAsset: %v", err)
	}

	if want := "df1c6eca04d43f8ab28a823f83db1644"; got.DesignIndexHashHex() != want {
		t.Errorf("DesignIndexHashHex() = %q, want %q", got.DesignIndexHashHex(), want)
	}
}

// buildDesignIndex assembles a minimal DesignIndex blob with one FileEntry
// and one DataEntry, matching the wire shapes documented in SPEC_FULL.md
// §4.8: big-endian header fields, a 16-byte hex file name, and a trailing
// unknown byte per FileEntry.
func buildDesignIndex(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)

	write := func(v any) {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	write(int64(0))           // UnkI64
	write(int32(1))           // FileCount
	write(int32(100102))      // DesignDataCount

	write(int32(-1703948225)) // FileEntry.NameHash
	nameBytes, err := hex.DecodeString("7e3fc08e24890ba15f9c3a8ec1454025")
	if err != nil {
		t.Fatalf("decode name bytes: %v", err)
	}
	buf.Write(nameBytes) // FileEntry.FileByteName raw bytes
	write(int64(89899))       // FileEntry.Size
	write(int32(1))           // FileEntry.DataCount

	write(int32(-1703948225)) // DataEntry.NameHash
	write(uint32(89899))      // DataEntry.Size
	write(uint32(0))          // DataEntry.Offset

	write(uint8(0)) // FileEntry trailing byte

	return buf.Bytes()
}

func TestParseDesignIndex(t *testing.T) {
	data := buildDesignIndex(t)

	got, err := ParseDesignIndex(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseDesignIndex: %v", err)
	}

	if got.FileCount != 1 {
		t.Errorf("FileCount = %d, want 1", got.FileCount)
	}
	if got.DesignDataCount != 100102 {
		t.Errorf("DesignDataCount = %d, want 100102", got.DesignDataCount)
	}
	if len(got.FileList) != 1 {
		t.Fatalf("len(FileList) = %d, want 1", len(got.FileList))
	}

	fe := got.FileList[0]
	if fe.NameHash != -1703948225 {
		t.Errorf("FileEntry.NameHash = %d, want -1703948225", fe.NameHash)
	}
	if fe.FileByteName != "7e3fc08e24890ba15f9c3a8ec1454025" {
		t.Errorf("FileEntry.FileByteName = %q, want 7e3fc08e24890ba15f9c3a8ec1454025", fe.FileByteName)
	}
	if fe.Size != 89899 {
		t.Errorf("FileEntry.Size = %d, want 89899", fe.Size)
	}
	if len(fe.DataEntries) != 1 {
		t.Fatalf("len(DataEntries) = %d, want 1", len(fe.DataEntries))
	}
	if fe.DataEntries[0].Offset != 0 {
		t.Errorf("DataEntry.Offset = %d, want 0", fe.DataEntries[0].Offset)
	}
}
