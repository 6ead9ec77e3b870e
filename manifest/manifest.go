// Package manifest decodes the fixed-layout structures that locate and
// index the asset catalog: MiniAsset -> DesignIndex -> FileEntry ->
// DataEntry. Unlike the schema-driven decoder these shapes are static
// binary layouts, so this package reads them directly with encoding/binary
// rather than going through wire.Reader's varint cursor.
package manifest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrTruncated is returned when a manifest structure runs out of bytes
// before its fixed layout is satisfied. Manifest corruption is always
// fatal to the run, unlike a truncated data blob.
var ErrTruncated = errors.New("manifest: truncated")

// MiniAsset is the small header blob that names the DesignIndex by hash.
type MiniAsset struct {
	RevisionID      uint32
	DesignIndexHash [16]byte
}

// DesignIndexHashHex renders the hash the way file names reference it.
func (m MiniAsset) DesignIndexHashHex() string {
	return fmt.Sprintf("%x", m.DesignIndexHash)
}

// ParseMiniAsset reads a MiniAsset from r. The first 24 bytes are an
// unused header the reference format never documents.
func ParseMiniAsset(r io.Reader) (MiniAsset, error) {
	var skip [24]byte
	if _, err := io.ReadFull(r, skip[:]); err != nil {
		return MiniAsset{}, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}

	var revision uint32
	if err := binary.Read(r, binary.LittleEndian, &revision); err != nil {
		return MiniAsset{}, fmt.Errorf("%w: revision: %v", ErrTruncated, err)
	}

	hash, err := readHash16(r)
	if err != nil {
		return MiniAsset{}, fmt.Errorf("%w: design index hash: %v", ErrTruncated, err)
	}

	return MiniAsset{RevisionID: revision, DesignIndexHash: hash}, nil
}

// readHash16 reads the 16-byte asset hash: four 4-byte words, each
// byte-reversed, concatenated in stream order.
func readHash16(r io.Reader) ([16]byte, error) {
	var raw [16]byte
	var out [16]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return out, err
	}
	for word := 0; word < 4; word++ {
		for i := 0; i < 4; i++ {
			out[word*4+i] = raw[word*4+(3-i)]
		}
	}
	return out, nil
}

// DataEntry is a single data slice within a FileEntry's blob.
type DataEntry struct {
	NameHash int32
	Size     uint32
	Offset   uint32
}

func parseDataEntry(r io.Reader) (DataEntry, error) {
	var d DataEntry
	if err := binary.Read(r, binary.BigEndian, &d.NameHash); err != nil {
		return d, err
	}
	if err := binary.Read(r, binary.BigEndian, &d.Size); err != nil {
		return d, err
	}
	if err := binary.Read(r, binary.BigEndian, &d.Offset); err != nil {
		return d, err
	}
	return d, nil
}

// FileEntry names one downloadable blob and the DataEntry slices within it.
type FileEntry struct {
	NameHash      int32
	FileByteName  string // lowercase hex of the raw 16 name bytes
	Size          int64
	DataEntries   []DataEntry
	trailingByte  byte
}

func parseFileEntry(r io.Reader) (FileEntry, error) {
	var f FileEntry

	if err := binary.Read(r, binary.BigEndian, &f.NameHash); err != nil {
		return f, fmt.Errorf("%w: name hash: %v", ErrTruncated, err)
	}

	var nameBytes [16]byte
	if _, err := io.ReadFull(r, nameBytes[:]); err != nil {
		return f, fmt.Errorf("%w: file byte name: %v", ErrTruncated, err)
	}
	f.FileByteName = fmt.Sprintf("%x", nameBytes)

	if err := binary.Read(r, binary.BigEndian, &f.Size); err != nil {
		return f, fmt.Errorf("%w: size: %v", ErrTruncated, err)
	}

	var count int32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return f, fmt.Errorf("%w: data count: %v", ErrTruncated, err)
	}

	f.DataEntries = make([]DataEntry, count)
	for i := range f.DataEntries {
		d, err := parseDataEntry(r)
		if err != nil {
			return f, fmt.Errorf("%w: data entry %d: %v", ErrTruncated, i, err)
		}
		f.DataEntries[i] = d
	}

	var trailing [1]byte
	if _, err := io.ReadFull(r, trailing[:]); err != nil {
		return f, fmt.Errorf("%w: trailing byte: %v", ErrTruncated, err)
	}
	f.trailingByte = trailing[0]

	return f, nil
}

// DesignIndex is the top-level file list that names every design-data
// blob to download.
type DesignIndex struct {
	UnkI64           int64
	FileCount        int32
	DesignDataCount  int32
	FileList         []FileEntry
}

// ParseDesignIndex reads a DesignIndex from r.
func ParseDesignIndex(r io.Reader) (DesignIndex, error) {
	var d DesignIndex

	if err := binary.Read(r, binary.BigEndian, &d.UnkI64); err != nil {
		return d, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if err := binary.Read(r, binary.BigEndian, &d.FileCount); err != nil {
		return d, fmt.Errorf("%w: file count: %v", ErrTruncated, err)
	}
	if err := binary.Read(r, binary.BigEndian, &d.DesignDataCount); err != nil {
		return d, fmt.Errorf("%w: design data count: %v", ErrTruncated, err)
	}

	d.FileList = make([]FileEntry, d.FileCount)
	for i := range d.FileList {
		fe, err := parseFileEntry(r)
		if err != nil {
			return d, fmt.Errorf("%w: file entry %d: %v", ErrTruncated, i, err)
		}
		d.FileList[i] = fe
	}

	return d, nil
}
