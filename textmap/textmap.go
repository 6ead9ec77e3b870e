// Package textmap decodes the localized string tables: a flat array of
// rows, each carrying an optional ID, an optional text string, and an
// optional has-param flag behind a 3-bit presence header.
package textmap

import (
	"strconv"

	"github.com/kardessa/gcparse/catalog"
	"github.com/kardessa/gcparse/wire"
)

// Path is one of the 28 known textmap blobs, named by output file and the
// asset-catalog hash of its source path.
type Path struct {
	OutputName string
	Hash       int32
}

// Paths is ported verbatim from the reference tool's TEXTMAP_PATHS table.
var Paths = buildPaths()

func buildPaths() []Path {
	names := []string{"en", "cn", "kr", "jp", "id", "chs", "cht", "de", "es", "fr", "ru", "th", "vi", "pt"}
	labels := []string{"EN", "CN", "KR", "JP", "ID", "CHS", "CHT", "DE", "ES", "FR", "RU", "TH", "VI", "PT"}

	paths := make([]Path, 0, len(names)*2)
	for i, n := range names {
		paths = append(paths, Path{
			OutputName: "TextMap" + labels[i] + ".json",
			Hash:       catalog.Hash32("BakedConfig/ExcelOutput/Textmap_" + n + ".bytes"),
		})
	}
	for i, n := range names {
		paths = append(paths, Path{
			OutputName: "TextMapMain" + labels[i] + ".json",
			Hash:       catalog.Hash32("BakedConfig/ExcelOutput/TextmapMain_" + n + ".bytes"),
		})
	}
	return paths
}

// ID identifies a row's source text out of band.
type ID struct {
	Hash   int32  `json:"Hash"`
	Hash64 uint64 `json:"Hash64"`
}

// Row is one decoded textmap entry.
type Row struct {
	ID       *ID    `json:"ID"`
	Text     string `json:"Text"`
	HasParam bool   `json:"HasParam"`
}

// DecodeAll decodes every row in data. A single leading zero byte is
// skipped if present, matching the reference format's padding convention.
func DecodeAll(data []byte) ([]Row, error) {
	if len(data) > 0 && data[0] == 0 {
		data = data[1:]
	}

	r := wire.NewReader(data)

	count, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, count)
	for i := uint64(0); i < count; i++ {
		row, err := decodeRow(&r)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(r *wire.Reader) (Row, error) {
	flags, err := wire.ReadPresenceSet(r, 3)
	if err != nil {
		return Row{}, err
	}

	var row Row
	if flags.Exists(0) {
		hash, err := r.ReadInt32()
		if err != nil {
			return Row{}, err
		}
		hash64, err := r.ReadUint64()
		if err != nil {
			return Row{}, err
		}
		row.ID = &ID{Hash: hash, Hash64: hash64}
	}
	if flags.Exists(1) {
		text, err := r.ReadString()
		if err != nil {
			return Row{}, err
		}
		row.Text = text
	}
	if flags.Exists(2) {
		hp, err := r.ReadBool()
		if err != nil {
			return Row{}, err
		}
		row.HasParam = hp
	}
	return row, nil
}

// ToMinimalMap reduces rows to {ID.Hash -> Text}, the "minimal" output
// mode; rows with no ID use the key "0".
func ToMinimalMap(rows []Row) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		key := "0"
		if row.ID != nil {
			key = strconv.FormatInt(int64(row.ID.Hash), 10)
		}
		out[key] = row.Text
	}
	return out
}
