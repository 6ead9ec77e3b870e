package batch

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kardessa/gcparse/catalog"
	"github.com/kardessa/gcparse/schema"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func testSchema(t *testing.T) *schema.Set {
	t.Helper()
	data := []byte(`[
		{"kind":"class","name":"Demo.Item","fields":[
			{"name":"ID","kind":{"tag":"primitive","name":"Int32"}}
		]}
	]`)
	set, err := schema.Parse(data)
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}
	return set
}

func TestRunExcelsWritesJSON(t *testing.T) {
	path := "BakedConfig/ExcelOutput/Demo_Item.bytes"

	// One array element: presence word 0b1 (ID present), ID = zigzag(3) = 6.
	blob := []byte{1, 0b1, 6}

	cat := catalog.New(map[int32][]byte{
		catalog.Hash32(path): blob,
	})

	outDir := t.TempDir()
	d := New(cat, testSchema(t), outDir, discardLogger())

	err := d.RunExcels(map[string][]string{
		"Demo.Item": {path},
	})
	if err != nil {
		t.Fatalf("RunExcels: %v", err)
	}

	excels, _, _ := d.Counts()
	if excels != 1 {
		t.Errorf("excels count = %d, want 1", excels)
	}

	outFile := filepath.Join(outDir, "ExcelOutput", "Demo_Item.json")
	b, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(got) != 1 || got[0]["ID"] != float64(3) {
		t.Errorf("decoded output = %v, want [{ID:3}]", got)
	}
}

func TestRunExcelsSkipsMissingBlobs(t *testing.T) {
	cat := catalog.New(nil)
	outDir := t.TempDir()
	d := New(cat, testSchema(t), outDir, discardLogger())

	if err := d.RunExcels(map[string][]string{
		"Demo.Item": {"BakedConfig/ExcelOutput/Missing.bytes"},
	}); err != nil {
		t.Fatalf("RunExcels: %v", err)
	}

	excels, _, _ := d.Counts()
	if excels != 0 {
		t.Errorf("excels count = %d, want 0 for a missing blob", excels)
	}
}

func TestRunTextmapMinimal(t *testing.T) {
	path := "BakedConfig/ExcelOutput/Textmap_en.bytes"

	// One row: presence 0b010 (text only), varint length 2, "ok".
	blob := append([]byte{1, 0b010, 2}, []byte("ok")...)

	cat := catalog.New(map[int32][]byte{
		catalog.Hash32(path): blob,
	})

	outDir := t.TempDir()
	d := New(cat, testSchema(t), outDir, discardLogger())

	if err := d.RunTextmap(true); err != nil {
		t.Fatalf("RunTextmap: %v", err)
	}

	_, _, textmaps := d.Counts()
	if textmaps != 1 {
		t.Errorf("textmaps count = %d, want 1", textmaps)
	}

	out := filepath.Join(outDir, "TextMap", "TextMapEN.json")
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if got["0"] != "ok" {
		t.Errorf(`got["0"] = %q, want "ok"`, got["0"])
	}
}

func TestRunConfigsSkipsWhenManifestMissing(t *testing.T) {
	cat := catalog.New(nil)
	outDir := t.TempDir()
	d := New(cat, testSchema(t), outDir, discardLogger())

	if err := d.RunConfigs(nil); err != nil {
		t.Fatalf("RunConfigs: %v", err)
	}

	if _, _, configs := d.Counts(); configs != 0 {
		t.Errorf("configs count = %d, want 0", configs)
	}
}
