// Package batch dispatches resolved catalog blobs to the decode and
// textmap packages, writes JSON output, and keeps the run's summary
// counters. Each blob decode runs behind a panic-recovering wrapper so one
// corrupt blob never aborts the rest of the batch.
package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/kardessa/gcparse/catalog"
	"github.com/kardessa/gcparse/decode"
	"github.com/kardessa/gcparse/schema"
	"github.com/kardessa/gcparse/textmap"
)

// Driver walks a resolved catalog against a schema.Set, producing JSON
// output under OutDir. It is safe for the Run* methods to be called
// sequentially on the same Driver; each owns its own counter.
type Driver struct {
	Catalog *catalog.Catalog
	Schema  *schema.Set
	OutDir  string
	Log     *slog.Logger

	excels   atomic.Int64
	configs  atomic.Int64
	textmaps atomic.Int64
}

// New creates a Driver. log may be nil, in which case slog.Default is used.
func New(cat *catalog.Catalog, set *schema.Set, outDir string, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{Catalog: cat, Schema: set, OutDir: outDir, Log: log}
}

// Counts returns the running totals of decoded excels, configs, and textmaps.
func (d *Driver) Counts() (excels, configs, textmaps int64) {
	return d.excels.Load(), d.configs.Load(), d.textmaps.Load()
}

// safeParse runs fn and converts any panic into an error, so a single
// malformed blob never aborts the surrounding batch.
func safeParse(label string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic decoding %s: %v", label, r)
		}
	}()
	return fn()
}

// skipLeadingZero strips a single leading zero byte some blobs carry as
// padding ahead of their real payload.
func skipLeadingZero(b []byte) []byte {
	if len(b) > 0 && b[0] == 0 {
		return b[1:]
	}
	return b
}

// RunExcels decodes every path in excelPaths (type name -> source paths)
// and writes <OutDir>/ExcelOutput/<file>.json. Paths whose output file
// would start with "Textmap" are skipped here; RunTextmap owns those.
func (d *Driver) RunExcels(excelPaths map[string][]string) error {
	outDir := filepath.Join(d.OutDir, "ExcelOutput")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("batch: create ExcelOutput: %w", err)
	}

	g := new(errgroup.Group)
	g.SetLimit(8)

	for typeName, paths := range excelPaths {
		typeName, paths := typeName, paths
		kind := schema.ValueKind{Tag: schema.KindArray, Elem: &schema.ValueKind{Tag: schema.KindClass, Name: typeName}}

		g.Go(func() error {
			for _, path := range paths {
				fileName := strings.Replace(filepath.Base(path), ".bytes", ".json", 1)
				if strings.HasPrefix(fileName, "Textmap") {
					continue
				}

				data, ok := d.Catalog.LookupHash(catalog.Hash32(path))
				if !ok {
					continue
				}
				data = skipLeadingZero(data)

				err := safeParse(path, func() error {
					parser := decode.NewParser(d.Schema, data)
					value, err := parser.Parse(kind, false)
					if err != nil {
						return err
					}
					return writeJSON(filepath.Join(outDir, fileName), value)
				})
				if err != nil {
					d.Log.Error("excel decode failed", "path", path, "type", typeName, "error", err)
					continue
				}
				d.excels.Add(1)
			}
			return nil
		})
	}

	return g.Wait()
}

// RunTextmap decodes all known textmap blobs present in the catalog.
func (d *Driver) RunTextmap(minimal bool) error {
	outDir := filepath.Join(d.OutDir, "TextMap")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("batch: create TextMap: %w", err)
	}

	for _, tp := range textmap.Paths {
		data, ok := d.Catalog.LookupHash(tp.Hash)
		if !ok {
			continue
		}

		err := safeParse(tp.OutputName, func() error {
			rows, err := textmap.DecodeAll(data)
			if err != nil {
				return err
			}

			out := filepath.Join(outDir, tp.OutputName)
			if minimal {
				return writeJSON(out, textmap.ToMinimalMap(rows))
			}
			return writeJSON(out, rows)
		})
		if err != nil {
			d.Log.Error("textmap decode failed", "path", tp.OutputName, "error", err)
			continue
		}
		d.textmaps.Add(1)
	}

	return nil
}

// RunConfigs resolves and decodes the config-manifest-driven groups (see
// the config_*.go files in this package), then decodes any caller-supplied
// additional type->paths map the same way RunExcels does.
func (d *Driver) RunConfigs(additionalPaths map[string][]string) error {
	outDir := filepath.Join(d.OutDir, "Config")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("batch: create Config: %w", err)
	}

	manifestData, ok := d.Catalog.LookupHash(catalog.Hash32("BakedConfig/ConfigManifest.json"))
	if !ok {
		d.Log.Warn("config manifest not present in catalog; skipping manifest-driven config groups")
	} else {
		manifest, err := parseConfigManifest(manifestData)
		if err != nil {
			d.Log.Error("failed to parse config manifest", "error", err)
		} else {
			for _, group := range configGroups(d, manifest, outDir) {
				if err := group(); err != nil {
					d.Log.Error("config group failed", "error", err)
				}
			}
		}
	}

	for typeName, paths := range additionalPaths {
		for _, path := range paths {
			data, ok := d.Catalog.LookupHash(catalog.Hash32(path))
			if !ok {
				continue
			}
			data = skipLeadingZero(data)

			kind := schema.ValueKind{Tag: schema.KindClass, Name: typeName}
			err := safeParse(path, func() error {
				parser := decode.NewParser(d.Schema, data)
				value, err := parser.Parse(kind, false)
				if err != nil {
					return err
				}
				fileName := strings.Replace(filepath.Base(path), ".bytes", ".json", 1)
				return writeJSON(filepath.Join(outDir, fileName), value)
			})
			if err != nil {
				d.Log.Error("additional config decode failed", "path", path, "error", err)
				continue
			}
			d.configs.Add(1)
		}
	}

	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
