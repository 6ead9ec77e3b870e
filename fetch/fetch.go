// Package fetch resolves the manifest chain and the asset catalog it
// names, downloading over HTTP or reading from a local directory, with a
// bounded worker pool and per-file retry.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kardessa/gcparse/catalog"
	"github.com/kardessa/gcparse/manifest"
)

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	windowsPath  = "client/Windows"
	miniAssetURL = "M_DesignV.bytes"
)

// configManifestHash is the asset hash for BakedConfig/ConfigManifest.json,
// which is kept whole rather than sliced by DataEntry offsets because it is
// itself a JSON document, not a further-packed container.
var configManifestHash = catalog.Hash32("BakedConfig/ConfigManifest.json")

// Source is an HTTP base URL or a local directory path.
type Source struct {
	base     string
	isRemote bool
	client   *http.Client
}

// NewSource classifies base as remote (http/https) or local.
func NewSource(base string) Source {
	return Source{
		base:     strings.TrimSuffix(base, "/"),
		isRemote: strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://"),
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// SaveBytesDir, when non-empty, mirrors every downloaded blob to disk under
// <dir>/DesignData/<name>.
type Options struct {
	SaveBytesDir string
	WorkerLimit  int
}

// Resolve walks MiniAsset -> DesignIndex -> FileEntry/DataEntry and returns
// the fully resolved catalog. Manifest fetch/parse failures are fatal;
// individual design-data file fetch failures are logged and skipped.
func Resolve(ctx context.Context, src Source, opts Options, logf func(string, ...any)) (*catalog.Catalog, error) {
	miniBytes, err := src.fetchWithRetry(ctx, miniAssetURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: mini asset: %w", err)
	}
	src.maybeSave(opts.SaveBytesDir, miniAssetURL, miniBytes)

	mini, err := manifest.ParseMiniAsset(newByteReader(miniBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: parse mini asset: %w", err)
	}

	designName := fmt.Sprintf("DesignV_%s.bytes", mini.DesignIndexHashHex())
	designBytes, err := src.fetchWithRetry(ctx, designName)
	if err != nil {
		return nil, fmt.Errorf("fetch: design index: %w", err)
	}
	src.maybeSave(opts.SaveBytesDir, designName, designBytes)

	designIndex, err := manifest.ParseDesignIndex(newByteReader(designBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: parse design index: %w", err)
	}

	byHash := make(map[int32][]byte)
	var mu sync.Mutex

	limit := opts.WorkerLimit
	if limit <= 0 {
		limit = 8
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, fe := range designIndex.FileList {
		fe := fe
		g.Go(func() error {
			blobName := fe.FileByteName + ".bytes"
			data, err := src.fetchWithRetry(gctx, blobName)
			if err != nil {
				if logf != nil {
					logf("skip %s: %v", blobName, err)
				}
				return nil
			}
			src.maybeSave(opts.SaveBytesDir, blobName, data)

			mu.Lock()
			defer mu.Unlock()

			if fe.NameHash == configManifestHash {
				byHash[fe.NameHash] = data
				return nil
			}

			for _, de := range fe.DataEntries {
				end := de.Offset + de.Size
				if uint64(end) > uint64(len(data)) {
					if logf != nil {
						logf("skip %s entry %d: slice out of bounds", blobName, de.NameHash)
					}
					continue
				}
				byHash[de.NameHash] = data[de.Offset:end]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch: resolving design data: %w", err)
	}

	return catalog.New(byHash), nil
}

func (s Source) fetchWithRetry(ctx context.Context, name string) ([]byte, error) {
	if !s.isRemote {
		return os.ReadFile(filepath.Join(s.base, name))
	}

	url := path.Join(s.base, windowsPath, name)
	// path.Join collapses "://" to ":/"; repair it.
	url = strings.Replace(url, ":/", "://", 1)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		data, err := s.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if attempt < maxRetries {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

func (s Source) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s for %s", resp.Status, url)
	}

	return io.ReadAll(resp.Body)
}

func (s Source) maybeSave(dir, name string, data []byte) {
	if dir == "" {
		return
	}
	out := filepath.Join(dir, "DesignData")
	if err := os.MkdirAll(out, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(out, name), data, 0o644)
}

func newByteReader(b []byte) *byteReader {
	return &byteReader{b: b}
}

// byteReader is a minimal io.Reader over a byte slice, used instead of
// bytes.Reader only to keep the manifest package's io.Reader dependency
// free of any extra surface (Seek, etc.) it doesn't need.
type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}
