package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// DefaultExt is used when a font URL path has no extension.
const DefaultExt = ".font"

// Fetcher downloads the body of u into dest. It is satisfied by *gfonts.Client.
type Fetcher interface {
	Download(ctx context.Context, u, dest string) (int64, error)
}

// Result maps each font URL to its local path and counts the work done.
type Result struct {
	Paths   map[string]string // url -> local file path
	Fetched int               // files downloaded during this call
	Cached  int               // files already present on disk
	Bytes   int64             // bytes downloaded
}

// Downloader mirrors font files into a single directory, naming each file by
// a hash of its URL. A file that already exists under the expected name is
// never fetched again.
type Downloader struct {
	fetcher Fetcher
	dir     string
	logger  *slog.Logger
}

// New returns a Downloader writing into dir. A nil logger discards output.
func New(fetcher Fetcher, dir string, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Downloader{fetcher: fetcher, dir: dir, logger: logger}
}

// Dir returns the target directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Download creates the target directory if needed and mirrors urls into it.
// The first failure stops the loop and is returned.
func (d *Downloader) Download(ctx context.Context, urls []string) (*Result, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", d.dir, err)
	}

	result := &Result{Paths: make(map[string]string, len(urls))}
	for _, u := range urls {
		if _, done := result.Paths[u]; done {
			continue
		}

		dest := filepath.Join(d.dir, FileName(u))

		exists, err := fileExists(dest)
		if err != nil {
			return result, err
		}
		if exists {
			d.logger.Debug("font already mirrored", "url", u, "path", dest)
			result.Cached++
		} else {
			d.logger.Debug("downloading font", "url", u, "path", dest)
			n, err := d.fetcher.Download(ctx, u, dest)
			if err != nil {
				return result, fmt.Errorf("download %s: %w", u, err)
			}
			result.Fetched++
			result.Bytes += n
		}

		result.Paths[u] = dest
	}
	return result, nil
}

// FileName returns the mirrored file name for a font URL: the first 16 hex
// characters of the URL's SHA-256 followed by the URL path's extension.
func FileName(u string) string {
	sum := sha256.Sum256([]byte(u))
	return hex.EncodeToString(sum[:])[:16] + extension(u)
}

func extension(u string) string {
	var p string
	if parsed, err := url.Parse(u); err == nil {
		p = parsed.Path
	}
	if ext := path.Ext(p); ext != "" {
		return ext
	}
	return DefaultExt
}

func fileExists(name string) (bool, error) {
	_, err := os.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
