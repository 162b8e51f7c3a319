package fontmirror

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Darkflib/font-mirror/pkg/cssurl"
	"github.com/Darkflib/font-mirror/pkg/downloader"
	"github.com/Darkflib/font-mirror/pkg/gfonts"

	"github.com/natefinch/atomic"
)

// Version is the release version reported by the CLI.
const Version = "1.0.0"

// DefaultOutputDir is the output base directory used when Options.OutputDir is empty.
const DefaultOutputDir = "google_fonts_proxy"

// Options configures a mirroring run.
type Options struct {
	Queries     []string      // font queries, e.g. "Roboto:wght@400;700"
	OutputDir   string        // base directory, css/ and fonts/ are created inside
	CSSURL      string        // stylesheet endpoint, default gfonts.DefaultCSSURL
	FontBaseURL string        // prefix of font file URLs to mirror, default gfonts.DefaultFontBaseURL
	UserAgent   string        // User-Agent for stylesheet requests, default gfonts.DefaultUserAgent
	Timeout     time.Duration // per-request timeout, 0 = none
	HTTPClient  *http.Client  // optional, overrides the pooled default client
	Logger      *slog.Logger  // nil = no logging
}

// QueryResult describes the outcome for one font query.
type QueryResult struct {
	Query   string
	CSSPath string
	URLs    int // distinct font URLs in the stylesheet
	Fetched int
	Cached  int
	Bytes   int64
}

// Result contains the outcome of a run.
type Result struct {
	CSSDir   string
	FontsDir string
	Queries  []QueryResult
}

// Totals sums downloaded and already-present font files across all queries.
func (r *Result) Totals() (fetched, cached int) {
	for _, q := range r.Queries {
		fetched += q.Fetched
		cached += q.Cached
	}
	return fetched, cached
}

// Run mirrors every query in opts.Queries, one after the other. The first
// failure aborts the run; files written for earlier queries are left in place.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Queries) == 0 {
		return nil, configError("", ErrNoQueries)
	}

	// Apply defaults.
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.FontBaseURL == "" {
		opts.FontBaseURL = gfonts.DefaultFontBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	result := &Result{
		CSSDir:   filepath.Join(opts.OutputDir, "css"),
		FontsDir: filepath.Join(opts.OutputDir, "fonts"),
	}
	for _, dir := range []string{result.CSSDir, result.FontsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, filesystemError("create output directory", err)
		}
	}

	clientOpts := []gfonts.Option{
		gfonts.WithCSSURL(opts.CSSURL),
		gfonts.WithUserAgent(opts.UserAgent),
		gfonts.WithHTTPClient(opts.HTTPClient),
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, gfonts.WithTimeout(opts.Timeout))
	}
	client := gfonts.NewClient(clientOpts...)
	extractor := cssurl.NewExtractor(opts.FontBaseURL)
	dl := downloader.New(client, result.FontsDir, logger)

	for _, query := range opts.Queries {
		qr, err := mirror(ctx, logger, client, extractor, dl, result.CSSDir, query)
		if err != nil {
			return result, err
		}
		result.Queries = append(result.Queries, *qr)
	}
	return result, nil
}

func mirror(ctx context.Context, logger *slog.Logger, client *gfonts.Client, extractor *cssurl.Extractor, dl *downloader.Downloader, cssDir, query string) (*QueryResult, error) {
	cssPath := filepath.Join(cssDir, SafeName(query)+".css")
	logger = logger.With("font", query)

	logger.Info("fetching css")
	css, err := client.FetchCSS(ctx, query, cssPath)
	if err != nil {
		return nil, classify("fetch css for "+query, err)
	}

	logger.Info("extracting font urls", "path", cssPath)
	urls := extractor.Extract(css)

	logger.Info("downloading fonts", "count", len(urls))
	dlResult, err := dl.Download(ctx, urls)
	if err != nil {
		return nil, classify("download fonts for "+query, err)
	}

	logger.Info("rewriting css", "fetched", dlResult.Fetched, "cached", dlResult.Cached)
	updated, err := cssurl.Rewrite(css, dlResult.Paths, cssDir, dl.Dir())
	if err != nil {
		return nil, filesystemError("rewrite css for "+query, err)
	}

	if err := atomic.WriteFile(cssPath, strings.NewReader(updated)); err != nil {
		return nil, filesystemError("save css for "+query, err)
	}
	if err := os.Chmod(cssPath, 0644); err != nil {
		return nil, filesystemError("save css for "+query, err)
	}
	logger.Info("saved rewritten css", "path", cssPath)

	return &QueryResult{
		Query:   query,
		CSSPath: cssPath,
		URLs:    len(dlResult.Paths),
		Fetched: dlResult.Fetched,
		Cached:  dlResult.Cached,
		Bytes:   dlResult.Bytes,
	}, nil
}

// classify maps a pipeline error onto the error taxonomy: anything that
// failed on a local path is a filesystem error, everything else happened on
// the wire.
func classify(op string, err error) error {
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	if errors.As(err, &pathErr) || errors.As(err, &linkErr) {
		return filesystemError(op, err)
	}
	return transportError(op, err)
}
