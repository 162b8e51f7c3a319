// Package fontmirror copies Google Fonts stylesheets and the font files they
// reference onto local disk, rewriting each stylesheet to point at the local
// copies so a site can self-host its fonts.
//
// The CLI lives in cmd/font-mirror; this root package exposes the same
// pipeline as a Go API.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named fontmirror:
//
//	import "github.com/Darkflib/font-mirror" // package fontmirror
//
// # Quick start
//
//	result, err := fontmirror.Run(ctx, fontmirror.Options{
//	    Queries:   []string{"Roboto:wght@400;700", "Inter"},
//	    OutputDir: "static/fonts",
//	    Logger:    slog.Default(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// This produces:
//
//	static/fonts/css/Roboto_wght@400_700.css
//	static/fonts/css/Inter.css
//	static/fonts/fonts/<16 hex chars>.woff2 ...
//
// Each stylesheet refers to its fonts as ../fonts/<name>.
//
// # Caching
//
// Font files are named by a hash of their URL. A file that already exists is
// trusted and never fetched again, so reruns only refetch the stylesheets.
// Downloads are written to a temporary file and renamed into place, so an
// interrupted run cannot leave a truncated font under its final name.
//
// # Errors
//
// Run stops at the first failure. Errors are *Error values whose Kind is one
// of configuration, transport or filesystem; test with errors.Is against
// [ErrConfig], [ErrTransport] or [ErrFilesystem].
package fontmirror
