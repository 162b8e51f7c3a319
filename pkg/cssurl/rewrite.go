package cssurl

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Rewrite replaces every occurrence of each URL in urlMap with a reference to
// the mirrored file, relative to the directory the stylesheet lives in.
// urlMap values are local file paths; only their base names are used, joined
// onto the path from cssDir to fontsDir ("../fonts" for the usual layout).
func Rewrite(css string, urlMap map[string]string, cssDir, fontsDir string) (string, error) {
	if len(urlMap) == 0 {
		return css, nil
	}

	rel, err := RelDir(cssDir, fontsDir)
	if err != nil {
		return "", err
	}

	// Longest first, so a URL that prefixes another is never substituted
	// inside the longer one.
	urls := make([]string, 0, len(urlMap))
	for u := range urlMap {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool {
		if len(urls[i]) != len(urls[j]) {
			return len(urls[i]) > len(urls[j])
		}
		return urls[i] < urls[j]
	})

	pairs := make([]string, 0, 2*len(urls))
	for _, u := range urls {
		pairs = append(pairs, u, path.Join(rel, filepath.Base(urlMap[u])))
	}
	return strings.NewReplacer(pairs...).Replace(css), nil
}

// RelDir returns fontsDir relative to cssDir using forward slashes, which is
// what a url() in a stylesheet expects regardless of the host OS.
func RelDir(cssDir, fontsDir string) (string, error) {
	absCSS, err := filepath.Abs(cssDir)
	if err != nil {
		return "", fmt.Errorf("resolve css dir %q: %w", cssDir, err)
	}
	absFonts, err := filepath.Abs(fontsDir)
	if err != nil {
		return "", fmt.Errorf("resolve fonts dir %q: %w", fontsDir, err)
	}
	rel, err := filepath.Rel(absCSS, absFonts)
	if err != nil {
		return "", fmt.Errorf("fonts dir %q is not reachable from css dir %q: %w", fontsDir, cssDir, err)
	}
	return filepath.ToSlash(rel), nil
}
