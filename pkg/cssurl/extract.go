// Package cssurl finds font file URLs in a stylesheet and rewrites them to
// local paths. It does not parse CSS; it only matches url(...) tokens.
package cssurl

import (
	"regexp"
	"strings"
)

// Extractor matches url(...) references whose target starts with a fixed base URL.
type Extractor struct {
	base string
	re   *regexp.Regexp
}

// NewExtractor returns an Extractor for URLs under base, e.g.
// "https://fonts.gstatic.com". A trailing slash on base is ignored.
func NewExtractor(base string) *Extractor {
	base = strings.TrimRight(base, "/")
	return &Extractor{
		base: base,
		re:   regexp.MustCompile(`url\((` + regexp.QuoteMeta(base) + `/[^)]+)\)`),
	}
}

// Base returns the URL prefix the extractor matches.
func (e *Extractor) Base() string {
	return e.base
}

// Extract returns every matching URL in document order. Repeated references
// are kept; see Unique. Text without a match yields nil.
func (e *Extractor) Extract(css string) []string {
	matches := e.re.FindAllStringSubmatch(css, -1)
	if len(matches) == 0 {
		return nil
	}
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, m[1])
	}
	return urls
}

// Unique drops repeated URLs, keeping the first occurrence order.
func Unique(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	result := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		result = append(result, u)
	}
	return result
}
