package fontmirror

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoQueries is wrapped by the configuration error returned when neither
// flags nor a query file supplied a font query.
var ErrNoQueries = errors.New("no fonts specified, use --fonts/-f or --fonts-file")

// ReadQueries parses a newline-delimited query list. Lines are trimmed;
// blank lines and lines starting with '#' are skipped; '+' becomes a space,
// as in the family parameter of a copied Google Fonts URL.
func ReadQueries(r io.Reader) ([]string, error) {
	var queries []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, strings.ReplaceAll(line, "+", " "))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return queries, nil
}

// LoadQueries reads queries from the regular file at name.
func LoadQueries(name string) ([]string, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, configError("fonts file", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, configError("fonts file", fmt.Errorf("%s is not a regular file", name))
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, configError("fonts file", err)
	}
	defer f.Close()

	queries, err := ReadQueries(f)
	if err != nil {
		return nil, filesystemError("read fonts file", err)
	}
	return queries, nil
}

// ResolveQueries combines queries given directly with those read from file
// (if non-empty), in that order. An empty result is a configuration error.
func ResolveQueries(fonts []string, file string) ([]string, error) {
	queries := make([]string, 0, len(fonts))
	for _, f := range fonts {
		if f = strings.TrimSpace(f); f != "" {
			queries = append(queries, f)
		}
	}

	if file != "" {
		fromFile, err := LoadQueries(file)
		if err != nil {
			return nil, err
		}
		queries = append(queries, fromFile...)
	}

	if len(queries) == 0 {
		return nil, configError("", ErrNoQueries)
	}
	return queries, nil
}

// SafeName turns a font query into a file name stem by replacing query
// separators and characters that are unsafe in file names with '_'.
// "Roboto:wght@400;700" becomes "Roboto_wght@400_700".
func SafeName(query string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', ';', '&', '/', '\\', '?', '*', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, query)
}
