// Package envflag lets environment variables stand in for command-line flags.
package envflag

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/spf13/pflag"
)

// Apply sets every flag in fs that has a matching PREFIX_NAME variable in
// environ (formatted as in os.Environ). NAME is the flag name upper-cased
// with '-' written as '_', so with prefix "FONT_MIRROR_" the variable
// FONT_MIRROR_OUTPUT_DIR sets --output-dir. Flags given explicitly on the
// command line are left alone. Unknown variables are reported to warn, which
// may be nil.
func Apply(fs *pflag.FlagSet, prefix string, environ []string, warn func(string)) error {
	for _, env := range environ {
		k, v, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		s, ok := strings.CutPrefix(k, prefix)
		if !ok || s == "" {
			continue
		}
		n := strings.Map(func(r rune) rune {
			switch r {
			case '_':
				return '-'
			}
			return unicode.ToLower(r)
		}, s)
		f := fs.Lookup(n)
		if f == nil {
			if warn != nil {
				warn(fmt.Sprintf("env %s: unknown flag --%s", k, n))
			}
			continue
		}
		if f.Changed {
			continue
		}
		if err := f.Value.Set(v); err != nil {
			return fmt.Errorf("env %s: flag --%s: invalid argument: %w", k, n, err)
		}
	}
	return nil
}

// LevelVarP defines a slog level flag on fs and returns the variable it sets.
func LevelVarP(fs *pflag.FlagSet, name, shorthand string, value slog.Level, usage string) *slog.LevelVar {
	level := new(slog.LevelVar)
	def := new(slog.LevelVar)
	def.Set(value)
	fs.TextVarP(level, name, shorthand, def, usage)
	return level
}
