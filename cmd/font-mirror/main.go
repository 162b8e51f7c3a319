package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	fontmirror "github.com/Darkflib/font-mirror"
	"github.com/Darkflib/font-mirror/internal/envflag"
	"github.com/Darkflib/font-mirror/pkg/gfonts"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

const envPrefix = "FONT_MIRROR_"

const longHelp = `Downloads the css2 stylesheet for each font query, mirrors every font file it
references into <output-dir>/fonts, and rewrites <output-dir>/css/<query>.css
to use the local copies.

Every flag can also be set with an environment variable named ` + envPrefix + `<FLAG>,
e.g. ` + envPrefix + `OUTPUT_DIR.`

const exampleHelp = `  font-mirror -f 'Roboto:wght@400;700' -f Inter -o static/fonts
  font-mirror --fonts-file fonts.txt`

// usageError marks command-line mistakes that cobra reports as plain errors.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd(os.Environ())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ue usageError
	if errors.Is(err, fontmirror.ErrConfig) || errors.As(err, &ue) {
		return 2
	}
	return 1
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}

func newRootCmd(environ []string) *cobra.Command {
	var (
		fonts       []string
		fontsFile   string
		outputDir   string
		cssURL      string
		fontBaseURL string
		userAgent   string
		timeout     time.Duration
		logJSON     bool
	)

	rootCmd := &cobra.Command{
		Use:           "font-mirror",
		Short:         "Mirror Google Fonts stylesheets and font files for self-hosting",
		Long:          longHelp,
		Example:       exampleHelp,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.StringArrayVarP(&fonts, "fonts", "f", nil, "Google Fonts query, repeatable (e.g. 'Roboto:wght@100;400;700')")
	flags.StringVar(&fontsFile, "fonts-file", "", "Path to file containing font queries (one per line)")
	flags.StringVarP(&outputDir, "output-dir", "o", fontmirror.DefaultOutputDir, "Output base directory")
	flags.StringVar(&cssURL, "css-url", gfonts.DefaultCSSURL, "Stylesheet endpoint")
	flags.StringVar(&fontBaseURL, "font-base-url", gfonts.DefaultFontBaseURL, "URL prefix of font files to mirror")
	flags.StringVar(&userAgent, "user-agent", gfonts.DefaultUserAgent, "User-Agent for stylesheet requests")
	flags.DurationVar(&timeout, "timeout", 0, "Per-request HTTP timeout (0 for none)")
	logLevel := envflag.LevelVarP(flags, "log-level", "L", slog.LevelInfo, "Log level")
	flags.BoolVar(&logJSON, "log-json", false, "Use JSON logs")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if err := envflag.Apply(cmd.Flags(), envPrefix, environ, func(msg string) {
			color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", msg)
		}); err != nil {
			return usageError{err}
		}
		return nil
	}

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		queries, err := fontmirror.ResolveQueries(fonts, fontsFile)
		if err != nil {
			return err
		}

		logger := newLogger(cmd.ErrOrStderr(), logLevel, logJSON)
		return run(cmd.Context(), cmd.OutOrStdout(), fontmirror.Options{
			Queries:     queries,
			OutputDir:   outputDir,
			CSSURL:      cssURL,
			FontBaseURL: fontBaseURL,
			UserAgent:   userAgent,
			Timeout:     timeout,
			Logger:      logger,
		})
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "font-mirror version %s\n", fontmirror.Version)
		},
	}

	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

func newLogger(w io.Writer, level *slog.LevelVar, jsonLogs bool) *slog.Logger {
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    color.NoColor,
	}))
}

func run(ctx context.Context, w io.Writer, opts fontmirror.Options) error {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	cyan.Fprintln(w, "\n🔤 Font Mirror")
	cyan.Fprintln(w, "==============")
	fmt.Fprintf(w, "  • Queries: %d\n", len(opts.Queries))
	fmt.Fprintf(w, "  • Output:  %s\n\n", opts.OutputDir)

	result, err := fontmirror.Run(ctx, opts)
	if err != nil {
		return err
	}

	cyan.Fprintln(w, "\n📊 Mirror Summary:")
	for _, q := range result.Queries {
		fmt.Fprintf(w, "  • %s: %d font(s), %d downloaded, %d cached -> %s\n",
			q.Query, q.URLs, q.Fetched, q.Cached, q.CSSPath)
	}

	fetched, cached := result.Totals()
	green.Fprintf(w, "\n✨ Mirrored %d stylesheet(s) into %s (%d font(s) downloaded, %d already present)\n\n",
		len(result.Queries), opts.OutputDir, fetched, cached)
	return nil
}
