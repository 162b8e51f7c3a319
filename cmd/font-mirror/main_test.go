package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	fontmirror "github.com/Darkflib/font-mirror"
)

func newServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/css2" {
			fmt.Fprintf(w, "@font-face { src: url(%s/s/a.woff2) format('woff2'); }\n", ts.URL)
			return
		}
		w.Write([]byte("wOF2"))
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func execute(t *testing.T, environ []string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(environ)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNoFontsIsUsageError(t *testing.T) {
	ts, hits := newServer(t)
	dir := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, nil, "--css-url", ts.URL+"/css2", "-o", dir)
	if !errors.Is(err, fontmirror.ErrConfig) {
		t.Fatalf("Execute() error = %v, want ErrConfig", err)
	}
	if code := exitCode(err); code != 2 {
		t.Errorf("exitCode() = %d, want 2", code)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("made %d requests, want 0", n)
	}
}

func TestMissingFontsFile(t *testing.T) {
	_, err := execute(t, nil, "--fonts-file", filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, fontmirror.ErrConfig) {
		t.Fatalf("Execute() error = %v, want ErrConfig", err)
	}
}

func TestBadFlagIsUsageError(t *testing.T) {
	_, err := execute(t, nil, "--no-such-flag")
	if err == nil {
		t.Fatal("Execute() expected error for unknown flag")
	}
	if code := exitCode(err); code != 2 {
		t.Errorf("exitCode() = %d, want 2", code)
	}

	_, err = execute(t, nil, "-f", "Roboto", "stray")
	if code := exitCode(err); err == nil || code != 2 {
		t.Errorf("positional argument: err = %v, exitCode = %d, want usage error", err, code)
	}
}

func TestMirror(t *testing.T) {
	ts, _ := newServer(t)
	dir := t.TempDir()
	fontsFile := filepath.Join(dir, "fonts.txt")
	if err := os.WriteFile(fontsFile, []byte("# comment\nOpen+Sans\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "mirror")

	stdout, err := execute(t, nil,
		"-f", "Roboto:wght@400;700",
		"--fonts-file", fontsFile,
		"-o", out,
		"--css-url", ts.URL+"/css2",
		"--font-base-url", ts.URL,
		"--log-level", "warn",
	)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, name := range []string{"Roboto_wght@400_700.css", "Open Sans.css"} {
		b, err := os.ReadFile(filepath.Join(out, "css", name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		if strings.Contains(string(b), ts.URL) {
			t.Errorf("%s still references the remote host: %s", name, b)
		}
	}
	if !strings.Contains(stdout, "Mirrored 2 stylesheet(s)") {
		t.Errorf("summary missing from output:\n%s", stdout)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	ts, _ := newServer(t)
	out := filepath.Join(t.TempDir(), "from-env")

	_, err := execute(t, []string{
		"FONT_MIRROR_FONTS=Inter",
		"FONT_MIRROR_OUTPUT_DIR=" + out,
		"FONT_MIRROR_CSS_URL=" + ts.URL + "/css2",
		"FONT_MIRROR_FONT_BASE_URL=" + ts.URL,
		"FONT_MIRROR_LOG_JSON=true",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "css", "Inter.css")); err != nil {
		t.Errorf("env-configured run did not write css: %v", err)
	}
}

func TestVersion(t *testing.T) {
	stdout, err := execute(t, nil, "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, fontmirror.Version) {
		t.Errorf("version output = %q", stdout)
	}
}
