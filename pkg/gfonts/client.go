package gfonts

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/natefinch/atomic"
)

const (
	// DefaultCSSURL is the Google Fonts css2 stylesheet endpoint.
	DefaultCSSURL = "https://fonts.googleapis.com/css2"
	// DefaultFontBaseURL is the host prefix every font file URL in a css2 response starts with.
	DefaultFontBaseURL = "https://fonts.gstatic.com"
	// DefaultUserAgent identifies as a desktop browser. Without it css2 falls back
	// to a legacy stylesheet with ttf URLs instead of woff2.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// StatusError is returned when a request completes with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client talks to the stylesheet endpoint and the font file host.
type Client struct {
	cssURL     string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithCSSURL overrides the stylesheet endpoint.
func WithCSSURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.cssURL = u
		}
	}
}

// WithUserAgent overrides the User-Agent sent with stylesheet requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client with a pooled transport and no request timeout.
func NewClient(opts ...Option) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		cssURL:    DefaultCSSURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StylesheetURL returns the css2 request URL for a font query.
func (c *Client) StylesheetURL(query string) (string, error) {
	u, err := url.Parse(c.cssURL)
	if err != nil {
		return "", fmt.Errorf("parse css url %q: %w", c.cssURL, err)
	}
	q := u.Query()
	q.Set("family", query)
	q.Set("display", "swap")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchCSS retrieves the stylesheet for query, writes the body verbatim to
// dest (replacing any existing file) and returns it.
func (c *Client) FetchCSS(ctx context.Context, query, dest string) (string, error) {
	u, err := c.StylesheetURL(query)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(u, resp); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if err := os.WriteFile(dest, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write stylesheet: %w", err)
	}

	return string(body), nil
}

// Download streams the body of a plain GET for u into dest. The body lands
// in a temporary file next to dest and is renamed into place only once fully
// written, so a failed transfer never leaves a partial file named dest.
func (c *Client) Download(ctx context.Context, u, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(u, resp); err != nil {
		return 0, err
	}

	cr := &countingReader{r: resp.Body}
	if err := atomic.WriteFile(dest, cr); err != nil {
		if cr.err != nil {
			return cr.n, fmt.Errorf("failed to read response body: %w", cr.err)
		}
		return cr.n, &fs.PathError{Op: "write", Path: dest, Err: err}
	}
	// the temp file behind atomic.WriteFile is created 0600
	if err := os.Chmod(dest, 0644); err != nil {
		return cr.n, err
	}
	return cr.n, nil
}

func checkStatus(u string, resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return nil
}

// countingReader reads in chunks of at most chunkSize bytes.
type countingReader struct {
	r   io.Reader
	n   int64
	err error // first non-EOF read error
}

const chunkSize = 8192

func (cr *countingReader) Read(p []byte) (int, error) {
	if len(p) > chunkSize {
		p = p[:chunkSize]
	}
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	if err != nil && err != io.EOF && cr.err == nil {
		cr.err = err
	}
	return n, err
}
