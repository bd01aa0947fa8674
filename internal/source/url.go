package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxBodySize is the largest response body URL will read.
const MaxBodySize = 128 * 1024 * 1024

// DefaultUserAgent is sent when URL.UserAgent is empty.
const DefaultUserAgent = "curl/7.58.0"

// URL fetches a document with an HTTP GET request.
type URL struct {
	URL       string
	UserAgent string

	// Headers are extra request headers in "Name: value" form. Entries
	// without a colon are ignored.
	Headers []string

	// Compressed asks the server for a zstd or gzip encoded response.
	Compressed bool

	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// String describes the source for diagnostics.
func (u *URL) String() string { return u.URL }

// Validate checks the URL and header syntax before the first request.
func (u *URL) Validate() error {
	parsed, err := url.Parse(u.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", u.URL)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", u.URL)
	}

	var errs []error

	for _, h := range u.Headers {
		name, _, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("invalid header %q: want \"Name: value\"", h))
		}
	}

	return errors.Join(errs...)
}

// Fetch performs one GET request and returns the response body.
func (u *URL) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, fetchError(u, fmt.Errorf("building request: %w", err))
	}

	ua := u.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	req.Header.Set("User-Agent", ua)

	if u.Compressed {
		req.Header.Set("Accept-Encoding", "zstd, gzip")
	}

	for _, h := range u.Headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			continue
		}

		req.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fetchError(u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fetchError(u, fmt.Errorf("unexpected status %s", resp.Status))
	}

	r, done, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, fetchError(u, err)
	}
	defer done()

	body, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, fetchError(u, fmt.Errorf("reading body: %w", err))
	}

	if len(body) > MaxBodySize {
		return nil, fetchError(u, fmt.Errorf("response body exceeds %d bytes", MaxBodySize))
	}

	return body, nil
}

// decodeBody undoes the response Content-Encoding. The transport already
// strips gzip it negotiated itself, so an empty encoding is the common case.
func decodeBody(encoding string, r io.Reader) (io.Reader, func(), error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return r, func() {}, nil

	case "gzip", "x-gzip":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
		}

		return gr, func() { _ = gr.Close() }, nil

	case "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd decoder: %w", err)
		}

		return zr, zr.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}
