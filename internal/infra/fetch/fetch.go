// Package fetch downloads web pages for extraction.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/infra/metrics"
)

const (
	DefaultTimeout      = 20 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; PageSummarizer/1.0)"
	DefaultMaxBodyBytes = 5 << 20
)

// Result holds the raw body of a fetched page.
type Result struct {
	URL         string // final URL after redirects
	HTML        string
	ContentType string
	StatusCode  int
	Truncated   bool
}

// Error represents an error during URL fetching. It matches domain.ErrFetchFailed.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{domain.ErrFetchFailed, e.Cause}
	}
	return []error{domain.ErrFetchFailed}
}

type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Headers      map[string]string
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// URL retrieves a page over http or https. Non-2xx responses are errors; there is no retry.
func URL(ctx context.Context, rawURL string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	start := time.Now()

	u, err := Validate(rawURL)
	if err != nil {
		return nil, err
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		metrics.ObservePageFetch("transport_error", time.Since(start))
		return nil, &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObservePageFetch("http_error", time.Since(start))
		return nil, &Error{
			URL:        rawURL,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	limit := opts.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		metrics.ObservePageFetch("transport_error", time.Since(start))
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	truncated := int64(len(body)) > limit
	if truncated {
		body = body[:limit]
	}

	metrics.ObservePageFetch("ok", time.Since(start))
	return &Result{
		URL:         resp.Request.URL.String(),
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		Truncated:   truncated,
	}, nil
}

// Validate parses rawURL and accepts only absolute http(s) URLs.
func Validate(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, &Error{URL: rawURL, Message: "empty URL"}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &Error{URL: rawURL, Message: "missing host"}
	}
	return u, nil
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}

// Client binds Options for repeated fetches.
type Client struct {
	opts *Options
}

func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Client{opts: opts}
}

func (c *Client) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	return URL(ctx, rawURL, c.opts)
}
