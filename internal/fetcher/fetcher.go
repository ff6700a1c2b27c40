// Package fetcher retrieves raw HTML pages from news sites.
package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonesrussell/newsgrabber/internal/logger"
)

// ErrContentTooLarge is returned when a response body exceeds the
// configured size cap.
var ErrContentTooLarge = errors.New("response body exceeds size limit")

// FetchError reports a failed fetch. StatusCode is zero for transport
// errors; callers inspect it to decide between failing the run and
// skipping a single article.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unexpected http status %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is a successfully fetched page.
type Result struct {
	HTML       string
	StatusCode int
}

// Client fetches pages over HTTP with browser-like headers.
type Client struct {
	httpClient *http.Client
	log        logger.Interface
	userAgent  string
	maxSize    int64
}

// NewClient creates a fetch client from the given config.
func NewClient(cfg Config, log logger.Interface) *Client {
	cfg = cfg.WithDefaults()

	transport := &http.Transport{
		// Some sources serve self-signed or misconfigured certificates.
		// Skipping verification keeps those sources reachable.
		// #nosec G402 - intentional for scraping misconfigured news sites
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		},
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		log:       log,
		userAgent: cfg.UserAgent,
		maxSize:   cfg.MaxContentSize,
	}
}

// Fetch performs a GET request and returns the response body. Redirects
// are followed; the body is capped at the configured size.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	setBrowserHeaders(req, c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	// Read one byte past the cap so an at-limit body is distinguishable
	// from an oversized one.
	limited := io.LimitReader(resp.Body, c.maxSize+1)

	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("read response body: %w", err)}
	}

	if int64(len(body)) > c.maxSize {
		return nil, fmt.Errorf("%w: %s", ErrContentTooLarge, rawURL)
	}

	c.log.Debug("page fetched", "url", rawURL, "status", resp.StatusCode, "bytes", len(body))

	return &Result{HTML: string(body), StatusCode: resp.StatusCode}, nil
}

// setBrowserHeaders applies the header set a desktop browser would send.
func setBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Cache-Control", "no-cache")
}
