package linkcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "linkshelf-linkcheck/1.0"
)

// Result describes the outcome of probing a single URL.
type Result struct {
	URL        string
	Dead       bool
	StatusCode int
}

// Checker probes bookmark URLs to detect dead links.
type Checker struct {
	httpClient *http.Client
}

// NewChecker creates a Checker with the given per-request timeout.
// A non-positive timeout falls back to the default.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Check probes a URL and reports whether it looks dead.
// A link is considered dead when the request fails outright or the
// server answers with 404, 410, or any 5xx status. Other statuses,
// including auth walls and rate limits, are treated as alive.
func (c *Checker) Check(ctx context.Context, url string) Result {
	status, err := c.probe(ctx, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		// Some servers reject HEAD outright, retry with GET
		status, err = c.probe(ctx, http.MethodGet, url)
	}
	if err != nil {
		return Result{URL: url, Dead: true}
	}

	return Result{
		URL:        url,
		Dead:       isDeadStatus(status),
		StatusCode: status,
	}
}

func (c *Checker) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

func isDeadStatus(status int) bool {
	if status == http.StatusNotFound || status == http.StatusGone {
		return true
	}
	return status >= 500
}
