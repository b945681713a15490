// Package transport defines the HTTPClient contract the core depends on
// (spec §6.2) and a default net/http-backed implementation shared by the
// Feed Fetcher and Article Extractor stages.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient is the external collaborator the core uses for all outbound
// GETs. Implementations must honor ctx cancellation/deadline and follow
// redirects.
type HTTPClient interface {
	Get(ctx context.Context, url string, headers map[string]string) (status int, body []byte, respHeaders http.Header, err error)
}

// userAgents is rotated per request so a single feed source never sees the
// exact same client fingerprint on every poll.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
}

// DefaultClient is the production HTTPClient, backed by net/http with a
// bounded redirect chain (spec §4.2: up to 5 redirects).
type DefaultClient struct {
	client *http.Client
	uaSeq  int
}

// NewDefaultClient builds an HTTPClient that follows at most 5
// redirects and never exceeds the caller's context deadline.
func NewDefaultClient() *DefaultClient {
	c := &DefaultClient{client: &http.Client{}}
	c.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return fmt.Errorf("stopped after 5 redirects")
		}
		return nil
	}
	return c
}

func (c *DefaultClient) nextUserAgent() string {
	ua := userAgents[c.uaSeq%len(userAgents)]
	c.uaSeq++
	return ua
}

// Get performs an HTTP GET honoring ctx's deadline/cancellation.
func (c *DefaultClient) Get(ctx context.Context, url string, headers map[string]string) (int, []byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.nextUserAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, resp.Header, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, resp.Header, nil
}

// WithDeadline derives a context bounded by both the parent and the given
// deadline duration, whichever is sooner — the "minimum of stage default
// and remaining request deadline" rule in spec §5.
func WithDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
