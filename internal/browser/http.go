package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// HTTP fetches documents without executing scripts. It suits server-rendered
// pages such as the Hacker News listings.
type HTTP struct {
	client    *http.Client
	userAgent string
	closed    atomic.Bool
}

// NewHTTP creates a plain HTTP renderer.
func NewHTTP(userAgent string, timeout time.Duration) *HTTP {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}
	return &HTTP{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Open performs a GET request for u.
func (h *HTTP) Open(ctx context.Context, u string, opts Options) (Page, error) {
	if h.closed.Load() {
		return nil, ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status=%d", u, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return &staticPage{url: resp.Request.URL.String(), html: string(b)}, nil
}

// Close marks the renderer as released.
func (h *HTTP) Close() error {
	h.closed.Store(true)
	return nil
}
