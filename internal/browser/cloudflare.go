package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Cloudflare renders pages through the Cloudflare Browser Rendering REST API.
// See: https://developers.cloudflare.com/browser-rendering/rest-api/
type Cloudflare struct {
	baseURL string
	token   string
	http    *http.Client
	timeout time.Duration
}

type contentRequest struct {
	URL                 string       `json:"url"`
	RejectResourceTypes []string     `json:"rejectResourceTypes,omitempty"`
	GotoOptions         *gotoOptions `json:"gotoOptions,omitempty"`
	UserAgent           string       `json:"userAgent,omitempty"`
}

type gotoOptions struct {
	WaitUntil string `json:"waitUntil,omitempty"`
	Timeout   int64  `json:"timeout,omitempty"` // milliseconds
}

type contentResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Errors  any    `json:"errors"`
}

// NewCloudflare creates a renderer from an account ID.
// Endpoint: https://api.cloudflare.com/client/v4/accounts/<ACCOUNT_ID>/browser-rendering/content
func NewCloudflare(accountID, token string, timeout time.Duration) *Cloudflare {
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}
	baseURL := fmt.Sprintf("https://api.cloudflare.com/client/v4/accounts/%s/browser-rendering/content", strings.TrimSpace(accountID))
	return &Cloudflare{
		baseURL: baseURL,
		token:   token,
		// the API needs headroom beyond the in-browser navigation timeout
		http:    &http.Client{Timeout: timeout + 10*time.Second},
		timeout: timeout,
	}
}

// Open asks Cloudflare to render u and returns the resulting document.
// Cookie banners and popups cannot be clicked through this backend.
func (c *Cloudflare) Open(ctx context.Context, u string, opts Options) (Page, error) {
	if c == nil {
		return nil, errors.New("nil cloudflare renderer")
	}
	if _, err := url.ParseRequestURI(u); err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	req := contentRequest{
		URL:         u,
		GotoOptions: &gotoOptions{WaitUntil: "networkidle2", Timeout: timeout.Milliseconds()},
	}
	if opts.BlockResources {
		req.RejectResourceTypes = blockedResourceTypes
	}
	body, _ := json.Marshal(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("cloudflare render failed: status=%d body=%s", resp.StatusCode, string(b))
	}
	var envelope contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("cloudflare render failed: %v", envelope.Errors)
	}
	return &staticPage{url: u, html: envelope.Result}, nil
}

// Close is a no-op; the remote browser is released per request.
func (c *Cloudflare) Close() error { return nil }

// blockedResourceTypes follows the Puppeteer resource type names.
var blockedResourceTypes = []string{"image", "stylesheet", "font"}
