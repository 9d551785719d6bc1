// Package browser provides the page rendering capability shared by the listing
// scraper and the content fetcher. A Renderer opens one Page per URL; callers
// own the Page and must Close it before opening the next one.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultNavigationTimeout bounds a single page load.
const DefaultNavigationTimeout = 30 * time.Second

// ErrClosed is returned by a Renderer that has already been released.
var ErrClosed = errors.New("browser: renderer closed")

// Options tunes a single page load.
type Options struct {
	// Timeout bounds navigation; zero means DefaultNavigationTimeout.
	Timeout time.Duration
	// BlockResources skips images, stylesheets and fonts.
	BlockResources bool
	// AcceptDialogs auto-accepts native alert/confirm/prompt dialogs.
	AcceptDialogs bool
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultNavigationTimeout
	}
	return o.Timeout
}

// Renderer loads URLs into pages.
type Renderer interface {
	Open(ctx context.Context, url string, opts Options) (Page, error)
	Close() error
}

// Page is a loaded document.
type Page interface {
	// URL returns the final URL of the document.
	URL() string
	// HTML returns the current serialized document.
	HTML(ctx context.Context) (string, error)
	// ClickFirst clicks the first element matching the first selector that
	// matches anything, returning that selector or "" when nothing matched.
	ClickFirst(ctx context.Context, selectors []string) (string, error)
	Close() error
}

// Settings selects a Renderer implementation.
type Settings struct {
	Driver            string // chrome, http, cloudflare
	ExecPath          string
	Headful           bool
	UserAgent         string
	NavigationTimeout time.Duration

	CloudflareAccountID string
	CloudflareToken     string
}

// New builds the Renderer named by s.Driver.
func New(ctx context.Context, s Settings) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case "", "chrome", "chromium":
		return NewChrome(ctx, ChromeOptions{
			ExecPath:  s.ExecPath,
			Headful:   s.Headful,
			UserAgent: s.UserAgent,
		})
	case "http":
		return NewHTTP(s.UserAgent, s.NavigationTimeout), nil
	case "cloudflare":
		if s.CloudflareAccountID == "" || s.CloudflareToken == "" {
			return nil, errors.New("browser: cloudflare driver needs account_id and token")
		}
		return NewCloudflare(s.CloudflareAccountID, s.CloudflareToken, s.NavigationTimeout), nil
	default:
		return nil, fmt.Errorf("browser: unknown driver %q", s.Driver)
	}
}

// staticPage is a Page over an already rendered document that cannot be
// interacted with.
type staticPage struct {
	url  string
	html string
}

func (p *staticPage) URL() string { return p.url }

func (p *staticPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.html, nil
}

func (p *staticPage) ClickFirst(ctx context.Context, selectors []string) (string, error) {
	return "", nil
}

func (p *staticPage) Close() error { return nil }
