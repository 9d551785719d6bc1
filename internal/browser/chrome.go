package browser

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures the local headless browser.
type ChromeOptions struct {
	ExecPath  string
	Headful   bool
	UserAgent string
}

// Chrome drives a local Chrome/Chromium over the DevTools protocol. One
// browser process is shared; every Open gets its own tab.
type Chrome struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewChrome launches the browser.
func NewChrome(ctx context.Context, o ChromeOptions) (*Chrome, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", !o.Headful),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("mute-audio", true),
	)
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	ua := o.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	opts = append(opts, chromedp.UserAgent(ua))

	// the browser outlives any single request context
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	// start the browser now so launch failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}
	return &Chrome{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Open creates a new tab and navigates it to u.
func (c *Chrome) Open(ctx context.Context, u string, opts Options) (Page, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	c.mu.Unlock()

	chromedp.ListenTarget(tabCtx, func(ev any) {
		switch e := ev.(type) {
		case *fetch.EventRequestPaused:
			go func() {
				exec := cdp.WithExecutor(tabCtx, chromedp.FromContext(tabCtx).Target)
				if isBlockedResource(e.ResourceType) {
					_ = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(exec)
					return
				}
				_ = fetch.ContinueRequest(e.RequestID).Do(exec)
			}()
		case *page.EventJavascriptDialogOpening:
			if !opts.AcceptDialogs {
				return
			}
			go func() {
				exec := cdp.WithExecutor(tabCtx, chromedp.FromContext(tabCtx).Target)
				_ = page.HandleJavaScriptDialog(true).Do(exec)
			}()
		}
	})

	// allocate the tab on its own context so a timeout does not close it
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, err
	}

	runCtx, cancel := bounded(ctx, tabCtx, opts.timeout())
	defer cancel()

	var actions []chromedp.Action
	if opts.BlockResources {
		actions = append(actions, fetch.Enable().WithPatterns([]*fetch.RequestPattern{{URLPattern: "*"}}))
	}
	actions = append(actions, chromedp.Navigate(u))
	if err := chromedp.Run(runCtx, actions...); err != nil {
		tabCancel()
		return nil, err
	}
	return &chromePage{url: u, ctx: tabCtx, cancel: tabCancel}, nil
}

// Close shuts the browser down.
func (c *Chrome) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	err := chromedp.Cancel(c.browserCtx)
	c.browserCancel()
	c.allocCancel()
	return err
}

type chromePage struct {
	url    string
	ctx    context.Context
	cancel context.CancelFunc
}

func (p *chromePage) URL() string {
	var loc string
	if err := chromedp.Run(p.ctx, chromedp.Location(&loc)); err == nil && loc != "" {
		return loc
	}
	return p.url
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := bounded(ctx, p.ctx, DefaultNavigationTimeout)
	defer cancel()
	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) ClickFirst(ctx context.Context, selectors []string) (string, error) {
	runCtx, cancel := bounded(ctx, p.ctx, DefaultNavigationTimeout)
	defer cancel()
	for _, sel := range selectors {
		var nodes []*cdp.Node
		if err := chromedp.Run(runCtx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
			return "", err
		}
		if len(nodes) == 0 {
			continue
		}
		if err := chromedp.Run(runCtx, chromedp.MouseClickNode(nodes[0])); err != nil {
			slog.Debug("browser: click failed", "selector", sel, "err", err)
			return "", err
		}
		return sel, nil
	}
	return "", nil
}

func (p *chromePage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	return err
}

func isBlockedResource(t network.ResourceType) bool {
	switch t {
	case network.ResourceTypeImage, network.ResourceTypeStylesheet, network.ResourceTypeFont:
		return true
	}
	return false
}

// bounded derives a context from the chromedp tab context that is also
// cancelled when the caller's ctx ends or after d.
func bounded(caller, tab context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(tab, d)
	stop := context.AfterFunc(caller, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
