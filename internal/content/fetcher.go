// Package content fetches the readable body of the pages submissions link to.
package content

import (
	"context"
	"log/slog"
	"time"

	"gophersignal/internal/browser"
	"gophersignal/internal/model"
)

// Cache stores extracted content by URL. Implementations must be safe for
// concurrent use.
type Cache interface {
	GetContent(ctx context.Context, url string) (string, bool, error)
	SetContent(ctx context.Context, url, content string) error
}

// Options tunes a Fetcher.
type Options struct {
	Timeout     time.Duration // navigation timeout per page
	Delay       time.Duration // pacing between fetches
	MaxInFlight int           // concurrent fetches, 1 when unset
	Cache       Cache         // optional
	OnFetched   func(ok bool) // optional, called after every fetch
}

// Fetcher loads pages through a browser.Renderer and extracts their text.
type Fetcher struct {
	renderer browser.Renderer
	opts     Options
	pacer    *Pacer
}

// NewFetcher creates a content fetcher.
func NewFetcher(r browser.Renderer, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = browser.DefaultNavigationTimeout
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 1
	}
	return &Fetcher{renderer: r, opts: opts, pacer: NewPacer(opts.Delay)}
}

// Fetch returns the extracted text of url, or "" when the page cannot be
// loaded or holds no readable text. Failures are logged, never returned.
func (f *Fetcher) Fetch(ctx context.Context, url string) string {
	if f.opts.Cache != nil {
		text, ok, err := f.opts.Cache.GetContent(ctx, url)
		if err != nil {
			slog.Warn("content: cache read failed", "url", url, "err", err)
		} else if ok {
			slog.Debug("content: cache hit", "url", url)
			return text
		}
	}

	text := f.fetch(ctx, url)
	if text != "" && f.opts.Cache != nil {
		if err := f.opts.Cache.SetContent(ctx, url, text); err != nil {
			slog.Warn("content: cache write failed", "url", url, "err", err)
		}
	}
	return text
}

func (f *Fetcher) fetch(ctx context.Context, url string) string {
	page, err := f.renderer.Open(ctx, url, browser.Options{
		Timeout:        f.opts.Timeout,
		BlockResources: true,
		AcceptDialogs:  true,
	})
	if err != nil {
		slog.Error("content: open failed", "url", url, "err", err)
		return ""
	}
	defer func() {
		if err := page.Close(); err != nil {
			slog.Warn("content: close page", "url", url, "err", err)
		}
	}()

	if IsArxiv(url) {
		html, err := page.HTML(ctx)
		if err != nil {
			slog.Error("content: read failed", "url", url, "err", err)
			return ""
		}
		return ParseArxiv(html)
	}

	f.dismiss(ctx, page, "cookie", CookieSelectors)
	f.dismiss(ctx, page, "popup", PopupSelectors)

	html, err := page.HTML(ctx)
	if err != nil {
		slog.Error("content: read failed", "url", url, "err", err)
		return ""
	}
	text := ExtractText(html, page.URL())
	if text == "" {
		slog.Warn("content: no readable text", "url", url)
	}
	return text
}

func (f *Fetcher) dismiss(ctx context.Context, page browser.Page, kind string, selectors []string) {
	sel, err := page.ClickFirst(ctx, selectors)
	switch {
	case err != nil:
		slog.Debug("content: dismiss failed", "kind", kind, "err", err)
	case sel == "":
		slog.Debug("content: nothing to dismiss", "kind", kind)
	default:
		slog.Debug("content: dismissed", "kind", kind, "selector", sel)
	}
}

// FetchAll fills Content for every article in place, preserving order.
// Fetches are paced and run with bounded concurrency. Cancellation stops
// new fetches from starting and is returned.
func (f *Fetcher) FetchAll(ctx context.Context, articles []model.Article) error {
	if len(articles) == 0 {
		return nil
	}
	sem := make(chan struct{}, f.opts.MaxInFlight)
	done := make(chan struct{}, len(articles))
	started := 0
	var stopErr error
	for i := range articles {
		if articles[i].Link == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			stopErr = ctx.Err()
		}
		if stopErr != nil {
			break
		}
		if err := f.pacer.Wait(ctx, articles[i].Link); err != nil {
			<-sem
			stopErr = err
			break
		}
		started++
		go func(a *model.Article) {
			defer func() {
				<-sem
				done <- struct{}{}
			}()
			a.Content = f.Fetch(ctx, a.Link)
			if f.opts.OnFetched != nil {
				f.opts.OnFetched(a.Content != "")
			}
			slog.Info("content: fetched", "hn_id", a.HNID, "chars", len(a.Content))
		}(&articles[i])
	}
	for i := 0; i < started; i++ {
		<-done
	}
	return stopErr
}
