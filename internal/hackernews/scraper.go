// Package hackernews scrapes the Hacker News listing pages.
package hackernews

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"gophersignal/internal/browser"
	"gophersignal/internal/model"
)

// DefaultBaseURL is the public Hacker News site.
const DefaultBaseURL = "https://news.ycombinator.com"

// DefaultFrontPages is the page ceiling for the recycled feed.
const DefaultFrontPages = 10

// Scraper walks listing pages through a browser.Renderer.
type Scraper struct {
	renderer  browser.Renderer
	baseURL   string
	timeout   time.Duration
	extractor Extractor
}

// NewScraper creates a listing scraper. An empty baseURL defaults to the
// public site.
func NewScraper(r browser.Renderer, baseURL string, timeout time.Duration) *Scraper {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{
		renderer:  r,
		baseURL:   baseURL,
		timeout:   timeout,
		extractor: Extractor{BaseURL: baseURL},
	}
}

// ScrapeTopStories walks the top stories ranking. maxPages <= 0 follows the
// "More" link until it disappears.
func (s *Scraper) ScrapeTopStories(ctx context.Context, maxPages int) ([]model.Article, error) {
	return s.walk(ctx, s.baseURL+"/", FeedTop, maxPages)
}

// ScrapeFront walks the recycled feed and keeps flagged, dead and dupe
// submissions. maxPages <= 0 uses DefaultFrontPages.
func (s *Scraper) ScrapeFront(ctx context.Context, maxPages int) ([]model.Article, error) {
	if maxPages <= 0 {
		maxPages = DefaultFrontPages
	}
	return s.walk(ctx, s.baseURL+"/front", FeedFront, maxPages)
}

// ScrapeFrontForDay walks the recycled feed of a single day until the last page.
func (s *Scraper) ScrapeFrontForDay(ctx context.Context, day time.Time) ([]model.Article, error) {
	return s.walk(ctx, FrontURL(s.baseURL, day.Format("2006-01-02"), "1"), FeedFront, 0)
}

// walk follows pagination from start. A page that fails to load or parse
// ends the traversal; what was collected so far is returned. Only context
// cancellation is reported as an error.
func (s *Scraper) walk(ctx context.Context, start string, feed Feed, maxPages int) ([]model.Article, error) {
	var out []model.Article
	seen := make(map[string]bool)
	next := start
	for pages := 0; next != ""; pages++ {
		if maxPages > 0 && pages >= maxPages {
			break
		}
		if seen[next] {
			slog.Warn("hackernews: pagination loop detected", "feed", feed, "url", next)
			break
		}
		seen[next] = true
		if err := ctx.Err(); err != nil {
			return out, err
		}

		page, err := s.scrapePage(ctx, next, feed)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			slog.Error("hackernews: page failed", "feed", feed, "url", next, "err", err)
			break
		}
		slog.Info("hackernews: page scraped", "feed", feed, "url", next, "articles", len(page.Articles))
		out = append(out, page.Articles...)
		next = page.NextURL
	}
	return out, nil
}

func (s *Scraper) scrapePage(ctx context.Context, pageURL string, feed Feed) (Page, error) {
	p, err := s.renderer.Open(ctx, pageURL, browser.Options{Timeout: s.timeout})
	if err != nil {
		return Page{}, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			slog.Warn("hackernews: close page", "url", pageURL, "err", err)
		}
	}()
	html, err := p.HTML(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("read html: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}
	return s.extractor.Parse(doc, pageURL, feed), nil
}
