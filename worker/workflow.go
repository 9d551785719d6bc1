package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gophersignal/internal/metrics"
	"gophersignal/internal/model"
)

// ErrRunInProgress is returned by Run when another run holds the lock.
var ErrRunInProgress = errors.New("workflow: another run is in progress")

const runLockName = "workflow"

// Scraper lists submissions from the two Hacker News feeds.
type Scraper interface {
	ScrapeFront(ctx context.Context, maxPages int) ([]model.Article, error)
	ScrapeTopStories(ctx context.Context, maxPages int) ([]model.Article, error)
}

// ContentFetcher fills Article.Content in place.
type ContentFetcher interface {
	FetchAll(ctx context.Context, articles []model.Article) error
}

// Summarizer returns the given articles with Summary and ModelName set.
type Summarizer interface {
	SummarizeAll(ctx context.Context, articles []model.Article) ([]model.Article, error)
}

// ArticleStore persists a batch.
type ArticleStore interface {
	SaveArticles(ctx context.Context, articles []model.Article) error
	Close() error
}

// RunLock prevents overlapping runs.
type RunLock interface {
	AcquireRunLock(ctx context.Context, name, owner string) (bool, error)
	ReleaseRunLock(ctx context.Context, name, owner string) error
}

// CommitSource yields the provenance hash stamped on every article.
type CommitSource interface {
	CommitHash(ctx context.Context) string
}

// WorkflowOptions are the per-run limits.
type WorkflowOptions struct {
	TopPages          int
	FrontPages        int
	MaxTopSummaries   int
	MaxTotalSummaries int
	DefaultSummary    string
}

// Workflow runs one scrape, fetch, summarize and persist batch. It owns the
// browser and the store and releases both in Close.
type Workflow struct {
	Scraper    Scraper
	Fetcher    ContentFetcher
	Summarizer Summarizer
	Store      ArticleStore
	Commits    CommitSource
	Browser    io.Closer        // optional
	Lock       RunLock          // optional
	Metrics    metrics.Recorder // optional
	Options    WorkflowOptions

	closeOnce sync.Once
}

func (w *Workflow) recorder() metrics.Recorder {
	if w.Metrics == nil {
		return metrics.Nop{}
	}
	return w.Metrics
}

// Run executes the stages in order. Any stage error aborts the run and is
// returned; the caller is expected to Close afterwards.
func (w *Workflow) Run(ctx context.Context) (err error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID)
	start := time.Now()
	rec := w.recorder()
	defer func() {
		rec.RecordRun(time.Since(start), err)
	}()

	if w.Lock != nil {
		ok, lerr := w.Lock.AcquireRunLock(ctx, runLockName, runID)
		switch {
		case lerr != nil:
			log.Warn("workflow: run lock unavailable, continuing unlocked", "err", lerr)
		case !ok:
			return ErrRunInProgress
		default:
			defer func() {
				if rerr := w.Lock.ReleaseRunLock(context.WithoutCancel(ctx), runLockName, runID); rerr != nil {
					log.Warn("workflow: release run lock", "err", rerr)
				}
			}()
		}
	}

	log.Info("workflow: scraping recycled feed")
	front, err := w.Scraper.ScrapeFront(ctx, w.Options.FrontPages)
	if err != nil {
		return fmt.Errorf("scrape front: %w", err)
	}
	rec.RecordScraped("front", len(front))
	buckets := Categorize(front)
	log.Info("workflow: categorized", "flagged", len(buckets.Flagged), "dead", len(buckets.Dead), "dupe", len(buckets.Dupe))

	log.Info("workflow: scraping top stories", "pages", w.Options.TopPages)
	top, err := w.Scraper.ScrapeTopStories(ctx, w.Options.TopPages)
	if err != nil {
		return fmt.Errorf("scrape top stories: %w", err)
	}
	rec.RecordScraped("top", len(top))

	merged := Merge(top, buckets)
	log.Info("workflow: fetching content", "articles", len(merged))
	if err := w.Fetcher.FetchAll(ctx, merged); err != nil {
		return fmt.Errorf("fetch content: %w", err)
	}

	sel := SelectForSummary(merged, top, buckets.Flagged, w.Options.MaxTopSummaries, w.Options.MaxTotalSummaries)
	log.Info("workflow: summarizing", "top", sel.Top, "flagged", len(sel.Articles)-sel.Top)
	summarized, err := w.Summarizer.SummarizeAll(ctx, sel.Articles)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	final := Arrange(merged, summarized, sel.Top, w.defaultSummary())

	hash := w.Commits.CommitHash(ctx)
	for i := range final {
		final[i].CommitHash = hash
	}

	if err := w.Store.SaveArticles(ctx, final); err != nil {
		return fmt.Errorf("save articles: %w", err)
	}
	rec.RecordSaved(len(final))
	log.Info("workflow: completed", "saved", len(final), "commit", hash, "elapsed", time.Since(start).Round(time.Second))
	return nil
}

func (w *Workflow) defaultSummary() string {
	if w.Options.DefaultSummary != "" {
		return w.Options.DefaultSummary
	}
	return model.NoSummary
}

// Close releases the browser and the store. Each is attempted regardless of
// the other and failures are only logged.
func (w *Workflow) Close() {
	w.closeOnce.Do(func() {
		if w.Browser != nil {
			if err := w.Browser.Close(); err != nil {
				slog.Error("workflow: close browser", "err", err)
			}
		}
		if w.Store != nil {
			if err := w.Store.Close(); err != nil {
				slog.Error("workflow: close store", "err", err)
			}
		}
		slog.Info("workflow: resources released")
	})
}
