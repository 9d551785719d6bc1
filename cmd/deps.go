package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"gophersignal/internal/ai"
	"gophersignal/internal/browser"
	"gophersignal/internal/config"
	"gophersignal/internal/content"
	"gophersignal/internal/hackernews"
	"gophersignal/internal/metrics"
	"gophersignal/internal/prompt"
	"gophersignal/internal/provenance"
	"gophersignal/internal/redisclient"
	"gophersignal/internal/storage"
	"gophersignal/worker"
)

func newRenderer(ctx context.Context, cfg config.Config) (browser.Renderer, error) {
	return browser.New(ctx, browser.Settings{
		Driver:              cfg.Browser.Driver,
		ExecPath:            cfg.Browser.ExecPath,
		Headful:             cfg.Browser.Headful,
		UserAgent:           cfg.Browser.UserAgent,
		NavigationTimeout:   cfg.Browser.NavigationTimeout,
		CloudflareAccountID: cfg.Cloudflare.AccountID,
		CloudflareToken:     cfg.Cloudflare.Token,
	})
}

func newScraper(r browser.Renderer, cfg config.Config) *hackernews.Scraper {
	return hackernews.NewScraper(r, cfg.HackerNews.BaseURL, cfg.Browser.NavigationTimeout)
}

func newFetcher(r browser.Renderer, cfg config.Config, cache *storage.RedisStore, rec metrics.Recorder) *content.Fetcher {
	opts := content.Options{
		Timeout:     cfg.Browser.NavigationTimeout,
		Delay:       cfg.Fetch.Delay,
		MaxInFlight: cfg.Fetch.MaxInFlight,
		OnFetched:   rec.RecordFetched,
	}
	if cache != nil {
		opts.Cache = cache
	}
	return content.NewFetcher(r, opts)
}

func newSummarizer(cfg config.Config, rec metrics.Recorder) (*ai.Summarizer, error) {
	llm, err := ai.NewOpenAI(ai.Config{
		APIKey:      cfg.Summarizer.APIKey,
		Model:       cfg.Summarizer.Model,
		BaseURL:     cfg.Summarizer.BaseURL,
		MaxTokens:   cfg.Summarizer.MaxTokens,
		Temperature: cfg.Summarizer.Temperature,
		TopP:        cfg.Summarizer.TopP,
		Timeout:     cfg.Summarizer.Timeout,
		MaxRetries:  cfg.Summarizer.MaxRetries,
		RetryDelay:  cfg.Summarizer.RetryDelay,
	})
	if err != nil {
		return nil, err
	}
	prompts, err := prompt.Load(cfg.Summarizer.PromptsDir)
	if err != nil {
		return nil, err
	}
	var progress ai.Progress = ai.LogProgress{}
	if cfg.Summarizer.Progress {
		progress = ai.NewBarProgress(os.Stderr)
	}
	return ai.NewSummarizer(llm, ai.Options{
		MaxContentLength: cfg.Summarizer.MaxContentLength,
		MinContentLength: cfg.Summarizer.MinContentLength,
		Prompts:          prompts,
		Progress:         progress,
		OnResult:         rec.RecordSummarized,
	}), nil
}

func newCommitResolver(cfg config.Config) *provenance.CommitResolver {
	return provenance.NewCommitResolver(provenance.Options{
		Override: cfg.App.CommitHash,
		Token:    cfg.GitHub.Token,
		Owner:    cfg.GitHub.Owner,
		Repo:     cfg.GitHub.Repo,
		Branch:   cfg.GitHub.Branch,
		APIURL:   cfg.GitHub.APIURL,
	})
}

// pipeline bundles a workflow with the resources it does not own itself.
type pipeline struct {
	workflow *worker.Workflow
	metrics  *metrics.Collector
	rdb      *redis.Client
}

// buildPipeline wires every component from configuration. The caller must
// Close the result.
func buildPipeline(ctx context.Context, cfg config.Config) (*pipeline, error) {
	if cfg.Database.DSN == "" {
		return nil, errors.New("database.dsn (DATABASE_URL) is required")
	}
	store, err := storage.OpenPostgres(ctx, cfg.Database.DSN, cfg.Database.MaxContentLength)
	if err != nil {
		return nil, err
	}
	store.KeepSummariesOver(cfg.Workflow.DefaultSummary)

	col := metrics.NewCollector()
	summarizer, err := newSummarizer(cfg, col)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	p := &pipeline{metrics: col, rdb: redisclient.New(cfg.Redis)}
	var rs *storage.RedisStore
	if p.rdb != nil {
		rs = storage.NewRedisStore(p.rdb, cfg.Fetch.CacheTTL, cfg.Redis.LockTTL)
	}

	renderer, err := newRenderer(ctx, cfg)
	if err != nil {
		_ = store.Close()
		p.closeRedis()
		return nil, err
	}

	p.workflow = &worker.Workflow{
		Scraper:    newScraper(renderer, cfg),
		Fetcher:    newFetcher(renderer, cfg, rs, col),
		Summarizer: summarizer,
		Store:      store,
		Commits:    newCommitResolver(cfg),
		Browser:    renderer,
		Metrics:    col,
		Options: worker.WorkflowOptions{
			TopPages:          cfg.HackerNews.TopPages,
			FrontPages:        cfg.HackerNews.FrontPages,
			MaxTopSummaries:   cfg.Workflow.MaxTopSummaries,
			MaxTotalSummaries: cfg.Workflow.MaxTotalSummaries,
			DefaultSummary:    cfg.Workflow.DefaultSummary,
		},
	}
	if rs != nil {
		p.workflow.Lock = rs
	}
	return p, nil
}

// pushMetrics sends run metrics when a Pushgateway is configured.
func (p *pipeline) pushMetrics(ctx context.Context, cfg config.Config) {
	if err := p.metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		slog.Warn("metrics: push failed", "err", err)
	}
}

func (p *pipeline) closeRedis() {
	if p.rdb == nil {
		return
	}
	if err := p.rdb.Close(); err != nil {
		slog.Error("redis: close", "err", err)
	}
}

func (p *pipeline) Close() {
	p.workflow.Close()
	p.closeRedis()
}
