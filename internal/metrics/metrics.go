// Package metrics records per-run pipeline counters and optionally pushes
// them to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder is what the workflow reports into.
type Recorder interface {
	RecordScraped(feed string, n int)
	RecordFetched(ok bool)
	RecordSummarized(outcome string)
	RecordSaved(n int)
	RecordRun(d time.Duration, err error)
}

// Collector implements Recorder on top of a Prometheus registry.
type Collector struct {
	reg        *prometheus.Registry
	scraped    *prometheus.CounterVec
	fetched    *prometheus.CounterVec
	summarized *prometheus.CounterVec
	saved      prometheus.Counter
	runs       *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		scraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophersignal_articles_scraped_total",
			Help: "Articles scraped from Hacker News, by feed.",
		}, []string{"feed"}),
		fetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophersignal_content_fetched_total",
			Help: "Article content fetches, by result.",
		}, []string{"result"}),
		summarized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophersignal_articles_summarized_total",
			Help: "Summarization outcomes.",
		}, []string{"outcome"}),
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gophersignal_articles_saved_total",
			Help: "Articles upserted into the database.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophersignal_runs_total",
			Help: "Workflow runs, by status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gophersignal_run_duration_seconds",
			Help:    "Wall time of a workflow run.",
			Buckets: []float64{30, 60, 120, 300, 600, 1200, 2400},
		}),
	}
	c.reg.MustRegister(c.scraped, c.fetched, c.summarized, c.saved, c.runs, c.duration)
	return c
}

// Registry exposes the underlying registry (tests, handlers).
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) RecordScraped(feed string, n int) {
	c.scraped.WithLabelValues(feed).Add(float64(n))
}

func (c *Collector) RecordFetched(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.fetched.WithLabelValues(result).Inc()
}

func (c *Collector) RecordSummarized(outcome string) {
	c.summarized.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordSaved(n int) {
	c.saved.Add(float64(n))
}

func (c *Collector) RecordRun(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.runs.WithLabelValues(status).Inc()
	c.duration.Observe(d.Seconds())
}

// Push sends the collected metrics to a Pushgateway. A blank url is a no-op.
func (c *Collector) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if job == "" {
		job = "gophersignal"
	}
	if err := push.New(url, job).Gatherer(c.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordScraped(string, int) {}
func (Nop) RecordFetched(bool) {}
func (Nop) RecordSummarized(string) {}
func (Nop) RecordSaved(int) {}
func (Nop) RecordRun(time.Duration, error) {}
