package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"gophersignal/internal/model"
	"gophersignal/internal/prompt"
)

var (
	// ErrEmptyResponse is returned when the model answered with nothing.
	ErrEmptyResponse = errors.New("empty response")
	// ErrSummaryUnavailable is the cause of a fallback that produced no usable text.
	ErrSummaryUnavailable = errors.New("summary unavailable")
)

// FatalError is returned when both tiers failed for an article.
type FatalError struct {
	Title string
	Cause error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("summarize %q: %v", e.Title, e.Cause)
}

func (e *FatalError) Unwrap() error { return e.Cause }

// Attempt is the outcome of one summarization tier: Structured, Fallback or
// Failed.
type Attempt interface{ attempt() }

// Structured is a usable tier one result.
type Structured struct {
	Fields StructuredSummary
	Text   string
}

// Fallback is a usable tier two result.
type Fallback struct {
	Text string
}

// Failed is a tier that produced nothing usable.
type Failed struct {
	Tier  prompt.Tier
	Cause error
}

func (Structured) attempt() {}
func (Fallback) attempt() {}
func (Failed) attempt() {}

// Options tunes a Summarizer.
type Options struct {
	MaxContentLength int // tier one input cap, 2000 when unset
	MinContentLength int // shorter content is not sent, 300 when unset
	Prompts          *prompt.Set
	Progress         Progress
	// OnResult is called once per article with the outcome tier:
	// "structured", "fallback", "skipped" or "failed".
	OnResult func(outcome string)
}

// Summarizer turns article text into a short multi-line synopsis.
type Summarizer struct {
	llm  Completer
	opts Options
}

// NewSummarizer creates a summarizer over llm.
func NewSummarizer(llm Completer, opts Options) *Summarizer {
	if opts.MaxContentLength <= 0 {
		opts.MaxContentLength = 2000
	}
	if opts.MinContentLength <= 0 {
		opts.MinContentLength = 300
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.Default()
	}
	if opts.Progress == nil {
		opts.Progress = LogProgress{}
	}
	return &Summarizer{llm: llm, opts: opts}
}

// Model returns the model name stamped on summarized articles.
func (s *Summarizer) Model() string { return s.llm.Model() }

// Summarize returns the synopsis for one article. Content below the minimum
// length yields model.NoSummary without calling the model. When both tiers
// fail a *FatalError is returned.
func (s *Summarizer) Summarize(ctx context.Context, title, content string) (string, error) {
	text, _, err := s.summarize(ctx, title, content)
	return text, err
}

func (s *Summarizer) summarize(ctx context.Context, title, content string) (string, string, error) {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < s.opts.MinContentLength {
		return model.NoSummary, "skipped", nil
	}

	var fallbackCause error
	switch a := s.structured(ctx, title, content).(type) {
	case Structured:
		return Sanitize(a.Text), "structured", nil
	case Failed:
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		slog.Warn("ai: structured summary abandoned", "title", title, "err", a.Cause)
	}

	switch a := s.fallback(ctx, title, content).(type) {
	case Fallback:
		return Sanitize(a.Text), "fallback", nil
	case Failed:
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		fallbackCause = a.Cause
	}
	return "", "failed", &FatalError{Title: title, Cause: fallbackCause}
}

func (s *Summarizer) structured(ctx context.Context, title, content string) Attempt {
	system, user, err := s.opts.Prompts.Render(prompt.TierStructured, prompt.Data{
		Title:   Escape(title),
		Content: Escape(Truncate(content, s.opts.MaxContentLength)),
	})
	if err != nil {
		return Failed{Tier: prompt.TierStructured, Cause: err}
	}
	var out StructuredSummary
	req := Request{Name: "structured_summary", System: system, User: user, Schema: &structuredSchema}
	if err := s.llm.Complete(ctx, req, &out); err != nil {
		return Failed{Tier: prompt.TierStructured, Cause: err}
	}
	if e := out.reportedError(); e != "" {
		return Failed{Tier: prompt.TierStructured, Cause: fmt.Errorf("model reported: %s", e)}
	}
	if f := out.missingField(); f != "" {
		return Failed{Tier: prompt.TierStructured, Cause: fmt.Errorf("missing field %s", f)}
	}
	lines := out.Lines()
	if len(lines) < 2 {
		return Failed{Tier: prompt.TierStructured, Cause: fmt.Errorf("only %d lines", len(lines))}
	}
	return Structured{Fields: out, Text: strings.Join(lines, "\n")}
}

func (s *Summarizer) fallback(ctx context.Context, title, content string) Attempt {
	system, user, err := s.opts.Prompts.Render(prompt.TierFallback, prompt.Data{
		Title:   Escape(title),
		Content: Escape(Truncate(content, s.opts.MaxContentLength)),
	})
	if err != nil {
		return Failed{Tier: prompt.TierFallback, Cause: err}
	}
	var out FallbackSummary
	req := Request{Name: "fallback_summary", System: system, User: user, Schema: &fallbackSchema}
	if err := s.llm.Complete(ctx, req, &out); err != nil {
		return Failed{Tier: prompt.TierFallback, Cause: err}
	}
	text := strings.TrimSpace(out.Summary)
	if text == "" || strings.EqualFold(text, model.NoSummary) {
		return Failed{Tier: prompt.TierFallback, Cause: ErrSummaryUnavailable}
	}
	return Fallback{Text: text}
}

// SummarizeAll summarizes articles one at a time and returns them with
// Summary and ModelName set. A failed article gets model.SummaryError and
// the batch continues. Only cancellation stops the batch early; the
// articles processed so far are returned with the error.
func (s *Summarizer) SummarizeAll(ctx context.Context, articles []model.Article) ([]model.Article, error) {
	out := make([]model.Article, 0, len(articles))
	s.opts.Progress.Start(len(articles))
	defer s.opts.Progress.Done()

	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		text, outcome, err := s.summarize(ctx, a.Title, a.Content)
		var fatal *FatalError
		switch {
		case errors.As(err, &fatal):
			slog.Error("ai: summarization failed", "hn_id", a.HNID, "err", err)
			text = model.SummaryError
		case err != nil:
			return out, err
		}
		a.Summary = text
		a.ModelName = s.llm.Model()
		out = append(out, a)
		if s.opts.OnResult != nil {
			s.opts.OnResult(outcome)
		}
		s.opts.Progress.Step(a.Title, outcome != "failed")
	}
	return out, nil
}
