package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = 2 * time.Second
	defaultLoadingWait  = 60 * time.Second
	maxLoadingWaits     = 3
)

var (
	estimatedTimeRe = regexp.MustCompile(`estimated_time["']?\s*[:=]?\s*([0-9]+(?:\.[0-9]+)?)`)
	statusCodeRe    = regexp.MustCompile(`status code: (\d{3})`)
)

// RetryPolicy retries transient LLM failures. HTTP 500 and 503 are retried
// with a doubling delay. A "model loading" answer waits for the time the
// server estimates without consuming an attempt.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	LoadingWait  time.Duration // used when the server gives no estimate
	MaxWaits     int

	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy returns a policy with defaults for unset values.
func NewRetryPolicy(maxAttempts int, initialDelay time.Duration) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if initialDelay <= 0 {
		initialDelay = defaultInitialDelay
	}
	return RetryPolicy{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		LoadingWait:  defaultLoadingWait,
		MaxWaits:     maxLoadingWaits,
		sleep:        sleepCtx,
	}
}

// Do runs fn until it succeeds, fails permanently or ctx ends.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	delay := p.InitialDelay
	attempts, waits := 0, 0
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if wait, ok := loadingWait(err, p.LoadingWait); ok && waits < p.MaxWaits {
			waits++
			slog.Warn("ai: model loading, waiting", "wait", wait, "waits", waits)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}
		attempts++
		if !retryable(err) || attempts >= p.MaxAttempts {
			return err
		}
		slog.Warn("ai: transient error, retrying", "attempt", attempts, "delay", delay, "err", err)
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	// some client versions report non-JSON error bodies as plain errors
	if m := statusCodeRe.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code
	}
	return 0
}

func retryable(err error) bool {
	switch statusCode(err) {
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// loadingWait reports whether err says the model is still loading and how
// long to wait for it.
func loadingWait(err error, fallback time.Duration) (time.Duration, bool) {
	if statusCode(err) == 0 {
		return 0, false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "loading") && !strings.Contains(msg, "warming up") {
		return 0, false
	}
	if m := estimatedTimeRe.FindStringSubmatch(msg); m != nil {
		if secs, perr := strconv.ParseFloat(m[1], 64); perr == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second)), true
		}
	}
	return fallback, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
