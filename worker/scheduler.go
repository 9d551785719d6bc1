package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule validates a cron expression with the parser Start uses:
// five fields or a descriptor such as @daily or @every 1h.
func ParseSchedule(expr string) error {
	_, err := scheduleParser.Parse(expr)
	return err
}

// Runner is one batch execution, normally *Workflow.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler triggers a Runner on a five-field cron expression. A trigger
// that fires while the previous run is still going is skipped.
type Scheduler struct {
	Runner     Runner
	Spec       string
	RunOnStart bool
	// AfterRun is called with each run's result, e.g. to push metrics.
	AfterRun func(ctx context.Context, err error)

	mu      sync.Mutex
	running bool
}

// Start blocks until ctx is cancelled, then waits for an in-flight run.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(cron.WithParser(scheduleParser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(s.Spec, func() { s.trigger(ctx) }); err != nil {
		return fmt.Errorf("scheduler: invalid cron expression %q: %w", s.Spec, err)
	}
	slog.Info("scheduler: started", "cron", s.Spec)
	c.Start()
	var initial sync.WaitGroup
	if s.RunOnStart {
		initial.Add(1)
		go func() {
			defer initial.Done()
			s.trigger(ctx)
		}()
	}
	<-ctx.Done()
	<-c.Stop().Done()
	initial.Wait()
	slog.Info("scheduler: stopped")
	return nil
}

func (s *Scheduler) trigger(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Warn("scheduler: previous run still active, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	err := s.Runner.Run(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		slog.Info("scheduler: run held by another process, skipping")
	case err != nil:
		slog.Error("scheduler: run failed", "err", err)
	}
	if s.AfterRun != nil {
		s.AfterRun(ctx, err)
	}
}
