package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestSchedulerRunOnStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 1)
	var after error
	s := &Scheduler{
		Spec:       "0 3 * * *",
		RunOnStart: true,
		Runner: runnerFunc(func(context.Context) error {
			ran <- struct{}{}
			return ErrRunInProgress
		}),
		AfterRun: func(_ context.Context, err error) { after = err },
	}
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("initial run not triggered")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop")
	}
	if !errors.Is(after, ErrRunInProgress) {
		t.Fatalf("AfterRun got %v", after)
	}
}

func TestSchedulerRejectsBadCronExpression(t *testing.T) {
	s := &Scheduler{Spec: "every now and then", Runner: runnerFunc(func(context.Context) error { return nil })}
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected invalid cron expression error")
	}
}

func TestParseScheduleAcceptsWhatStartAccepts(t *testing.T) {
	noop := runnerFunc(func(context.Context) error { return nil })
	for _, expr := range []string{"0 * * * *", "@daily", "@hourly", "@every 30m"} {
		if err := ParseSchedule(expr); err != nil {
			t.Fatalf("ParseSchedule(%q): %v", expr, err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := &Scheduler{Spec: expr, Runner: noop}
		if err := s.Start(ctx); err != nil {
			t.Fatalf("Start(%q): %v", expr, err)
		}
	}
	for _, expr := range []string{"every now and then", "0 0 * * * *"} {
		if err := ParseSchedule(expr); err == nil {
			t.Fatalf("ParseSchedule(%q) accepted an invalid expression", expr)
		}
	}
}

func TestSchedulerSkipsOverlappingTrigger(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	s := &Scheduler{Runner: runnerFunc(func(context.Context) error {
		calls.Add(1)
		<-release
		return nil
	})}
	go s.trigger(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		running := s.running
		s.mu.Unlock()
		if running {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("first trigger never started")
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.trigger(context.Background())
	close(release)
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected overlapping trigger to be skipped, calls=%d", n)
	}
}

func TestManagerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	m := NewManager(workerFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}))
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()
	<-started
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Manager.Start: %v", err)
	}
}

type workerFunc func(ctx context.Context) error

func (f workerFunc) Start(ctx context.Context) error { return f(ctx) }

func TestManagerFailureCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(
		workerFunc(func(context.Context) error { return boom }),
		workerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}),
	)
	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background()) }()
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("expected worker error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("failing worker did not stop the manager")
	}
}
