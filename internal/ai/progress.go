package ai

import (
	"io"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// Progress reports batch summarization progress.
type Progress interface {
	Start(total int)
	Step(title string, ok bool)
	Done()
}

// LogProgress reports progress through the logger only.
type LogProgress struct{}

func (LogProgress) Start(total int) { slog.Info("ai: summarizing", "articles", total) }

func (LogProgress) Step(title string, ok bool) {
	slog.Info("ai: summarized", "title", title, "ok", ok)
}

func (LogProgress) Done() {}

// BarProgress renders a terminal progress bar.
type BarProgress struct {
	out     io.Writer
	pw      progress.Writer
	tracker *progress.Tracker
}

// NewBarProgress creates a progress bar writing to out.
func NewBarProgress(out io.Writer) *BarProgress {
	return &BarProgress{out: out}
}

func (b *BarProgress) Start(total int) {
	pw := progress.NewWriter()
	pw.SetOutputWriter(b.out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetMessageLength(40)
	pw.SetStyle(progress.StyleDefault)
	pw.SetUpdateFrequency(200 * time.Millisecond)
	pw.Style().Visibility.ETA = true
	b.tracker = &progress.Tracker{Message: "Summarizing", Total: int64(total), Units: progress.UnitsDefault}
	pw.AppendTracker(b.tracker)
	b.pw = pw
	go pw.Render()
}

func (b *BarProgress) Step(title string, ok bool) {
	if b.tracker == nil {
		return
	}
	b.tracker.Increment(1)
	if !ok {
		slog.Debug("ai: summarization step failed", "title", title)
	}
}

func (b *BarProgress) Done() {
	if b.pw == nil {
		return
	}
	b.tracker.MarkAsDone()
	// let the renderer flush the final state
	time.Sleep(250 * time.Millisecond)
	b.pw.Stop()
}
