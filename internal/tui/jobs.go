package tui

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

const (
	jobKindLoad      jobKind = "load"
	jobKindUpload    jobKind = "upload"
	jobKindSummarize jobKind = "summarize"
	jobKindRisks     jobKind = "risks"
	jobKindChat      jobKind = "chat"
	jobKindExport    jobKind = "export"
	jobKindPersist   jobKind = "persist"
)

// jobDoneMsg reports a finished job. Payload is the job's own result message,
// re-dispatched by Update after the activity log is appended.
type jobDoneMsg struct {
	ID       string
	Kind     jobKind
	Err      string
	Duration time.Duration
	Payload  tea.Msg
}

type jobStartedMsg struct {
	ID   string
	Kind jobKind
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs one backend job per tea.Cmd and tags every completion with an
// ID and duration. The shared timeout comes from the API config so a stuck
// backend never wedges the UI.
type jobBus struct {
	timeout time.Duration
	counter int64
}

func newJobBus(timeout time.Duration) *jobBus {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &jobBus{timeout: timeout}
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := fmt.Sprintf("%s-%d", kind, atomic.AddInt64(&b.counter, 1))
	started := time.Now()

	announce := func() tea.Msg {
		return jobStartedMsg{ID: id, Kind: kind}
	}
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		payload, err := runner(ctx)
		done := jobDoneMsg{
			ID:       id,
			Kind:     kind,
			Duration: time.Since(started),
			Payload:  payload,
		}
		if err != nil {
			done.Err = err.Error()
		}
		log.Printf("[jobs] %s %s (duration=%s, err=%v)", kind, statusWord(err), done.Duration, err)
		return done
	}
	return tea.Sequence(announce, run)
}

func statusWord(err error) string {
	if err != nil {
		return "failed"
	}
	return "succeeded"
}
