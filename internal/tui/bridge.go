package tui

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/orchestration"
	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/progress"
)

// sender is the part of tea.Program the bridge uses.
type sender interface {
	Send(msg tea.Msg)
}

// mailbox hands messages from the generation goroutines to the program.
// The model is copied on every Update, so it holds a *mailbox rather than
// the program itself. Messages sent before attach are dropped.
type mailbox struct {
	mu sync.RWMutex
	p  sender
}

func (m *mailbox) attach(p sender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = p
}

// Send forwards msg to the attached program, if any.
func (m *mailbox) Send(msg tea.Msg) {
	m.mu.RLock()
	p := m.p
	m.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// TUIProgressReporter turns progress updates into ProgressMsg values for
// the dashboard, followed by one ProgressDoneMsg.
type TUIProgressReporter struct {
	box *mailbox
}

var _ orchestration.ProgressReporter = (*TUIProgressReporter)(nil)

func (t *TUIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, destinations []plan.Destination, _ io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(len(destinations))
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	for update := range progressChan {
		ap := agg.Update(update)
		t.box.Send(ProgressMsg{
			DestinationIndex: ap.DestinationIndex,
			Value:            ap.Value,
			BytesWritten:     update.BytesWritten,
			AverageProgress:  ap.AverageProgress,
			TotalBytes:       ap.TotalBytes,
			ETA:              ap.ETA,
		})
	}
	t.box.Send(ProgressDoneMsg{})
}

// TUIResultPresenter delivers the report and errors to the dashboard
// instead of stdout.
type TUIResultPresenter struct {
	box *mailbox
}

var _ orchestration.ResultPresenter = (*TUIResultPresenter)(nil)

func (t *TUIResultPresenter) PresentReport(report orchestration.Report, _ bool, _ io.Writer) {
	t.box.Send(ReportMsg{Report: report})
}

// HandleError shows err on the dashboard and returns its exit code.
func (t *TUIResultPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	t.box.Send(ErrorMsg{Err: err, Duration: duration})
	return apperrors.ExitCodeFor(err)
}
