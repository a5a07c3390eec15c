package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/progress"
)

// ProgressReporter renders updates while destinations are being written.
// The CLI spinner, the dashboard and quiet mode each provide one.
type ProgressReporter interface {
	// DisplayProgress runs in its own goroutine. It must consume ch until
	// it is closed, then call wg.Done. Updates carry the index of their
	// destination in dests.
	DisplayProgress(wg *sync.WaitGroup, ch <-chan progress.ProgressUpdate, dests []plan.Destination, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, ch <-chan progress.ProgressUpdate, dests []plan.Destination, out io.Writer)

func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, ch <-chan progress.ProgressUpdate, dests []plan.Destination, out io.Writer) {
	f(wg, ch, dests, out)
}

// NullProgressReporter discards every update. Used in quiet mode.
type NullProgressReporter struct{}

func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, ch <-chan progress.ProgressUpdate, _ []plan.Destination, _ io.Writer) {
	defer wg.Done()
	DrainChannel(ch)
}

// ResultPresenter shows how a run ended.
type ResultPresenter interface {
	// PresentReport prints the per-destination summary.
	PresentReport(report Report, verbose bool, out io.Writer)

	// HandleError reports a run-level failure, such as cancellation or
	// timeout, and returns the process exit code for it.
	HandleError(err error, duration time.Duration, out io.Writer) int
}
