//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibfill/internal/format"
	"github.com/agbru/fibfill/internal/orchestration"
	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/progress"
	"github.com/agbru/fibfill/internal/ui"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing and maintenance.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Same interval as ProgressRefreshRate so both refresh together.
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress renders a spinner with an aggregated progress bar, the
// number of bytes written and an ETA until progressChan is closed. It calls
// wg.Done when the channel is drained.
//
// Parameters:
//   - wg: The WaitGroup to signal on completion.
//   - progressChan: Progress updates from the running destinations.
//   - destinations: The planned destinations.
//   - out: The writer the spinner renders to.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, destinations []plan.Destination, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(len(destinations))
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(progressSuffix(agg.CalculateAverage(), 0, agg.GetETA(), agg))
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	var last orchestration.AggregatedProgress
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.UpdateSuffix(progressSuffix(agg.CalculateAverage(), agg.TotalBytes(), 0, agg))
				return
			}
			last = agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(progressSuffix(last.AverageProgress, last.TotalBytes, last.ETA, agg))
		}
	}
}

// progressSuffix formats the text shown after the spinner.
func progressSuffix(avg float64, written int64, eta time.Duration, agg *orchestration.ProgressAggregator) string {
	label := "Generating"
	if agg.IsMultiDestination() {
		label = fmt.Sprintf("Generating %d files", agg.NumDestinations())
	}
	return fmt.Sprintf(" %s %s%s%s %s%s%s",
		label,
		ui.ColorGreen(), format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth), ui.ColorReset(),
		ui.ColorCyan(), format.FormatByteCount(written), ui.ColorReset())
}
