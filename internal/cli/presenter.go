package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/format"
	"github.com/agbru/fibfill/internal/metrics"
	"github.com/agbru/fibfill/internal/orchestration"
	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/progress"
	"github.com/agbru/fibfill/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter for CLI output.
// It wraps the DisplayProgress function to provide a spinner and progress bar
// display during generation.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for running destinations.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, destinations []plan.Destination, out io.Writer) {
	DisplayProgress(wg, progressChan, destinations, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for CLI output.
type CLIResultPresenter struct{}

var _ orchestration.ResultPresenter = CLIResultPresenter{}

// PresentReport prints the run summary. The per-destination table lists
// every destination in verbose mode and only the failed ones otherwise.
func (CLIResultPresenter) PresentReport(report orchestration.Report, verbose bool, out io.Writer) {
	fmt.Fprintf(out, "\n--- Summary ---\n")

	rows := report.Results
	if !verbose {
		rows = report.Failures()
	}
	if len(rows) > 0 {
		presentTable(rows, out)
		fmt.Fprintln(out)
	}

	completed := report.Count(orchestration.OutcomeCompleted)
	skipped := report.Count(orchestration.OutcomeSkipped)
	failed := len(report.Failures())
	fmt.Fprintf(out, "Destinations: %s%d completed%s", ui.ColorGreen(), completed, ui.ColorReset())
	if skipped > 0 {
		fmt.Fprintf(out, ", %s%d skipped%s", ui.ColorYellow(), skipped, ui.ColorReset())
	}
	if failed > 0 {
		fmt.Fprintf(out, ", %s%d failed%s", ui.ColorRed(), failed, ui.ColorReset())
	}
	fmt.Fprintf(out, " of %d\n", len(report.Results))

	written := format.FormatByteCount(report.BytesWritten)
	if report.Stop {
		fmt.Fprintf(out, "Written:      %s%s%s of %s total\n",
			ui.ColorCyan(), written, ui.ColorReset(), format.FormatByteCount(report.Total))
	} else {
		fmt.Fprintf(out, "Written:      %s%s%s\n", ui.ColorCyan(), written, ui.ColorReset())
	}
	if report.Stopped {
		fmt.Fprintf(out, "Stopped:      total size reached\n")
	}

	rate := ""
	if secs := report.Duration.Seconds(); secs > 0 {
		rate = fmt.Sprintf(" (%s)", format.FormatRate(float64(report.BytesWritten)/secs))
	}
	fmt.Fprintf(out, "Duration:     %s%s%s%s\n",
		ui.ColorYellow(), format.FormatExecutionDuration(report.Duration), ui.ColorReset(), rate)
}

// presentTable prints one row per destination. Uses manual padding so the
// ANSI color codes do not break the alignment.
func presentTable(rows []orchestration.DestinationResult, out io.Writer) {
	headers := []string{"File", "Budget", "Written", "Terms", "Status"}
	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for r, res := range rows {
		cells[r] = []string{
			res.Destination.Name,
			format.FormatByteCount(res.Granted),
			format.FormatByteCount(res.Result.BytesWritten),
			format.FormatNumberString(strconv.FormatUint(res.Result.Terms, 10)),
			res.Outcome.String(),
		}
		for i, c := range cells[r] {
			widths[i] = max(widths[i], len(c))
		}
	}

	for i, h := range headers {
		fmt.Fprintf(out, "%s%s%s%s   ", ui.ColorUnderline(), h, ui.ColorReset(), padRight("", widths[i]-len(h)))
	}
	fmt.Fprintf(out, "%sDuration%s\n", ui.ColorUnderline(), ui.ColorReset())

	for r, res := range rows {
		for i, c := range cells[r] {
			color := ""
			if i == len(headers)-1 {
				color = outcomeColor(res.Outcome)
			}
			fmt.Fprintf(out, "%s%s%s%s   ", color, c, ui.ColorReset(), padRight("", widths[i]-len(c)))
		}
		fmt.Fprintf(out, "%s", format.FormatExecutionDuration(res.Duration))
		if res.Err != nil {
			fmt.Fprintf(out, "   %s%v%s", ui.ColorRed(), res.Err, ui.ColorReset())
		}
		fmt.Fprintln(out)
	}
}

func outcomeColor(o orchestration.Outcome) string {
	switch {
	case o == orchestration.OutcomeCompleted:
		return ui.ColorGreen()
	case o.Failed():
		return ui.ColorRed()
	}
	return ui.ColorYellow()
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + strings.Repeat(" ", length)
}

// HandleError prints a run-level error and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	code := apperrors.ExitCodeFor(err)
	elapsed := format.FormatExecutionDuration(duration)
	switch code {
	case apperrors.ExitErrorTimeout:
		fmt.Fprintf(out, "%sTimed out after %s.%s\n", ui.ColorRed(), elapsed, ui.ColorReset())
	case apperrors.ExitErrorCanceled:
		fmt.Fprintf(out, "%sCanceled after %s.%s\n", ui.ColorYellow(), elapsed, ui.ColorReset())
	default:
		var genErr apperrors.GenerationError
		if errors.As(err, &genErr) {
			fmt.Fprintf(out, "%sGeneration failed:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
		} else {
			fmt.Fprintf(out, "%sError:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
		}
	}
	return code
}

// DisplayMemoryStats shows memory statistics after a run.
func DisplayMemoryStats(snap metrics.MemorySnapshot, peakHeap uint64, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Peak heap:       %s\n", format.FormatBytes(peakHeap))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(snap.TotalAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", snap.NumGC)
}
