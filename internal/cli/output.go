// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayProgress], [DisplayQuietSummary], [DisplayVerifyResults].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietSummary], [FormatVerifyResult].
//
//   - Print* functions describe the run before it starts.
//     Examples: [PrintExecutionConfig].

package cli

import (
	"fmt"
	"io"

	"github.com/agbru/fibfill/internal/format"
	"github.com/agbru/fibfill/internal/orchestration"
	"github.com/agbru/fibfill/internal/ui"
	"github.com/agbru/fibfill/internal/verify"
)

// FormatQuietSummary formats a report for quiet mode: the exact number of
// bytes written followed by the completed and planned destination counts.
// The line has no colors and is suitable for scripting.
func FormatQuietSummary(report orchestration.Report) string {
	return fmt.Sprintf("%d %d/%d",
		report.BytesWritten, report.Count(orchestration.OutcomeCompleted), len(report.Results))
}

// DisplayQuietSummary outputs a report in quiet mode (minimal output).
func DisplayQuietSummary(out io.Writer, report orchestration.Report) {
	fmt.Fprintln(out, FormatQuietSummary(report))
}

// FormatVerifyResult formats the verification of one destination.
func FormatVerifyResult(res verify.Result) string {
	switch {
	case res.Err != nil:
		return fmt.Sprintf("%s✗ %s: %v%s", ui.ColorRed(), res.Target.Name, res.Err, ui.ColorReset())
	case res.Report.Match:
		return fmt.Sprintf("%s✓ %s%s (%s, %d terms)", ui.ColorGreen(), res.Target.Name, ui.ColorReset(),
			format.FormatByteCount(res.Report.ActualLen), res.Report.Suffix.Terms)
	default:
		tail := "last term wrong"
		if res.Report.Suffix.Match {
			tail = "last term intact"
		}
		return fmt.Sprintf("%s✗ %s: first difference at byte %d (expected %d bytes, found %d, %s)%s",
			ui.ColorRed(), res.Target.Name, res.Report.MismatchOffset,
			res.Report.ExpectedLen, res.Report.ActualLen, tail, ui.ColorReset())
	}
}

// DisplayVerifyResults prints one line per verified destination.
func DisplayVerifyResults(results []verify.Result, out io.Writer) {
	fmt.Fprintf(out, "\n--- Verification ---\n")
	for _, res := range results {
		fmt.Fprintln(out, FormatVerifyResult(res))
	}
}
