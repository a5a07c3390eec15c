package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/fibfill/internal/config"
	"github.com/agbru/fibfill/internal/format"
	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/ui"
)

// PrintExecutionConfig displays the planned run: total size, destinations,
// generator and environment.
//
// Parameters:
//   - cfg: The application configuration.
//   - p: The validated plan.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, p *plan.Plan, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	n := len(p.Destinations)
	if n == 1 {
		fmt.Fprintf(out, "Writing %s%s%s to %s%s%s",
			ui.ColorMagenta(), format.FormatByteCount(p.Total), ui.ColorReset(),
			ui.ColorCyan(), p.Destinations[0].Name, ui.ColorReset())
	} else {
		fmt.Fprintf(out, "Writing %s%d files%s of %s%s%s (%s-0.txt .. %s-%d.txt)",
			ui.ColorMagenta(), n, ui.ColorReset(),
			ui.ColorMagenta(), format.FormatByteCount(p.SplitSize), ui.ColorReset(),
			cfg.File, cfg.File, n-1)
		if p.Stop {
			fmt.Fprintf(out, ", stopping at %s%s%s", ui.ColorYellow(), format.FormatByteCount(p.Total), ui.ColorReset())
		}
	}
	if cfg.Timeout > 0 {
		fmt.Fprintf(out, " with a timeout of %s%s%s", ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	}
	fmt.Fprintf(out, ".\n")
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode displays the generator and how many destinations run
// at once.
func PrintExecutionMode(cfg config.AppConfig, out io.Writer) {
	var modeDesc string
	if cfg.Parallel > 1 {
		modeDesc = fmt.Sprintf("%s%d%s destinations at a time", ui.ColorGreen(), cfg.Parallel, ui.ColorReset())
	} else {
		modeDesc = "sequential"
	}
	fmt.Fprintf(out, "Execution mode: %s generator, %s.\n", cfg.Algo, modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
