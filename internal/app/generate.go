package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/fibfill/internal/cli"
	"github.com/agbru/fibfill/internal/engine"
	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/fibonacci"
	"github.com/agbru/fibfill/internal/logging"
	"github.com/agbru/fibfill/internal/metrics"
	"github.com/agbru/fibfill/internal/orchestration"
	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/progress"
	"github.com/agbru/fibfill/internal/sink"
	"github.com/agbru/fibfill/internal/tui"
	"github.com/agbru/fibfill/internal/verify"
)

// generation holds everything one run needs once the configuration has been
// turned into a plan, a store and an engine.
type generation struct {
	app     *Application
	plan    *plan.Plan
	store   sink.Store
	engine  *engine.Engine
	creator fibonacci.Creator
	logger  logging.Logger
	metrics orchestration.MetricsRecorder
}

// runGenerate builds the plan and the stores, then runs the generation in
// the mode selected by the flags.
func (a *Application) runGenerate(ctx context.Context, out io.Writer) int {
	logger := a.newLogger()

	p, err := plan.Build(a.Config.PlanSettings())
	if err != nil {
		return a.reportSetupError(err)
	}
	creator, err := a.Factory.Get(a.Config.Algo)
	if err != nil {
		return a.reportSetupError(apperrors.NewConfigError("%v", err))
	}
	bufSize, err := a.Config.BufferBytes()
	if err != nil {
		return a.reportSetupError(err)
	}
	store, local, err := a.buildStore()
	if err != nil {
		return a.reportSetupError(err)
	}

	var diskPath string
	if local != nil {
		if name, ok := firstLocal(p); ok {
			diskPath = local.Path(name)
			checkFreeSpace(local, name, p.PlannedBytes(), logger)
		}
	}

	g := &generation{
		app:     a,
		plan:    p,
		store:   store,
		engine:  engine.New(creator, engine.Options{BufferSize: bufSize}),
		creator: creator,
		logger:  logger,
	}

	if a.Config.MetricsAddr != "" {
		m := metrics.NewMetrics()
		srv := metrics.NewServer(a.Config.MetricsAddr, m, logger)
		if err := srv.Start(); err != nil {
			return a.reportSetupError(apperrors.NewConfigError("metrics endpoint %s: %v", a.Config.MetricsAddr, err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		g.metrics = m
	}

	if a.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.Timeout)
		defer cancel()
	}
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	switch {
	case a.Config.TUI:
		opts := tui.Options{Version: Version, Plan: p, DiskPath: diskPath}
		return tui.Run(ctx, opts, func(ctx context.Context, reporter orchestration.ProgressReporter, presenter orchestration.ResultPresenter) int {
			return g.run(ctx, reporter, presenter, io.Discard)
		})
	case a.Config.Quiet:
		return g.run(ctx, orchestration.NullProgressReporter{}, quietPresenter{errOut: a.ErrWriter}, out)
	default:
		cli.PrintExecutionConfig(a.Config, p, out)
		cli.PrintExecutionMode(a.Config, out)
		collector := metrics.NewMemoryCollector()
		code := g.run(ctx, cli.CLIProgressReporter{}, cli.CLIResultPresenter{}, out)
		if a.Config.Verbose {
			cli.DisplayMemoryStats(collector.Snapshot(), collector.PeakHeap(), out)
		}
		return code
	}
}

// run executes the plan, presents the report and, with --verify, reads the
// completed destinations back.
func (g *generation) run(ctx context.Context, reporter orchestration.ProgressReporter, presenter orchestration.ResultPresenter, out io.Writer) int {
	cfg := g.app.Config
	opts := []orchestration.Option{
		orchestration.WithParallel(cfg.Parallel),
		orchestration.WithLogger(g.logger),
		orchestration.WithProgressReporter(reporter, out),
	}
	if g.metrics != nil {
		opts = append(opts, orchestration.WithMetrics(g.metrics))
	}
	if cfg.Verbose {
		opts = append(opts, orchestration.WithObserver(progress.NewLoggingObserver(g.logger, 0.1)))
	}

	report := orchestration.New(g.store, g.engine, opts...).Run(ctx, g.plan)
	code := orchestration.AnalyzeReport(report, cfg.Verbose, presenter, out)
	if code != apperrors.ExitSuccess || !cfg.Verify {
		return code
	}
	return g.verify(ctx, report, presenter, out)
}

// verify re-generates every completed destination and compares it with
// what the store holds.
func (g *generation) verify(ctx context.Context, report orchestration.Report, presenter orchestration.ResultPresenter, out io.Writer) int {
	var targets []verify.Target
	for _, res := range report.Results {
		if res.Outcome == orchestration.OutcomeCompleted {
			targets = append(targets, verify.Target{Name: res.Destination.Name, Budget: res.Granted})
		}
	}
	if len(targets) == 0 {
		return apperrors.ExitSuccess
	}

	start := time.Now()
	results, err := verify.Run(ctx, g.store, targets, g.creator)
	cli.DisplayVerifyResults(results, out)
	if err == nil {
		g.logger.Info("verification passed", logging.Int("destinations", len(targets)))
		return apperrors.ExitSuccess
	}
	code := presenter.HandleError(err, time.Since(start), out)
	if errors.Is(err, verify.ErrMismatch) && !apperrors.IsContextError(err) {
		return apperrors.ExitErrorMismatch
	}
	return code
}

// reportSetupError prints an error raised before the run starts.
func (a *Application) reportSetupError(err error) int {
	fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
	return apperrors.ExitCodeFor(err)
}

// firstLocal returns the first destination of p that is a local path.
func firstLocal(p *plan.Plan) (string, bool) {
	for _, d := range p.Destinations {
		if loc, err := sink.ParseLocation(d.Name); err == nil && loc.IsLocal() {
			return d.Name, true
		}
	}
	return "", false
}

// checkFreeSpace warns when the file system holding name has less room than
// the run plans to write. The run still starts: destinations on other file
// systems or a stop total reached early can make the estimate pessimistic.
func checkFreeSpace(local *sink.LocalStore, name string, planned int64, logger logging.Logger) {
	free, err := local.FreeSpace(name)
	if err != nil {
		logger.Debug("free space unknown", logging.String("destination", name), logging.Err(err))
		return
	}
	if planned > 0 && uint64(planned) > free {
		logger.Warn("destination file system may run out of space",
			logging.String("destination", name),
			logging.Uint64("free", free),
			logging.Int64("planned", planned))
	}
}

// quietPresenter prints the one-line summary to the output and errors to
// the error stream.
type quietPresenter struct {
	errOut io.Writer
}

func (quietPresenter) PresentReport(report orchestration.Report, _ bool, out io.Writer) {
	cli.DisplayQuietSummary(out, report)
}

func (p quietPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	return cli.CLIResultPresenter{}.HandleError(err, duration, p.errOut)
}
