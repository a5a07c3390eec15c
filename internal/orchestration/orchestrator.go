package orchestration

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/agbru/fibfill/internal/engine"
	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/logging"
	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/progress"
	"github.com/agbru/fibfill/internal/sink"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the number of updates dropped when the UI
// is slow to consume them.
const ProgressBufferMultiplier = 16

const tracerName = "github.com/agbru/fibfill/internal/orchestration"

// Outcome classifies what happened to one destination.
type Outcome int

const (
	// OutcomeNotStarted means the run ended before the destination was reached.
	OutcomeNotStarted Outcome = iota
	// OutcomeCompleted means the engine filled the granted budget.
	OutcomeCompleted
	// OutcomeSkipped means the stop total left no room for the destination.
	OutcomeSkipped
	// OutcomeOpenFailed means the destination could not be created.
	OutcomeOpenFailed
	// OutcomeWriteFailed means the destination rejected a write.
	OutcomeWriteFailed
	// OutcomeCloseFailed means the data was written but could not be committed.
	OutcomeCloseFailed
	// OutcomeCanceled means the run was canceled while the destination was open.
	OutcomeCanceled
)

// String returns the lower-case name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNotStarted:
		return "not_started"
	case OutcomeCompleted:
		return "completed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeOpenFailed:
		return "open_failed"
	case OutcomeWriteFailed:
		return "write_failed"
	case OutcomeCloseFailed:
		return "close_failed"
	case OutcomeCanceled:
		return "canceled"
	}
	return "unknown"
}

// Failed reports whether the outcome counts as a failure of the run.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeOpenFailed, OutcomeWriteFailed, OutcomeCloseFailed, OutcomeCanceled:
		return true
	}
	return false
}

// DestinationResult is the outcome of one destination.
type DestinationResult struct {
	Destination plan.Destination
	// Granted is the budget handed to the engine, after the stop clamp.
	Granted int64
	// Result is the engine result. Zero when the engine never ran.
	Result  engine.Result
	Outcome Outcome
	// Err is an apperrors.GenerationError for failed outcomes.
	Err error
	// Duration covers open, generation and close.
	Duration time.Duration
}

// MetricsRecorder receives per-destination events.
type MetricsRecorder interface {
	DestinationStarted()
	DestinationFinished(status string, bytes int64, terms uint64, d time.Duration)
	DestinationSkipped()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithParallel bounds the number of destinations generated at once.
// Values below 1 select 1.
func WithParallel(n int) Option {
	return func(o *Orchestrator) { o.parallel = max(n, 1) }
}

// WithLogger sets the logger for destination events.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithProgressReporter routes engine progress to r, which writes to out.
func WithProgressReporter(r ProgressReporter, out io.Writer) Option {
	return func(o *Orchestrator) {
		o.reporter = r
		o.out = out
	}
}

// WithObserver adds a progress observer, e.g. a progress.LoggingObserver.
func WithObserver(obs progress.ProgressObserver) Option {
	return func(o *Orchestrator) { o.subject.Register(obs) }
}

// Orchestrator runs the engine once per planned destination.
type Orchestrator struct {
	store    sink.Store
	engine   *engine.Engine
	parallel int
	logger   logging.Logger
	metrics  MetricsRecorder
	reporter ProgressReporter
	out      io.Writer
	subject  *progress.ProgressSubject
	tracer   trace.Tracer
}

// New creates an Orchestrator writing through store with eng.
func New(store sink.Store, eng *engine.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		engine:   eng,
		parallel: 1,
		logger:   logging.NopLogger{},
		subject:  progress.NewProgressSubject(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run generates every destination of p and returns the report.
//
// Destinations are started in plan order, at most parallel at a time. Under
// stop semantics no destination starts once the total is written, and a
// destination with no room left is skipped and ends the run. A destination
// that fails to open or write is recorded and the run continues; there is no
// retry. Cancellation of ctx stops scheduling and interrupts the running
// destinations between two terms.
func (o *Orchestrator) Run(ctx context.Context, p *plan.Plan) Report {
	ctx, span := o.tracer.Start(ctx, "orchestration.Run",
		trace.WithAttributes(
			attribute.Int("fibfill.destinations", len(p.Destinations)),
			attribute.Int64("fibfill.total", p.Total),
			attribute.Bool("fibfill.stop", p.Stop),
			attribute.Int("fibfill.parallel", o.parallel),
		))
	defer span.End()

	start := time.Now()
	report := Report{
		Total:   p.Total,
		Stop:    p.Stop,
		Results: make([]DestinationResult, len(p.Destinations)),
	}
	for i, d := range p.Destinations {
		report.Results[i] = DestinationResult{Destination: d}
	}

	var displayWg sync.WaitGroup
	var progressChan chan progress.ProgressUpdate
	var channelObs *progress.ChannelObserver
	if o.reporter != nil {
		progressChan = make(chan progress.ProgressUpdate, max(len(p.Destinations), 1)*ProgressBufferMultiplier)
		channelObs = progress.NewChannelObserver(progressChan)
		o.subject.Register(channelObs)
		displayWg.Add(1)
		go o.reporter.DisplayProgress(&displayWg, progressChan, p.Destinations, o.out)
	}

	acc := NewAccumulator(p.Total, p.Stop)
	sem := semaphore.NewWeighted(int64(o.parallel))
	var g errgroup.Group

schedule:
	for i, d := range p.Destinations {
		// Acquire before reserving so a sequential run budgets every
		// destination against the bytes its predecessors actually wrote.
		if err := sem.Acquire(ctx, 1); err != nil {
			report.ctxErr = err
			break
		}
		switch {
		case ctx.Err() != nil:
			report.ctxErr = ctx.Err()
			sem.Release(1)
			break schedule
		case acc.Reached():
			o.logger.Info("stopping: total size reached", logging.Int64("total", p.Total))
			report.Stopped = true
			sem.Release(1)
			break schedule
		}

		granted, ok := acc.Reserve(d.Budget)
		if !ok {
			o.logger.Info("skipping destination: size limit reached",
				logging.String("destination", d.Name), logging.Int64("total", p.Total))
			report.Results[i].Outcome = OutcomeSkipped
			report.Stopped = true
			if o.metrics != nil {
				o.metrics.DestinationSkipped()
			}
			sem.Release(1)
			break
		}

		g.Go(func() error {
			defer sem.Release(1)
			res := o.runDestination(ctx, d, granted)
			acc.Commit(granted, res.Result.BytesWritten)
			report.Results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if !report.Stopped && report.ctxErr == nil && acc.Reached() {
		o.logger.Info("stopping: total size reached", logging.Int64("total", p.Total))
	}

	if channelObs != nil {
		o.subject.Unregister(channelObs)
		close(progressChan)
		displayWg.Wait()
	}

	report.BytesWritten = acc.Written()
	report.Duration = time.Since(start)

	span.SetAttributes(attribute.Int64("fibfill.bytes_written", report.BytesWritten))
	if err := report.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
	}
	return report
}

// runDestination opens d, generates granted bytes into it and closes it.
// The sink is closed on success and aborted on every other path.
func (o *Orchestrator) runDestination(ctx context.Context, d plan.Destination, granted int64) DestinationResult {
	ctx, span := o.tracer.Start(ctx, "orchestration.destination",
		trace.WithAttributes(
			attribute.String("fibfill.destination", d.Name),
			attribute.Int64("fibfill.budget", granted),
		))
	defer span.End()

	start := time.Now()
	res := DestinationResult{Destination: d, Granted: granted}
	if o.metrics != nil {
		o.metrics.DestinationStarted()
	}
	defer func() {
		res.Duration = time.Since(start)
		if o.metrics != nil {
			status := res.Outcome.String()
			if res.Outcome == OutcomeCompleted {
				status = res.Result.Status.String()
			}
			o.metrics.DestinationFinished(status, res.Result.BytesWritten, res.Result.Terms, res.Duration)
		}
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Outcome.String())
		}
	}()

	o.logger.Info("opening destination",
		logging.String("destination", d.Name), logging.Int64("size", granted))

	s, err := o.store.Create(ctx, d.Name)
	if err != nil {
		res.Outcome = OutcomeOpenFailed
		if apperrors.IsContextError(err) {
			res.Outcome = OutcomeCanceled
		}
		res.Err = apperrors.GenerationError{Destination: d.Name, Cause: err}
		o.logger.Error("failed to open destination", err, logging.String("destination", d.Name))
		return res
	}

	eng := o.engine
	if o.subject.ObserverCount() > 0 {
		eng = eng.WithProgress(o.subject.Freeze(d.Index))
	}
	r, genErr := eng.Generate(ctx, s, granted)
	res.Result = r

	if genErr != nil {
		if abortErr := s.Abort(); abortErr != nil {
			o.logger.Error("failed to abort destination", abortErr, logging.String("destination", d.Name))
		}
		res.Outcome = OutcomeWriteFailed
		if r.Status == engine.StatusCanceled {
			res.Outcome = OutcomeCanceled
		}
		res.Err = apperrors.GenerationError{Destination: d.Name, BytesWritten: r.BytesWritten, Cause: genErr}
		o.logger.Error("generation failed", genErr,
			logging.String("destination", d.Name),
			logging.Int64("bytes", r.BytesWritten),
			logging.String("status", r.Status.String()))
		return res
	}

	if err := s.Close(); err != nil {
		res.Outcome = OutcomeCloseFailed
		res.Err = apperrors.GenerationError{Destination: d.Name, BytesWritten: r.BytesWritten, Cause: err}
		o.logger.Error("failed to close destination", err, logging.String("destination", d.Name))
		return res
	}

	res.Outcome = OutcomeCompleted
	o.subject.Freeze(d.Index)(1, r.BytesWritten)
	o.logger.Info("destination complete",
		logging.String("destination", d.Name),
		logging.Int64("bytes", r.BytesWritten),
		logging.Uint64("terms", r.Terms),
		logging.String("status", r.Status.String()),
		logging.Duration("duration", r.Duration))
	return res
}

// Report is the outcome of a run.
type Report struct {
	// Total is the total size of the plan in bytes.
	Total int64
	// Stop is true when the total bounded the run.
	Stop bool
	// Results has one entry per planned destination, in plan order.
	Results []DestinationResult
	// BytesWritten is the sum of the bytes accepted by every destination.
	BytesWritten int64
	// Stopped is true when the stop rule ended the run early.
	Stopped  bool
	Duration time.Duration

	ctxErr error
}

// Count returns the number of destinations with outcome oc.
func (r Report) Count(oc Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == oc {
			n++
		}
	}
	return n
}

// Failures returns the failed destinations in plan order.
func (r Report) Failures() []DestinationResult {
	var out []DestinationResult
	for _, res := range r.Results {
		if res.Outcome.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Err joins the errors of the failed destinations and the cancellation
// cause, if any. It is nil for a successful run.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failures() {
		errs = append(errs, res.Err)
	}
	if r.ctxErr != nil {
		errs = append(errs, r.ctxErr)
	}
	return errors.Join(errs...)
}

// ExitCode maps the report to the process exit code: 0 when every started
// destination completed, 130 or 2 on cancellation or timeout, 1 otherwise.
func (r Report) ExitCode() int {
	return apperrors.ExitCodeFor(r.Err())
}

// AnalyzeReport presents the report and returns the exit code of the run.
// Run-level failures are handed to the presenter's HandleError.
func AnalyzeReport(report Report, verbose bool, presenter ResultPresenter, out io.Writer) int {
	presenter.PresentReport(report, verbose, out)
	if err := report.Err(); err != nil {
		return presenter.HandleError(err, report.Duration, out)
	}
	return apperrors.ExitSuccess
}
