package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/fibonacci"
	"github.com/agbru/fibfill/internal/progress"
)

// DefaultBufferSize is the chunk buffer size used by DefaultOptions.
const DefaultBufferSize = 64 * 1024

// progressStep is the minimum advance, as a fraction of the budget, between
// two progress callbacks.
const progressStep = 0.01

const tracerName = "github.com/agbru/fibfill/internal/engine"

// Status is the terminal state of a generation.
type Status int

const (
	// StatusBudgetExhausted means the next term did not fit. It is the
	// normal outcome for a positive budget.
	StatusBudgetExhausted Status = iota
	// StatusBudgetZero means the budget was 0 and nothing was written.
	StatusBudgetZero
	// StatusWriteFailure means the destination rejected a write.
	StatusWriteFailure
	// StatusCanceled means the context ended between two terms.
	StatusCanceled
)

// String returns the lower-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusBudgetExhausted:
		return "budget_exhausted"
	case StatusBudgetZero:
		return "budget_zero"
	case StatusWriteFailure:
		return "write_failure"
	case StatusCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result describes one generation.
type Result struct {
	// BytesWritten is the number of bytes the destination accepted.
	BytesWritten int64
	// Terms is the number of terms handed to the destination.
	Terms uint64
	// Status is the terminal state.
	Status Status
	// Duration is the wall time of the generation.
	Duration time.Duration
}

// Options configures an Engine.
type Options struct {
	// BufferSize is the chunk buffer size in bytes. 0 writes every term
	// (with its separator) in its own Write call.
	BufferSize int
	// Progress, when set, receives the fraction of the budget written.
	// Calls are throttled to roughly one per percent.
	Progress progress.Callback
}

// DefaultOptions returns Options with a DefaultBufferSize chunk buffer.
func DefaultOptions() Options {
	return Options{BufferSize: DefaultBufferSize}
}

// Engine generates budgeted Fibonacci streams. An Engine holds no
// per-generation state and may be used by several goroutines at once.
type Engine struct {
	newGenerator fibonacci.Creator
	opts         Options
	tracer       trace.Tracer
}

// New returns an Engine that builds a fresh generator with creator for every
// call to Generate. A nil creator selects the decimal generator.
func New(creator fibonacci.Creator, opts Options) *Engine {
	if creator == nil {
		creator = func() fibonacci.Generator { return fibonacci.NewDecimalGenerator() }
	}
	if opts.BufferSize < 0 {
		opts.BufferSize = 0
	}
	return &Engine{
		newGenerator: creator,
		opts:         opts,
		tracer:       otel.Tracer(tracerName),
	}
}

// WithProgress returns a copy of e reporting to cb.
func (e *Engine) WithProgress(cb progress.Callback) *Engine {
	c := *e
	c.opts.Progress = cb
	return &c
}

// Generate writes the sequence to w until the next term would exceed budget,
// the context ends or w fails. Budget 0 writes nothing and returns
// StatusBudgetZero; a negative budget is a ValidationError.
//
// On write failure the error is a *WriteError; on cancellation it wraps both
// ErrCanceled and the context error. In every case Result.BytesWritten is
// exact.
func (e *Engine) Generate(ctx context.Context, w io.Writer, budget int64) (Result, error) {
	if budget < 0 {
		return Result{}, apperrors.ValidationError{
			Field:   "budget",
			Message: fmt.Sprintf("must be non-negative, got %d", budget),
		}
	}

	ctx, span := e.tracer.Start(ctx, "engine.Generate",
		trace.WithAttributes(
			attribute.Int64("fibfill.budget", budget),
			attribute.Int("fibfill.buffer_size", e.opts.BufferSize),
		))
	defer span.End()

	start := time.Now()
	res, err := e.generate(ctx, w, budget)
	res.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int64("fibfill.bytes_written", res.BytesWritten),
		attribute.Int64("fibfill.terms", int64(res.Terms)),
		attribute.String("fibfill.status", res.Status.String()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, res.Status.String())
	}
	return res, err
}

// stream is the state of one generation.
type stream struct {
	w        io.Writer
	budget   int64
	buf      []byte
	written  int64
	terms    uint64
	progress progress.Callback
}

// flush hands the staged bytes to the writer.
func (s *stream) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	err := s.write(s.buf)
	s.buf = s.buf[:0]
	return err
}

func (s *stream) write(p []byte) error {
	n, err := s.w.Write(p)
	if n > 0 {
		s.written += int64(n)
	}
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &WriteError{BytesWritten: s.written, Err: err}
	}
	if s.progress != nil {
		s.progress(progress.Fraction(s.written, s.budget), s.written)
	}
	return nil
}

func (e *Engine) generate(ctx context.Context, w io.Writer, budget int64) (Result, error) {
	if budget == 0 {
		return Result{Status: StatusBudgetZero}, nil
	}

	bufSize := e.opts.BufferSize
	if int64(bufSize) > budget {
		bufSize = int(budget)
	}
	s := &stream{
		w:        w,
		budget:   budget,
		buf:      make([]byte, 0, bufSize),
		progress: progress.Throttle(e.opts.Progress, progressStep),
	}
	gen := e.newGenerator()
	sizer, _ := gen.(fibonacci.Sizer)

	var term []byte
	staged := int64(0) // bytes written or buffered
	result := func(status Status) Result {
		return Result{BytesWritten: s.written, Terms: s.terms, Status: status}
	}

	for {
		select {
		case <-ctx.Done():
			if err := s.flush(); err != nil {
				return result(StatusWriteFailure), err
			}
			return result(StatusCanceled), fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		default:
		}

		sep := int64(0)
		if s.terms > 0 {
			sep = 1
		}
		if sizer != nil && staged+sep+int64(sizer.NextLen()) > budget {
			break
		}

		term = term[:0]
		if sep == 1 {
			term = append(term, '\n')
		}
		term = gen.Next(term)
		if staged+int64(len(term)) > budget {
			break
		}

		switch {
		case cap(s.buf) == 0:
			if err := s.write(term); err != nil {
				return result(StatusWriteFailure), err
			}
		case len(s.buf)+len(term) <= cap(s.buf):
			s.buf = append(s.buf, term...)
		default:
			if err := s.flush(); err != nil {
				return result(StatusWriteFailure), err
			}
			if len(term) > cap(s.buf) {
				if err := s.write(term); err != nil {
					return result(StatusWriteFailure), err
				}
			} else {
				s.buf = append(s.buf, term...)
			}
		}
		staged += int64(len(term))
		s.terms++
	}

	if err := s.flush(); err != nil {
		return result(StatusWriteFailure), err
	}
	return result(StatusBudgetExhausted), nil
}
