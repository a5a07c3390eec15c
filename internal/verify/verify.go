package verify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agbru/fibfill/internal/engine"
	"github.com/agbru/fibfill/internal/fibonacci"
	"github.com/agbru/fibfill/internal/sink"
)

// ErrMismatch is wrapped by Run when a destination differs from the stream.
var ErrMismatch = errors.New("content mismatch")

// Report describes one verification.
type Report struct {
	// Match is true when the content equals the expected stream.
	Match bool
	// MismatchOffset is the offset of the first differing byte, or -1.
	MismatchOffset int64
	// ExpectedLen is the length of the expected stream.
	ExpectedLen int64
	// ActualLen is the number of bytes read from the destination.
	ActualLen int64
	// Suffix checks the last term of the destination on its own, which
	// tells a damaged tail from damage earlier in the stream.
	Suffix SuffixReport
}

// Verify regenerates the stream for budget with creator and compares it
// byte for byte with r. A nil creator selects the decimal generator.
func Verify(ctx context.Context, r io.Reader, budget int64, creator fibonacci.Creator) (Report, error) {
	var suffix suffixScanner
	r = io.TeeReader(r, &suffix)
	cw := &comparingWriter{r: bufio.NewReaderSize(r, 64*1024), mismatch: -1}
	res, err := engine.New(creator, engine.DefaultOptions()).Generate(ctx, cw, budget)
	if err != nil && !errors.Is(err, errStop) {
		return Report{}, fmt.Errorf("regenerate stream: %w", err)
	}

	rep := Report{
		MismatchOffset: cw.mismatch,
		ExpectedLen:    res.BytesWritten,
		ActualLen:      cw.read,
	}
	if cw.readErr != nil {
		return rep, fmt.Errorf("read destination: %w", cw.readErr)
	}
	rest, err := io.Copy(io.Discard, cw.r)
	rep.ActualLen += rest
	if err != nil {
		return rep, fmt.Errorf("read destination: %w", err)
	}
	if rep.MismatchOffset < 0 && rest > 0 {
		rep.MismatchOffset = rep.ExpectedLen
	}
	rep.Match = rep.MismatchOffset < 0
	rep.Suffix = suffix.report()
	return rep, nil
}

var errStop = errors.New("verification stopped")

// comparingWriter compares everything written to it with r. After the
// first difference it only counts, so the engine still reports the full
// expected length.
type comparingWriter struct {
	r        *bufio.Reader
	buf      []byte
	read     int64
	mismatch int64
	readErr  error
}

func (c *comparingWriter) Write(p []byte) (int, error) {
	if c.mismatch >= 0 {
		return len(p), nil
	}
	if cap(c.buf) < len(p) {
		c.buf = make([]byte, len(p))
	}
	got := c.buf[:len(p)]
	n, err := io.ReadFull(c.r, got)
	for i := range n {
		if got[i] != p[i] {
			c.mismatch = c.read + int64(i)
			c.read += int64(n)
			return len(p), nil
		}
	}
	c.read += int64(n)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// Destination shorter than the stream.
		c.mismatch = c.read
	default:
		c.readErr = err
		return 0, errStop
	}
	return len(p), nil
}

// Target is a destination to verify and the budget it was generated with.
type Target struct {
	Name   string
	Budget int64
}

// Result is the verification of one Target.
type Result struct {
	Target Target
	Report Report
	Err    error
}

// Run verifies every target by reading it back from store. The returned
// error wraps ErrMismatch when at least one destination differs, and joins
// the read errors otherwise.
func Run(ctx context.Context, store sink.Store, targets []Target, creator fibonacci.Creator) ([]Result, error) {
	results := make([]Result, len(targets))
	var errs []error
	mismatches := 0
	for i, t := range targets {
		results[i].Target = t
		rc, err := store.Open(ctx, t.Name)
		if err != nil {
			results[i].Err = err
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
			continue
		}
		rep, err := Verify(ctx, rc, t.Budget, creator)
		closeErr := rc.Close()
		results[i].Report = rep
		if err = errors.Join(err, closeErr); err != nil {
			results[i].Err = err
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
			continue
		}
		if !rep.Match {
			mismatches++
		}
	}
	if mismatches > 0 {
		errs = append([]error{fmt.Errorf("%d of %d destinations: %w", mismatches, len(targets), ErrMismatch)}, errs...)
	}
	return results, errors.Join(errs...)
}
