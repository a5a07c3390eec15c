package engine

import (
	"errors"
	"fmt"
)

// ErrCanceled marks a generation that stopped because its context ended.
// The returned error also wraps the context error.
var ErrCanceled = errors.New("generation canceled")

// WriteError reports a failed write to the destination.
type WriteError struct {
	// BytesWritten is the total accepted by the destination, including the
	// partial count of the failing call.
	BytesWritten int64
	// Err is the error returned by the destination.
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed after %d bytes: %v", e.BytesWritten, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
