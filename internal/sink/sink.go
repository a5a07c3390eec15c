//go:generate mockgen -source=sink.go -destination=mocks/mock_sink.go -package=mocks

package sink

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrClosed is returned when a sink is used after Close or Abort.
	ErrClosed = errors.New("sink: already closed")
	// ErrUnsupportedScheme is returned for destination URLs with an unknown scheme.
	ErrUnsupportedScheme = errors.New("sink: unsupported scheme")
	// ErrNotFound is returned by Open for a missing destination.
	ErrNotFound = errors.New("sink: not found")
	// ErrAborted is the error remote uploads see when a sink is aborted.
	ErrAborted = errors.New("sink: upload aborted")
)

// Sink is an open destination.
type Sink interface {
	io.WriteCloser
	// Abort finishes the sink without committing it. Calling Abort after
	// Close is a no-op.
	Abort() error
}

// Store creates sinks and opens what they wrote.
type Store interface {
	// Create opens name for writing, truncating any previous content.
	Create(ctx context.Context, name string) (Sink, error)
	// Open opens name for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
