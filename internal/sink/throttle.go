package sink

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// NewRateLimiter returns a limiter admitting bytesPerSec bytes per second
// with a one-second burst.
func NewRateLimiter(bytesPerSec int64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec))
}

// ThrottledStore wraps a Store so that all of its sinks share one byte-rate
// limit.
type ThrottledStore struct {
	Store
	limiter *rate.Limiter
}

// NewThrottledStore returns store limited to bytesPerSec. A non-positive
// rate returns store unchanged.
func NewThrottledStore(store Store, bytesPerSec int64) Store {
	if bytesPerSec <= 0 {
		return store
	}
	return &ThrottledStore{Store: store, limiter: NewRateLimiter(bytesPerSec)}
}

// Create implements Store.
func (t *ThrottledStore) Create(ctx context.Context, name string) (Sink, error) {
	s, err := t.Store.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return Throttle(ctx, s, t.limiter), nil
}

// Throttle wraps s so that writes wait on limiter.
func Throttle(ctx context.Context, s Sink, limiter *rate.Limiter) Sink {
	return &throttledSink{Sink: s, ctx: ctx, limiter: limiter}
}

type throttledSink struct {
	Sink
	ctx     context.Context
	limiter *rate.Limiter
}

// Write waits for tokens in chunks no larger than the limiter burst, since
// WaitN rejects requests above it.
func (s *throttledSink) Write(p []byte) (int, error) {
	burst := s.limiter.Burst()
	if burst <= 0 {
		return 0, io.ErrShortWrite
	}
	written := 0
	for len(p) > 0 {
		chunk := min(len(p), burst)
		if err := s.limiter.WaitN(s.ctx, chunk); err != nil {
			return written, err
		}
		n, err := s.Sink.Write(p[:chunk])
		written += n
		if err != nil {
			return written, err
		}
		p = p[chunk:]
	}
	return written, nil
}
