package progress

import (
	"sync"

	"github.com/agbru/fibfill/internal/logging"
)

// ProgressUpdate is a progress event for one destination.
type ProgressUpdate struct {
	// DestinationIndex is the position of the destination in the plan.
	DestinationIndex int
	// Value is the fraction of the destination budget written, in [0, 1].
	Value float64
	// BytesWritten is the number of bytes the destination has accepted.
	BytesWritten int64
}

// Callback receives the fraction of the budget written and the byte count.
type Callback func(value float64, bytesWritten int64)

// ProgressObserver is notified of progress for a destination.
type ProgressObserver interface {
	Update(destIndex int, value float64, bytesWritten int64)
}

// ProgressSubject fans progress out to registered observers.
type ProgressSubject struct {
	mu        sync.RWMutex
	observers []ProgressObserver
}

// NewProgressSubject returns a subject with no observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register adds an observer. Nil observers are ignored.
func (s *ProgressSubject) Register(o ProgressObserver) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Unregister removes an observer.
func (s *ProgressSubject) Unregister(o ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, obs := range s.observers {
		if obs == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify sends an update to every registered observer.
func (s *ProgressSubject) Notify(destIndex int, value float64, bytesWritten int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.Update(destIndex, value, bytesWritten)
	}
}

// ObserverCount returns the number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Freeze returns a Callback bound to destIndex that notifies the observers
// registered at the time of the call. The callback takes no lock.
func (s *ProgressSubject) Freeze(destIndex int) Callback {
	s.mu.RLock()
	snapshot := make([]ProgressObserver, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.RUnlock()

	return func(value float64, bytesWritten int64) {
		for _, o := range snapshot {
			o.Update(destIndex, value, bytesWritten)
		}
	}
}

// ChannelObserver forwards updates to a channel. Sends never block: an
// update is dropped when the channel is full.
type ChannelObserver struct {
	ch chan<- ProgressUpdate
}

// NewChannelObserver returns an observer writing to ch.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Update implements ProgressObserver.
func (o *ChannelObserver) Update(destIndex int, value float64, bytesWritten int64) {
	if o.ch == nil {
		return
	}
	select {
	case o.ch <- ProgressUpdate{DestinationIndex: destIndex, Value: value, BytesWritten: bytesWritten}:
	default:
	}
}

// LoggingObserver logs progress at debug level every time a destination
// crosses another Step of its budget.
type LoggingObserver struct {
	logger logging.Logger
	step   float64

	mu   sync.Mutex
	last map[int]float64
}

// NewLoggingObserver returns an observer logging every step (0.1 when step <= 0).
func NewLoggingObserver(logger logging.Logger, step float64) *LoggingObserver {
	if step <= 0 {
		step = 0.1
	}
	return &LoggingObserver{logger: logger, step: step, last: make(map[int]float64)}
}

// Update implements ProgressObserver.
func (o *LoggingObserver) Update(destIndex int, value float64, bytesWritten int64) {
	o.mu.Lock()
	last, seen := o.last[destIndex]
	emit := !seen || value-last >= o.step || (value >= 1 && last < 1)
	if emit {
		o.last[destIndex] = value
	}
	o.mu.Unlock()

	if emit {
		o.logger.Debug("progress",
			logging.Int("destination", destIndex),
			logging.Float64("fraction", value),
			logging.Int64("bytes", bytesWritten),
		)
	}
}

// NoOpObserver ignores all updates.
type NoOpObserver struct{}

// NewNoOpObserver returns a NoOpObserver.
func NewNoOpObserver() NoOpObserver { return NoOpObserver{} }

// Update implements ProgressObserver.
func (NoOpObserver) Update(int, float64, int64) {}

// Throttle wraps cb so that it fires only when the fraction advanced by at
// least minStep since the last call, or reached 1. A nil cb yields nil.
// The returned callback is not safe for concurrent use.
func Throttle(cb Callback, minStep float64) Callback {
	if cb == nil {
		return nil
	}
	last := -1.0
	return func(value float64, bytesWritten int64) {
		if value-last < minStep && !(value >= 1 && last < 1) {
			return
		}
		last = value
		cb(value, bytesWritten)
	}
}

// Fraction returns written/budget clamped to [0, 1]. A zero budget counts
// as complete.
func Fraction(written, budget int64) float64 {
	if budget <= 0 {
		return 1
	}
	f := float64(written) / float64(budget)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

var (
	_ ProgressObserver = (*ChannelObserver)(nil)
	_ ProgressObserver = (*LoggingObserver)(nil)
	_ ProgressObserver = NoOpObserver{}
)
