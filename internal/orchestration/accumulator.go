package orchestration

import "sync"

// Accumulator is the running byte total of a run. It is the only state
// shared between concurrently generated destinations.
//
// Under stop semantics a destination reserves its budget before it starts,
// so concurrent destinations can never plan more than the total between
// them. Commit replaces the reservation with the bytes actually written.
type Accumulator struct {
	mu       sync.Mutex
	total    int64
	stop     bool
	written  int64
	reserved int64
}

// NewAccumulator returns an accumulator for a run of total bytes.
func NewAccumulator(total int64, stop bool) *Accumulator {
	return &Accumulator{total: total, stop: stop}
}

// Reserve grants a budget for a destination planned at planned bytes.
// Without stop semantics the planned budget is granted as is. With stop
// semantics the grant is clamped to what is left of the total, and ok is
// false when the grant would be empty: either nothing is left or the
// planned budget itself is zero.
func (a *Accumulator) Reserve(planned int64) (granted int64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.stop {
		return planned, true
	}
	granted = min(planned, a.total-a.written-a.reserved)
	if granted <= 0 {
		return 0, false
	}
	a.reserved += granted
	return granted, true
}

// Commit releases a reservation and records the bytes actually written.
func (a *Accumulator) Commit(granted, actual int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop {
		a.reserved -= granted
	}
	a.written += actual
}

// Reached reports whether the stop total has been written.
func (a *Accumulator) Reached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stop && a.written >= a.total
}

// Written returns the bytes committed so far.
func (a *Accumulator) Written() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.written
}
