package orchestration

import (
	"time"

	"github.com/agbru/fibfill/internal/format"
	"github.com/agbru/fibfill/internal/progress"
)

// ProgressAggregator folds per-destination updates into one overall
// fraction, byte total and ETA. The CLI spinner and the dashboard both feed
// it from the progress channel.
type ProgressAggregator struct {
	state           *format.ProgressWithETA
	numDestinations int
	bytes           []int64
}

// NewProgressAggregator returns nil when there is nothing to track.
func NewProgressAggregator(numDestinations int) *ProgressAggregator {
	if numDestinations <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:           format.NewProgressWithETA(numDestinations),
		numDestinations: numDestinations,
		bytes:           make([]int64, numDestinations),
	}
}

// AggregatedProgress is the view after one update.
type AggregatedProgress struct {
	DestinationIndex int
	Value            float64 // fraction of the sender's budget, 0..1
	AverageProgress  float64 // mean fraction over all destinations
	TotalBytes       int64
	ETA              time.Duration // 0 until the rate is known
}

// Update records u and returns the new totals. Byte counts from indexes
// outside the plan are dropped. Not safe for concurrent use.
func (a *ProgressAggregator) Update(u progress.ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(u.DestinationIndex, u.Value)
	if u.DestinationIndex >= 0 && u.DestinationIndex < len(a.bytes) {
		a.bytes[u.DestinationIndex] = u.BytesWritten
	}
	return AggregatedProgress{
		DestinationIndex: u.DestinationIndex,
		Value:            u.Value,
		AverageProgress:  avg,
		TotalBytes:       a.TotalBytes(),
		ETA:              eta,
	}
}

// TotalBytes returns the sum of the latest byte counts.
func (a *ProgressAggregator) TotalBytes() int64 {
	var sum int64
	for _, b := range a.bytes {
		sum += b
	}
	return sum
}

// CalculateAverage returns the current mean fraction. The spinner calls it
// on every tick.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the last ETA estimate.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// NumDestinations returns the plan length.
func (a *ProgressAggregator) NumDestinations() int {
	return a.numDestinations
}

// IsMultiDestination reports whether the plan is split.
func (a *ProgressAggregator) IsMultiDestination() bool {
	return a.numDestinations > 1
}

// DrainChannel discards updates until ch is closed, so senders never block.
func DrainChannel(ch <-chan progress.ProgressUpdate) {
	for range ch {
	}
}
