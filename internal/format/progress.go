package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressState tracks the completion fraction of a fixed set of destinations.
// It is safe for concurrent use.
type ProgressState struct {
	mu              sync.Mutex
	progresses      []float64
	numDestinations int
}

// NewProgressState creates a state for n destinations, all at 0.
func NewProgressState(n int) *ProgressState {
	if n < 0 {
		n = 0
	}
	return &ProgressState{progresses: make([]float64, n), numDestinations: n}
}

// Update records the fraction for destination index. Out-of-range indexes
// are ignored and values are clamped to [0, 1].
func (ps *ProgressState) Update(index int, value float64) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if index < 0 || index >= len(ps.progresses) {
		return
	}
	ps.progresses[index] = clamp01(value)
}

// CalculateAverage returns the mean fraction over all destinations.
func (ps *ProgressState) CalculateAverage() float64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.averageLocked()
}

func (ps *ProgressState) averageLocked() float64 {
	if ps.numDestinations == 0 {
		return 0
	}
	var sum float64
	for _, p := range ps.progresses {
		sum += p
	}
	return sum / float64(ps.numDestinations)
}

// maxETA caps estimates so a stalled sink does not print absurd durations.
const maxETA = 24 * time.Hour

// ProgressWithETA extends ProgressState with a smoothed completion rate.
type ProgressWithETA struct {
	*ProgressState
	numDestinations int
	startTime       time.Time
	lastUpdate      time.Time
	lastProgress    float64
	// progressRate is the smoothed fraction completed per second.
	progressRate float64
}

// NewProgressWithETA creates an ETA tracker for n destinations.
func NewProgressWithETA(n int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState:   NewProgressState(n),
		numDestinations: n,
		startTime:       now,
		lastUpdate:      now,
	}
}

// UpdateWithETA records a progress value and returns the new average and
// the estimated remaining time.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)

	p.mu.Lock()
	defer p.mu.Unlock()
	avg := p.averageLocked()
	now := time.Now()
	if elapsed := now.Sub(p.lastUpdate).Seconds(); elapsed >= 0.1 && avg > p.lastProgress {
		instant := (avg - p.lastProgress) / elapsed
		if p.progressRate == 0 {
			p.progressRate = instant
		} else {
			p.progressRate = 0.3*instant + 0.7*p.progressRate
		}
		p.lastUpdate = now
		p.lastProgress = avg
	}
	return avg, p.etaLocked(avg)
}

// GetETA returns the current remaining-time estimate, 0 when unknown.
func (p *ProgressWithETA) GetETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.etaLocked(p.averageLocked())
}

func (p *ProgressWithETA) etaLocked(avg float64) time.Duration {
	if p.progressRate <= 0 || avg >= 1 {
		return 0
	}
	seconds := (1 - avg) / p.progressRate
	if seconds > maxETA.Seconds() {
		return maxETA
	}
	return time.Duration(seconds * float64(time.Second))
}

// Elapsed returns the time since the tracker was created.
func (p *ProgressWithETA) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// FormatETA renders an ETA compactly: "45s", "2m30s", "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta.Minutes())
		s := int(eta.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h := int(eta.Hours())
		m := int(eta.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ProgressBar renders a bar of the given length with block characters.
func ProgressBar(progress float64, length int) string {
	if length <= 0 {
		return ""
	}
	filled := int(clamp01(progress) * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar]  42.00% ETA: 1m3s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	p := clamp01(progress)
	etaStr := FormatETA(eta)
	if p >= 1 {
		etaStr = "done"
	}
	return fmt.Sprintf("[%s] %6.2f%% ETA: %s", ProgressBar(p, width), p*100, etaStr)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
