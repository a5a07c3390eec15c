package tui

import "strings"

// sparkLevels are the eight block heights, lowest first.
const sparkLevels = "▁▂▃▄▅▆▇█"

// RingBuffer keeps the newest samples of a dashboard series, up to its
// capacity. Older samples fall off the front.
type RingBuffer struct {
	samples  []float64
	capacity int
}

// NewRingBuffer returns an empty series holding at most capacity samples.
// A non-positive capacity is raised to 1.
func NewRingBuffer(capacity int) *RingBuffer {
	capacity = max(capacity, 1)
	return &RingBuffer{samples: make([]float64, 0, capacity), capacity: capacity}
}

// Push appends v, evicting the oldest sample when full.
func (r *RingBuffer) Push(v float64) {
	if len(r.samples) == r.capacity {
		copy(r.samples, r.samples[1:])
		r.samples = r.samples[:len(r.samples)-1]
	}
	r.samples = append(r.samples, v)
}

func (r *RingBuffer) Len() int { return len(r.samples) }
func (r *RingBuffer) Cap() int { return r.capacity }

// Last returns the newest sample, or 0 for an empty series.
func (r *RingBuffer) Last() float64 {
	if len(r.samples) == 0 {
		return 0
	}
	return r.samples[len(r.samples)-1]
}

// Slice returns a copy of the samples, oldest first, or nil when empty.
func (r *RingBuffer) Slice() []float64 {
	if len(r.samples) == 0 {
		return nil
	}
	return append([]float64(nil), r.samples...)
}

// Resize changes the capacity to follow the terminal width. When shrinking
// only the newest samples are kept.
func (r *RingBuffer) Resize(capacity int) {
	capacity = max(capacity, 1)
	if capacity == r.capacity {
		return
	}
	keep := r.samples[max(len(r.samples)-capacity, 0):]
	r.samples = append(make([]float64, 0, capacity), keep...)
	r.capacity = capacity
}

// Reset drops every sample and keeps the capacity.
func (r *RingBuffer) Reset() {
	r.samples = r.samples[:0]
}

// RenderSparkline draws percentages (clamped to 0..100) as block glyphs.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	levels := []rune(sparkLevels)
	var b strings.Builder
	b.Grow(len(values) * 3)
	for _, v := range values {
		v = min(max(v, 0), 100)
		b.WriteRune(levels[min(int(v/100*7), 7)])
	}
	return b.String()
}
