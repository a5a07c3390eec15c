package metrics

import (
	"runtime"
	"sync"
)

// MemorySnapshot is a point-in-time reading of the Go runtime heap.
type MemorySnapshot struct {
	HeapAlloc  uint64 // live heap bytes
	Sys        uint64 // bytes obtained from the OS
	TotalAlloc uint64 // cumulative bytes allocated
	NumGC      uint32
}

// MemoryCollector reads runtime memory statistics and remembers the peak
// heap seen across samples. The engine streams through a bounded buffer, so
// the peak is the number worth reporting after a large run.
type MemoryCollector struct {
	mu       sync.Mutex
	baseline MemorySnapshot
	peakHeap uint64
}

// NewMemoryCollector creates a collector whose baseline is the current state.
func NewMemoryCollector() *MemoryCollector {
	mc := &MemoryCollector{}
	mc.baseline = mc.Snapshot()
	return mc
}

// Snapshot reads current memory statistics and updates the peak.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	snap := MemorySnapshot{
		HeapAlloc:  m.HeapAlloc,
		Sys:        m.Sys,
		TotalAlloc: m.TotalAlloc,
		NumGC:      m.NumGC,
	}
	mc.mu.Lock()
	mc.peakHeap = max(mc.peakHeap, snap.HeapAlloc)
	mc.mu.Unlock()
	return snap
}

// PeakHeap returns the largest HeapAlloc observed by Snapshot.
func (mc *MemoryCollector) PeakHeap() uint64 {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.peakHeap
}

// AllocatedSince returns the bytes allocated since the collector was created.
func (mc *MemoryCollector) AllocatedSince() uint64 {
	cur := mc.Snapshot()
	if cur.TotalAlloc < mc.baseline.TotalAlloc {
		return 0
	}
	return cur.TotalAlloc - mc.baseline.TotalAlloc
}
