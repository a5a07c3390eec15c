package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// retained keeps test allocations reachable so the compiler cannot elide them.
var retained [][]byte

func TestMemoryCollector(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCollector()
	snap := mc.Snapshot()
	assert.NotZero(t, snap.HeapAlloc)
	assert.NotZero(t, snap.Sys)
	assert.GreaterOrEqual(t, mc.PeakHeap(), snap.HeapAlloc)

	// Four write buffers of the default size.
	for range 4 {
		retained = append(retained, make([]byte, 256<<10))
	}
	assert.GreaterOrEqual(t, mc.AllocatedSince(), uint64(1<<20))
}

func TestMemoryCollectorConcurrentPeak(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCollector()
	start := mc.PeakHeap()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 10 {
				mc.Snapshot()
			}
		})
	}
	wg.Wait()
	assert.GreaterOrEqual(t, mc.PeakHeap(), start, "the peak never decreases")
}
