package tui

import (
	"strings"
	"testing"
	"time"
)

func TestMetricsModel_UpdateMemStats(t *testing.T) {
	m := NewMetricsModel(0)
	m.UpdateMemStats(MemStatsMsg{Alloc: 1 << 20, HeapSys: 2 << 20, NumGC: 3, NumGoroutine: 9})
	if m.alloc != 1<<20 || m.heapSys != 2<<20 || m.numGC != 3 || m.numGoroutine != 9 {
		t.Errorf("mem stats not applied: %+v", m)
	}
}

func TestMetricsModel_Throughput(t *testing.T) {
	m := NewMetricsModel(1000)
	m.lastUpdate = time.Now().Add(-time.Second)
	m.UpdateWritten(500)
	if m.Throughput() < 400 || m.Throughput() > 510 {
		t.Errorf("Throughput() = %v, want about 500", m.Throughput())
	}

	// Too soon after the previous sample: total is recorded, rate is kept.
	rate := m.Throughput()
	m.UpdateWritten(600)
	if m.written != 600 || m.Throughput() != rate {
		t.Errorf("written=%d rate=%v, want 600 and unchanged", m.written, m.Throughput())
	}
}

func TestMetricsModel_ThroughputSmoothing(t *testing.T) {
	m := NewMetricsModel(0)
	m.throughput = 100
	m.lastUpdate = time.Now().Add(-time.Second)
	m.UpdateWritten(1000)
	// 0.7*100 + 0.3*~1000
	if m.Throughput() < 350 || m.Throughput() > 380 {
		t.Errorf("Throughput() = %v, want about 370", m.Throughput())
	}
}

func TestMetricsModel_View(t *testing.T) {
	m := NewMetricsModel(2048)
	m.SetSize(80, 6)
	m.UpdateMemStats(MemStatsMsg{Alloc: 1024, HeapSys: 4096, NumGoroutine: 5})
	m.UpdateDisk(1 << 30)
	m.written = 1024

	view := m.View()
	for _, s := range []string{"Heap:", "1.0 KiB / 4.0 KiB", "Written:", "1.0 KiB / 2.0 KiB", "Goroutines:", "Disk free:", "1.0 GiB"} {
		if !strings.Contains(view, s) {
			t.Errorf("view should contain %q:\n%s", s, view)
		}
	}
}
