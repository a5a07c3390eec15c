package tui

import (
	"strings"
	"testing"
	"time"
)

func TestChartModel_View(t *testing.T) {
	c := NewChartModel()
	c.SetSize(60, 10)
	c.UpdateProgress(0.5, 90*time.Second)
	c.AddRate(1024)
	c.UpdateSysStats(SysStatsMsg{CPUPercent: 50, MemPercent: 25, DiskPercent: 75})

	view := c.View()
	for _, s := range []string{"50.0%", "ETA", "Rate", "CPU", "MEM", "DISK", "1.0 KiB/s", "75%"} {
		if !strings.Contains(view, s) {
			t.Errorf("view should contain %q:\n%s", s, view)
		}
	}
}

func TestChartModel_HidesSparklines_SmallHeight(t *testing.T) {
	c := NewChartModel()
	c.SetSize(60, 4)
	c.UpdateSysStats(SysStatsMsg{CPUPercent: 50})
	if strings.Contains(c.View(), "CPU") {
		t.Error("sparklines should be hidden when the panel is too short")
	}
}

func TestChartModel_SetDone(t *testing.T) {
	c := NewChartModel()
	c.SetSize(60, 4)
	c.SetDone(2 * time.Second)
	view := c.View()
	if !strings.Contains(view, "100.0%") || !strings.Contains(view, "in 2s") {
		t.Errorf("done chart should show the elapsed time:\n%s", view)
	}
}

func TestChartModel_SetSize_ResizesBuffers(t *testing.T) {
	c := NewChartModel()
	c.SetSize(40, 10)
	if c.cpu.Cap() != 16 || c.rate.Cap() != 16 {
		t.Errorf("buffers should match the sparkline width, got %d", c.cpu.Cap())
	}
}

func TestScaleToPercent(t *testing.T) {
	got := scaleToPercent([]float64{0, 50, 200})
	want := []float64{0, 25, 100}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scaleToPercent()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	for _, v := range scaleToPercent([]float64{0, 0}) {
		if v != 0 {
			t.Error("all-zero samples should stay zero")
		}
	}
}
