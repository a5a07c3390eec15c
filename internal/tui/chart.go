package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/fibfill/internal/format"
)

const sparklineCapacity = 120

// ChartModel shows the overall progress, the write rate history and the
// host resource sparklines.
type ChartModel struct {
	progress float64
	eta      time.Duration
	done     bool
	elapsed  time.Duration

	rate *RingBuffer
	cpu  *RingBuffer
	mem  *RingBuffer
	disk *RingBuffer

	width  int
	height int
}

// NewChartModel creates an empty chart.
func NewChartModel() ChartModel {
	return ChartModel{
		rate: NewRingBuffer(sparklineCapacity),
		cpu:  NewRingBuffer(sparklineCapacity),
		mem:  NewRingBuffer(sparklineCapacity),
		disk: NewRingBuffer(sparklineCapacity),
	}
}

// SetSize updates dimensions and resizes the sample buffers to the
// sparkline width.
func (c *ChartModel) SetSize(w, h int) {
	c.width = w
	c.height = h
	n := max(w-24, 1)
	c.rate.Resize(n)
	c.cpu.Resize(n)
	c.mem.Resize(n)
	c.disk.Resize(n)
}

// UpdateProgress records the aggregated progress and ETA.
func (c *ChartModel) UpdateProgress(avg float64, eta time.Duration) {
	c.progress = avg
	c.eta = eta
}

// AddRate appends a write rate sample in bytes per second.
func (c *ChartModel) AddRate(bytesPerSecond float64) {
	c.rate.Push(bytesPerSecond)
}

// UpdateSysStats appends host usage samples (0..100).
func (c *ChartModel) UpdateSysStats(msg SysStatsMsg) {
	c.cpu.Push(msg.CPUPercent)
	c.mem.Push(msg.MemPercent)
	c.disk.Push(msg.DiskPercent)
}

// SetDone freezes the chart with the final elapsed time.
func (c *ChartModel) SetDone(elapsed time.Duration) {
	c.done = true
	c.elapsed = elapsed
	c.progress = 1
}

// View renders the chart panel.
func (c ChartModel) View() string {
	var b strings.Builder
	barWidth := max(c.width-24, 5)
	b.WriteString(" ")
	b.WriteString(renderBar(c.progress, barWidth))
	b.WriteString(metricValueStyle.Render(fmt.Sprintf(" %5.1f%%", c.progress*100)))
	if c.done {
		b.WriteString(metricLabelStyle.Render("  in " + format.FormatExecutionDuration(c.elapsed)))
	} else {
		b.WriteString(metricLabelStyle.Render("  ETA " + format.FormatETA(c.eta)))
	}

	// Progress line plus borders; sparklines only when there is room.
	if c.height >= 7 {
		b.WriteString("\n\n")
		b.WriteString(sparkRow("Rate", RenderSparkline(scaleToPercent(c.rate.Slice())), chartBarStyle.Render))
		b.WriteString(metricLabelStyle.Render(" " + format.FormatRate(c.rate.Last())))
		b.WriteString("\n")
		b.WriteString(sparkRow("CPU", RenderSparkline(c.cpu.Slice()), cpuSparklineStyle.Render))
		b.WriteString(metricLabelStyle.Render(fmt.Sprintf(" %.0f%%", c.cpu.Last())))
		b.WriteString("\n")
		b.WriteString(sparkRow("MEM", RenderSparkline(c.mem.Slice()), memSparklineStyle.Render))
		b.WriteString(metricLabelStyle.Render(fmt.Sprintf(" %.0f%%", c.mem.Last())))
		b.WriteString("\n")
		b.WriteString(sparkRow("DISK", RenderSparkline(c.disk.Slice()), diskSparklineStyle.Render))
		b.WriteString(metricLabelStyle.Render(fmt.Sprintf(" %.0f%%", c.disk.Last())))
	}

	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(b.String())
}

func sparkRow(label, spark string, render func(...string) string) string {
	return metricLabelStyle.Render(fmt.Sprintf(" %-5s", label)) + render(spark)
}

// scaleToPercent maps samples to 0..100 relative to their maximum.
func scaleToPercent(values []float64) []float64 {
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	out := make([]float64, len(values))
	if peak == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / peak * 100
	}
	return out
}
