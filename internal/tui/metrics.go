package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibfill/internal/format"
)

// MetricsModel displays throughput and runtime memory metrics.
type MetricsModel struct {
	alloc        uint64
	heapSys      uint64
	numGC        uint32
	numGoroutine int

	planned     int64
	written     int64
	throughput  float64 // bytes per second, smoothed
	lastWritten int64
	lastUpdate  time.Time

	diskFree uint64

	width  int
	height int
}

// NewMetricsModel creates a new metrics panel for a run of planned bytes.
func NewMetricsModel(planned int64) MetricsModel {
	return MetricsModel{
		planned:    planned,
		lastUpdate: time.Now(),
	}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateMemStats updates memory statistics.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapSys = msg.HeapSys
	m.numGC = msg.NumGC
	m.numGoroutine = msg.NumGoroutine
}

// UpdateDisk records the free space of the output file system.
func (m *MetricsModel) UpdateDisk(free uint64) {
	m.diskFree = free
}

// UpdateWritten records the total bytes written and refreshes the
// throughput estimate.
func (m *MetricsModel) UpdateWritten(total int64) {
	m.written = total
	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt < 0.05 {
		return
	}
	if db := total - m.lastWritten; db > 0 {
		instant := float64(db) / dt
		if m.throughput > 0 {
			m.throughput = 0.7*m.throughput + 0.3*instant
		} else {
			m.throughput = instant
		}
	}
	m.lastWritten = total
	m.lastUpdate = now
}

// Throughput returns the smoothed write rate in bytes per second.
func (m MetricsModel) Throughput() float64 { return m.throughput }

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var rows strings.Builder

	heapStr := metricValueStyle.Render(format.FormatBytes(m.alloc) + " / " + format.FormatBytes(m.heapSys))
	gcStr := metricValueStyle.Render(fmt.Sprintf("%d", m.numGC))
	pipe := metricLabelStyle.Render(" | ")
	rows.WriteString(fmt.Sprintf("  %s %s%s%s %s",
		metricLabelStyle.Render("Heap:"), heapStr,
		pipe,
		metricLabelStyle.Render("GC:"), gcStr))

	colWidth := (m.width - 6) / 2
	written := format.FormatByteCount(m.written)
	if m.planned > 0 {
		written += " / " + format.FormatByteCount(m.planned)
	}
	leftCol := []string{
		formatMetricCol("Written:", written, colWidth),
		formatMetricCol("Rate:", format.FormatRate(m.throughput), colWidth),
	}
	rightCol := []string{
		formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.numGoroutine), colWidth),
		formatMetricCol("Disk free:", format.FormatBytes(m.diskFree), colWidth),
	}
	for i := range leftCol {
		rows.WriteString("\n")
		rows.WriteString(leftCol[i])
		rows.WriteString(rightCol[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		metricValueStyle.Render(value))
	// Pad to fixed column width using lipgloss-aware width
	if visible := lipgloss.Width(cell); visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}
