package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibfill/internal/format"
	"github.com/agbru/fibfill/internal/orchestration"
	"github.com/agbru/fibfill/internal/plan"
)

// destState is the displayed state of one destination.
type destState int

const (
	destPending destState = iota
	destRunning
	destDone
	destSkipped
	destFailed
)

type destRow struct {
	name     string
	budget   int64
	written  int64
	progress float64
	state    destState
	detail   string
}

// DestinationsModel lists every destination with its progress. It scrolls
// when the plan has more destinations than the panel has rows.
type DestinationsModel struct {
	rows   []destRow
	offset int
	width  int
	height int
	keymap KeyMap
}

// NewDestinationsModel creates the panel for the planned destinations.
func NewDestinationsModel(destinations []plan.Destination) DestinationsModel {
	rows := make([]destRow, len(destinations))
	for i, d := range destinations {
		rows[i] = destRow{name: d.Name, budget: d.Budget}
	}
	return DestinationsModel{rows: rows, keymap: DefaultKeyMap()}
}

// SetSize updates dimensions.
func (m *DestinationsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.clampOffset()
}

// UpdateProgress applies a progress update.
func (m *DestinationsModel) UpdateProgress(msg ProgressMsg) {
	if msg.DestinationIndex < 0 || msg.DestinationIndex >= len(m.rows) {
		return
	}
	r := &m.rows[msg.DestinationIndex]
	r.progress = msg.Value
	r.written = msg.BytesWritten
	if r.state == destPending {
		r.state = destRunning
	}
}

// ApplyReport replaces the live state with the final outcomes.
func (m *DestinationsModel) ApplyReport(report orchestration.Report) {
	for i, res := range report.Results {
		if i >= len(m.rows) {
			break
		}
		r := &m.rows[i]
		r.written = res.Result.BytesWritten
		switch {
		case res.Outcome == orchestration.OutcomeCompleted:
			r.state = destDone
			r.progress = 1
			if res.Granted != r.budget {
				r.detail = "clamped to " + format.FormatByteCount(res.Granted)
			}
		case res.Outcome == orchestration.OutcomeSkipped:
			r.state = destSkipped
			r.detail = "size limit reached"
		case res.Outcome.Failed():
			r.state = destFailed
			r.detail = res.Outcome.String()
		default:
			r.state = destPending
		}
	}
}

// Counts returns the number of running, done and failed destinations.
func (m DestinationsModel) Counts() (running, done, failed int) {
	for _, r := range m.rows {
		switch r.state {
		case destRunning:
			running++
		case destDone:
			done++
		case destFailed:
			failed++
		}
	}
	return running, done, failed
}

// Update handles scrolling keys.
func (m *DestinationsModel) Update(msg tea.KeyMsg) {
	page := max(m.visibleRows(), 1)
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.offset--
	case key.Matches(msg, m.keymap.Down):
		m.offset++
	case key.Matches(msg, m.keymap.PageUp):
		m.offset -= page
	case key.Matches(msg, m.keymap.PageDown):
		m.offset += page
	}
	m.clampOffset()
}

func (m DestinationsModel) visibleRows() int {
	// Borders and the column header.
	return max(m.height-3, 0)
}

func (m *DestinationsModel) clampOffset() {
	m.offset = min(m.offset, max(len(m.rows)-m.visibleRows(), 0))
	m.offset = max(m.offset, 0)
}

// renderToHeight renders the panel with the given outer height.
func (m DestinationsModel) renderToHeight(h int) string {
	m.height = h
	m.clampOffset()

	inner := max(m.width-4, 10)
	nameWidth := min(max(inner/3, 8), 32)
	barWidth := max(inner-nameWidth-24, 5)

	var b strings.Builder
	b.WriteString(metricLabelStyle.Render(fmt.Sprintf("%-*s %-*s %10s  %s",
		nameWidth, "File", barWidth, "Progress", "Written", "Status")))

	end := min(m.offset+m.visibleRows(), len(m.rows))
	for _, r := range m.rows[m.offset:end] {
		b.WriteString("\n")
		b.WriteString(destNameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncate(r.name, nameWidth))))
		b.WriteString(" ")
		b.WriteString(renderBar(r.progress, barWidth))
		b.WriteString(" ")
		b.WriteString(destBytesStyle.Render(fmt.Sprintf("%10s", format.FormatByteCount(r.written))))
		b.WriteString("  ")
		b.WriteString(r.statusText())
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(h-2, 0)).
		Render(b.String())
}

func (r destRow) statusText() string {
	text := ""
	style := lipgloss.NewStyle()
	switch r.state {
	case destPending:
		text, style = "pending", destSkippedStyle
	case destRunning:
		text, style = fmt.Sprintf("%3.0f%%", r.progress*100), statusRunningStyle
	case destDone:
		text, style = "done", destDoneStyle
	case destSkipped:
		text, style = "skipped", destSkippedStyle
	case destFailed:
		text, style = "failed", destFailedStyle
	}
	if r.detail != "" {
		text += " (" + r.detail + ")"
	}
	return style.Render(text)
}

// renderBar draws a progress bar of exactly width cells.
func renderBar(progress float64, width int) string {
	if width <= 0 {
		return ""
	}
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))
	return chartBarStyle.Render(strings.Repeat("█", filled)) +
		chartEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// truncate shortens s to n runes, marking the cut with "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
