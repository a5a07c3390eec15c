package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibfill/internal/format"
)

// HeaderModel renders the top bar: title, version, target and elapsed time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	target    string
	width     int
}

// NewHeaderModel creates a new header. target describes what is being
// written, e.g. "4 files of 1.0 MiB".
func NewHeaderModel(version, target string) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		target:    target,
	}
}

// SetDone freezes the elapsed timer at the current time.
func (h *HeaderModel) SetDone() {
	if h.endTime.IsZero() {
		h.endTime = time.Now()
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the time since start, frozen once done.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "fibfill"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := versionStyle.Render(" | ")
	left := titleStyle.Render(titleText)
	if h.target != "" {
		left += pipe + versionStyle.Render(h.target)
	}
	left += pipe + elapsedStyle.Render(fmt.Sprintf("Elapsed: %s", format.FormatExecutionDuration(h.Elapsed())))

	gap := max(h.width-2-lipgloss.Width(left), 0)
	return headerStyle.Width(h.width).Render(left + strings.Repeat(" ", gap))
}
