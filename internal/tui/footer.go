package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders the key help and the run status.
type FooterModel struct {
	keymap KeyMap
	paused bool
	done   bool
	failed bool
	width  int
}

// NewFooterModel creates a new footer.
func NewFooterModel() FooterModel {
	return FooterModel{keymap: DefaultKeyMap()}
}

func (f *FooterModel) SetWidth(w int)   { f.width = w }
func (f *FooterModel) SetPaused(p bool) { f.paused = p }
func (f *FooterModel) SetDone(d bool)   { f.done = d }
func (f *FooterModel) SetError(e bool)  { f.failed = e }

// View renders the footer.
func (f FooterModel) View() string {
	var parts []string
	for _, b := range []struct{ k, d string }{
		{f.keymap.Quit.Help().Key, f.keymap.Quit.Help().Desc},
		{f.keymap.Pause.Help().Key, f.keymap.Pause.Help().Desc},
		{"↑↓", "scroll"},
	} {
		parts = append(parts, footerKeyStyle.Render(b.k)+" "+footerDescStyle.Render(b.d))
	}
	left := " " + strings.Join(parts, "  ")

	var status string
	switch {
	case f.failed:
		status = statusErrorStyle.Render("FAILED")
	case f.done:
		status = statusDoneStyle.Render("DONE")
	case f.paused:
		status = statusPausedStyle.Render("PAUSED")
	default:
		status = statusRunningStyle.Render("RUNNING")
	}

	gap := max(f.width-lipgloss.Width(left)-lipgloss.Width(status)-1, 1)
	return left + strings.Repeat(" ", gap) + status
}
