// Package ui holds the color themes shared by the CLI output and the
// dashboard. The CLI reads ANSI codes through the Color helpers; the
// dashboard reads a lipgloss palette from GetCurrentTUITheme. Both follow
// the theme chosen once by InitTheme.
package ui
