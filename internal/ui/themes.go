package ui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ThemeEnv names the environment variable selecting a theme by name.
const ThemeEnv = "FIBFILL_THEME"

// Theme holds the ANSI escape codes the CLI prints around each kind of text.
type Theme struct {
	Name string

	// Primary highlights headings and destination names.
	Primary string
	// Secondary is used for labels and counts.
	Secondary string
	Success   string
	Warning   string
	Error     string
	// Info marks configuration values.
	Info      string
	Bold      string
	Underline string
	Reset     string
}

var (
	// DarkTheme is the default, for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme uses darker shades that stay readable on light backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;54m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// OrangeTheme matches the dashboard palette.
	OrangeTheme = Theme{
		Name:      "orange",
		Primary:   "\033[38;5;208m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;214m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;69m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme prints plain text.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		OrangeTheme.Name:  OrangeTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	themeMutex   sync.RWMutex
	currentTheme = DarkTheme
)

// TUITheme is the lipgloss palette of the dashboard.
type TUITheme struct {
	Bg      lipgloss.TerminalColor
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the orange-on-black dashboard palette.
	DarkTUITheme = TUITheme{
		Bg:      lipgloss.Color("#000000"),
		Text:    lipgloss.Color("#E0E0E0"),
		Border:  lipgloss.Color("#FF6600"),
		Accent:  lipgloss.Color("#FF8C00"),
		Success: lipgloss.Color("#9ece6a"),
		Warning: lipgloss.Color("#FFB347"),
		Error:   lipgloss.Color("#FF4444"),
		Dim:     lipgloss.Color("#666666"),
		Info:    lipgloss.Color("#4488FF"),
	}

	// LightTUITheme keeps the terminal background and darkens the text.
	LightTUITheme = TUITheme{
		Bg:      lipgloss.NoColor{},
		Text:    lipgloss.Color("#1F1F1F"),
		Border:  lipgloss.Color("#C25000"),
		Accent:  lipgloss.Color("#B34700"),
		Success: lipgloss.Color("#2E7D32"),
		Warning: lipgloss.Color("#9A5B00"),
		Error:   lipgloss.Color("#B00020"),
		Dim:     lipgloss.Color("#777777"),
		Info:    lipgloss.Color("#1A4FA0"),
	}

	// NoColorTUITheme renders with the terminal's default colors.
	NoColorTUITheme = TUITheme{
		Bg:      lipgloss.NoColor{},
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
	}
)

// GetCurrentTUITheme returns the dashboard palette matching the active theme.
func GetCurrentTUITheme() TUITheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	switch currentTheme.Name {
	case NoColorTheme.Name:
		return NoColorTUITheme
	case LightTheme.Name:
		return LightTUITheme
	}
	return DarkTUITheme
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates the theme called name: dark, light, orange or none.
// Unknown names select the dark theme.
func SetTheme(name string) {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// InitTheme picks the theme for this process. Colors are off with
// --no-color, when NO_COLOR is set (https://no-color.org/) or on a dumb
// terminal; otherwise FIBFILL_THEME chooses, defaulting to dark.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set || os.Getenv("TERM") == "dumb" {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv(ThemeEnv))
}
