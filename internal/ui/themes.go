package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// ThemeEnv selects the theme ("dark", "light" or "none") when set.
const ThemeEnv = "PARSEARCH_THEME"

// Theme holds the ANSI escape codes used for each kind of output. The
// no-color theme has every field empty.
type Theme struct {
	Name string
	// Primary highlights dataset names and values.
	Primary   string
	Secondary string
	// Success marks found targets and optimal worker counts.
	Success string
	// Warning marks missing targets, timeouts and early exits.
	Warning string
	// Error marks faults and configuration errors.
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string
}

// palette is a set of xterm-256 color indices. Both the ANSI themes and the
// lipgloss table styles are derived from it so they always agree.
type palette struct {
	accent, text, dim, success, warning, failure, info int
}

var (
	darkPalette  = palette{accent: 39, text: 252, dim: 245, success: 82, warning: 220, failure: 196, info: 141}
	lightPalette = palette{accent: 27, text: 235, dim: 240, success: 28, warning: 130, failure: 124, info: 54}
)

func fg(color int) string { return fmt.Sprintf("\033[38;5;%dm", color) }

func ansiTheme(name string, p palette) Theme {
	return Theme{
		Name:      name,
		Primary:   fg(p.accent),
		Secondary: fg(p.dim),
		Success:   fg(p.success),
		Warning:   fg(p.warning),
		Error:     fg(p.failure),
		Info:      fg(p.info),
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}
}

var (
	// DarkTheme suits dark terminal backgrounds and is the default.
	DarkTheme = ansiTheme("dark", darkPalette)
	// LightTheme suits light terminal backgrounds.
	LightTheme = ansiTheme("light", lightPalette)
	// NoColorTheme disables all escape codes.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

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

// themeByName resolves a theme name; unknown names fall back to dark.
func themeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LightTheme.Name:
		return LightTheme
	case NoColorTheme.Name:
		return NoColorTheme
	}
	return DarkTheme
}

// SetTheme activates the theme with the given name ("dark", "light" or
// "none"). Unknown names select the dark theme.
func SetTheme(name string) {
	SetCurrentTheme(themeByName(name))
}

// InitTheme picks the theme at startup. Colors are off when noColor is set
// or NO_COLOR (https://no-color.org/) is present in the environment;
// otherwise PARSEARCH_THEME chooses the theme, defaulting to dark.
func InitTheme(noColor bool) {
	if _, exists := os.LookupEnv("NO_COLOR"); noColor || exists {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(themeByName(os.Getenv(ThemeEnv)))
}
