// Package output provides styled terminal rendering helpers for promptly.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for positive indicators and improvements.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for negative indicators and regressions.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for caution indicators.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")

	// ColorWhite is used for primary text.
	ColorWhite = lipgloss.Color("#ffffff")
)

// Styles provides reusable lipgloss styles.
var (
	// StyleHeader is used for section headers.
	StyleHeader = lipgloss.NewStyle()

	// StyleSuccess is used for positive values.
	StyleSuccess = lipgloss.NewStyle()

	// StyleError is used for negative values.
	StyleError = lipgloss.NewStyle()

	// StyleWarning is used for cautionary values.
	StyleWarning = lipgloss.NewStyle()

	// StyleMuted is used for de-emphasized text.
	StyleMuted = lipgloss.NewStyle()

	// StyleBold is used for emphasized text.
	StyleBold = lipgloss.NewStyle()

	// StyleLabel is used for metric labels.
	StyleLabel = lipgloss.NewStyle()

	// StyleValue is used for metric values.
	StyleValue = lipgloss.NewStyle()
)

func init() {
	applyStyles(false)
}

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or enables color output globally by reassigning the
// package-level styles.
func SetNoColor(disabled bool) {
	noColor = disabled
	applyStyles(disabled)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// AutoColor enables color only when f is a terminal and NO_COLOR is unset.
// forceOff disables color regardless.
func AutoColor(f *os.File, forceOff bool) {
	_, envNoColor := os.LookupEnv("NO_COLOR")
	SetNoColor(forceOff || envNoColor || !IsTerminal(f))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func applyStyles(plain bool) {
	if plain {
		p := lipgloss.NewStyle()
		StyleHeader = p
		StyleSuccess = p
		StyleError = p
		StyleWarning = p
		StyleMuted = p
		StyleBold = p
		StyleLabel = p.Width(24)
		StyleValue = p.Width(12)
		return
	}
	StyleHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold = lipgloss.NewStyle().Bold(true)
	StyleLabel = lipgloss.NewStyle().Width(24)
	StyleValue = lipgloss.NewStyle().Bold(true).Width(12)
}
