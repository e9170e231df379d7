// Package display provides terminal styling and output helpers for the CLI.
//
// Styles are rendered with lipgloss. They respect the NO_COLOR environment
// variable (https://no-color.org/) and are disabled automatically when
// stdout is piped or redirected.
package display

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	renderer = lipgloss.NewRenderer(os.Stdout)
	enabled  bool

	boldStyle   lipgloss.Style
	dimStyle    lipgloss.Style
	greenStyle  lipgloss.Style
	yellowStyle lipgloss.Style
	cyanStyle   lipgloss.Style
	grayStyle   lipgloss.Style
	accentStyle lipgloss.Style
	strikeStyle lipgloss.Style
)

func init() {
	SetEnabled(shouldEnable())
}

// shouldEnable determines whether to use color output.
func shouldEnable() bool {
	// Respect NO_COLOR (https://no-color.org/).
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	// Respect FORCE_COLOR for testing.
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	// Disable color when stdout is not a terminal (piped/redirected).
	return isTerminal(os.Stdout)
}

// isTerminal reports whether f is connected to a terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// SetEnabled overrides the auto-detected color state.
// Useful for testing or when --output forces plain output.
func SetEnabled(b bool) {
	enabled = b
	if b {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}

	boldStyle = renderer.NewStyle().Bold(true)
	dimStyle = renderer.NewStyle().Faint(true)
	greenStyle = renderer.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle = renderer.NewStyle().Foreground(lipgloss.Color("3"))
	cyanStyle = renderer.NewStyle().Foreground(lipgloss.Color("6"))
	grayStyle = renderer.NewStyle().Foreground(lipgloss.Color("8"))
	accentStyle = renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	strikeStyle = renderer.NewStyle().Strikethrough(true).Faint(true)
}

// Enabled reports whether color output is currently active.
func Enabled() bool {
	return enabled
}

func render(s lipgloss.Style, text string) string {
	if !enabled {
		return text
	}
	return s.Render(text)
}

// Bold returns text rendered in bold.
func Bold(text string) string {
	return render(boldStyle, text)
}

// Dim returns text rendered in dim/faint.
func Dim(text string) string {
	return render(dimStyle, text)
}

// Green returns text rendered in green.
func Green(text string) string {
	return render(greenStyle, text)
}

// Yellow returns text rendered in yellow.
func Yellow(text string) string {
	return render(yellowStyle, text)
}

// Cyan returns text rendered in cyan.
func Cyan(text string) string {
	return render(cyanStyle, text)
}

// Gray returns text rendered in gray (bright black).
func Gray(text string) string {
	return render(grayStyle, text)
}

// Accent returns text rendered in the accent color (cyan + bold).
// Used for the "next prayer" highlight.
func Accent(text string) string {
	return render(accentStyle, text)
}

// Strike returns text struck through. Used for completed prayers.
func Strike(text string) string {
	return render(strikeStyle, text)
}

// Boldf formats and bolds a string.
func Boldf(format string, a ...interface{}) string {
	return Bold(fmt.Sprintf(format, a...))
}
