// Package styles provides the colour palette and lipgloss styles for the chat UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the chat palette.
type Theme struct {
	// Bot colours the concierge's name and replies.
	Bot lipgloss.Color

	// Visitor colours the visitor's prompt and lines.
	Visitor lipgloss.Color

	// Accent highlights the detected intent.
	Accent lipgloss.Color

	Muted  lipgloss.Color
	Error  lipgloss.Color
	Border lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DefaultTheme returns the house palette.
func DefaultTheme() *Theme {
	return &Theme{
		Bot:     lipgloss.Color("#2E9E6B"), // Sundew green
		Visitor: lipgloss.Color("#06B6D4"), // Cyan
		Accent:  lipgloss.Color("#A6E3A1"), // Pale green
		Muted:   lipgloss.Color("#6C7086"),
		Error:   lipgloss.Color("#F38BA8"),
		Border:  lipgloss.Color("#45475A"),
		Bar:     lipgloss.Color("#181825"),
	}
}

// Styles are the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	// Bot labels the concierge's lines in the transcript.
	Bot lipgloss.Style

	// Visitor labels the visitor's lines in the transcript.
	Visitor lipgloss.Style

	// Intent renders the detected intent in the status bar.
	Intent lipgloss.Style

	// Muted is used for notes, help and follow-up suggestions.
	Muted lipgloss.Style

	Error      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme:   theme,
		Bot:     lipgloss.NewStyle().Bold(true).Foreground(theme.Bot),
		Visitor: lipgloss.NewStyle().Bold(true).Foreground(theme.Visitor),
		Intent:  lipgloss.NewStyle().Foreground(theme.Accent),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
