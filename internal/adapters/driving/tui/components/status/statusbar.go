// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/concierge/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/concierge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/concierge/internal/core/domain"
)

// State represents the current chat state for display.
type State string

const (
	StateConnecting State = "connecting"
	StateReady      State = "ready"
	StateThinking   State = "thinking"
	StateError      State = "error"
)

// Bar displays chat status, the last detected intent and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	intent  *domain.IntentResult
	turns   int
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateConnecting,
		width:  80,
	}
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateConnecting:
		return s.styles.Muted.Render("Connecting...")
	case StateThinking:
		return s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateReady:
	}

	if s.intent == nil {
		return s.styles.Muted.Render("Ready")
	}
	return s.styles.Intent.Render(FormatIntent(*s.intent)) +
		s.styles.Muted.Render(fmt.Sprintf(" | turn %d", s.turns))
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// FormatIntent renders an intent as "method: cat1, cat2 (0.87)".
func FormatIntent(r domain.IntentResult) string {
	categories := "none"
	if len(r.Categories) > 0 {
		categories = strings.Join(r.Categories, ", ")
	}
	return fmt.Sprintf("%s: %s (%.2f)", r.Method, categories, r.RoundedConfidence())
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetError switches to the error state with a message.
func (s *Bar) SetError(message string) {
	s.state = StateError
	s.message = message
}

// Message returns the current error message.
func (s *Bar) Message() string {
	return s.message
}

// SetTurn records the last answered turn.
func (s *Bar) SetTurn(number int, intent domain.IntentResult) {
	s.state = StateReady
	s.message = ""
	s.turns = number
	s.intent = &intent
}

// Intent returns the last detected intent, if any.
func (s *Bar) Intent() (domain.IntentResult, bool) {
	if s.intent == nil {
		return domain.IntentResult{}, false
	}
	return *s.intent, true
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Bindings exposes the keymap for help rendering.
func (s *Bar) Bindings() []key.Binding {
	return s.keymap.ShortHelp()
}
