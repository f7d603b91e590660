// Package transcript renders the scrolling conversation history.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/concierge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/concierge/internal/core/domain"
)

// line is one rendered transcript entry.
type line struct {
	role domain.Role
	text string
	note bool
}

// View shows the conversation in a scrollable viewport.
type View struct {
	viewport viewport.Model
	styles   *styles.Styles
	botName  string
	lines    []line
}

// NewView creates a transcript view labelling replies with botName.
func NewView(s *styles.Styles, botName string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if botName == "" {
		botName = "Concierge"
	}
	return &View{
		viewport: viewport.New(80, 20),
		styles:   s,
		botName:  botName,
	}
}

// AddVisitor appends a visitor utterance.
func (v *View) AddVisitor(text string) {
	v.add(line{role: domain.RoleUser, text: text})
}

// AddReply appends a concierge reply.
func (v *View) AddReply(text string) {
	v.add(line{role: domain.RoleAssistant, text: text})
}

// AddNote appends a muted system note such as suggestions or errors.
func (v *View) AddNote(text string) {
	v.add(line{note: true, text: text})
}

// Len returns the number of entries.
func (v *View) Len() int {
	return len(v.lines)
}

// SetSize resizes the viewport.
func (v *View) SetSize(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = height
	v.refresh()
}

// Update handles scrolling.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// ScrollUp scrolls up half a page.
func (v *View) ScrollUp() {
	v.viewport.HalfViewUp()
}

// ScrollDown scrolls down half a page.
func (v *View) ScrollDown() {
	v.viewport.HalfViewDown()
}

// View renders the viewport.
func (v *View) View() string {
	return v.viewport.View()
}

// Content returns the full rendered transcript.
func (v *View) Content() string {
	width := v.viewport.Width
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	blocks := make([]string, 0, len(v.lines))
	for _, l := range v.lines {
		switch {
		case l.note:
			blocks = append(blocks, wrap.Inherit(v.styles.Muted).Render(l.text))
		case l.role == domain.RoleUser:
			blocks = append(blocks, wrap.Render(v.styles.Visitor.Render("You: ")+l.text))
		default:
			blocks = append(blocks, wrap.Render(v.styles.Bot.Render(v.botName+": ")+l.text))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) add(l line) {
	v.lines = append(v.lines, l)
	v.refresh()
}

func (v *View) refresh() {
	v.viewport.SetContent(v.Content())
	v.viewport.GotoBottom()
}
