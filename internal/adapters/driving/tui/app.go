package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/concierge/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/concierge/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/concierge/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/concierge/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/concierge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/concierge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/concierge/internal/core/domain"
)

// inputHeight is the rows taken by the bordered input plus the status bar.
const inputHeight = 4

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	transcript *transcript.View
	input      *input.ChatInput
	status     *status.Bar

	// session is nil until SessionStarted arrives.
	session *domain.Session

	// suggestions are follow-ups offered after the last reply.
	suggestions []string

	// busy is true while a turn is in flight.
	busy bool

	// err holds the last error that occurred.
	err error

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat app with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		transcript: transcript.NewView(s, ports.BotName),
		input:      input.NewChatInput(s),
		status:     status.NewBar(s, km),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It opens the session when the program starts.
func (a *App) Init() tea.Cmd {
	title := "Concierge"
	if a.ports.BotName != "" {
		title = a.ports.BotName
	}
	return tea.Batch(
		tea.SetWindowTitle(title),
		a.input.Init(),
		a.startSession,
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.SessionStarted:
		if msg.Err != nil {
			a.err = msg.Err
			a.status.SetError(msg.Err.Error())
			a.transcript.AddNote("Could not start a session: " + msg.Err.Error())
			return a, nil
		}
		a.session = msg.Session
		a.status.SetState(status.StateReady)
		if msg.Starter != "" {
			a.transcript.AddReply(msg.Starter)
		}
		return a, nil

	case messages.TurnRequested:
		a.busy = true
		a.status.SetState(status.StateThinking)
		a.transcript.AddVisitor(msg.Utterance)
		return a, a.ask(msg.Utterance)

	case messages.TurnCompleted:
		a.busy = false
		if msg.Err != nil {
			a.err = msg.Err
			a.status.SetError(describe(msg.Err))
			a.transcript.AddNote(describe(msg.Err))
			return a, nil
		}
		a.err = nil
		a.transcript.AddReply(msg.Turn.Reply)
		a.status.SetTurn(msg.Turn.Number, msg.Turn.Intent)
		a.suggestions = msg.Followups
		if len(a.suggestions) > 0 {
			a.transcript.AddNote("You could ask: " + strings.Join(a.suggestions, " | "))
		}
		return a, nil

	case messages.SessionEnded:
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return a, a.endSession

	case key.Matches(msg, a.keymap.ScrollUp):
		a.transcript.ScrollUp()
		return a, nil

	case key.Matches(msg, a.keymap.ScrollDown):
		a.transcript.ScrollDown()
		return a, nil

	case key.Matches(msg, a.keymap.Suggest):
		if len(a.suggestions) > 0 {
			a.input.SetValue(a.suggestions[0])
			a.suggestions = append(a.suggestions[1:], a.suggestions[0])
		}
		return a, nil

	case key.Matches(msg, a.keymap.Send):
		utterance := strings.TrimSpace(a.input.Value())
		if utterance == "" || a.busy || a.session == nil {
			return a, nil
		}
		a.input.Reset()
		return a, func() tea.Msg { return messages.TurnRequested{Utterance: utterance} }
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	return a.transcript.View() + "\n" + a.input.View() + "\n" + a.status.View()
}

// SetDimensions lays out the transcript above the input and status bar.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height

	transcriptHeight := height - inputHeight
	if transcriptHeight < 1 {
		transcriptHeight = 1
	}
	a.transcript.SetSize(width, transcriptHeight)
	a.input.SetWidth(width)
	a.status.SetWidth(width)
}

// Session returns the open session, if any.
func (a *App) Session() *domain.Session {
	return a.session
}

// Busy reports whether a turn is in flight.
func (a *App) Busy() bool {
	return a.busy
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Run starts the chat in the alternate screen and blocks until the visitor quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (a *App) startSession() tea.Msg {
	session, err := a.ports.Sessions.Start(a.ctx, a.ports.Profile)
	if err != nil {
		return messages.SessionStarted{Err: err}
	}
	msg := messages.SessionStarted{Session: session}
	if a.ports.Insights != nil {
		msg.Starter = a.ports.Insights.ConversationStarter(session.Profile)
	}
	return msg
}

func (a *App) ask(utterance string) tea.Cmd {
	id := a.session.ID
	return func() tea.Msg {
		turn, err := a.ports.Sessions.Ask(a.ctx, id, utterance)
		if err != nil {
			return messages.TurnCompleted{Err: err}
		}
		msg := messages.TurnCompleted{Turn: turn}
		if a.ports.Insights != nil {
			msg.Followups = a.ports.Insights.SuggestFollowups(turn.Intent)
		}
		return msg
	}
}

func (a *App) endSession() tea.Msg {
	if a.session == nil {
		return messages.SessionEnded{}
	}
	return messages.SessionEnded{Err: a.ports.Sessions.End(a.ctx, a.session.ID)}
}

// describe turns session errors into visitor-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionLimit):
		return "This conversation has reached its turn limit. Please start a new session."
	case errors.Is(err, domain.ErrSessionNotFound):
		return "This session has expired. Please restart the chat."
	default:
		return "Something went wrong: " + err.Error()
	}
}
