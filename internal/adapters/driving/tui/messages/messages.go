// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/concierge/internal/core/domain"
)

// SessionStarted is sent once the visitor's session is open.
type SessionStarted struct {
	Session *domain.Session
	Starter string
	Err     error
}

// TurnRequested is a command to ask a question.
type TurnRequested struct {
	Utterance string
}

// TurnCompleted carries the answered turn back to the model.
type TurnCompleted struct {
	Turn      *domain.Turn
	Followups []string
	Err       error
}

// SessionEnded is sent after the session has been closed.
type SessionEnded struct {
	Err error
}
