// Package tui provides an interactive terminal chat for the concierge.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sessions opens the chat session and answers turns.
	Sessions driving.SessionService

	// Insights greets the visitor and proposes follow-ups. Optional.
	Insights driving.InsightService

	// Profile describes the visitor, if known.
	Profile domain.UserProfile

	// BotName labels replies in the transcript.
	BotName string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	return nil
}
