package driven

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// TranscriptStore persists sessions and their turns.
type TranscriptStore interface {
	// SaveSession creates or updates a session.
	SaveSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// ListSessions returns the most recently active sessions first.
	ListSessions(ctx context.Context, limit int) ([]domain.Session, error)

	// AppendTurn records a completed turn.
	AppendTurn(ctx context.Context, turn *domain.Turn) error

	// ListTurns returns a session's turns in order.
	ListTurns(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Close releases resources.
	Close() error
}
