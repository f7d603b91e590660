package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure TranscriptStore implements the interface.
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// TranscriptStore is an in-memory implementation of driven.TranscriptStore.
// Transcripts are lost when the process exits.
type TranscriptStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	turns    map[string][]domain.Turn
}

// NewTranscriptStore creates a new in-memory transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{
		sessions: make(map[string]domain.Session),
		turns:    make(map[string][]domain.Turn),
	}
}

// SaveSession creates or updates a session.
func (s *TranscriptStore) SaveSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// GetSession retrieves a session by ID.
func (s *TranscriptStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return &session, nil
}

// ListSessions returns the most recently active sessions first.
// A non-positive limit returns every session.
func (s *TranscriptStore) ListSessions(_ context.Context, limit int) ([]domain.Session, error) {
	s.mu.RLock()
	result := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		result = append(result, session)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastActivity.Equal(result[j].LastActivity) {
			return result[i].ID < result[j].ID
		}
		return result[i].LastActivity.After(result[j].LastActivity)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// AppendTurn records a completed turn.
func (s *TranscriptStore) AppendTurn(_ context.Context, turn *domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[turn.SessionID]; !ok {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, turn.SessionID)
	}
	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], *turn)
	return nil
}

// ListTurns returns a session's turns in order.
func (s *TranscriptStore) ListTurns(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return append([]domain.Turn(nil), s.turns[sessionID]...), nil
}

// Close releases resources.
func (s *TranscriptStore) Close() error {
	return nil
}
