package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// transcriptStore implements driven.TranscriptStore.
type transcriptStore struct {
	store *Store
}

var _ driven.TranscriptStore = (*transcriptStore)(nil)

// SaveSession creates or updates a session.
func (s *transcriptStore) SaveSession(ctx context.Context, session *domain.Session) error {
	profileJSON, err := json.Marshal(session.Profile)
	if err != nil {
		return fmt.Errorf("marshalling profile: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, profile, status, started_at, last_activity, turn_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			profile = excluded.profile,
			status = excluded.status,
			last_activity = excluded.last_activity,
			turn_count = excluded.turn_count
	`, session.ID, string(profileJSON), string(session.Status),
		session.StartedAt.UTC(), session.LastActivity.UTC(), session.TurnCount)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *transcriptStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, profile, status, started_at, last_activity, turn_count
		FROM sessions WHERE id = ?
	`, id)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns the most recently active sessions first.
// A non-positive limit returns every session.
func (s *transcriptStore) ListSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, profile, status, started_at, last_activity, turn_count
		FROM sessions
		ORDER BY last_activity DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// AppendTurn records a completed turn.
func (s *transcriptStore) AppendTurn(ctx context.Context, turn *domain.Turn) error {
	if err := s.requireSession(ctx, turn.SessionID); err != nil {
		return err
	}

	intentJSON, err := json.Marshal(turn.Intent)
	if err != nil {
		return fmt.Errorf("marshalling intent: %w", err)
	}
	docs := turn.Documents
	if docs == nil {
		docs = []string{}
	}
	docsJSON, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshalling documents: %w", err)
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO turns (session_id, number, utterance, reply, source, intent, documents, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, turn.SessionID, turn.Number, turn.Utterance, turn.Reply, string(turn.Source),
		string(intentJSON), string(docsJSON), int64(turn.Duration), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("saving turn: %w", err)
	}
	return nil
}

// ListTurns returns a session's turns in order.
func (s *transcriptStore) ListTurns(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT session_id, number, utterance, reply, source, intent, documents, duration_ns, created_at
		FROM turns WHERE session_id = ?
		ORDER BY number ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var (
			turn                 domain.Turn
			source               string
			intentJSON, docsJSON string
			durationNS           int64
			createdAt            sql.NullTime
		)
		if err := rows.Scan(&turn.SessionID, &turn.Number, &turn.Utterance, &turn.Reply,
			&source, &intentJSON, &docsJSON, &durationNS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		if err := json.Unmarshal([]byte(intentJSON), &turn.Intent); err != nil {
			return nil, fmt.Errorf("unmarshalling intent: %w", err)
		}
		if err := json.Unmarshal([]byte(docsJSON), &turn.Documents); err != nil {
			return nil, fmt.Errorf("unmarshalling documents: %w", err)
		}
		if len(turn.Documents) == 0 {
			turn.Documents = nil
		}
		turn.Source = domain.ReplySource(source)
		turn.Duration = time.Duration(durationNS)
		if createdAt.Valid {
			turn.CreatedAt = createdAt.Time
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// Close closes the underlying store.
func (s *transcriptStore) Close() error {
	return s.store.Close()
}

func (s *transcriptStore) requireSession(ctx context.Context, id string) error {
	var exists int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking session: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*domain.Session, error) {
	var (
		session             domain.Session
		profileJSON, status string
		startedAt, lastSeen sql.NullTime
	)
	if err := row.Scan(&session.ID, &profileJSON, &status, &startedAt, &lastSeen, &session.TurnCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	if err := json.Unmarshal([]byte(profileJSON), &session.Profile); err != nil {
		return nil, fmt.Errorf("unmarshalling profile: %w", err)
	}
	session.Status = domain.SessionStatus(status)
	if startedAt.Valid {
		session.StartedAt = startedAt.Time
	}
	if lastSeen.Valid {
		session.LastActivity = lastSeen.Time
	}
	return &session, nil
}
