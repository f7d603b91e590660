package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/logger"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionService = (*SessionManager)(nil)

// TurnRunner runs one turn and returns its record.
type TurnRunner interface {
	RunTurn(ctx context.Context, sessionID, utterance string, profile *domain.UserProfile) (*domain.Turn, error)
	Forget(sessionID string)
}

// SessionManager opens, tracks and closes visitor sessions.
// Live sessions sit in the session store; every turn is recorded in the
// transcript store so sessions can be inspected after they end.
type SessionManager struct {
	store       driven.SessionStore
	transcripts driven.TranscriptStore
	chat        TurnRunner
	maxTurns    int
	now         func() time.Time

	mu sync.Mutex
}

// NewSessionManager creates a session manager.
func NewSessionManager(
	store driven.SessionStore,
	transcripts driven.TranscriptStore,
	chat TurnRunner,
	settings domain.SessionSettings,
) *SessionManager {
	m := &SessionManager{
		store:       store,
		transcripts: transcripts,
		chat:        chat,
		maxTurns:    settings.MaxTurns,
		now:         time.Now,
	}
	store.OnExpire(m.expire)
	return m
}

// NewSessionID returns an ID of the form sess_20240102_150405_a1b2c3.
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return "sess_" + now.Format("20060102_150405") + "_" + suffix
}

// Start opens a new session for the profile.
func (m *SessionManager) Start(ctx context.Context, profile domain.UserProfile) (*domain.Session, error) {
	profile, err := normaliseProfile(profile)
	if err != nil {
		return nil, err
	}

	now := m.now()
	session := &domain.Session{
		ID:           NewSessionID(now),
		Profile:      profile,
		Status:       domain.SessionActive,
		StartedAt:    now,
		LastActivity: now,
	}

	if err := m.transcripts.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.store.Put(session)

	logger.Info("Session %s started (user type: %s)", session.ID, profile.UserType)
	snapshot := *session
	return &snapshot, nil
}

// Get returns a live session.
func (m *SessionManager) Get(id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.store.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	snapshot := *session
	return &snapshot, nil
}

// Ask runs one turn within a live session and records it.
func (m *SessionManager) Ask(ctx context.Context, id, utterance string) (*domain.Turn, error) {
	m.mu.Lock()
	session, ok := m.store.Get(id)
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if m.maxTurns > 0 && session.TurnCount >= m.maxTurns {
		session.Status = domain.SessionLimited
		snapshot := *session
		m.mu.Unlock()
		if err := m.transcripts.SaveSession(ctx, &snapshot); err != nil {
			logger.Warn("Failed to save session %s: %v", id, err)
		}
		return nil, fmt.Errorf("%w: %d turns", domain.ErrSessionLimit, m.maxTurns)
	}
	// Reserve the turn so concurrent asks cannot overshoot the limit.
	session.TurnCount++
	m.store.Put(session)
	profile := session.Profile
	m.mu.Unlock()

	turn, err := m.chat.RunTurn(ctx, id, utterance, &profile)
	if err != nil {
		m.mu.Lock()
		if session, ok := m.store.Get(id); ok && session.TurnCount > 0 {
			session.TurnCount--
			m.store.Put(session)
		}
		m.mu.Unlock()
		return nil, err
	}

	m.mu.Lock()
	var snapshot domain.Session
	if session, ok = m.store.Get(id); ok {
		session.LastActivity = m.now()
		m.store.Put(session)
		snapshot = *session
	}
	m.mu.Unlock()

	if err := m.transcripts.AppendTurn(ctx, turn); err != nil {
		logger.Warn("Failed to record turn for %s: %v", id, err)
	}
	if ok {
		if err := m.transcripts.SaveSession(ctx, &snapshot); err != nil {
			logger.Warn("Failed to save session %s: %v", id, err)
		}
	}
	return turn, nil
}

// UpdateProfile replaces the session's profile.
func (m *SessionManager) UpdateProfile(id string, profile domain.UserProfile) error {
	profile, err := normaliseProfile(profile)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.store.Get(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Profile = profile
	m.store.Put(session)
	return nil
}

// Stats summarises a live or ended session from its transcript.
func (m *SessionManager) Stats(ctx context.Context, id string) (*domain.SessionStats, error) {
	session, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	turns, err := m.transcripts.ListTurns(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}

	stats := &domain.SessionStats{
		SessionID: session.ID,
		Status:    session.Status,
		TurnCount: len(turns),
		Duration:  session.LastActivity.Sub(session.StartedAt),
		Methods:   make(map[string]int),
	}
	seen := make(map[string]bool)
	for i := range turns {
		t := &turns[i]
		stats.Methods[t.Intent.Method.String()]++
		for _, c := range t.Intent.Categories {
			if !seen[c] {
				seen[c] = true
				stats.Categories = append(stats.Categories, c)
			}
		}
		switch t.Source {
		case domain.ReplyFallback:
			stats.FallbackCount++
		case domain.ReplyApology:
			stats.ApologyCount++
		}
	}
	return stats, nil
}

// Transcript returns the recorded turns of a live or ended session.
func (m *SessionManager) Transcript(ctx context.Context, id string) ([]domain.Turn, error) {
	if _, err := m.lookup(ctx, id); err != nil {
		return nil, err
	}
	return m.transcripts.ListTurns(ctx, id)
}

// End closes a live session.
func (m *SessionManager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	session, ok := m.store.Get(id)
	if !ok {
		m.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	m.store.Delete(id)
	snapshot := *session
	m.mu.Unlock()

	if snapshot.Status == domain.SessionActive {
		snapshot.Status = domain.SessionCompleted
	}
	m.chat.Forget(id)

	logger.Info("Session %s ended after %d turns", id, snapshot.TurnCount)
	return m.transcripts.SaveSession(ctx, &snapshot)
}

// Active returns the number of live sessions.
func (m *SessionManager) Active() int {
	return m.store.Count()
}

// expire is called by the store when a session has been idle too long.
func (m *SessionManager) expire(session *domain.Session) {
	snapshot := *session
	snapshot.Status = domain.SessionExpired
	m.chat.Forget(snapshot.ID)

	logger.Debug("Session %s expired", snapshot.ID)
	if err := m.transcripts.SaveSession(context.Background(), &snapshot); err != nil {
		logger.Warn("Failed to save expired session %s: %v", snapshot.ID, err)
	}
}

// lookup finds a session in the live store, then in the transcript store.
func (m *SessionManager) lookup(ctx context.Context, id string) (*domain.Session, error) {
	if session, err := m.Get(id); err == nil {
		return session, nil
	}
	session, err := m.transcripts.GetSession(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// normaliseProfile validates email and phone and defaults the user type.
func normaliseProfile(p domain.UserProfile) (domain.UserProfile, error) {
	p.Name = SanitizeInput(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Email != "" && !ValidateEmail(p.Email) {
		return p, fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, p.Email)
	}
	p.Phone = strings.TrimSpace(p.Phone)
	if !ValidatePhone(p.Phone) {
		return p, fmt.Errorf("%w: invalid phone number %q", domain.ErrInvalidInput, p.Phone)
	}
	if p.UserType == "" {
		p.UserType = domain.UserTypeGeneral
	}
	if !p.UserType.IsValid() {
		return p, fmt.Errorf("%w: unknown user type %q", domain.ErrInvalidInput, p.UserType)
	}
	return p, nil
}
