package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

type sessionFixture struct {
	mgr         *SessionManager
	store       *mockSessionStore
	transcripts *mockTranscriptStore
	chat        *ChatService
}

func newSessionFixture(maxTurns int) *sessionFixture {
	chat := newChatFixture(&mockCorpusReader{docs: map[string][]domain.Document{}}, nil).svc
	store := newMockSessionStore()
	transcripts := newMockTranscriptStore()
	mgr := NewSessionManager(store, transcripts, chat, domain.SessionSettings{MaxTurns: maxTurns})

	clock := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	mgr.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return &sessionFixture{mgr: mgr, store: store, transcripts: transcripts, chat: chat}
}

func TestNewSessionID(t *testing.T) {
	id := NewSessionID(time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC))

	assert.Regexp(t, regexp.MustCompile(`^sess_20240102_150405_[0-9a-f]{6}$`), id)
	assert.NotEqual(t, id, NewSessionID(time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)))
}

func TestSessionManager_Start(t *testing.T) {
	f := newSessionFixture(0)

	session, err := f.mgr.Start(context.Background(), domain.UserProfile{Name: " <i>Asha</i> "})

	require.NoError(t, err)
	assert.Equal(t, domain.SessionActive, session.Status)
	assert.Equal(t, "Asha", session.Profile.Name)
	assert.Equal(t, domain.UserTypeGeneral, session.Profile.UserType)
	assert.Equal(t, 1, f.mgr.Active())
	assert.Equal(t, session.ID, f.transcripts.session(session.ID).ID)
}

func TestSessionManager_Start_RejectsInvalidProfile(t *testing.T) {
	f := newSessionFixture(0)

	_, err := f.mgr.Start(context.Background(), domain.UserProfile{Email: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.mgr.Start(context.Background(), domain.UserProfile{UserType: "robot"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.mgr.Start(context.Background(), domain.UserProfile{Phone: "12345"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, f.mgr.Active())
}

func TestSessionManager_Start_AcceptsPhone(t *testing.T) {
	f := newSessionFixture(0)

	session, err := f.mgr.Start(context.Background(), domain.UserProfile{Phone: " +91 98765 43210 "})

	require.NoError(t, err)
	assert.Equal(t, "+91 98765 43210", session.Profile.Phone)
}

func TestSessionManager_Start_TranscriptFailure(t *testing.T) {
	f := newSessionFixture(0)
	f.transcripts.saveErr = errors.New("disk full")

	_, err := f.mgr.Start(context.Background(), domain.UserProfile{})

	require.Error(t, err)
	assert.Zero(t, f.mgr.Active())
}

func TestSessionManager_Ask_RecordsTurn(t *testing.T) {
	f := newSessionFixture(0)
	ctx := context.Background()
	session, err := f.mgr.Start(ctx, domain.UserProfile{Name: "Asha"})
	require.NoError(t, err)

	turn, err := f.mgr.Ask(ctx, session.ID, "Are you hiring?")

	require.NoError(t, err)
	assert.Equal(t, session.ID, turn.SessionID)
	assert.Equal(t, domain.ReplyFallback, turn.Source)

	live, err := f.mgr.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, live.TurnCount)
	assert.True(t, live.LastActivity.After(live.StartedAt))

	transcript, err := f.mgr.Transcript(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	assert.Equal(t, "Are you hiring?", transcript[0].Utterance)
	assert.Equal(t, 1, f.transcripts.session(session.ID).TurnCount)
}

func TestSessionManager_Ask_UnknownSession(t *testing.T) {
	f := newSessionFixture(0)

	_, err := f.mgr.Ask(context.Background(), "sess_missing", "hello")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionManager_Ask_TurnLimit(t *testing.T) {
	f := newSessionFixture(2)
	ctx := context.Background()
	session, err := f.mgr.Start(ctx, domain.UserProfile{})
	require.NoError(t, err)

	_, err = f.mgr.Ask(ctx, session.ID, "one")
	require.NoError(t, err)
	_, err = f.mgr.Ask(ctx, session.ID, "two")
	require.NoError(t, err)
	_, err = f.mgr.Ask(ctx, session.ID, "three")

	assert.ErrorIs(t, err, domain.ErrSessionLimit)
	assert.Equal(t, domain.SessionLimited, f.transcripts.session(session.ID).Status)
	assert.Len(t, f.chat.History(session.ID), 4, "the refused turn never reaches the orchestrator")
}

// gatedRunner holds every turn until released.
type gatedRunner struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRunner) RunTurn(
	_ context.Context, sessionID, utterance string, _ *domain.UserProfile,
) (*domain.Turn, error) {
	g.entered <- struct{}{}
	<-g.release
	return &domain.Turn{SessionID: sessionID, Utterance: utterance, Reply: "ok"}, nil
}

func (g *gatedRunner) Forget(string) {}

func TestSessionManager_Ask_ConcurrentTurnsRespectLimit(t *testing.T) {
	runner := &gatedRunner{entered: make(chan struct{}, 2), release: make(chan struct{})}
	mgr := NewSessionManager(newMockSessionStore(), newMockTranscriptStore(), runner,
		domain.SessionSettings{MaxTurns: 1})
	session, err := mgr.Start(context.Background(), domain.UserProfile{})
	require.NoError(t, err)

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := mgr.Ask(context.Background(), session.ID, "hello")
			errs <- err
		}()
	}

	// One ask reaches the runner; the other must be refused without waiting for it.
	<-runner.entered
	refused := <-errs
	assert.ErrorIs(t, refused, domain.ErrSessionLimit)

	close(runner.release)
	assert.NoError(t, <-errs)
	live, err := mgr.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, live.TurnCount)
}

func TestSessionManager_Ask_CancelledTurnNotRecorded(t *testing.T) {
	f := newSessionFixture(0)
	session, err := f.mgr.Start(context.Background(), domain.UserProfile{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.mgr.Ask(ctx, session.ID, "hello")

	assert.ErrorIs(t, err, ErrTurnCancelled)
	live, err := f.mgr.Get(session.ID)
	require.NoError(t, err)
	assert.Zero(t, live.TurnCount)
	transcript, err := f.mgr.Transcript(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestSessionManager_UpdateProfile(t *testing.T) {
	f := newSessionFixture(0)
	session, err := f.mgr.Start(context.Background(), domain.UserProfile{})
	require.NoError(t, err)

	err = f.mgr.UpdateProfile(session.ID, domain.UserProfile{Name: "Ravi", UserType: domain.UserTypeJobSeeker})
	require.NoError(t, err)

	live, err := f.mgr.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", live.Profile.Name)
	assert.Equal(t, domain.UserTypeJobSeeker, live.Profile.UserType)

	assert.ErrorIs(t, f.mgr.UpdateProfile("sess_missing", domain.UserProfile{}), domain.ErrSessionNotFound)
	assert.ErrorIs(t, f.mgr.UpdateProfile(session.ID, domain.UserProfile{Email: "bad"}), domain.ErrInvalidInput)
}

func TestSessionManager_Stats(t *testing.T) {
	f := newSessionFixture(0)
	ctx := context.Background()
	session, err := f.mgr.Start(ctx, domain.UserProfile{})
	require.NoError(t, err)

	for _, q := range []string{"Are you hiring?", "Any vacancy?", "Tell me a joke"} {
		_, err := f.mgr.Ask(ctx, session.ID, q)
		require.NoError(t, err)
	}

	stats, err := f.mgr.Stats(ctx, session.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TurnCount)
	assert.Equal(t, map[string]int{"keyword": 2, "fallback": 1}, stats.Methods)
	assert.Equal(t, []string{catCareers, catGeneral}, stats.Categories)
	assert.Equal(t, 3, stats.FallbackCount)
	assert.Zero(t, stats.ApologyCount)
	assert.Equal(t, 3*time.Second, stats.Duration)
}

func TestSessionManager_End(t *testing.T) {
	f := newSessionFixture(0)
	ctx := context.Background()
	session, err := f.mgr.Start(ctx, domain.UserProfile{})
	require.NoError(t, err)
	_, err = f.mgr.Ask(ctx, session.ID, "hello")
	require.NoError(t, err)

	require.NoError(t, f.mgr.End(ctx, session.ID))

	assert.Zero(t, f.mgr.Active())
	assert.Nil(t, f.chat.History(session.ID))
	assert.Equal(t, domain.SessionCompleted, f.transcripts.session(session.ID).Status)

	_, err = f.mgr.Get(session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, f.mgr.End(ctx, session.ID), domain.ErrSessionNotFound)

	stats, err := f.mgr.Stats(ctx, session.ID)
	require.NoError(t, err, "ended sessions stay inspectable")
	assert.Equal(t, domain.SessionCompleted, stats.Status)
	assert.Equal(t, 1, stats.TurnCount)
}

func TestSessionManager_Expire(t *testing.T) {
	f := newSessionFixture(0)
	ctx := context.Background()
	session, err := f.mgr.Start(ctx, domain.UserProfile{})
	require.NoError(t, err)
	_, err = f.mgr.Ask(ctx, session.ID, "hello")
	require.NoError(t, err)

	f.store.expire(session.ID)

	assert.Equal(t, domain.SessionExpired, f.transcripts.session(session.ID).Status)
	assert.Nil(t, f.chat.History(session.ID))
	_, err = f.mgr.Ask(ctx, session.ID, "still there?")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionManager_Stats_UnknownSession(t *testing.T) {
	f := newSessionFixture(0)

	_, err := f.mgr.Stats(context.Background(), "sess_missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = f.mgr.Transcript(context.Background(), "sess_missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
