package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.ErrorContains(t, err, "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	for _, table := range []string{"sessions", "turns"} {
		var exists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.Equal(t, 1, exists, "table %s should exist", table)
	}
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStore_Migrate_AppliesNewVersionsOnly(t *testing.T) {
	store := setupTestStore(t)
	fsys := fstest.MapFS{
		"001_transcripts.up.sql": {Data: []byte("SELECT 1")},
		"002_extra.up.sql":       {Data: []byte("CREATE TABLE extra (id INTEGER)")},
		"002_extra.down.sql":     {Data: []byte("DROP TABLE extra")},
		"notes.up.sql":           {Data: []byte("garbage")},
	}

	require.NoError(t, store.migrate(fsys))

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store := setupTestStore(t)

	var enabled int
	require.NoError(t, store.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestTranscriptStore_Sessions(t *testing.T) {
	transcripts := setupTestStore(t).TranscriptStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	session := &domain.Session{
		ID:           "sess_20240102_150405_abc123",
		Profile:      domain.UserProfile{Name: "Ada", UserType: domain.UserTypeGeneral},
		Status:       domain.SessionActive,
		StartedAt:    base,
		LastActivity: base,
	}
	require.NoError(t, transcripts.SaveSession(ctx, session))
	require.NoError(t, transcripts.SaveSession(ctx, &domain.Session{
		ID: "older", Status: domain.SessionExpired, StartedAt: base.Add(-time.Hour), LastActivity: base.Add(-time.Hour),
	}))

	session.TurnCount = 2
	session.Status = domain.SessionCompleted
	session.LastActivity = base.Add(time.Minute)
	require.NoError(t, transcripts.SaveSession(ctx, session))

	got, err := transcripts.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Profile.Name)
	assert.Equal(t, domain.SessionCompleted, got.Status)
	assert.Equal(t, 2, got.TurnCount)
	assert.True(t, got.StartedAt.Equal(base))
	assert.True(t, got.LastActivity.Equal(base.Add(time.Minute)))

	all, err := transcripts.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, session.ID, all[0].ID)

	one, err := transcripts.ListSessions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	_, err = transcripts.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTranscriptStore_Turns(t *testing.T) {
	transcripts := setupTestStore(t).TranscriptStore()
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	require.NoError(t, transcripts.SaveSession(ctx, &domain.Session{
		ID: "s", Status: domain.SessionActive, StartedAt: now, LastActivity: now,
	}))

	first := &domain.Turn{
		SessionID: "s",
		Number:    1,
		Utterance: "Are you hiring?",
		Reply:     "Yes, see our careers page.",
		Source:    domain.ReplyGenerated,
		Intent: domain.IntentResult{
			Method:     domain.MethodKeyword,
			Categories: []string{"careers"},
			Confidence: 1,
		},
		Documents: []string{"Careers/jobs.txt"},
		Duration:  1500 * time.Millisecond,
		CreatedAt: now,
	}
	require.NoError(t, transcripts.AppendTurn(ctx, first))
	require.NoError(t, transcripts.AppendTurn(ctx, &domain.Turn{
		SessionID: "s", Number: 2, Utterance: "ok", Reply: "bye", Source: domain.ReplyFallback,
	}))

	turns, err := transcripts.ListTurns(ctx, "s")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, first.Intent, turns[0].Intent)
	assert.Equal(t, first.Documents, turns[0].Documents)
	assert.Equal(t, first.Duration, turns[0].Duration)
	assert.True(t, turns[0].CreatedAt.Equal(now))
	assert.Nil(t, turns[1].Documents)
	assert.False(t, turns[1].CreatedAt.IsZero())

	err = transcripts.AppendTurn(ctx, first)
	assert.Error(t, err, "duplicate turn numbers are rejected")
}

func TestTranscriptStore_UnknownSession(t *testing.T) {
	transcripts := setupTestStore(t).TranscriptStore()
	ctx := context.Background()

	err := transcripts.AppendTurn(ctx, &domain.Turn{SessionID: "nope", Number: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = transcripts.ListTurns(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
