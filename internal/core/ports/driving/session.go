package driving

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// SessionService manages visitor sessions around the chat pipeline.
type SessionService interface {
	// Start opens a new session for the profile.
	Start(ctx context.Context, profile domain.UserProfile) (*domain.Session, error)

	// Get returns a live session.
	Get(id string) (*domain.Session, error)

	// Ask runs one turn and records it. Returns domain.ErrSessionNotFound
	// or domain.ErrSessionLimit when the turn cannot be taken.
	Ask(ctx context.Context, id, utterance string) (*domain.Turn, error)

	// UpdateProfile replaces the session's profile.
	UpdateProfile(id string, profile domain.UserProfile) error

	// Stats summarises a session.
	Stats(ctx context.Context, id string) (*domain.SessionStats, error)

	// Transcript returns the recorded turns.
	Transcript(ctx context.Context, id string) ([]domain.Turn, error)

	// End closes a session.
	End(ctx context.Context, id string) error
}

// InsightService derives follow-ups and journey analysis from intents.
type InsightService interface {
	// AnalyzeJourney scores engagement over a series of intents.
	AnalyzeJourney(intents []domain.IntentResult) domain.Journey

	// SuggestFollowups returns up to three follow-up questions for an intent.
	SuggestFollowups(intent domain.IntentResult) []string

	// ClassifyUserType infers a user type from what the visitor said.
	ClassifyUserType(profile domain.UserProfile, utterances []string) domain.UserType

	// ConversationStarter greets a visitor according to their profile.
	ConversationStarter(profile domain.UserProfile) string

	// SuggestNextQuestions proposes questions from recent utterances.
	SuggestNextQuestions(utterances []string) []string
}

// CorpusService inspects the document corpus.
type CorpusService interface {
	// Stats summarises every configured partition.
	Stats() ([]domain.PartitionStats, error)

	// Validate reports quality problems in every configured partition.
	Validate(ctx context.Context) ([]domain.Problem, error)

	// SearchKeywords finds documents containing any of the words.
	SearchKeywords(ctx context.Context, words []string) ([]domain.KeywordHit, error)

	// Summary returns a short extract of a document.
	Summary(content string) string
}
