package driving

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// ChatService answers visitors turn by turn.
type ChatService interface {
	// ProcessTurn answers one utterance within a session.
	// It never fails: errors become a displayable apology.
	ProcessTurn(ctx context.Context, sessionID, utterance string, profile *domain.UserProfile) string

	// History returns the session's conversation memory.
	History(sessionID string) []domain.Entry

	// State returns where the session is within its current turn.
	State(sessionID string) domain.TurnState

	// Forget drops a session's memory.
	Forget(sessionID string)
}

// IntentDetector maps utterances to categories.
type IntentDetector interface {
	// Detect classifies an utterance. It never fails.
	Detect(ctx context.Context, utterance string) domain.IntentResult
}

// DocumentRanker ranks corpus documents against an utterance.
type DocumentRanker interface {
	// Rank returns documents from the partitions ordered by descending similarity,
	// plus any non-fatal issues met while reading the corpus.
	Rank(ctx context.Context, utterance string, partitions []string) ([]domain.RankedDocument, []domain.Issue, error)
}

// PromptAssembler builds grounding prompts.
type PromptAssembler interface {
	// Build returns the grounding prompt. Identical inputs give identical output.
	Build(utterance string, profile *domain.UserProfile, intent *domain.IntentResult) string
}

// ResponseEnhancer post-processes generated replies.
type ResponseEnhancer interface {
	// Enhance personalises and formats a reply without removing content.
	Enhance(reply string, intent *domain.IntentResult, profile *domain.UserProfile) string
}
