package domain

import "time"

// Role identifies who produced a conversation entry.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one line of conversation memory.
type Entry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// TurnState is the orchestrator's position within a turn.
type TurnState string

// Turn states, visited in order for every turn.
const (
	StateAwaitingInput TurnState = "AWAITING_INPUT"
	StateRetrieving    TurnState = "RETRIEVING"
	StateGenerating    TurnState = "GENERATING"
	StateEnhancing     TurnState = "ENHANCING"
)

// String returns the string representation.
func (s TurnState) String() string {
	return string(s)
}

// ReplySource records which path produced a reply.
type ReplySource string

// Reply sources.
const (
	// ReplyGenerated came from the backend and went through enhancement.
	ReplyGenerated ReplySource = "generated"

	// ReplyFallback is the deterministic per-category text.
	ReplyFallback ReplySource = "fallback"

	// ReplyApology is returned when the turn failed.
	ReplyApology ReplySource = "apology"
)

// Turn is the full record of one processed utterance.
type Turn struct {
	SessionID string        `json:"session_id"`
	Number    int           `json:"number"`
	Utterance string        `json:"utterance"`
	Reply     string        `json:"reply"`
	Source    ReplySource   `json:"source"`
	Intent    IntentResult  `json:"intent"`
	Documents []string      `json:"documents,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}
