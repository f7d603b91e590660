package httpapi

import (
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// StartSessionRequest is the body of POST /v1/sessions.
type StartSessionRequest struct {
	Profile domain.UserProfile `json:"profile"`
}

// SessionResponse describes a session.
type SessionResponse struct {
	Session domain.Session       `json:"session"`
	Stats   *domain.SessionStats `json:"stats,omitempty"`
	Starter string               `json:"starter,omitempty"`
}

// TurnRequest is the body of POST /v1/sessions/:id/turns.
type TurnRequest struct {
	Utterance string `json:"utterance" binding:"required"`
}

// TurnResponse is the reply to a turn.
type TurnResponse struct {
	SessionID  string              `json:"session_id"`
	Number     int                 `json:"number"`
	Reply      string              `json:"reply"`
	Source     domain.ReplySource  `json:"source"`
	Intent     domain.IntentResult `json:"intent"`
	Documents  []string            `json:"documents,omitempty"`
	DurationMS int64               `json:"duration_ms"`
	Followups  []string            `json:"followups,omitempty"`
}

// JourneyResponse summarises a session's conversation so far.
type JourneyResponse struct {
	SessionID     string          `json:"session_id"`
	Journey       domain.Journey  `json:"journey"`
	UserType      domain.UserType `json:"user_type"`
	NextQuestions []string        `json:"next_questions,omitempty"`
}

// IntentRequest is the body of POST /v1/intent.
type IntentRequest struct {
	Utterance string `json:"utterance" binding:"required"`
}

// RankRequest is the body of POST /v1/rank.
type RankRequest struct {
	Utterance  string   `json:"utterance" binding:"required"`
	Categories []string `json:"categories"`
	TopK       int      `json:"top_k" binding:"omitempty,min=1,max=50"`
}

// RankResponse lists ranked documents.
type RankResponse struct {
	Categories []string                `json:"categories"`
	Documents  []domain.RankedDocument `json:"documents"`
	Issues     []string                `json:"issues,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status         string    `json:"status"`
	Version        string    `json:"version"`
	ActiveSessions int       `json:"active_sessions"`
	Time           time.Time `json:"time"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
