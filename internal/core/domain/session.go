package domain

import "time"

// SessionStatus describes how a session ended.
type SessionStatus string

// Session statuses.
const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionExpired   SessionStatus = "expired"
	SessionLimited   SessionStatus = "turn_limit"
)

// Session is a conversation with one visitor.
type Session struct {
	ID           string        `json:"id"`
	Profile      UserProfile   `json:"profile"`
	Status       SessionStatus `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	LastActivity time.Time     `json:"last_activity"`
	TurnCount    int           `json:"turn_count"`
}

// SessionStats summarises a session's activity.
type SessionStats struct {
	SessionID     string         `json:"session_id"`
	Status        SessionStatus  `json:"status"`
	TurnCount     int            `json:"turn_count"`
	Duration      time.Duration  `json:"duration"`
	Categories    []string       `json:"categories"`
	Methods       map[string]int `json:"methods"`
	FallbackCount int            `json:"fallback_count"`
	ApologyCount  int            `json:"apology_count"`
}

// Journey summarises a visitor's path through a conversation.
type Journey struct {
	TotalIntents    int            `json:"total_intents"`
	UniqueTopics    int            `json:"unique_topics"`
	Topics          []string       `json:"topics"`
	PrimaryFocus    string         `json:"primary_focus,omitempty"`
	PrimaryCount    int            `json:"primary_count,omitempty"`
	EngagementScore float64        `json:"engagement_score"`
	Engagement      string         `json:"engagement"`
	MethodCounts    map[string]int `json:"method_counts"`
}
