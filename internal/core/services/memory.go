package services

import (
	"sync"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// ConversationMemory is an append-only log of one session's exchanges.
// It is safe for concurrent use.
type ConversationMemory struct {
	mu      sync.RWMutex
	entries []domain.Entry
}

// NewConversationMemory creates an empty memory.
func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{}
}

// Append records one exchange as a user entry followed by an assistant entry.
func (m *ConversationMemory) Append(utterance, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries,
		domain.Entry{Role: domain.RoleUser, Text: utterance},
		domain.Entry{Role: domain.RoleAssistant, Text: reply},
	)
}

// Entries returns a copy of all entries in order.
func (m *ConversationMemory) Entries() []domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Turns returns the number of recorded exchanges.
func (m *ConversationMemory) Turns() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries) / 2
}
