package driven

import "github.com/custodia-labs/concierge/internal/core/domain"

// SessionStore holds live sessions and expires idle ones.
type SessionStore interface {
	// Put stores a session and resets its idle timer.
	Put(session *domain.Session)

	// Get returns a live session.
	Get(id string) (*domain.Session, bool)

	// Delete removes a session without firing the expiry callback.
	Delete(id string)

	// OnExpire registers a callback for sessions that expire while idle.
	OnExpire(fn func(session *domain.Session))

	// Count returns the number of live sessions.
	Count() int
}
