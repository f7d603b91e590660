package memory

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps live sessions in a TTL cache. Each Put restarts the
// session's idle timer; sessions idle longer than the TTL are evicted by the
// janitor and reported through the OnExpire callback.
type SessionStore struct {
	cache    *gocache.Cache
	deleting sync.Map

	mu       sync.RWMutex
	onExpire func(*domain.Session)
}

// NewSessionStore creates a store whose sessions expire after ttl idle.
// The janitor sweeps every cleanup interval; zero uses ttl/2.
func NewSessionStore(ttl, cleanup time.Duration) *SessionStore {
	if cleanup <= 0 {
		cleanup = ttl / 2
	}
	s := &SessionStore{cache: gocache.New(ttl, cleanup)}
	s.cache.OnEvicted(s.evicted)
	return s
}

func (s *SessionStore) evicted(id string, v any) {
	// go-cache reports explicit deletes as evictions too.
	if _, ok := s.deleting.Load(id); ok {
		return
	}
	session, ok := v.(*domain.Session)
	if !ok {
		return
	}

	s.mu.RLock()
	fn := s.onExpire
	s.mu.RUnlock()
	if fn != nil {
		fn(session)
	}
}

// Put stores a session and resets its idle timer.
func (s *SessionStore) Put(session *domain.Session) {
	s.cache.SetDefault(session.ID, session)
}

// Get returns a live session.
func (s *SessionStore) Get(id string) (*domain.Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*domain.Session), true
}

// Delete removes a session without firing the expiry callback.
func (s *SessionStore) Delete(id string) {
	s.deleting.Store(id, struct{}{})
	defer s.deleting.Delete(id)
	s.cache.Delete(id)
}

// OnExpire registers a callback for sessions that expire while idle.
func (s *SessionStore) OnExpire(fn func(session *domain.Session)) {
	s.mu.Lock()
	s.onExpire = fn
	s.mu.Unlock()
}

// Count returns the number of stored sessions, including expired ones the
// janitor has not swept yet.
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}

// Sweep evicts expired sessions now instead of waiting for the janitor.
func (s *SessionStore) Sweep() {
	s.cache.DeleteExpired()
}
