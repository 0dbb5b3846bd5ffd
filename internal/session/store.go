package session

import "sync"

// Store holds the single process-wide session. It is explicitly owned and
// injected into consumers; no component may independently decide the user is
// logged out. Mutated in place by every successful refresh, destroyed on
// logout or terminal refresh failure.
type Store struct {
	mu      sync.RWMutex
	current Session
}

// NewStore returns an empty, unauthenticated store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the current session.
func (s *Store) Set(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
}

// Current returns a copy of the current session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Authenticated reports whether a live session exists.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Authenticated
}

// Clear destroys the session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{}
}
