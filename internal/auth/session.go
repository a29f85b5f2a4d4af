// Package auth manages accounts and the per-client session that gates
// content and vote operations.
package auth

import "sync"

// Session holds the logged-in username for one client. The zero value is a
// logged-out session. Each CLI process or HTTP client owns its own Session.
type Session struct {
	mu       sync.RWMutex
	username string
}

// NewSession returns a session already holding username. An empty username
// yields a logged-out session.
func NewSession(username string) *Session {
	return &Session{username: username}
}

// User returns the current username and whether one is set.
func (s *Session) User() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username, s.username != ""
}

func (s *Session) set(username string) {
	s.mu.Lock()
	s.username = username
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.username = ""
	s.mu.Unlock()
}
