// Package session holds the client-side authentication state. A Session is
// created once by the top-level controller and passed to every API binding.
package session

import (
	"sync"

	"schoolmon/internal/model"
)

type Session struct {
	mu    sync.RWMutex
	token string
	user  model.User
}

func New() *Session {
	return &Session{}
}

// Restore creates a session from a previously persisted token.
func Restore(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Set(token string, user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = model.User{}
}

// Observe clears the session when err reports an auth-required failure and
// returns err unchanged.
func (s *Session) Observe(err error) error {
	if model.IsAuthRequired(err) {
		s.Clear()
	}
	return err
}
