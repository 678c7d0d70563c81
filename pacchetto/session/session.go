// Package session keeps the signed-in user and their access token.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/taldoflemis/jollof/pacchetto/api"
)

// Session is safe for concurrent use. The zero value and a nil *Session are
// both signed out; Login needs a non-nil session.
type Session struct {
	mu        sync.RWMutex
	token     string
	user      api.User
	expiresAt time.Time
	now       func() time.Time
}

func New() *Session {
	return &Session{now: time.Now}
}

func (s *Session) Login(res api.LoginResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = res.AccessToken
	s.user = res.User
	s.expiresAt = res.ExpiresAt
}

func (s *Session) Logout() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = api.User{}
	s.expiresAt = time.Time{}
}

// Token returns the access token while it has not expired.
func (s *Session) Token() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		return "", false
	}
	return s.token, true
}

func (s *Session) User() (api.User, bool) {
	if s == nil {
		return api.User{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		return api.User{}, false
	}
	return s.user, true
}

func (s *Session) LoggedIn() bool {
	_, ok := s.Token()
	return ok
}

// Authorize sets the bearer header on req when signed in.
func (s *Session) Authorize(req *http.Request) {
	if token, ok := s.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (s *Session) validLocked() bool {
	if s.token == "" {
		return false
	}
	if s.expiresAt.IsZero() {
		return true
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return now().Before(s.expiresAt)
}
