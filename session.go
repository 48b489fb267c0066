package talon

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// AuthInfo holds the authentication state of a session.
type AuthInfo struct {
	Authenticated   bool
	Mechanism       string
	Identity        string
	AuthenticatedAt time.Time
}

// Session is the connection-scoped state the backend writes to. One
// session belongs to one SMTP connection; sessions are never shared.
// Within a session authentication attempts are sequential, but the
// host may read state from other goroutines, so access is guarded.
type Session struct {
	mu   sync.RWMutex
	id   string
	auth AuthInfo
}

// NewSession creates a session with a fresh trace ID.
func NewSession() *Session {
	return &Session{id: ulid.Make().String()}
}

// ID returns the session trace ID used in log lines.
func (s *Session) ID() string {
	return s.id
}

// IsAuthenticated reports whether a mechanism has succeeded on this
// session.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth.Authenticated
}

// Auth returns a copy of the session's authentication state.
func (s *Session) Auth() AuthInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

// Identity returns the authenticated identity, or "" when the session
// has not authenticated.
func (s *Session) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.auth.Authenticated {
		return ""
	}
	return s.auth.Identity
}

// End clears the session's authentication state. Called by the host
// when the connection closes.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = AuthInfo{}
}

// setAuthenticated records a successful mechanism outcome. It is only
// called after the store lookup and verification have completed.
func (s *Session) setAuthenticated(mechanism, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = AuthInfo{
		Authenticated:   true,
		Mechanism:       mechanism,
		Identity:        identity,
		AuthenticatedAt: time.Now(),
	}
}
