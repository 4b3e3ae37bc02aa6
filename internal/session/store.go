// Package session is the single source of truth for the authenticated user.
// It owns the token, persists it across restarts and reacts to
// server-signaled session expiry by clearing state and notifying the
// navigation layer.
package session

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/committeehq/committee-client/pkg/logger"
)

// User is the profile captured at login or signup. All fields are optional;
// missing server fields are backfilled from the submitted form values.
type User struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	PhoneNo string `json:"phoneNo,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Credentials is the pair stored by SetAuth.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Status is the tri-state authentication status. Until Load completes the
// status is Loading, not Anonymous, so callers must not redirect to login
// prematurely.
type Status int

const (
	StatusLoading Status = iota
	StatusAnonymous
	StatusAuthenticated
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// LogoutHook runs after an expiry-triggered ClearAuth, replacing the
// navigation stack so dead-token screens cannot be reached again.
type LogoutHook func()

// Store holds the session. Mutations are serialized through its mutex; reads
// are cheap and safe from any goroutine.
type Store struct {
	mu     sync.RWMutex
	token  string
	user   User
	loaded bool

	file     *SecureFile
	onLogout LogoutHook
	log      *logger.Logger
}

// NewStore creates a store persisting to dir. The logout hook may be nil.
func NewStore(dir string, onLogout LogoutHook, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("session")
	}
	return &Store{
		file:     NewSecureFile(dir, "session"),
		onLogout: onLogout,
		log:      log,
	}
}

// Load restores a previously persisted session. It must be called once at
// startup before authentication status is trusted. A missing or unreadable
// blob leaves the store anonymous; it never fails the startup path.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loaded = true }()

	blob, err := s.file.Open()
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Errorf("load stored session: %v", err)
		}
		return
	}

	var creds Credentials
	if err := json.Unmarshal(blob, &creds); err != nil {
		s.log.Errorf("parse stored session: %v", err)
		return
	}
	s.token = creds.Token
	s.user = creds.User
}

// SetAuth persists the credentials and updates in-memory state. Persistence
// is best effort: on storage failure the in-memory session is still set so
// the current run remains usable.
func (s *Store) SetAuth(creds Credentials) {
	blob, err := json.Marshal(creds)
	if err == nil {
		err = s.file.Seal(blob)
	}
	if err != nil {
		s.log.Errorf("persist session: %v", err)
	}

	s.mu.Lock()
	s.token = creds.Token
	s.user = creds.User
	s.loaded = true
	s.mu.Unlock()
}

// ClearAuth removes the persisted session (best effort) and resets memory.
func (s *Store) ClearAuth() {
	if err := s.file.Remove(); err != nil {
		s.log.Errorf("clear stored session: %v", err)
	}

	s.mu.Lock()
	s.token = ""
	s.user = User{}
	s.loaded = true
	s.mu.Unlock()
}

// HandleExpiry is the gateway's session-expiry callback: it clears the
// session and fires the logout hook. Wired at client construction in the
// composition root.
func (s *Store) HandleExpiry(ctx context.Context) error {
	_ = ctx
	s.log.Warn("session expired, clearing auth")
	s.ClearAuth()
	if s.onLogout != nil {
		s.onLogout()
	}
	return nil
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user profile.
func (s *Store) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a non-empty token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Status returns the tri-state authentication status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return StatusLoading
	}
	if s.token != "" {
		return StatusAuthenticated
	}
	return StatusAnonymous
}
