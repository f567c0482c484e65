package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// DefaultTimeout is the session length, in seconds, restored by Logout
// regardless of any configured value.
const DefaultTimeout = 180

// User identifies the authenticated admin.
type User struct {
	Username string
	Avatar   string
}

// Store holds the admin's client-side session state. It is an explicit,
// injectable object so tests can construct isolated instances; the console
// creates exactly one per process.
//
// Preferences (dark mode, session timeout) are persisted to a TOML file in
// the profile directory on every mutation. Authentication state is
// deliberately NOT persisted: a restart always requires a fresh sign-in.
type Store struct {
	mu            sync.RWMutex
	path          string // empty = in-memory only
	logger        *zap.Logger
	authenticated bool
	user          *User
	timeout       int
	darkMode      bool
}

// persisted is the on-disk shape of the session file.
type persisted struct {
	SessionTimeout int  `toml:"session_timeout"`
	DarkMode       bool `toml:"dark_mode"`
}

// NewStore creates a session store persisted at path. An empty path keeps
// the store in memory (used by tests). Existing preferences are restored;
// the store always starts signed out.
func NewStore(path string, logger *zap.Logger) *Store {
	s := &Store{
		path:    path,
		logger:  logger,
		timeout: DefaultTimeout,
	}
	if path != "" {
		var p persisted
		if _, err := toml.DecodeFile(path, &p); err == nil {
			if p.SessionTimeout > 0 {
				s.timeout = p.SessionTimeout
			}
			s.darkMode = p.DarkMode
		}
	}
	return s
}

// Authenticated reports whether an admin is signed in.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns a copy of the signed-in identity, or nil when signed out.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SessionTimeout returns the configured session length in seconds.
func (s *Store) SessionTimeout() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeout
}

// DarkMode reports the dark-mode preference.
func (s *Store) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkMode
}

// SetAuth transitions authentication state. The user is owned by the
// authentication flag: signing out always clears it, so the store can never
// hold an identity without a session.
func (s *Store) SetAuth(authenticated bool, user *User) {
	s.mu.Lock()
	s.authenticated = authenticated
	if authenticated {
		s.user = user
	} else {
		s.user = nil
	}
	s.mu.Unlock()
	s.persist()
}

// SetSessionTimeout updates the configured session length.
func (s *Store) SetSessionTimeout(seconds int) {
	s.mu.Lock()
	s.timeout = seconds
	s.mu.Unlock()
	s.persist()
}

// ToggleDarkMode flips the dark-mode preference. Independent of
// authentication state.
func (s *Store) ToggleDarkMode() {
	s.mu.Lock()
	s.darkMode = !s.darkMode
	s.mu.Unlock()
	s.persist()
}

// Logout unconditionally resets authentication, identity, and the session
// timeout to its default. The timeout reset is intentional: logout restores
// the default session length, not the last configured value.
func (s *Store) Logout() {
	s.mu.Lock()
	s.authenticated = false
	s.user = nil
	s.timeout = DefaultTimeout
	s.mu.Unlock()
	s.persist()
}

// persist writes preferences to disk. Best effort: a failed write keeps the
// in-memory state authoritative and is only logged.
func (s *Store) persist() {
	if s.path == "" {
		return
	}

	s.mu.RLock()
	p := persisted{SessionTimeout: s.timeout, DarkMode: s.darkMode}
	s.mu.RUnlock()

	err := func() error {
		if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
			return err
		}
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return err
		}
		encErr := toml.NewEncoder(f).Encode(p)
		if closeErr := f.Close(); closeErr != nil && encErr == nil {
			return closeErr
		}
		return encErr
	}()
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to persist session state", zap.Error(err))
	}
}
