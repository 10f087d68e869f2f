package gateway

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session holds the single bearer credential used by the gateway.
// When path is set the token is persisted there as JSON; an empty path keeps
// the session in memory only.
type Session struct {
	mu    sync.RWMutex
	path  string
	token string
}

type sessionFile struct {
	Token string `json:"token"`
}

// NewSession returns a session persisted at path (empty for memory only).
func NewSession(path string) *Session {
	return &Session{path: path}
}

// Load reads the persisted token. A missing file is not an error.
func (s *Session) Load() error {
	if s.path == "" {
		return nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open session: %w", err)
	}
	defer f.Close()

	var sf sessionFile
	if err := json.NewDecoder(f).Decode(&sf); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	s.mu.Lock()
	s.token = sf.Token
	s.mu.Unlock()
	return nil
}

// Token returns the current credential, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the credential and persists it.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.save()
}

// Clear drops the credential and removes the persisted file.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *Session) save() error {
	if s.path == "" {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(sessionFile{Token: s.Token()})
}
