// Package session owns the persisted login state for ragdesk: the bearer
// token handed out by the service and the email shown in the UI. Both live
// in a single JSON file under the state directory and survive restarts until
// an explicit logout.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// credentials is the on-disk format.
type credentials struct {
	Token string `json:"token,omitempty"`
	Email string `json:"email,omitempty"`
}

// Store holds the current credentials. It is the only writer of the
// credential file; the request gateway reads the token through Token on
// every outbound call.
type Store struct {
	filePath string

	mu    sync.RWMutex
	creds credentials
}

// Open loads credentials from dir/credentials.json. A missing file means
// no one is logged in; that is not an error.
func Open(dir string) (*Store, error) {
	s := &Store{filePath: filepath.Join(dir, "credentials.json")}
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var c credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("failed to parse credential file: %w", err)
	}

	s.mu.Lock()
	s.creds = c
	s.mu.Unlock()
	return nil
}

func (s *Store) save() error {
	s.mu.RLock()
	c := s.creds
	s.mu.RUnlock()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0600)
}

// SetToken stores the bearer token and persists it. An empty token removes
// the stored value. No format validation is done: the token is opaque.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	s.creds.Token = token
	s.mu.Unlock()
	return s.save()
}

// Token returns the stored bearer token, or "" when nobody is logged in.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Token
}

// SetEmail stores the display email, independent of the token. An empty
// email removes the stored value.
func (s *Store) SetEmail(email string) error {
	s.mu.Lock()
	s.creds.Email = email
	s.mu.Unlock()
	return s.save()
}

// Email returns the stored display email, or "" when none is stored.
func (s *Store) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Email
}

// Logout clears token and email unconditionally. Calling it with nothing
// stored is a no-op that still rewrites the file, so it is always safe.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.creds = credentials{}
	s.mu.Unlock()
	return s.save()
}
