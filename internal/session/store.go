package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// Store persists the session token between runs.
type Store interface {
	// Load returns the stored token, or nil if none is stored.
	Load() (*oauth2.Token, error)
	// Save stores the token.
	Save(tok *oauth2.Token) error
	// Remove deletes the stored token. Removing a missing token is not an error.
	Remove() error
}

// FileStore stores the token as JSON in a file with mode 0600.
type FileStore struct {
	Path string
}

// Load implements Store.
func (f FileStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(f.Path), err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(f.Path), err)
	}
	return &tok, nil
}

// Save implements Store.
func (f FileStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0600)
}

// Remove implements Store.
func (f FileStore) Remove() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore keeps the token in memory.
type MemoryStore struct {
	mu  sync.Mutex
	tok *oauth2.Token
}

// Load implements Store.
func (m *MemoryStore) Load() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok, nil
}

// Save implements Store.
func (m *MemoryStore) Save(tok *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
	return nil
}

// Remove implements Store.
func (m *MemoryStore) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = nil
	return nil
}
