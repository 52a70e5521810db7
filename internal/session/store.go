package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// DefaultTokenPath returns the credential file location under the user config
// directory, falling back to the working directory when none is resolvable.
func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "soundgraph-token.json"
	}
	return filepath.Join(dir, "soundgraph", "token.json")
}

// FileTokenStore persists a single oauth2.Token as JSON on disk.
//
// The file is written with 0600 permissions. The token is cached in memory so
// AccessToken never touches the filesystem on the request path.
type FileTokenStore struct {
	mu    sync.Mutex
	path  string
	token *oauth2.Token
}

// NewFileTokenStore opens the store at path, loading any existing credential.
// A missing file is an empty store, not an error.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if path == "" {
		path = DefaultTokenPath()
	}

	s := &FileTokenStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		// A corrupt credential file is treated as no credential.
		return s, nil
	}

	s.token = &token
	return s, nil
}

// Save persists the token to disk and caches it.
func (s *FileTokenStore) Save(token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	s.token = token
	return nil
}

// AccessToken returns the stored bearer token, or "" when none is stored.
func (s *FileTokenStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// Token returns the full stored credential, or nil.
func (s *FileTokenStore) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// HasToken reports whether a credential is stored.
func (s *FileTokenStore) HasToken() bool {
	return s.AccessToken() != ""
}

// Clear removes the credential from memory and disk. Clearing an empty store
// is a no-op.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
