// Package credentials persists the signed-in user's session context
// (token, userId, user) between CLI invocations.
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sdg-quest/internal/domain"
)

// Store is a YAML file holding one set of credentials.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is the credentials file under the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sdg-quest-credentials.yaml"
	}
	return filepath.Join(dir, "sdg-quest", "credentials.yaml")
}

func (s *Store) Path() string { return s.path }

// Load returns the stored credentials, or empty ones when nothing is stored.
func (s *Store) Load() (domain.Credentials, error) {
	var creds domain.Credentials
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return creds, nil
	}
	if err != nil {
		return creds, fmt.Errorf("read credentials: %w", err)
	}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("parse credentials %s: %w", s.path, err)
	}
	return creds, nil
}

// Save replaces the stored credentials. The file is private to the user.
func (s *Store) Save(creds domain.Credentials) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the stored credentials.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
