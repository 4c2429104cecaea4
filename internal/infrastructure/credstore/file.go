// Package credstore provides CredentialStore implementations: a file-backed
// store for single-user installs, a Redis-backed store for shared consoles,
// and an in-memory store for tests and throwaway sessions.
//
// Every store keeps the current record in memory and serves Get from that
// snapshot; Set and Clear write through to the backing medium under the same
// mutex, so readers never observe a torn credential pair.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

const fileMode = 0o600

// FileStore persists the session as a JSON file, so a console restart does not
// force a re-login. Writes go to a temp file in the same directory followed by
// a rename.
type FileStore struct {
	path string

	mu      sync.Mutex
	current domain.StoredSession
	present bool
}

// NewFileStore loads the record at path, if any. A missing file yields an
// empty store. A file that fails to parse is discarded and the store starts
// empty: broken state never becomes a half-authenticated session.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("credstore: read %s: %w", path, err)
	}

	var rec domain.StoredSession
	if err := json.Unmarshal(raw, &rec); err != nil {
		return s, nil
	}
	s.current = rec
	s.present = true
	return s, nil
}

func (s *FileStore) Get() (domain.StoredSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.present
}

func (s *FileStore) Set(_ context.Context, rec domain.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(rec); err != nil {
		return err
	}
	s.current = rec
	s.present = true
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credstore: remove %s: %w", s.path, err)
	}
	s.current = domain.StoredSession{}
	s.present = false
	return nil
}

// write performs an atomic replace: temp file alongside the target, fsync,
// then rename.
func (s *FileStore) write(rec domain.StoredSession) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("credstore: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("credstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: chmod: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credstore: close: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("credstore: rename: %w", err)
	}
	return nil
}
