package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/prepbox/examsim-backend/internal/config"
	"github.com/prepbox/examsim-backend/internal/model"
)

// document is the on-disk layout: one JSON object keyed by the fixed
// store key names.
type document map[string]json.RawMessage

// FileStore persists the two logical records in a single JSON file.
// It is the default backend.
type FileStore struct {
	mu        sync.Mutex
	path      string
	retention int
}

// NewFileStore creates a file-backed store at path. retention caps the
// attempt collection; values below 1 fall back to 50.
func NewFileStore(path string, retention int) *FileStore {
	if retention < 1 {
		retention = 50
	}
	return &FileStore{path: path, retention: retention}
}

// LastLogin implements Store.
func (s *FileStore) LastLogin(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", false, err
	}
	raw, ok := doc[config.StoreKey.LastLoginKey()]
	if !ok {
		return "", false, nil
	}
	var username string
	if err := json.Unmarshal(raw, &username); err != nil {
		return "", false, fmt.Errorf("decode last login: %w", err)
	}
	return username, username != "", nil
}

// SetLastLogin implements Store.
func (s *FileStore) SetLastLogin(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		// A corrupt document is replaced rather than propagated; the
		// write path must stay best-effort.
		doc = document{}
	}
	raw, err := json.Marshal(username)
	if err != nil {
		return err
	}
	doc[config.StoreKey.LastLoginKey()] = raw
	return s.write(doc)
}

// Attempts implements Store.
func (s *FileStore) Attempts(ctx context.Context) ([]model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAttempts()
}

// AppendAttempt implements Store.
func (s *FileStore) AppendAttempt(ctx context.Context, attempt model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts, err := s.readAttempts()
	if err != nil {
		attempts = nil
	}
	attempts = append(attempts, attempt)
	if len(attempts) > s.retention {
		attempts = attempts[len(attempts)-s.retention:]
	}

	doc, err := s.read()
	if err != nil {
		doc = document{}
	}
	raw, err := json.Marshal(attempts)
	if err != nil {
		return err
	}
	doc[config.StoreKey.AttemptsKey()] = raw
	return s.write(doc)
}

// Close implements Store. The file store has nothing to release.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) readAttempts() ([]model.Attempt, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	raw, ok := doc[config.StoreKey.AttemptsKey()]
	if !ok {
		return []model.Attempt{}, nil
	}
	var attempts []model.Attempt
	if err := json.Unmarshal(raw, &attempts); err != nil {
		return nil, fmt.Errorf("decode attempts: %w", err)
	}
	return attempts, nil
}

// read loads the document; a missing file is an empty document, not an
// error.
func (s *FileStore) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document{}, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	doc := document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	return doc, nil
}

// write persists via a temp file plus rename so a crash mid-write
// cannot corrupt the document.
func (s *FileStore) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
