// Package statusfile persists the fetch status as a small JSON document on disk.
package statusfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"notioner/internal/domain/entity"
)

// DefaultPath is where status.json is written when no path is configured.
const DefaultPath = "data/status.json"

type document struct {
	LastFetched time.Time `json:"lastFetched"`
	NextFetch   time.Time `json:"nextFetch"`
}

// Store reads and writes status.json. Writes go to a temp file that is renamed
// into place, so readers never observe a partial document.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store for path.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored status, or entity.ErrNotFound when nothing was written yet.
func (s *Store) Load(_ context.Context) (entity.FetchStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.FetchStatus{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.FetchStatus{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return entity.FetchStatus{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return entity.FetchStatus{LastFetched: doc.LastFetched, NextFetch: doc.NextFetch}, nil
}

// Save atomically replaces the stored status.
func (s *Store) Save(_ context.Context, status entity.FetchStatus) error {
	data, err := json.Marshal(document{
		LastFetched: status.LastFetched.UTC(),
		NextFetch:   status.NextFetch.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".status-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// rename 済みなら no-op
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename to %s: %w", s.path, err)
	}
	return nil
}
