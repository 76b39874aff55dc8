package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/listgraph/pkg/cache"
	"github.com/matzehuels/listgraph/pkg/interact"
)

// Saved is the persisted interaction state of a graph source.
type Saved struct {
	Source  string            `json:"source"`
	DocHash string            `json:"doc_hash"`
	State   interact.Snapshot `json:"state"`
	SavedAt time.Time         `json:"saved_at"`
}

// FileStore persists interaction state per source as JSON files, so the CLI
// can resume where the user left off.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/listgraph/workspaces/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "listgraph", "workspaces")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(source string) string {
	return filepath.Join(s.baseDir, cache.Hash([]byte(source))[:16]+".json")
}

// Load returns the state saved for source, or nil when there is none.
func (s *FileStore) Load(source string) (*Saved, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(source))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspace file: %w", err)
	}
	var saved Saved
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	return &saved, nil
}

// Save writes saved, replacing earlier state for the same source.
func (s *FileStore) Save(saved Saved) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if saved.SavedAt.IsZero() {
		saved.SavedAt = time.Now()
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workspace: %w", err)
	}
	if err := os.WriteFile(s.path(saved.Source), data, 0o600); err != nil {
		return fmt.Errorf("write workspace file: %w", err)
	}
	return nil
}

// Delete removes the state saved for source.
func (s *FileStore) Delete(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(source)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove workspace file: %w", err)
	}
	return nil
}

// Cleanup removes state saved longer ago than maxAge and returns how many
// files were removed.
func (s *FileStore) Cleanup(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read workspace dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var saved Saved
		if err := json.Unmarshal(data, &saved); err != nil {
			continue
		}
		if saved.SavedAt.Before(cutoff) && os.Remove(path) == nil {
			removed++
		}
	}
	return removed, nil
}

// Path returns the base directory for workspace files.
func (s *FileStore) Path() string {
	return s.baseDir
}
