// ABOUTME: JSON-file history store with advisory file locking
// ABOUTME: Append-only, insertion-ordered, safe against overlapping runs
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"blogforge/internal/models"
)

// historyFile is the on-disk shape: versioned so the format can evolve.
type historyFile struct {
	Version int           `json:"version"`
	Posts   []models.Post `json:"posts"`
}

const currentVersion = 1

// FileStore persists posts as a single ordered JSON file. Concurrent runs
// (a manual trigger overlapping the scheduled one) are serialized through an
// advisory flock on a sidecar lock file.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore creates a store backed by the given JSON file. The file does
// not need to exist yet; a missing file loads as empty history.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads all posts in insertion order. A missing file is empty history;
// a malformed file is a hard error, never silently reset, because rebuilding
// from empty would let duplicates of still-published posts through.
func (s *FileStore) Load() ([]models.Post, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Post{}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var hf historyFile
	if err := json.Unmarshal(data, &hf); err != nil {
		return nil, fmt.Errorf("parsing history file %s: %w", s.path, err)
	}
	return hf.Posts, nil
}

// Append adds one post to the end of the history under the file lock.
// Read-modify-write so an overlapping run's append is never lost.
func (s *FileStore) Append(post models.Post) error {
	// The lock file lives next to the history file, so the directory must
	// exist before the lock can be taken.
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("locking history file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	posts, err := s.Load()
	if err != nil {
		return err
	}
	posts = append(posts, post)

	data, err := json.MarshalIndent(historyFile{Version: currentVersion, Posts: posts}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	// Write-then-rename keeps the file whole if the run dies mid-write.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}
