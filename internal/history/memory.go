// ABOUTME: In-memory history store for tests and ad hoc scoring
// ABOUTME: Same contract as FileStore without touching disk
package history

import (
	"sync"

	"blogforge/internal/models"
)

// MemoryStore keeps posts in memory, preserving insertion order.
type MemoryStore struct {
	mu    sync.Mutex
	posts []models.Post
}

// NewMemoryStore creates an empty in-memory store, optionally seeded.
func NewMemoryStore(seed ...models.Post) *MemoryStore {
	s := &MemoryStore{}
	s.posts = append(s.posts, seed...)
	return s
}

// Load returns a copy of the stored posts in insertion order.
func (s *MemoryStore) Load() ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out, nil
}

// Append adds a post to the end of the store.
func (s *MemoryStore) Append(post models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, post)
	return nil
}
