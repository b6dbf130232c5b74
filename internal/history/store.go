// ABOUTME: History store contract for published posts
// ABOUTME: Load at startup, append exactly once per accepted post
package history

import "blogforge/internal/models"

// Store is the durable record of all previously accepted posts and their
// feature vectors. Implementations must preserve insertion order so TF-IDF
// fitting is reproducible across runs.
type Store interface {
	Load() ([]models.Post, error)
	Append(post models.Post) error
}
