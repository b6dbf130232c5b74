// ABOUTME: Topic pool loading and rotation for daily generation
// ABOUTME: Avoids topics used in the most recent published posts
package topics

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"

	"blogforge/internal/models"
)

// RecentWindow is how many of the latest posts block their topic from
// being picked again.
const RecentWindow = 7

// defaultPool keeps a fresh deployment generating before anyone has
// written a topics file.
var defaultPool = []string{
	"Managing permissions and groups on Linux",
	"Hardening SSH on a Debian server",
	"Backup and restore for shared student folders",
}

// Load reads the topic pool from a JSON string array. A missing file
// returns the built-in default pool.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			pool := make([]string, len(defaultPool))
			copy(pool, defaultPool)
			return pool, nil
		}
		return nil, fmt.Errorf("reading topics file: %w", err)
	}

	var pool []string
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("parsing topics file %s: %w", path, err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("topics file %s is empty", path)
	}
	return pool, nil
}

// Recent returns the topics of the last RecentWindow posts in history.
func Recent(posts []models.Post) []string {
	start := len(posts) - RecentWindow
	if start < 0 {
		start = 0
	}
	var recent []string
	for _, p := range posts[start:] {
		if p.Topic != "" {
			recent = append(recent, p.Topic)
		}
	}
	return recent
}

// Pick chooses a random topic from the pool, excluding recently used ones.
// When everything is recent the full pool becomes eligible again.
func Pick(pool, recent []string) string {
	used := make(map[string]struct{}, len(recent))
	for _, t := range recent {
		used[t] = struct{}{}
	}
	available := make([]string, 0, len(pool))
	for _, t := range pool {
		if _, ok := used[t]; !ok {
			available = append(available, t)
		}
	}
	if len(available) == 0 {
		available = pool
	}
	return available[rand.IntN(len(available))]
}
