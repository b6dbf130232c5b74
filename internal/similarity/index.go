// ABOUTME: SimilarityIndex scores candidates against the published history
// ABOUTME: Cosine similarity in vector mode, Jaccard index in set-fallback mode
package similarity

import (
	"errors"
	"fmt"
	"math"

	"blogforge/internal/models"
)

// ErrModeMismatch is returned when a vector from one feature mode is compared
// against an index built in another. Such scores are undefined; mixing modes
// means the extractor configuration changed between runs.
var ErrModeMismatch = errors.New("feature mode mismatch")

// Index holds the feature vectors of all published posts for the lifetime of
// a run. Full-scan matching; fine at blog scale.
type Index struct {
	mode  models.FeatureMode
	posts []models.Post
}

// NewIndex builds an index over history in the given mode. History entries
// whose vectors were produced under a different mode make the whole index
// unusable and are flagged as an error rather than silently skipped.
func NewIndex(mode models.FeatureMode, history []models.Post) (*Index, error) {
	for _, p := range history {
		if p.Features.Empty() {
			continue
		}
		if p.Features.Mode != mode {
			return nil, fmt.Errorf("post %s has %q features, index wants %q: %w",
				p.ID, p.Features.Mode, mode, ErrModeMismatch)
		}
	}
	posts := make([]models.Post, len(history))
	copy(posts, history)
	return &Index{mode: mode, posts: posts}, nil
}

// Len returns the number of indexed posts.
func (ix *Index) Len() int {
	return len(ix.posts)
}

// Add registers a freshly accepted post so later comparisons in the same
// process see it without reloading the store.
func (ix *Index) Add(post models.Post) {
	ix.posts = append(ix.posts, post)
}

// BestMatch scans every indexed post and returns the highest similarity score
// with the id of the matching post. An empty history yields score 0.0 and no
// matched id; any first candidate is therefore accepted.
func (ix *Index) BestMatch(candidate models.FeatureVector) (models.Match, error) {
	if !candidate.Empty() && candidate.Mode != ix.mode {
		return models.Match{}, fmt.Errorf("candidate has %q features, index wants %q: %w",
			candidate.Mode, ix.mode, ErrModeMismatch)
	}

	best := models.Match{}
	for i, p := range ix.posts {
		var score float64
		if ix.mode == models.FeatureModeSet {
			score = Jaccard(candidate.Tokens, p.Features.Tokens)
		} else {
			score = Cosine(candidate.Terms, p.Features.Terms)
		}
		if i == 0 || score > best.Score {
			best = models.Match{Score: score, PostID: p.ID, MatchedTitle: p.Title}
		}
	}
	return best, nil
}

// Cosine computes the cosine similarity of two sparse weight maps.
// Zero-norm inputs score 0.0, never NaN.
func Cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	// Iterate the smaller map.
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, normA, normB float64
	for term, wa := range a {
		normA += wa * wa
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Jaccard computes intersection-over-union of two token sets.
// Both inputs are assumed deduplicated (the extractor guarantees it).
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	set := make(map[string]struct{}, len(a))
	for _, tok := range a {
		set[tok] = struct{}{}
	}
	var shared int
	for _, tok := range b {
		if _, ok := set[tok]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0.0
	}
	return float64(shared) / float64(union)
}
