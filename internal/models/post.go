// ABOUTME: Core records for the blog generation pipeline
// ABOUTME: Defines Draft, Candidate, Post, FeatureVector and Match
package models

import (
	"strings"
	"time"
)

// FeatureMode identifies which feature representation a vector carries.
// The mode is resolved once at process start; vectors from different modes
// are never comparable.
type FeatureMode string

const (
	// FeatureModeVector is the TF-IDF sparse-vector representation.
	FeatureModeVector FeatureMode = "tfidf"
	// FeatureModeSet is the degraded token-set representation scored with Jaccard.
	FeatureModeSet FeatureMode = "tokens"
)

// Valid reports whether m names a known feature mode.
func (m FeatureMode) Valid() bool {
	return m == FeatureModeVector || m == FeatureModeSet
}

// FeatureVector is the comparable representation of a post's title+summary.
// Exactly one of Terms or Tokens is populated, according to Mode.
type FeatureVector struct {
	Mode   FeatureMode        `json:"mode"`
	Terms  map[string]float64 `json:"terms,omitempty"`  // vector mode, L2-normalized weights
	Tokens []string           `json:"tokens,omitempty"` // set mode, sorted unique tokens
}

// Empty reports whether the vector carries no signal (empty text input).
// Callers treat empty vectors as score-0 against everything, not as errors.
func (v FeatureVector) Empty() bool {
	return len(v.Terms) == 0 && len(v.Tokens) == 0
}

// Draft is the tri-field shape returned by a generation backend, before any
// novelty decision has been made. The JSON tags match the payload the
// backends are prompted to emit.
type Draft struct {
	Title   string   `json:"title"`
	Summary string   `json:"excerpt"`
	Body    string   `json:"content_markdown"`
	Tags    []string `json:"tags"`
}

// Text returns the text the duplicate check compares: title plus summary.
func (d Draft) Text() string {
	return strings.TrimSpace(d.Title + " " + d.Summary)
}

// Candidate is an ephemeral, unpublished draft plus its extracted features.
// Discarded on rejection, promoted to a Post on acceptance.
type Candidate struct {
	Draft
	Features FeatureVector
}

// Post is a published article record. Immutable once appended to history.
type Post struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	Slug        string        `json:"slug"`
	Topic       string        `json:"topic,omitempty"`
	Tags        []string      `json:"tags"`
	CoverImage  string        `json:"cover_image,omitempty"`
	PublishedAt time.Time     `json:"published_at"`
	Features    FeatureVector `json:"feature_vector"`

	// Body is carried to the publisher but never persisted in history;
	// the markdown file is the durable home of the article text.
	Body string `json:"-"`
}

// Text returns the post's comparable text (title plus summary), matching the
// corpus documents TF-IDF is fitted over.
func (p Post) Text() string {
	return strings.TrimSpace(p.Title + " " + p.Summary)
}

// Match is the result of a best-match query against history.
type Match struct {
	Score        float64 `json:"similarity_score"`
	PostID       string  `json:"matched_id,omitempty"`
	MatchedTitle string  `json:"matched_title,omitempty"`
}
