// ABOUTME: Unit tests for the similarity index
// ABOUTME: Cosine and Jaccard semantics, mode isolation, empty-history behavior
package similarity

import (
	"errors"
	"math"
	"testing"

	"blogforge/internal/feature"
	"blogforge/internal/models"
)

func vectorPost(t *testing.T, id, title, summary string, corpus []string) models.Post {
	t.Helper()
	e := feature.NewExtractor(models.FeatureModeVector)
	return models.Post{
		ID:       id,
		Title:    title,
		Summary:  summary,
		Features: e.Extract(title+" "+summary, corpus),
	}
}

func TestBestMatchIdenticalText(t *testing.T) {
	e := feature.NewExtractor(models.FeatureModeVector)
	text := "Intro to ACLs ACL basics on Linux"

	post := vectorPost(t, "p1", "Intro to ACLs", "ACL basics on Linux", nil)
	ix, err := NewIndex(models.FeatureModeVector, []models.Post{post})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	match, err := ix.BestMatch(e.Extract(text, []string{text}))
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if math.Abs(match.Score-1.0) > 1e-9 {
		t.Errorf("identical normalized text must score 1.0, got %f", match.Score)
	}
	if match.PostID != "p1" {
		t.Errorf("expected matched id p1, got %q", match.PostID)
	}
}

func TestBestMatchDisjointVocabulary(t *testing.T) {
	e := feature.NewExtractor(models.FeatureModeVector)

	post := vectorPost(t, "p1", "Intro to ACLs", "ACL basics on Linux", nil)
	ix, err := NewIndex(models.FeatureModeVector, []models.Post{post})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	match, err := ix.BestMatch(e.Extract("GPU scheduling Kubernetes bin-packing", []string{post.Text()}))
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if match.Score != 0.0 {
		t.Errorf("disjoint vocabulary must score 0.0, got %f", match.Score)
	}
}

func TestBestMatchEmptyHistory(t *testing.T) {
	e := feature.NewExtractor(models.FeatureModeVector)
	ix, err := NewIndex(models.FeatureModeVector, nil)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	match, err := ix.BestMatch(e.Extract("anything at all", nil))
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if match.Score != 0.0 || match.PostID != "" {
		t.Errorf("empty history must yield score 0.0 and no id, got %+v", match)
	}
}

func TestBestMatchEmptyCandidate(t *testing.T) {
	post := vectorPost(t, "p1", "Intro to ACLs", "ACL basics on Linux", nil)
	ix, err := NewIndex(models.FeatureModeVector, []models.Post{post})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	match, err := ix.BestMatch(models.FeatureVector{Mode: models.FeatureModeVector})
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if match.Score != 0.0 {
		t.Errorf("empty candidate is no signal, want score 0.0, got %f", match.Score)
	}
	if math.IsNaN(match.Score) {
		t.Error("score must never be NaN")
	}
}

func TestModeMismatchFlagged(t *testing.T) {
	setPost := models.Post{
		ID:       "p1",
		Features: models.FeatureVector{Mode: models.FeatureModeSet, Tokens: []string{"acl", "linux"}},
	}

	if _, err := NewIndex(models.FeatureModeVector, []models.Post{setPost}); !errors.Is(err, ErrModeMismatch) {
		t.Errorf("expected ErrModeMismatch from NewIndex, got %v", err)
	}

	ix, err := NewIndex(models.FeatureModeSet, []models.Post{setPost})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	vectorCandidate := models.FeatureVector{
		Mode:  models.FeatureModeVector,
		Terms: map[string]float64{"acl": 1.0},
	}
	if _, err := ix.BestMatch(vectorCandidate); !errors.Is(err, ErrModeMismatch) {
		t.Errorf("expected ErrModeMismatch from BestMatch, got %v", err)
	}
}

func TestCosineSymmetric(t *testing.T) {
	a := map[string]float64{"acl": 0.6, "linux": 0.8}
	b := map[string]float64{"acl": 0.3, "hardening": 0.9}

	ab := Cosine(a, b)
	ba := Cosine(b, a)
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("cosine must be symmetric: %f vs %f", ab, ba)
	}
	if ab < 0 || ab > 1 {
		t.Errorf("cosine out of [0,1]: %f", ab)
	}
}

func TestCosineZeroNorm(t *testing.T) {
	if got := Cosine(map[string]float64{}, map[string]float64{"a": 1}); got != 0.0 {
		t.Errorf("empty vector must score 0.0, got %f", got)
	}
	if got := Cosine(nil, nil); got != 0.0 {
		t.Errorf("nil vectors must score 0.0, got %f", got)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected float64
	}{
		{"identical", []string{"a", "b"}, []string{"a", "b"}, 1.0},
		{"disjoint", []string{"a", "b"}, []string{"c", "d"}, 0.0},
		{"empty side", nil, []string{"a"}, 0.0},
		{"half overlap", []string{"a", "b", "c"}, []string{"b", "c", "d"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Jaccard(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.expected)
			}
			if rev := Jaccard(tt.b, tt.a); math.Abs(got-rev) > 1e-12 {
				t.Errorf("Jaccard must be symmetric: %f vs %f", got, rev)
			}
		})
	}
}

// Nine of ten shared tokens lands just above a 0.80 threshold, the fallback
// rejection scenario.
func TestJaccardNearDuplicateAboveThreshold(t *testing.T) {
	a := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10"}
	b := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "other"}

	got := Jaccard(a, b)
	expected := 9.0 / 11.0 // 0.818...
	if math.Abs(got-expected) > 1e-9 {
		t.Fatalf("Jaccard = %f, want %f", got, expected)
	}
	if got < 0.80 {
		t.Errorf("near-duplicate must score above the 0.80 threshold, got %f", got)
	}
}
