// ABOUTME: FeatureExtractor turns post text into comparable feature vectors
// ABOUTME: TF-IDF sparse vectors by default, token-set fallback for degraded mode
package feature

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"blogforge/internal/models"
)

// stopwords are dropped before weighting so boilerplate words never count
// as shared signal between posts. English plus the Italian function words
// that dominate the generated articles.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "how": {}, "in": {}, "is": {}, "it": {},
	"of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "this": {}, "to": {},
	"was": {}, "what": {}, "when": {}, "where": {}, "which": {}, "with": {},
	"il": {}, "lo": {}, "la": {}, "le": {}, "gli": {}, "un": {}, "una": {},
	"di": {}, "da": {}, "del": {}, "della": {}, "per": {}, "con": {}, "su": {},
	"che": {}, "come": {}, "non": {}, "sono": {}, "ed": {}, "al": {}, "alla": {},
}

// Extractor converts text into feature vectors in a single mode, fixed at
// construction. Pure and network-free: the same text and corpus multiset
// always produce the same vector.
type Extractor struct {
	mode models.FeatureMode
}

// NewExtractor creates an extractor for the given feature mode.
func NewExtractor(mode models.FeatureMode) *Extractor {
	return &Extractor{mode: mode}
}

// Mode returns the extractor's fixed feature mode.
func (e *Extractor) Mode() models.FeatureMode {
	return e.mode
}

// Extract produces the feature vector for text. In vector mode the corpus of
// prior texts is needed to fit document frequencies; in set mode it is unused.
// Empty text after normalization yields an empty vector, not an error.
func (e *Extractor) Extract(text string, corpus []string) models.FeatureVector {
	if e.mode == models.FeatureModeSet {
		return models.FeatureVector{
			Mode:   models.FeatureModeSet,
			Tokens: uniqueSorted(Tokenize(text)),
		}
	}
	return models.FeatureVector{
		Mode:  models.FeatureModeVector,
		Terms: tfidf(text, corpus),
	}
}

// Refit re-extracts every post's features over the current corpus and
// returns the refitted posts together with that corpus. Stored vectors are
// fittings over the history as it stood when each post was accepted, so
// their document frequencies drift apart as history grows; vectors from
// different fittings are not comparable. The persisted vector is a cache
// valid only for the corpus it was fitted over.
func (e *Extractor) Refit(posts []models.Post) ([]models.Post, []string) {
	corpus := make([]string, 0, len(posts))
	for _, p := range posts {
		corpus = append(corpus, p.Text())
	}
	refitted := make([]models.Post, len(posts))
	for i, p := range posts {
		refitted[i] = p
		refitted[i].Features = e.Extract(p.Text(), corpus)
	}
	return refitted, corpus
}

// Normalize lowercases text, strips punctuation and collapses whitespace.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize normalizes text and splits it into words with stopwords removed.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// tfidf fits term weights over corpus + [text] and returns the L2-normalized
// row for text. IDF uses the smoothed form ln((1+N)/(1+df)) + 1 so terms
// present in every document still contribute, keeping identical texts at
// cosine 1.0.
func tfidf(text string, corpus []string) map[string]float64 {
	docTokens := Tokenize(text)
	if len(docTokens) == 0 {
		return nil
	}

	docs := make([][]string, 0, len(corpus)+1)
	for _, c := range corpus {
		docs = append(docs, Tokenize(c))
	}
	docs = append(docs, docTokens)

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	tf := make(map[string]int, len(docTokens))
	for _, tok := range docTokens {
		tf[tok]++
	}

	n := float64(len(docs))
	weights := make(map[string]float64, len(tf))
	var norm float64
	for tok, count := range tf {
		idf := math.Log((1+n)/(1+float64(df[tok]))) + 1
		w := float64(count) * idf
		weights[tok] = w
		norm += w * w
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	for tok := range weights {
		weights[tok] /= norm
	}
	return weights
}

func uniqueSorted(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
