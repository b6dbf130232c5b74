// ABOUTME: Slug, tag and excerpt normalization for accepted posts
// ABOUTME: Keeps generated metadata consistent with the published archive
package publish

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	minTags        = 4
	maxTags        = 7
	maxExcerptLen  = 180
	excerptTailLen = 177
)

// badTags are too generic to be useful on an archive page.
var badTags = map[string]struct{}{
	"tech": {}, "news": {}, "blog": {}, "article": {}, "ai": {},
	"software": {}, "it": {},
}

// fallbackTags pad a post up to minTags when the model returns too few
// usable tags.
var fallbackTags = []string{
	"linux", "sysadmin", "hardening", "backup", "networking",
	"storage", "monitoring", "automation", "security", "python",
}

// Slugify lowercases text and reduces it to hyphen-separated ascii words.
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z' || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// UniqueSlug probes base, base-2, base-3, ... against the slugs already in
// history and returns the first free one.
func UniqueSlug(base string, taken []string) string {
	if base == "" {
		base = "post"
	}
	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[s] = struct{}{}
	}
	candidate := base
	for n := 2; ; n++ {
		if _, ok := used[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// NormalizeTags slugifies, drops banned and too-short tags, dedupes, pads
// from the fallback pool to at least four tags and caps at seven.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{})
	cleaned := make([]string, 0, maxTags)
	for _, tag := range tags {
		norm := Slugify(tag)
		if norm == "" || len(norm) < 3 {
			continue
		}
		if _, banned := badTags[norm]; banned {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		cleaned = append(cleaned, norm)
		seen[norm] = struct{}{}
	}
	for _, fb := range fallbackTags {
		if len(cleaned) >= minTags {
			break
		}
		if _, dup := seen[fb]; dup {
			continue
		}
		cleaned = append(cleaned, fb)
		seen[fb] = struct{}{}
	}
	if len(cleaned) > maxTags {
		cleaned = cleaned[:maxTags]
	}
	return cleaned
}

// ClampExcerpt trims an excerpt to 180 characters, ellipsizing longer ones.
func ClampExcerpt(excerpt string) string {
	excerpt = strings.TrimSpace(excerpt)
	runes := []rune(excerpt)
	if len(runes) <= maxExcerptLen {
		return excerpt
	}
	return strings.TrimRight(string(runes[:excerptTailLen]), " ") + "..."
}
