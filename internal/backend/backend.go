// ABOUTME: Generation backend contract and error taxonomy
// ABOUTME: One polymorphic interface; provider selection never leaks into the gate
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogforge/internal/models"
)

var (
	// ErrQuota marks quota exhaustion or rate limiting. Scheduled unattended
	// runs treat this as a soft stop, not a fault.
	ErrQuota = errors.New("backend quota exhausted")

	// ErrBadPayload marks a response that could not be parsed into the
	// title/summary/body shape.
	ErrBadPayload = errors.New("malformed backend response")
)

// Generator produces one article draft per call. Implementations handle their
// own transport-level retries; callers see at most one terminal error.
type Generator interface {
	GenerateDraft(ctx context.Context, topic string) (*models.Draft, error)
}

// ImageGenerator produces cover image bytes for a post.
type ImageGenerator interface {
	GenerateCover(ctx context.Context) ([]byte, error)
}

// IsQuota reports whether err is (or wraps) a quota/rate-limit condition.
func IsQuota(err error) bool {
	return errors.Is(err, ErrQuota)
}

// quotaLike classifies raw provider errors by message, the only signal the
// OpenAI-compatible APIs give us consistently across providers.
func quotaLike(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "insufficient_quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429")
}

// StaticGenerator returns a canned draft without any network call.
// Used for DRY_RUN and in tests.
type StaticGenerator struct {
	Draft models.Draft
}

// NewStaticGenerator builds the canned draft used by dry runs.
func NewStaticGenerator(topic string) *StaticGenerator {
	return &StaticGenerator{Draft: models.Draft{
		Title:   fmt.Sprintf("%s: a practical guide", topic),
		Summary: fmt.Sprintf("A hands-on walkthrough of %s.", topic),
		Body:    "## Introduction\nPlaceholder content for a dry run.\n",
		Tags:    []string{"linux", "sysadmin", "hardening", "backup"},
	}}
}

// GenerateDraft returns a copy of the canned draft.
func (g *StaticGenerator) GenerateDraft(ctx context.Context, topic string) (*models.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := g.Draft
	return &d, nil
}
