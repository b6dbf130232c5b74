// ABOUTME: CandidateGate runs the generate/score/accept-or-retry loop
// ABOUTME: The only mutation is one history append, after acceptance only
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blogforge/internal/feature"
	"blogforge/internal/history"
	"blogforge/internal/models"
	"blogforge/internal/publish"
	"blogforge/internal/similarity"
)

// ErrNoveltyExhausted signals that every candidate in the attempt budget
// scored at or above the threshold. Distinct from a backend failure; callers
// treat it as a soft stop.
var ErrNoveltyExhausted = errors.New("could not produce sufficiently novel content")

// State is the gate's position in its run lifecycle.
type State string

const (
	StateIdle       State = "IDLE"
	StateRequesting State = "REQUESTING"
	StateScoring    State = "SCORING"
	StateRetrying   State = "RETRYING"
	StateAccepted   State = "ACCEPTED"
	StatePublished  State = "PUBLISHED"
	StateExhausted  State = "EXHAUSTED"
	StateFailed     State = "FAILED"
)

// Generator is the generation backend as the gate sees it.
type Generator interface {
	GenerateDraft(ctx context.Context, topic string) (*models.Draft, error)
}

// Publisher receives the accepted post; markdown emission and site rebuild
// live behind it.
type Publisher interface {
	Publish(ctx context.Context, post *models.Post) error
}

// Options configure the acceptance rule and retry budget.
type Options struct {
	Threshold   float64
	MaxAttempts int
	DryRun      bool
}

// Gate orchestrates one candidate pipeline at a time: request a draft, score
// it against history, accept or retry.
type Gate struct {
	backend   Generator
	extractor *feature.Extractor
	index     *similarity.Index
	store     history.Store
	publisher Publisher
	corpus    []string
	slugs     []string
	opts      Options
	logger    *zap.Logger
	state     State
}

// New builds a gate over the given history. The similarity index and TF-IDF
// corpus are cached in memory for the lifetime of the gate.
func New(backend Generator, extractor *feature.Extractor, store history.Store,
	publisher Publisher, posts []models.Post, opts Options, logger *zap.Logger) (*Gate, error) {

	if logger == nil {
		logger = zap.NewNop()
	}

	// Stored vectors were fitted over smaller histories; refit everything
	// over today's corpus so candidate and history scores are comparable.
	refitted, corpus := extractor.Refit(posts)
	index, err := similarity.NewIndex(extractor.Mode(), refitted)
	if err != nil {
		return nil, err
	}

	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}

	if extractor.Mode() == models.FeatureModeSet {
		logger.Warn("degraded feature mode active: token-set Jaccard instead of TF-IDF cosine; " +
			"thresholds tuned for vector mode may misbehave")
	}

	return &Gate{
		backend:   backend,
		extractor: extractor,
		index:     index,
		store:     store,
		publisher: publisher,
		corpus:    corpus,
		slugs:     slugs,
		opts:      opts,
		logger:    logger,
		state:     StateIdle,
	}, nil
}

// State returns the gate's current lifecycle state.
func (g *Gate) State() State {
	return g.state
}

// Run executes the bounded generate/score loop and returns the accepted post.
// Backend failures propagate immediately; retrying them belongs to the
// scheduler, not the gate. Exhausting the attempt budget returns
// ErrNoveltyExhausted.
func (g *Gate) Run(ctx context.Context, topic string) (*models.Post, error) {
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			g.state = StateFailed
			return nil, err
		}

		g.state = StateRequesting
		draft, err := g.backend.GenerateDraft(ctx, topic)
		if err != nil {
			g.state = StateFailed
			return nil, fmt.Errorf("generation backend: %w", err)
		}

		g.state = StateScoring
		cand := models.Candidate{
			Draft:    *draft,
			Features: g.extractor.Extract(draft.Text(), g.corpus),
		}
		match, err := g.index.BestMatch(cand.Features)
		if err != nil {
			g.state = StateFailed
			return nil, err
		}

		if match.Score >= g.opts.Threshold {
			g.logger.Info("candidate rejected",
				zap.Int("attempt", attempt),
				zap.Float64("score", match.Score),
				zap.Float64("threshold", g.opts.Threshold),
				zap.String("matched_id", match.PostID),
				zap.String("matched_title", match.MatchedTitle))
			g.state = StateRetrying
			continue
		}

		g.state = StateAccepted
		post := g.promote(cand, topic)
		g.logger.Info("candidate accepted",
			zap.Int("attempt", attempt),
			zap.Float64("score", match.Score),
			zap.String("id", post.ID),
			zap.String("slug", post.Slug))

		if g.opts.DryRun {
			g.logger.Info("dry run: skipping history append and publish")
			g.state = StatePublished
			return &post, nil
		}

		if err := g.store.Append(post); err != nil {
			g.state = StateFailed
			return nil, fmt.Errorf("appending to history: %w", err)
		}
		if err := g.publisher.Publish(ctx, &post); err != nil {
			g.state = StateFailed
			return nil, fmt.Errorf("publishing post: %w", err)
		}

		g.index.Add(post)
		g.corpus = append(g.corpus, post.Text())
		g.slugs = append(g.slugs, post.Slug)
		g.state = StatePublished
		return &post, nil
	}

	g.state = StateExhausted
	return nil, fmt.Errorf("%w after %d attempts", ErrNoveltyExhausted, g.opts.MaxAttempts)
}

// promote turns an accepted candidate into an immutable post record.
func (g *Gate) promote(cand models.Candidate, topic string) models.Post {
	now := time.Now().UTC()
	slug := publish.UniqueSlug(publish.Slugify(cand.Title), g.slugs)
	post := models.Post{
		ID:          uuid.New().String(),
		Title:       cand.Title,
		Summary:     publish.ClampExcerpt(cand.Summary),
		Slug:        slug,
		Topic:       topic,
		Tags:        publish.NormalizeTags(cand.Tags),
		PublishedAt: now,
		Features:    cand.Features,
		Body:        cand.Body,
	}
	post.CoverImage = fmt.Sprintf("assets/images/%s-%s.png", now.Format("2006-01-02"), slug)
	return post
}
