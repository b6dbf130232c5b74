// ABOUTME: Unit tests for the candidate gate state machine
// ABOUTME: Accept/reject/retry loop, exhaustion, dry run, failure propagation
package gate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"blogforge/internal/feature"
	"blogforge/internal/history"
	"blogforge/internal/models"
)

// scriptedGenerator returns its drafts in order, then fails.
type scriptedGenerator struct {
	drafts []models.Draft
	calls  int
}

func (g *scriptedGenerator) GenerateDraft(ctx context.Context, topic string) (*models.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.calls >= len(g.drafts) {
		return nil, fmt.Errorf("script exhausted after %d drafts", g.calls)
	}
	d := g.drafts[g.calls]
	g.calls++
	return &d, nil
}

type failingGenerator struct{ err error }

func (g *failingGenerator) GenerateDraft(ctx context.Context, topic string) (*models.Draft, error) {
	return nil, g.err
}

// recordingPublisher counts publishes.
type recordingPublisher struct {
	published []models.Post
}

func (p *recordingPublisher) Publish(ctx context.Context, post *models.Post) error {
	p.published = append(p.published, *post)
	return nil
}

func seededHistory(t *testing.T) *history.MemoryStore {
	t.Helper()
	e := feature.NewExtractor(models.FeatureModeVector)
	post := models.Post{
		ID:      "existing",
		Title:   "Intro to ACLs",
		Summary: "ACL basics on Linux",
		Slug:    "intro-to-acls",
	}
	post.Features = e.Extract(post.Text(), nil)
	return history.NewMemoryStore(post)
}

func newTestGate(t *testing.T, gen Generator, store history.Store, pub Publisher, opts Options) *Gate {
	t.Helper()
	posts, err := store.Load()
	if err != nil {
		t.Fatalf("loading store: %v", err)
	}
	g, err := New(gen, feature.NewExtractor(models.FeatureModeVector), store, pub, posts, opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestFirstCandidateAcceptedOnEmptyHistory(t *testing.T) {
	store := history.NewMemoryStore()
	pub := &recordingPublisher{}
	gen := &scriptedGenerator{drafts: []models.Draft{
		{Title: "Anything", Summary: "at all", Body: "## Body\n"},
	}}

	g := newTestGate(t, gen, store, pub, Options{Threshold: 0.80, MaxAttempts: 3})
	post, err := g.Run(context.Background(), "topic")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if post == nil || post.ID == "" {
		t.Fatal("expected an accepted post with an id")
	}
	if g.State() != StatePublished {
		t.Errorf("expected PUBLISHED state, got %s", g.State())
	}
	posts, _ := store.Load()
	if len(posts) != 1 {
		t.Errorf("expected exactly one append, got %d", len(posts))
	}
	if len(pub.published) != 1 {
		t.Errorf("expected exactly one publish, got %d", len(pub.published))
	}
}

// The scenario from the duplicate-check design: an identical candidate is
// rejected, a fresh unrelated one is accepted on retry.
func TestDuplicateRejectedThenFreshAccepted(t *testing.T) {
	store := seededHistory(t)
	pub := &recordingPublisher{}
	gen := &scriptedGenerator{drafts: []models.Draft{
		{Title: "Intro to ACLs", Summary: "ACL basics on Linux", Body: "dup"},
		{Title: "GPU scheduling in Kubernetes", Summary: "how bin-packing works", Body: "fresh"},
	}}

	g := newTestGate(t, gen, store, pub, Options{Threshold: 0.80, MaxAttempts: 3})
	post, err := g.Run(context.Background(), "topic")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if post.Title != "GPU scheduling in Kubernetes" {
		t.Errorf("expected the second candidate to win, got %q", post.Title)
	}
	if gen.calls != 2 {
		t.Errorf("expected 2 generation calls, got %d", gen.calls)
	}
	posts, _ := store.Load()
	if len(posts) != 2 {
		t.Errorf("history must grow to 2, got %d", len(posts))
	}
}

func TestNoveltyExhausted(t *testing.T) {
	store := seededHistory(t)
	pub := &recordingPublisher{}
	dup := models.Draft{Title: "Intro to ACLs", Summary: "ACL basics on Linux", Body: "dup"}
	gen := &scriptedGenerator{drafts: []models.Draft{dup, dup, dup}}

	g := newTestGate(t, gen, store, pub, Options{Threshold: 0.80, MaxAttempts: 3})
	_, err := g.Run(context.Background(), "topic")
	if !errors.Is(err, ErrNoveltyExhausted) {
		t.Fatalf("expected ErrNoveltyExhausted, got %v", err)
	}
	if g.State() != StateExhausted {
		t.Errorf("expected EXHAUSTED state, got %s", g.State())
	}
	if gen.calls != 3 {
		t.Errorf("expected the full attempt budget (3), got %d calls", gen.calls)
	}
	posts, _ := store.Load()
	if len(posts) != 1 {
		t.Errorf("exhaustion must not append, history has %d posts", len(posts))
	}
	if len(pub.published) != 0 {
		t.Errorf("exhaustion must not publish, got %d", len(pub.published))
	}
}

func TestDryRunAppendsNothing(t *testing.T) {
	store := history.NewMemoryStore()
	pub := &recordingPublisher{}
	gen := &scriptedGenerator{drafts: []models.Draft{
		{Title: "A dry run post", Summary: "scored but never stored", Body: "## x\n"},
	}}

	g := newTestGate(t, gen, store, pub, Options{Threshold: 0.80, MaxAttempts: 1, DryRun: true})
	post, err := g.Run(context.Background(), "topic")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if post == nil {
		t.Fatal("dry run still returns the accepted post")
	}
	posts, _ := store.Load()
	if len(posts) != 0 {
		t.Errorf("dry run must not append, history has %d posts", len(posts))
	}
	if len(pub.published) != 0 {
		t.Errorf("dry run must not publish, got %d", len(pub.published))
	}
}

func TestBackendFailurePropagatesImmediately(t *testing.T) {
	store := history.NewMemoryStore()
	backendErr := errors.New("quota exceeded: 429")
	g := newTestGate(t, &failingGenerator{err: backendErr}, store, &recordingPublisher{},
		Options{Threshold: 0.80, MaxAttempts: 5})

	_, err := g.Run(context.Background(), "topic")
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected the backend error to propagate, got %v", err)
	}
	if errors.Is(err, ErrNoveltyExhausted) {
		t.Error("backend failure must not be conflated with novelty exhaustion")
	}
	if g.State() != StateFailed {
		t.Errorf("expected FAILED state, got %s", g.State())
	}
}

func TestContextCancellationAborts(t *testing.T) {
	store := history.NewMemoryStore()
	gen := &scriptedGenerator{drafts: []models.Draft{
		{Title: "Never scored", Summary: "ctx is already dead", Body: "x"},
	}}
	g := newTestGate(t, gen, store, &recordingPublisher{}, Options{Threshold: 0.80, MaxAttempts: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Run(ctx, "topic")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	posts, _ := store.Load()
	if len(posts) != 0 {
		t.Errorf("cancelled run must not append, history has %d posts", len(posts))
	}
}

func TestPromoteNormalizesMetadata(t *testing.T) {
	store := history.NewMemoryStore()
	pub := &recordingPublisher{}
	gen := &scriptedGenerator{drafts: []models.Draft{{
		Title:   "Hardening SSH on Debian!",
		Summary: "A guide.",
		Body:    "## x\n",
		Tags:    []string{"Tech", "ssh", "SSH", "debian-hardening"},
	}}}

	g := newTestGate(t, gen, store, pub, Options{Threshold: 0.80, MaxAttempts: 1})
	post, err := g.Run(context.Background(), "ssh hardening")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if post.Slug != "hardening-ssh-on-debian" {
		t.Errorf("slug = %q", post.Slug)
	}
	if post.Topic != "ssh hardening" {
		t.Errorf("topic = %q", post.Topic)
	}
	if len(post.Tags) < 4 {
		t.Errorf("tags must be padded to at least 4, got %v", post.Tags)
	}
	for _, tag := range post.Tags {
		if tag == "tech" {
			t.Error("banned tag survived normalization")
		}
	}
	if post.Features.Empty() {
		t.Error("accepted post must carry its feature vector")
	}
}

// History vectors were persisted at different history sizes, so their stored
// fittings disagree with today's document frequencies. The gate must refit
// them; an identical candidate scores exactly 1.0 and is rejected instead of
// slipping under a tight threshold.
func TestIdenticalCandidateRejectedAgainstGrownHistory(t *testing.T) {
	e := feature.NewExtractor(models.FeatureModeVector)
	p1 := models.Post{ID: "p1", Title: "Intro to ACLs", Summary: "ACL basics on Linux", Slug: "intro-to-acls"}
	p1.Features = e.Extract(p1.Text(), nil)
	p2 := models.Post{ID: "p2", Title: "GPU scheduling on Linux", Summary: "bin packing for training jobs", Slug: "gpu-scheduling-on-linux"}
	p2.Features = e.Extract(p2.Text(), []string{p1.Text()})
	store := history.NewMemoryStore(p1, p2)

	dup := models.Draft{Title: p1.Title, Summary: p1.Summary, Body: "dup"}
	gen := &scriptedGenerator{drafts: []models.Draft{dup}}
	g := newTestGate(t, gen, store, &recordingPublisher{}, Options{Threshold: 0.999, MaxAttempts: 1})

	_, err := g.Run(context.Background(), "topic")
	if !errors.Is(err, ErrNoveltyExhausted) {
		t.Fatalf("identical candidate must score 1.0 and be rejected, got %v", err)
	}
}

func TestSlugCollisionGetsSuffix(t *testing.T) {
	store := seededHistory(t) // contains slug intro-to-acls
	pub := &recordingPublisher{}
	gen := &scriptedGenerator{drafts: []models.Draft{{
		Title:   "Intro to ACLs",
		Summary: "completely different angle on networking permissions audit tooling",
		Body:    "x",
	}}}

	// Threshold high enough to accept despite the shared title.
	g := newTestGate(t, gen, store, pub, Options{Threshold: 0.99, MaxAttempts: 1})
	post, err := g.Run(context.Background(), "topic")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if post.Slug != "intro-to-acls-2" {
		t.Errorf("expected suffixed slug, got %q", post.Slug)
	}
}
