// ABOUTME: Generate command runs the full daily pipeline once
// ABOUTME: Topic pick, candidate gate, markdown publish; soft exit on quota
package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blogforge/internal/backend"
	"blogforge/internal/config"
	"blogforge/internal/feature"
	"blogforge/internal/gate"
	"blogforge/internal/history"
	"blogforge/internal/models"
	"blogforge/internal/publish"
	"blogforge/internal/topics"
)

var (
	generateDryRun  bool
	generateTopic   string
	generateTimeout time.Duration
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and publish today's article",
		Long: `Generate one candidate article, score it against all published posts,
and publish it when it is sufficiently novel. Rejected candidates are
retried up to MAX_RETRY_ATTEMPTS with fresh generations.

Quota exhaustion and "nothing novel today" both end the run gracefully
with exit code 0, so scheduled unattended runs do not alarm.`,
		RunE: runGenerate,
		Example: `  # Daily run (typically from cron or CI)
  blogforge generate

  # Score only, publish nothing
  blogforge generate --dry-run

  # Force a topic instead of rotating the pool
  blogforge generate --topic "Hardening SSH on a Debian server"`,
	}

	cmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Run scoring but do not append or publish")
	cmd.Flags().StringVar(&generateTopic, "topic", "", "Topic override (skips rotation)")
	cmd.Flags().DurationVar(&generateTimeout, "timeout", 0, "Abort the whole run after this duration (0 = none)")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if generateDryRun {
		cfg.DryRun = true
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if generateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, generateTimeout)
		defer cancel()
	}

	store := history.NewFileStore(cfg.HistoryPath())
	posts, err := store.Load()
	if err != nil {
		return err
	}

	topic := generateTopic
	if topic == "" {
		pool, err := topics.Load(cfg.TopicsPath())
		if err != nil {
			return err
		}
		topic = topics.Pick(pool, topics.Recent(posts))
	}
	logger.Info("starting run",
		zap.String("topic", topic),
		zap.Int("history_size", len(posts)),
		zap.Float64("threshold", cfg.Threshold),
		zap.Bool("dry_run", cfg.DryRun))

	post, err := runPipeline(ctx, cfg, store, posts, topic, logger)
	switch {
	case errors.Is(err, gate.ErrNoveltyExhausted):
		logger.Warn("nothing novel today", zap.Int("attempts", cfg.MaxAttempts))
		return nil
	case backend.IsQuota(err):
		logger.Warn("backend quota exhausted, no article published", zap.Error(err))
		return nil
	case err != nil:
		return err
	}

	logger.Info("run complete",
		zap.String("id", post.ID),
		zap.String("title", post.Title),
		zap.String("slug", post.Slug))
	return nil
}

// runPipeline wires backend, extractor, gate and writer for one run.
// Shared with the MCP generate_post tool.
func runPipeline(ctx context.Context, cfg *config.Config, store history.Store,
	posts []models.Post, topic string, logger *zap.Logger) (*models.Post, error) {

	var gen gate.Generator
	var cover publish.CoverFunc
	if cfg.DryRun {
		gen = backend.NewStaticGenerator(topic)
	} else {
		client, err := backend.NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		gen = client
		if cfg.GenerateImage {
			cover = client.GenerateCover
		}
	}

	writer := publish.NewWriter(cfg.ContentDir, cfg.ImagesDir, "Diego", cover, logger)
	extractor := feature.NewExtractor(cfg.FeatureMode)

	g, err := gate.New(gen, extractor, store, writer, posts, gate.Options{
		Threshold:   cfg.Threshold,
		MaxAttempts: cfg.MaxAttempts,
		DryRun:      cfg.DryRun,
	}, logger)
	if err != nil {
		return nil, err
	}

	return g.Run(ctx, topic)
}
