// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to check novelty and drive generation via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"blogforge/internal/config"
	"blogforge/internal/feature"
	"blogforge/internal/history"
	"blogforge/internal/mcp"
	"blogforge/internal/models"
	"blogforge/internal/topics"
)

// NewMCPCmd creates the MCP command.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Run blogforge as an MCP (Model Context Protocol) server over stdio,
exposing novelty checking, history browsing and the generation pipeline
as tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an agent host)
  blogforge mcp

  # Configure in the host's MCP config:
  # {
  #   "mcpServers": {
  #     "blogforge": { "command": "blogforge", "args": ["mcp"] }
  #   }
  # }`,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" && !quiet {
		log.Println("Warning: OPENAI_API_KEY not set - generate_post only works with dry_run")
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store := history.NewFileStore(cfg.HistoryPath())
	extractor := feature.NewExtractor(cfg.FeatureMode)

	run := func(ctx context.Context, dryRun bool) (*models.Post, error) {
		runCfg := *cfg
		runCfg.DryRun = dryRun
		if err := runCfg.RequireCredentials(); err != nil {
			return nil, err
		}
		posts, err := store.Load()
		if err != nil {
			return nil, err
		}
		pool, err := topics.Load(runCfg.TopicsPath())
		if err != nil {
			return nil, err
		}
		topic := topics.Pick(pool, topics.Recent(posts))
		return runPipeline(ctx, &runCfg, store, posts, topic, logger)
	}

	server := mcpserver.NewMCPServer("blogforge", versionInfo.Version)
	mcp.RegisterTools(server, store, extractor, cfg.Threshold, run)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("blogforge MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received")
		}
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
