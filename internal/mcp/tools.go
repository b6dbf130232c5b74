// ABOUTME: MCP tool definitions and registration for the blogforge server
// ABOUTME: Exposes novelty checking and history browsing to LLM agents
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"blogforge/internal/feature"
	"blogforge/internal/history"
	"blogforge/internal/models"
)

// RunFunc executes one full generation run; nil disables the generate tool's
// live mode (dry runs still work).
type RunFunc func(ctx context.Context, dryRun bool) (*models.Post, error)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(server *mcpserver.MCPServer, store history.Store,
	extractor *feature.Extractor, threshold float64, run RunFunc) *Handlers {

	handlers := &Handlers{
		store:     store,
		extractor: extractor,
		threshold: threshold,
		run:       run,
	}

	server.AddTool(mcp.Tool{
		Name: "check_novelty",
		Description: "Score a candidate text against all published posts and report " +
			"whether it would be accepted as novel.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Candidate text (title plus summary) to score",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.CheckNovelty)

	server.AddTool(mcp.Tool{
		Name:        "list_posts",
		Description: "List published posts from history, newest last.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of posts to return (default: 20)",
					"default":     20,
				},
			},
		},
	}, handlers.ListPosts)

	server.AddTool(mcp.Tool{
		Name: "generate_post",
		Description: "Run the daily generation pipeline: generate a candidate, check " +
			"novelty, and publish on acceptance. dry_run skips publishing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dry_run": map[string]interface{}{
					"type":        "boolean",
					"description": "Score only, do not append to history or publish (default: true)",
					"default":     true,
				},
			},
		},
	}, handlers.GeneratePost)

	return handlers
}
