// ABOUTME: MCP tool handler implementations for the blogforge server
// ABOUTME: check_novelty, list_posts and generate_post with typed error replies
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"blogforge/internal/backend"
	"blogforge/internal/feature"
	"blogforge/internal/gate"
	"blogforge/internal/history"
	"blogforge/internal/similarity"
)

// Handlers contains the handler functions for all MCP tools.
type Handlers struct {
	store     history.Store
	extractor *feature.Extractor
	threshold float64
	run       RunFunc
}

// CheckNovelty handles the check_novelty tool.
func (h *Handlers) CheckNovelty(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	posts, err := h.store.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading history: %v", err)), nil
	}

	refitted, corpus := h.extractor.Refit(posts)
	index, err := similarity.NewIndex(h.extractor.Mode(), refitted)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("building index: %v", err)), nil
	}

	match, err := index.BestMatch(h.extractor.Extract(text, corpus))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"score":         match.Score,
		"threshold":     h.threshold,
		"novel":         match.Score < h.threshold,
		"matched_id":    match.PostID,
		"matched_title": match.MatchedTitle,
		"feature_mode":  string(h.extractor.Mode()),
	}
	return jsonResult(response)
}

// ListPosts handles the list_posts tool.
func (h *Handlers) ListPosts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)

	posts, err := h.store.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading history: %v", err)), nil
	}

	if limit > 0 && len(posts) > limit {
		posts = posts[len(posts)-limit:]
	}

	summaries := make([]map[string]interface{}, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, map[string]interface{}{
			"id":           p.ID,
			"title":        p.Title,
			"slug":         p.Slug,
			"tags":         p.Tags,
			"published_at": p.PublishedAt.Format(time.RFC3339),
		})
	}

	return jsonResult(map[string]interface{}{"posts": summaries, "total": len(summaries)})
}

// GeneratePost handles the generate_post tool.
func (h *Handlers) GeneratePost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.run == nil {
		return mcp.NewToolResultError("generation is not configured on this server"), nil
	}

	dryRun := request.GetBool("dry_run", true)

	post, err := h.run(ctx, dryRun)
	switch {
	case errors.Is(err, gate.ErrNoveltyExhausted):
		return jsonResult(map[string]interface{}{
			"status": "exhausted",
			"detail": "every candidate scored at or above the threshold",
		})
	case backend.IsQuota(err):
		return jsonResult(map[string]interface{}{
			"status": "quota",
			"detail": "backend quota exhausted, nothing published",
		})
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"status":  "published",
		"dry_run": dryRun,
		"id":      post.ID,
		"title":   post.Title,
		"slug":    post.Slug,
	})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
