// ABOUTME: History command lists published posts from the store
// ABOUTME: Read-only view over the history file
package commands

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"blogforge/internal/config"
	"blogforge/internal/history"
)

var historyLimit int

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List published posts",
		RunE:  runHistory,
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum posts to show (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	posts, err := history.NewFileStore(cfg.HistoryPath()).Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts published yet.")
		return nil
	}

	shown := posts
	if historyLimit > 0 && len(shown) > historyLimit {
		shown = shown[len(shown)-historyLimit:]
	}

	for _, p := range shown {
		id := p.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(out, "%s  %s  %s\n", p.PublishedAt.Format("2006-01-02"), id, truncate(p.Title, 60))
		if verbose {
			fmt.Fprintf(out, "          tags: %s  slug: %s\n", strings.Join(p.Tags, ", "), p.Slug)
		}
	}
	fmt.Fprintf(out, "\n%d of %d posts\n", len(shown), len(posts))
	return nil
}
