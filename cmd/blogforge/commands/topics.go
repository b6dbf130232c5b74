// ABOUTME: Topics command shows the topic pool and rotation state
// ABOUTME: Marks topics blocked by the recent-use window
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"blogforge/internal/config"
	"blogforge/internal/history"
	"blogforge/internal/topics"
)

// NewTopicsCmd creates the topics command.
func NewTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "Show the topic pool and which topics are currently excluded",
		RunE:  runTopics,
	}
}

func runTopics(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := topics.Load(cfg.TopicsPath())
	if err != nil {
		return err
	}

	posts, err := history.NewFileStore(cfg.HistoryPath()).Load()
	if err != nil {
		return err
	}

	recent := make(map[string]struct{})
	for _, t := range topics.Recent(posts) {
		recent[t] = struct{}{}
	}

	out := cmd.OutOrStdout()
	for _, t := range pool {
		if _, used := recent[t]; used {
			fmt.Fprintf(out, "  [recent] %s\n", t)
		} else {
			fmt.Fprintf(out, "           %s\n", t)
		}
	}
	fmt.Fprintf(out, "\n%d topics, %d excluded by the last %d posts\n", len(pool), len(recent), topics.RecentWindow)
	return nil
}
