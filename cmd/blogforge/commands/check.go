// ABOUTME: Check command scores arbitrary text against published history
// ABOUTME: Novelty verdict without calling any generation backend
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"blogforge/internal/config"
	"blogforge/internal/feature"
	"blogforge/internal/history"
	"blogforge/internal/similarity"
)

var checkFile string

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Score text against published posts",
		Long: `Score a candidate text (title plus summary) against every published
post and report whether it would pass the novelty gate. No generation
backend is involved; this works without an API key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
		Example: `  blogforge check "Intro to ACLs: ACL basics on Linux"
  blogforge check --file draft.txt
  echo "GPU scheduling in Kubernetes" | blogforge check`,
	}

	cmd.Flags().StringVar(&checkFile, "file", "", "Read candidate text from file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var text string
	switch {
	case checkFile != "":
		data, err := os.ReadFile(checkFile)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		text = string(data)
	case len(args) > 0:
		text = args[0]
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("no text provided")
	}

	posts, err := history.NewFileStore(cfg.HistoryPath()).Load()
	if err != nil {
		return err
	}

	extractor := feature.NewExtractor(cfg.FeatureMode)
	refitted, corpus := extractor.Refit(posts)
	index, err := similarity.NewIndex(extractor.Mode(), refitted)
	if err != nil {
		return err
	}

	match, err := index.BestMatch(extractor.Extract(text, corpus))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Score:     %.4f (threshold %.2f, mode %s)\n", match.Score, cfg.Threshold, extractor.Mode())
	if match.PostID != "" {
		fmt.Fprintf(out, "Closest:   %s (%s)\n", match.MatchedTitle, match.PostID)
	}
	if match.Score >= cfg.Threshold {
		fmt.Fprintln(out, "Verdict:   REJECT (too similar to existing content)")
	} else {
		fmt.Fprintln(out, "Verdict:   ACCEPT")
	}
	return nil
}
