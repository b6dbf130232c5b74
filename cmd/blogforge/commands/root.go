// ABOUTME: Root command and shared flags for the blogforge CLI
// ABOUTME: Wires subcommands and the zap logger used across commands
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	quiet   bool
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "blogforge",
		Short: "Daily blog generation with duplicate detection",
		Long: `blogforge generates one blog article per day: it asks a text-generation
backend for a candidate, scores the candidate against every previously
published post, retries when the candidate is too similar to existing
content, and writes the accepted article as Markdown with front matter.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	root.AddCommand(NewGenerateCmd())
	root.AddCommand(NewCheckCmd())
	root.AddCommand(NewHistoryCmd())
	root.AddCommand(NewTopicsCmd())
	root.AddCommand(NewMCPCmd())
	root.AddCommand(NewVersionCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// newLogger builds the run logger: JSON production output by default,
// human-readable development output under --verbose, silent under --quiet.
func newLogger() (*zap.Logger, error) {
	if quiet {
		return zap.NewNop(), nil
	}
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
