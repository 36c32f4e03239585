// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "git-insights",
	Short: "A CLI tool to analyze authorship and activity of a git repository.",
	Long: `git-insights attributes every surviving line at HEAD to its author,
counts commits per author, ranks file ownership, and indexes commit times
into histograms, heatmaps and weekly timelines.

The history is read from the local repository, or from GitHub with --github.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	flags.String("config", "", "Config file (default: .git-insights.yaml in the working directory or $HOME)")
	flags.StringP("repo", "C", ".", "Path of the local repository")
	flags.String("github", "", "Read the history of owner/name from GitHub instead (requires GITHUB_TOKEN)")
	flags.Bool("by-email", false, "Group authors by name and email")
	flags.Int("workers", 0, "Files attributed concurrently (default: number of CPUs)")
	flags.Bool("cache", false, "Cache blame output in a local bbolt file")
}
