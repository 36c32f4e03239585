package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-insights/internal/domain"
	"github.com/naka-gawa/git-insights/internal/render"
	"github.com/naka-gawa/git-insights/internal/usecase"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints LOC, commits and files per author",
	Long: `Attributes every surviving line of the text files tracked at HEAD to its
last author, counts non-merge commits per author, and prints the totals
followed by one row per author.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := newSession(cmd)
		defer s.close()

		stats := s.aggregate(cmd)
		render.AuthorTable(os.Stdout, stats)
	},
}

// aggregate runs the full author aggregation. A ledger failure only costs
// the commit counts and is reported as a warning.
func (s *session) aggregate(cmd *cobra.Command) domain.StatsMap {
	if cmd.Flags().Changed("ledger") {
		s.cfg.Ledger, _ = cmd.Flags().GetString("ledger")
	}
	strategy, err := usecase.ParseLedgerStrategy(s.cfg.Ledger)
	if err != nil {
		s.fail("Invalid --ledger: %v", err)
	}

	stats, err := s.aggregator().Aggregate(cmd.Context(), s.groupMode(), strategy)
	var ledgerErr *domain.LedgerError
	switch {
	case errors.As(err, &ledgerErr):
		s.logger.WithError(err).Warn("commit counts unavailable, showing 0")
	case err != nil:
		s.fail("Failed to aggregate stats: %v", err)
	}
	return stats
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("ledger", "log", "Commit counting strategy: log or shortlog")
}
