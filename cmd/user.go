package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-insights/internal/render"
	"github.com/naka-gawa/git-insights/internal/usecase"
)

var userCmd = &cobra.Command{
	Use:   "user <name>",
	Short: "Shows the tags and merged pull requests of a user, or the files they own",
	Long: `Without flags, lists the tags whose history contains commits by the user
and counts their merged pull requests. With --github, the name may be a
login, an email, or a commit author name linked to a GitHub account.

With --ownership, ranks the files where the user owns surviving lines, by
line count or by share of the file.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := newSession(cmd)
		defer s.close()

		ctx := cmd.Context()
		user := args[0]
		agg := s.aggregator()

		ownership, _ := cmd.Flags().GetBool("ownership")
		if !ownership {
			stats, err := agg.UserInsights(ctx, user)
			if err != nil {
				s.fail("Failed to collect user stats: %v", err)
			}
			render.UserSummary(os.Stdout, user, stats)
			return
		}

		top, _ := cmd.Flags().GetInt("top")
		sortStr, _ := cmd.Flags().GetString("sort")
		byEmail, _ := cmd.Flags().GetBool("email")
		sortMode, err := usecase.ParseSortMode(sortStr)
		if err != nil {
			s.fail("Invalid --sort: %v", err)
		}
		q := usecase.OwnershipQuery{Identity: user, Match: usecase.MatchName, Top: top, Sort: sortMode}
		if byEmail {
			q.Match = usecase.MatchEmail
		}

		files, err := agg.ResolveScope(ctx)
		if err != nil {
			s.fail("Failed to resolve files: %v", err)
		}
		rows, err := agg.RankOwnership(ctx, files, q)
		if err != nil {
			s.fail("Failed to rank ownership: %v", err)
		}
		if len(rows) == 0 {
			fmt.Printf("No files owned by %s.\n", user)
			return
		}
		render.OwnershipTable(os.Stdout, rows)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.Flags().Bool("ownership", false, "Rank the files owned by the user")
	userCmd.Flags().Int("top", 10, "Rows to show with --ownership, 0 for all")
	userCmd.Flags().String("sort", "loc", "Ownership order: loc or pct")
	userCmd.Flags().Bool("email", false, "Match the user by email instead of name")
}
