package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-insights/internal/render"
	"github.com/naka-gawa/git-insights/internal/temporal"
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Shows a calendar heatmap of commits",
	Long: `Lays the commits of the last --weeks weeks on a grid of weekdays (Sunday
first) by week (oldest on the left).`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		n, set := weeksFlag(cmd)
		s := newSession(cmd)
		defer s.close()

		weeks := s.cfg.Weeks.Heatmap
		if set {
			weeks = n
		}
		timestamps, now := s.commitTimes(cmd)
		grid := temporal.Calendar(timestamps, weeks, now)

		weekLabels := make([]string, weeks)
		for i := range weekLabels {
			weekLabels[i] = fmt.Sprintf("-%dw", weeks-1-i)
		}
		s.emit(cmd, func(w io.Writer) error {
			return render.HeatmapHTML(w, "Commit calendar", render.WeekdayLabels, weekLabels, grid[:])
		}, func() {
			fmt.Printf("Commit calendar, last %d weeks\n", weeks)
			render.Calendar(os.Stdout, grid)
		})
	},
}

func init() {
	rootCmd.AddCommand(heatmapCmd)
	addTemporalFlags(heatmapCmd, 52, "Weeks to show")
}
