package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-insights/internal/render"
	"github.com/naka-gawa/git-insights/internal/temporal"
)

var codefreqCmd = &cobra.Command{
	Use:   "codefreq",
	Short: "Shows when commits happen",
	Long: `Buckets commit times by hour of day, day of week or day of month, or as a
two-dimensional heatmap (dow-hod, dom-hod). Times are in UTC. With --weeks
only the last weeks of history are considered.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		group, _ := flags.GetString("group")
		heatmap, _ := flags.GetString("heatmap")
		switch group {
		case "hour", "dow", "dom":
		default:
			fmt.Fprintf(os.Stderr, "Invalid --group %q: want hour, dow or dom\n", group)
			os.Exit(1)
		}
		switch heatmap {
		case "", "dow-hod", "dom-hod":
		default:
			fmt.Fprintf(os.Stderr, "Invalid --heatmap %q: want dow-hod or dom-hod\n", heatmap)
			os.Exit(1)
		}
		n, set := weeksFlag(cmd)

		s := newSession(cmd)
		defer s.close()

		timestamps, now := s.commitTimes(cmd)
		var weeks *int
		if set {
			weeks = &n
		}
		timestamps = temporal.FilterWeeks(timestamps, weeks, now)

		if heatmap != "" {
			rows, rowLabels := heatmapGrid(heatmap, timestamps)
			title := "Commits by " + heatmap
			s.emit(cmd, func(w io.Writer) error {
				return render.HeatmapHTML(w, title, rowLabels, render.HourLabels(), rows)
			}, func() {
				fmt.Println(title + " (UTC)")
				render.Heatmap(os.Stdout, rowLabels, render.HourLabels(), rows)
			})
			return
		}

		counts, labels := histogram(group, timestamps)
		title := "Commits by " + group
		s.emit(cmd, func(w io.Writer) error {
			return render.BarHTML(w, title, labels, counts)
		}, func() {
			fmt.Println(title + " (UTC)")
			render.HistogramTable(os.Stdout, labels, counts)
		})
	},
}

func histogram(group string, timestamps []int64) ([]int, []string) {
	switch group {
	case "dow":
		h := temporal.WeekdayHistogram(timestamps)
		return h[:], render.WeekdayLabels
	case "dom":
		h := temporal.DayOfMonthHistogram(timestamps)
		return h[:], render.DayOfMonthLabels()
	default:
		h := temporal.HourHistogram(timestamps)
		return h[:], render.HourLabels()
	}
}

func heatmapGrid(kind string, timestamps []int64) ([][]int, []string) {
	var rows [][]int
	if kind == "dom-hod" {
		grid := temporal.DayOfMonthByHour(timestamps)
		for i := range grid {
			rows = append(rows, grid[i][:])
		}
		return rows, render.DayOfMonthLabels()
	}
	grid := temporal.WeekdayByHour(timestamps)
	for i := range grid {
		rows = append(rows, grid[i][:])
	}
	return rows, render.WeekdayLabels
}

func init() {
	rootCmd.AddCommand(codefreqCmd)
	addTemporalFlags(codefreqCmd, 0, "Only count the last weeks of history (default: all)")
	codefreqCmd.Flags().String("group", "hour", "Histogram bucket: hour, dow or dom")
	codefreqCmd.Flags().String("heatmap", "", "Two-dimensional view instead: dow-hod or dom-hod")
}
