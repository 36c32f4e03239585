package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-insights/internal/render"
	"github.com/naka-gawa/git-insights/internal/temporal"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Shows commits per week as a one-line strip",
	Long: `Counts commits per week over the last --weeks weeks, oldest first. Weeks are
aligned to the unix epoch, and the last one contains the current time.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		n, set := weeksFlag(cmd)
		s := newSession(cmd)
		defer s.close()

		weeks := s.cfg.Weeks.Timeline
		if set {
			weeks = n
		}
		timestamps, now := s.commitTimes(cmd)
		counts := temporal.Timeline(timestamps, weeks, now)

		s.emit(cmd, func(w io.Writer) error { return render.TimelineHTML(w, counts) }, func() {
			fmt.Printf("Commits per week, last %d weeks (oldest to newest)\n", weeks)
			render.Timeline(os.Stdout, counts)
		})
	},
}

// commitTimes reads the commit timestamps and the current time. Either
// failure is terminal for the temporal commands.
func (s *session) commitTimes(cmd *cobra.Command) ([]int64, int64) {
	now, err := temporal.Now(time.Now)
	if err != nil {
		s.fail("Failed to read the clock: %v", err)
	}
	timestamps, err := s.aggregator().CommitTimestamps(cmd.Context())
	if err != nil {
		s.fail("Failed to read commit history: %v", err)
	}
	return timestamps, now
}

// emit writes the HTML rendering when --html names a file, and otherwise
// prints to the terminal, colored when --color is set.
func (s *session) emit(cmd *cobra.Command, html func(io.Writer) error, text func()) {
	path, _ := cmd.Flags().GetString("html")
	if path == "" {
		colored, _ := cmd.Flags().GetBool("color")
		color.NoColor = !colored
		text()
		return
	}
	out, closeOut, err := createOutput(path)
	if err != nil {
		s.fail("Failed to create %s: %v", path, err)
	}
	if err := html(out); err != nil {
		closeOut()
		s.fail("Failed to render %s: %v", path, err)
	}
	if err := closeOut(); err != nil {
		s.fail("Failed to write %s: %v", path, err)
	}
}

// weeksFlag reads --weeks when it was given, exiting on out-of-range values.
func weeksFlag(cmd *cobra.Command) (weeks int, set bool) {
	if !cmd.Flags().Changed("weeks") {
		return 0, false
	}
	weeks, _ = cmd.Flags().GetInt("weeks")
	if err := temporal.CheckWeeks(weeks); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --weeks: %v\n", err)
		os.Exit(1)
	}
	return weeks, true
}

func addTemporalFlags(cmd *cobra.Command, weeks int, weeksUsage string) {
	cmd.Flags().Int("weeks", weeks, weeksUsage)
	cmd.Flags().Bool("color", false, "Use an ANSI color ramp")
	cmd.Flags().String("html", "", "Write an HTML chart to this file instead")
}

func init() {
	rootCmd.AddCommand(timelineCmd)
	addTemporalFlags(timelineCmd, 26, "Weeks to show")
}
