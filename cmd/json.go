package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-insights/internal/render"
)

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Exports the author statistics as JSON or YAML",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := newSession(cmd)
		defer s.close()

		flags := cmd.Flags()
		if flags.Changed("format") {
			s.cfg.Export.Format, _ = flags.GetString("format")
		}
		if flags.Changed("output") {
			s.cfg.Export.Path, _ = flags.GetString("output")
		}
		if err := s.cfg.Validate(); err != nil {
			s.fail("Invalid configuration: %v", err)
		}

		stats := s.aggregate(cmd)

		out, closeOut, err := createOutput(s.cfg.Export.Path)
		if err != nil {
			s.fail("Failed to create %s: %v", s.cfg.Export.Path, err)
		}
		if err := render.Export(out, s.cfg.Export.Format, stats); err != nil {
			closeOut()
			s.fail("Failed to export stats: %v", err)
		}
		if err := closeOut(); err != nil {
			s.fail("Failed to write %s: %v", s.cfg.Export.Path, err)
		}
		if out != os.Stdout {
			fmt.Fprintf(os.Stderr, "Stats exported to %s\n", s.cfg.Export.Path)
		}
	},
}

func init() {
	rootCmd.AddCommand(jsonCmd)
	jsonCmd.Flags().String("format", "json", "Export format: json or yaml")
	jsonCmd.Flags().StringP("output", "o", "git-insights.json", "Output file, - for stdout")
	jsonCmd.Flags().String("ledger", "log", "Commit counting strategy: log or shortlog")
}
