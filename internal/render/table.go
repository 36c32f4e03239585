// Package render turns computed statistics into terminal tables, ramps,
// HTML charts and export files. It performs no analysis of its own.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/naka-gawa/git-insights/internal/domain"
)

// Weekday labels, Sunday first, matching the temporal row order.
var WeekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// HourLabels returns "00".."23".
func HourLabels() []string {
	return numberLabels(0, 24)
}

// DayOfMonthLabels returns "01".."31".
func DayOfMonthLabels() []string {
	return numberLabels(1, 31)
}

func numberLabels(first, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%02d", first+i)
	}
	return labels
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	return tbl
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// AuthorTable prints totals followed by one row per author with its share
// of LOC, commits and files.
func AuthorTable(w io.Writer, stats domain.StatsMap) {
	totals := stats.Totals()
	fmt.Fprintf(w, "Total commits: %s\n", humanize.Comma(int64(totals.Commits)))
	fmt.Fprintf(w, "Total files: %s\n", humanize.Comma(int64(totals.Files)))
	fmt.Fprintf(w, "Total loc: %s\n", humanize.Comma(int64(totals.LOC)))

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Author", "LOC", "Commits", "Files", "Distribution (loc/coms/fils %)"})
	for _, e := range stats.Sorted() {
		s := e.Stats
		dist := fmt.Sprintf("%.1f/%.1f/%.1f",
			pct(s.LOC, totals.LOC), pct(s.Commits, totals.Commits), pct(len(s.Files), totals.Files))
		tbl.AppendRow(table.Row{string(e.Author), humanize.Comma(int64(s.LOC)), humanize.Comma(int64(s.Commits)), len(s.Files), dist})
	}
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	fmt.Fprintln(w, tbl.Render())
}

// OwnershipTable prints the ranked files of one identity.
func OwnershipTable(w io.Writer, rows []domain.FileOwnershipRow) {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"No.", "File", "userLOC", "fileLOC", "%own"})
	for i, r := range rows {
		tbl.AppendRow(table.Row{i + 1, r.Path, r.UserLOC, r.FileLOC, fmt.Sprintf("%.1f", r.Pct)})
	}
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
		{Number: 5, Align: text.AlignRight},
	})
	fmt.Fprintln(w, tbl.Render())
}

// UserSummary prints the tags and pull requests of a user. Long tag lists
// are elided in the middle.
func UserSummary(w io.Writer, user string, stats *domain.UserStats) {
	fmt.Fprintf(w, "\nStatistics for user: %s\n", user)
	fmt.Fprintln(w, strings.Repeat("-", 33))
	fmt.Fprintf(w, "Merged Pull Requests: %d\n", stats.PullRequests)

	if len(stats.Tags) == 0 {
		fmt.Fprintln(w, "\nNo tags found where this user is an author.")
		return
	}
	fmt.Fprintln(w, "\nAuthored in the following tags:")
	if len(stats.Tags) <= 6 {
		for _, tag := range stats.Tags {
			fmt.Fprintf(w, "  - %s\n", tag)
		}
		return
	}
	for _, tag := range stats.Tags[:5] {
		fmt.Fprintf(w, "  - %s\n", tag)
	}
	fmt.Fprintf(w, "  ... (%d more tags)\n", len(stats.Tags)-6)
	fmt.Fprintf(w, "  - %s\n", stats.Tags[len(stats.Tags)-1])
}

// HistogramTable prints one row per bucket with a proportional bar.
func HistogramTable(w io.Writer, labels []string, counts []int) {
	const barWidth = 20
	max := maxOf(counts)
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Label", "Count", "Bar"})
	for i, c := range counts {
		filled := 0
		if max > 0 {
			filled = (c*barWidth + max - 1) / max
		}
		tbl.AppendRow(table.Row{labels[i], c, strings.Repeat("#", filled)})
	}
	tbl.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	fmt.Fprintln(w, tbl.Render())
}

// GridTable prints a heatmap as a table of raw counts.
func GridTable(w io.Writer, rowLabels, colLabels []string, grid [][]int) {
	tbl := newTable()
	header := table.Row{""}
	for _, c := range colLabels {
		header = append(header, c)
	}
	tbl.AppendHeader(header)
	for r, row := range grid {
		line := table.Row{rowLabels[r]}
		for _, v := range row {
			line = append(line, v)
		}
		tbl.AppendRow(line)
	}
	fmt.Fprintln(w, tbl.Render())
}

func maxOf(counts []int) int {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	return max
}

func gridMax(grid [][]int) int {
	max := 0
	for _, row := range grid {
		if m := maxOf(row); m > max {
			max = m
		}
	}
	return max
}
