package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/naka-gawa/git-insights/internal/temporal"
)

// Glyphs from empty to densest. Used as-is when color is disabled.
const glyphs = " .:-=+*#%@"

var palette = []*color.Color{
	color.New(color.FgHiBlack),
	color.New(color.FgBlue),
	color.New(color.FgHiBlue),
	color.New(color.FgCyan),
	color.New(color.FgHiCyan),
	color.New(color.FgGreen),
	color.New(color.FgHiGreen),
	color.New(color.FgYellow),
	color.New(color.FgHiYellow),
	color.New(color.FgHiRed),
}

// Level maps v onto 0..levels-1 relative to max. Zero stays at level 0 and
// any positive value gets at least level 1.
func Level(v, max, levels int) int {
	if v <= 0 || max <= 0 || levels <= 1 {
		return 0
	}
	l := (v*(levels-1) + max - 1) / max
	if l >= levels {
		l = levels - 1
	}
	return l
}

func cell(v, max int) string {
	l := Level(v, max, len(glyphs))
	g := string(glyphs[l])
	if l == 0 {
		g = "·"
	}
	if color.NoColor {
		return g
	}
	return palette[l].Sprint("█")
}

// Timeline prints one cell per week, oldest first, followed by a summary.
func Timeline(w io.Writer, counts []int) {
	max := maxOf(counts)
	var b strings.Builder
	for _, c := range counts {
		b.WriteString(cell(c, max))
	}
	fmt.Fprintf(w, "%s\n", b.String())
	printSummary(w, temporal.Summarize(counts))
}

// Calendar prints a 7 x W grid, Sunday first, oldest week on the left.
func Calendar(w io.Writer, grid [7][]int) {
	rows := grid[:]
	max := gridMax(rows)
	for r, row := range rows {
		var b strings.Builder
		for _, v := range row {
			b.WriteString(cell(v, max))
		}
		fmt.Fprintf(w, "%s %s\n", WeekdayLabels[r], b.String())
	}
	var all []int
	for _, row := range rows {
		all = append(all, row...)
	}
	printSummary(w, temporal.Summarize(all))
}

// Heatmap prints a colored grid with row and column labels.
func Heatmap(w io.Writer, rowLabels, colLabels []string, grid [][]int) {
	max := gridMax(grid)
	fmt.Fprintf(w, "    %s\n", strings.Join(colLabels, " "))
	for r, row := range grid {
		var b strings.Builder
		for _, v := range row {
			fmt.Fprintf(&b, "%s  ", cell(v, max))
		}
		fmt.Fprintf(w, "%-3s %s\n", rowLabels[r], strings.TrimRight(b.String(), " "))
	}
}

func printSummary(w io.Writer, s temporal.Summary) {
	fmt.Fprintf(w, "total %d  max %d  mean %.2f  median %.1f  p90 %.1f\n",
		s.Total, s.Max, s.Mean, s.Median, s.P90)
}
