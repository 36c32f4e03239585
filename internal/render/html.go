package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var heatColors = []string{"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"}

// TimelineHTML writes a standalone page with a weekly commit bar chart.
func TimelineHTML(w io.Writer, counts []int) error {
	labels := make([]string, len(counts))
	for i := range counts {
		labels[i] = fmt.Sprintf("-%dw", len(counts)-1-i)
	}
	return BarHTML(w, "Commits per week", labels, counts)
}

// BarHTML writes a standalone page with one bar per label.
func BarHTML(w io.Writer, title string, labels []string, counts []int) error {
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("commits", data)

	page := components.NewPage()
	page.AddCharts(bar)
	return page.Render(w)
}

// HeatmapHTML writes a standalone page with one heatmap of grid, rows
// labelled by rowLabels and columns by colLabels.
func HeatmapHTML(w io.Writer, title string, rowLabels, colLabels []string, grid [][]int) error {
	data := make([]opts.HeatMapData, 0, len(rowLabels)*len(colLabels))
	for r, row := range grid {
		for c, v := range row {
			data = append(data, opts.HeatMapData{Value: []any{c, r, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category", Data: colLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category", Data: rowLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true), Min: 0, Max: float32(gridMax(grid)),
			InRange: &opts.VisualMapInRange{Color: heatColors},
			Orient:  "horizontal", Left: "center",
		}),
	)
	hm.AddSeries("commits", data)

	page := components.NewPage()
	page.AddCharts(hm)
	return page.Render(w)
}
