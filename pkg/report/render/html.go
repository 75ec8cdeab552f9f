package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/sonarexport/pkg/report"
	"github.com/Sumatoshi-tech/sonarexport/pkg/terminal"
)

const (
	chartWidth     = "100%"
	chartHeight    = "480px"
	maxLabelLength = 48
	dataZoomEnd    = 100
)

// Chart series colours.
const (
	colorIssues      = "#ee6666"
	colorDuplication = "#fac858"
	colorCoverage    = "#91cc75"
)

// renderHTML writes a standalone page with one bar chart per report section.
func renderHTML(w io.Writer, rep *report.Report, opts Options) error {
	page := components.NewPage()
	page.PageTitle = opts.Title
	page.SetLayout(components.PageFlexLayout)

	page.AddCharts(
		issuesChart(rep),
		duplicationChart(rep.Duplications),
		coverageChart(rep.Coverage),
	)

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	return nil
}

func issuesChart(rep *report.Report) *charts.Bar {
	groups := rep.IssuesBySeverity()

	labels := make([]string, 0, len(groups))
	values := make([]opts.BarData, 0, len(groups))

	for _, group := range groups {
		labels = append(labels, string(group.Severity))
		values = append(values, opts.BarData{Value: len(group.Issues)})
	}

	return barChart("Issues per severity", "issues", labels, "Issues", colorIssues, values)
}

func duplicationChart(entries []report.DuplicationEntry) *charts.Bar {
	sorted := report.SortByDensity(entries)

	labels := make([]string, 0, len(sorted))
	values := make([]opts.BarData, 0, len(sorted))

	for _, entry := range sorted {
		labels = append(labels, terminal.TruncateWithEllipsis(entry.File, maxLabelLength))
		values = append(values, opts.BarData{Value: entry.Density})
	}

	return barChart("Duplication density per file", "%", labels, "Density", colorDuplication, values)
}

func coverageChart(entries []report.CoverageEntry) *charts.Bar {
	sorted := report.SortByCoverage(entries)

	labels := make([]string, 0, len(sorted))
	values := make([]opts.BarData, 0, len(sorted))

	for _, entry := range sorted {
		labels = append(labels, terminal.TruncateWithEllipsis(entry.File, maxLabelLength))
		values = append(values, opts.BarData{Value: entry.Coverage})
	}

	return barChart("Coverage per file", "%", labels, "Coverage", colorCoverage, values)
}

func barChart(title, yName string, labels []string, series, color string, values []opts.BarData) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "slider", Start: 0, End: dataZoomEnd},
			opts.DataZoom{Type: "inside"},
		),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)

	bar.SetXAxis(labels)
	bar.AddSeries(series, values, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))

	return bar
}
