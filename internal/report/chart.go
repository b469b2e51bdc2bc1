package report

import (
	"fmt"
	"sort"

	charts "github.com/vicanso/go-charts/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/frontier/internal/frontier"
	"github.com/wonny/frontier/internal/simulation"
)

// maxChartLabels caps x-axis labels so daily charts stay readable.
const maxChartLabels = 12

// PathsChart renders the portfolio value fan of a simulation run as a
// PNG: the 5th, 25th, 50th, 75th and 95th percentile of value across
// all paths at every time step.
func PathsChart(name string, res *simulation.Result) ([]byte, error) {
	if len(res.ValuePaths) == 0 || len(res.ValuePaths[0]) == 0 {
		return nil, fmt.Errorf("no value paths to chart")
	}

	steps := len(res.ValuePaths[0])
	quantiles := []float64{0.05, 0.25, 0.50, 0.75, 0.95}
	names := []string{"p5", "p25", "p50", "p75", "p95"}

	values := make([][]float64, len(quantiles))
	for i := range values {
		values[i] = make([]float64, steps)
	}

	column := make([]float64, len(res.ValuePaths))
	for t := 0; t < steps; t++ {
		for p, path := range res.ValuePaths {
			column[p] = path[t]
		}
		sort.Float64s(column)
		for i, q := range quantiles {
			values[i][t] = stat.Quantile(q, stat.Empirical, column, nil)
		}
	}

	stepsPerYear := res.Config.Frequency.StepsPerYear()
	labelEvery := steps / maxChartLabels
	if labelEvery == 0 {
		labelEvery = 1
	}
	xLabels := make([]string, steps)
	for t := 0; t < steps; t++ {
		if t%labelEvery == 0 {
			xLabels[t] = fmt.Sprintf("%.1fy", float64(t)/float64(stepsPerYear))
		}
	}

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}

	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(name+" value percentiles",
			fmt.Sprintf("%d paths, %d years", res.Config.Simulations, res.Config.Years)),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: maxChartLabels}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 6}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render path chart: %w", err)
	}
	return painter.Bytes()
}

// FrontierChart renders the Sharpe-ranked candidates as a risk/return
// line, candidates ordered by expected risk.
func FrontierChart(name string, res *frontier.Result) ([]byte, error) {
	if len(res.TopBySharpe) == 0 {
		return nil, fmt.Errorf("no frontier candidates to chart")
	}

	ranked := make([]frontier.Candidate, len(res.TopBySharpe))
	copy(ranked, res.TopBySharpe)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].ExpectedRisk < ranked[j].ExpectedRisk })

	cagr := make([]float64, len(ranked))
	xLabels := make([]string, len(ranked))
	for i, c := range ranked {
		cagr[i] = c.CAGRMean * 100
		xLabels[i] = FormatPct(c.ExpectedRisk)
	}

	painter, err := charts.LineRender([][]float64{cagr},
		charts.TitleTextOptionFunc(name+" efficient frontier", "mean CAGR % by expected risk"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag()}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 6}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render frontier chart: %w", err)
	}
	return painter.Bytes()
}
