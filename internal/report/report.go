// Package report writes run artifacts to disk: a plain-text summary
// and PNG charts, one timestamped directory per run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/frontier/internal/frontier"
	"github.com/wonny/frontier/internal/metrics"
	"github.com/wonny/frontier/internal/simulation"
	"github.com/wonny/frontier/pkg/logger"
)

// Writer creates one directory per run under the configured base
// directory and writes the run's artifacts into it.
type Writer struct {
	baseDir string
	logger  *logger.Logger
}

// NewWriter creates a report writer rooted at baseDir.
func NewWriter(baseDir string, log *logger.Logger) *Writer {
	return &Writer{baseDir: baseDir, logger: log}
}

// runDir creates runs/<prefix>_<timestamp>/ and returns its path.
func (w *Writer) runDir(prefix string, at time.Time) (string, error) {
	dir := filepath.Join(w.baseDir, fmt.Sprintf("%s_%s", prefix, at.Format("20060102_150405")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	return dir, nil
}

// WriteSimulation writes the text report and value-path chart for one
// simulation run. It returns the report directory.
func (w *Writer) WriteSimulation(name string, symbols []string, configHash string, res *simulation.Result) (string, error) {
	dir, err := w.runDir("sim", res.RunDate)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Monte Carlo Simulation Report\n")
	fmt.Fprintf(&b, "=============================\n\n")
	fmt.Fprintf(&b, "Portfolio:    %s\n", name)
	fmt.Fprintf(&b, "Run ID:       %s\n", res.RunID)
	fmt.Fprintf(&b, "Run date:     %s\n", res.RunDate.Format(time.RFC3339))
	if configHash != "" {
		fmt.Fprintf(&b, "Config hash:  %s\n", configHash)
	}
	fmt.Fprintf(&b, "Seed:         %d\n\n", res.Seed)

	fmt.Fprintf(&b, "Allocation\n----------\n")
	for i, sym := range symbols {
		fmt.Fprintf(&b, "  %-8s %s\n", sym, FormatPct(res.Weights[i]))
	}
	fmt.Fprintf(&b, "\nParameters\n----------\n")
	fmt.Fprintf(&b, "  Simulations: %d\n", res.Config.Simulations)
	fmt.Fprintf(&b, "  Years:       %d\n", res.Config.Years)
	fmt.Fprintf(&b, "  Frequency:   %s\n", res.Config.Frequency)
	fmt.Fprintf(&b, "  Rebalancing: %t\n\n", res.Config.Rebalancing)

	b.WriteString(FormatSummary(res.Summary))

	reportPath := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(reportPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write simulation report: %w", err)
	}

	chart, err := PathsChart(name, res)
	if err != nil {
		w.logger.WithError(err).Warn("Value path chart rendering failed")
	} else if err := os.WriteFile(filepath.Join(dir, "paths.png"), chart, 0o644); err != nil {
		return "", fmt.Errorf("write path chart: %w", err)
	}

	w.logger.WithField("dir", dir).Info("Simulation report written")
	return dir, nil
}

// WriteFrontier writes the text report and risk/return chart for one
// frontier search. It returns the report directory.
func (w *Writer) WriteFrontier(name string, symbols []string, configHash string, res *frontier.Result) (string, error) {
	dir, err := w.runDir("frontier", time.Now())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Efficient Frontier Report\n")
	fmt.Fprintf(&b, "=========================\n\n")
	fmt.Fprintf(&b, "Portfolio:   %s\n", name)
	if configHash != "" {
		fmt.Fprintf(&b, "Config hash: %s\n", configHash)
	}
	fmt.Fprintf(&b, "Evaluated:   %d allocations\n\n", res.Evaluated)

	writeTable(&b, "Top by Sharpe ratio", symbols, res.TopBySharpe, func(c frontier.Candidate) metrics.Ratio { return c.Sharpe })
	writeTable(&b, "Top by Sortino ratio", symbols, res.TopBySortino, func(c frontier.Candidate) metrics.Ratio { return c.Sortino })
	writeTable(&b, "Top by CAGR/CVaR ratio", symbols, res.TopByCVaRRatio, func(c frontier.Candidate) metrics.Ratio { return c.CVaRRatio })

	reportPath := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(reportPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write frontier report: %w", err)
	}

	chart, err := FrontierChart(name, res)
	if err != nil {
		w.logger.WithError(err).Warn("Frontier chart rendering failed")
	} else if err := os.WriteFile(filepath.Join(dir, "frontier.png"), chart, 0o644); err != nil {
		return "", fmt.Errorf("write frontier chart: %w", err)
	}

	w.logger.WithField("dir", dir).Info("Frontier report written")
	return dir, nil
}

func writeTable(b *strings.Builder, title string, symbols []string, rows []frontier.Candidate, metric func(frontier.Candidate) metrics.Ratio) {
	fmt.Fprintf(b, "%s\n%s\n", title, strings.Repeat("-", len(title)))
	fmt.Fprintf(b, "  %-4s %-24s %10s %10s %10s\n", "#", "allocation", "metric", "cagr", "risk")
	for i, c := range rows {
		parts := make([]string, len(c.WeightsPct))
		for j, p := range c.WeightsPct {
			sym := fmt.Sprintf("w%d", j)
			if j < len(symbols) {
				sym = symbols[j]
			}
			parts[j] = fmt.Sprintf("%s:%d", sym, p)
		}
		fmt.Fprintf(b, "  %-4d %-24s %10s %10s %10s\n",
			i+1, strings.Join(parts, " "), metric(c).String(),
			FormatPct(c.CAGRMean), FormatPct(c.ExpectedRisk))
	}
	b.WriteString("\n")
}

// FormatSummary renders the risk metrics block of a text report.
func FormatSummary(s metrics.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Results (%d paths, %d years)\n", s.Paths, s.Years)
	fmt.Fprintf(&b, "----------------------------\n")
	fmt.Fprintf(&b, "  Mean CAGR:        %s\n", FormatPct(s.CAGRMean))
	fmt.Fprintf(&b, "  Expected risk:    %s\n", FormatPct(s.ExpectedRisk))
	fmt.Fprintf(&b, "  Mean final value: %s\n", FormatMoney(s.FinalValueMean))
	fmt.Fprintf(&b, "  Sharpe ratio:     %s\n", s.Sharpe)
	fmt.Fprintf(&b, "  Sortino ratio:    %s\n", s.Sortino)
	fmt.Fprintf(&b, "  CVaR:             %s\n", FormatPct(s.CVaR))
	fmt.Fprintf(&b, "  CAGR/CVaR ratio:  %s\n\n", s.CVaRRatio)

	fmt.Fprintf(&b, "CAGR percentiles\n----------------\n")
	for _, p := range []int{5, 25, 50, 75, 95} {
		fmt.Fprintf(&b, "  p%-3d %s\n", p, FormatPct(s.CAGRPercentiles[p]))
	}
	return b.String()
}
