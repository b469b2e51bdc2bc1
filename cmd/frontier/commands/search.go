package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/frontier/internal/frontier"
	"github.com/wonny/frontier/internal/report"
	"github.com/wonny/frontier/internal/simulation"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the efficient frontier over a weight grid",
	Long: `Enumerates every weight allocation on a discretized grid and
runs a Monte Carlo simulation per candidate, all candidates sharing
one covariance model and one random seed so the ranking reflects the
allocations rather than sampling noise.

Outputs three tables: top allocations by Sharpe ratio, by Sortino
ratio, and by CAGR/CVaR ratio.

Example:
  go run ./cmd/frontier search --portfolio config/portfolio.yaml
  go run ./cmd/frontier search --increment 5 --min 0 --max 100 --top 10`,
	RunE: runSearch,
}

var (
	searchMin       int
	searchMax       int
	searchIncrement int
	searchSims      int
	searchTopN      int
	searchSeed      int64
	searchWorkers   int
)

func init() {
	rootCmd.AddCommand(searchCmd)

	// Flags override the portfolio file's frontier block
	searchCmd.Flags().IntVar(&searchMin, "min", -1, "minimum weight per security (percentage points)")
	searchCmd.Flags().IntVar(&searchMax, "max", -1, "maximum weight per security (percentage points)")
	searchCmd.Flags().IntVar(&searchIncrement, "increment", 0, "weight grid increment (percentage points)")
	searchCmd.Flags().IntVar(&searchSims, "sims", 0, "simulated paths per candidate")
	searchCmd.Flags().IntVar(&searchTopN, "top", 0, "table size per ranking")
	searchCmd.Flags().Int64Var(&searchSeed, "seed", 0, "random seed shared by all candidates (0 = nondeterministic)")
	searchCmd.Flags().IntVar(&searchWorkers, "workers", 0, "concurrent candidate evaluations (0 = GOMAXPROCS)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	p, cfg, hash, err := loadPortfolio(ctx, a)
	if err != nil {
		return err
	}

	searchCfg := frontier.Config{
		MinWeight:   cfg.Frontier.MinWeight,
		MaxWeight:   cfg.Frontier.MaxWeight,
		Increment:   cfg.Frontier.Increment,
		NumSims:     cfg.Frontier.NumSims,
		Years:       cfg.Simulation.Years,
		Rebalancing: cfg.Simulation.Rebalancing,
		Seed:        cfg.Simulation.Seed,
		TopN:        cfg.Frontier.TopN,
		Workers:     searchWorkers,
	}
	searchCfg.Frequency, _ = simulation.ParseFrequency(cfg.Simulation.Frequency)

	// Flag overrides
	if searchMin >= 0 {
		searchCfg.MinWeight = searchMin
	}
	if searchMax >= 0 {
		searchCfg.MaxWeight = searchMax
	}
	if searchIncrement > 0 {
		searchCfg.Increment = searchIncrement
	}
	if searchSims > 0 {
		searchCfg.NumSims = searchSims
	}
	if searchTopN > 0 {
		searchCfg.TopN = searchTopN
	}
	if cmd.Flags().Changed("seed") {
		searchCfg.Seed = searchSeed
	}

	if !quiet {
		fmt.Printf("=== Efficient Frontier Search: %s ===\n", p.Name())
		fmt.Printf("Grid: [%d,%d] step %d  Paths/candidate: %d\n\n",
			searchCfg.MinWeight, searchCfg.MaxWeight, searchCfg.Increment, searchCfg.NumSims)

		searchCfg.Verbose = 50
		searchCfg.Progress = func(evaluated, total int) {
			fmt.Printf("  evaluated %d/%d allocations\n", evaluated, total)
		}
	}

	start := time.Now()
	res, err := frontier.Search(ctx, p, searchCfg)
	if err != nil {
		return err
	}

	if !quiet {
		symbols := p.Symbols()
		printTop("Top by Sharpe ratio", symbols, res.TopBySharpe, func(c frontier.Candidate) string { return c.Sharpe.String() })
		printTop("Top by Sortino ratio", symbols, res.TopBySortino, func(c frontier.Candidate) string { return c.Sortino.String() })
		printTop("Top by CAGR/CVaR ratio", symbols, res.TopByCVaRRatio, func(c frontier.Candidate) string { return c.CVaRRatio.String() })
		fmt.Printf("Evaluated %d allocations in %.2fs\n", res.Evaluated, time.Since(start).Seconds())
	}

	if !noReport {
		writer := report.NewWriter(a.cfg.ReportDir, a.logger)
		dir, err := writer.WriteFrontier(p.Name(), p.Symbols(), hash, res)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Report written to %s\n", dir)
		}
	}

	return nil
}

func printTop(title string, symbols []string, rows []frontier.Candidate, metric func(frontier.Candidate) string) {
	fmt.Println(title)
	for i, c := range rows {
		parts := make([]string, len(c.WeightsPct))
		for j, pct := range c.WeightsPct {
			parts[j] = fmt.Sprintf("%s:%d%%", symbols[j], pct)
		}
		fmt.Printf("  %2d. %-32s metric=%-8s cagr=%s risk=%s\n",
			i+1, strings.Join(parts, " "), metric(c),
			report.FormatPct(c.CAGRMean), report.FormatPct(c.ExpectedRisk))
	}
	fmt.Println()
}
