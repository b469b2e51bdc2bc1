package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/frontier/internal/report"
	"github.com/wonny/frontier/internal/simulation"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte Carlo simulation for the configured allocation",
	Long: `Runs a Monte Carlo simulation for the portfolio's own target
weights and prints the outcome distribution.

This command:
- Loads return history (cache first, provider fallback)
- Estimates mean vector and covariance at the chosen frequency
- Generates correlated return paths and evolves portfolio value
- Reduces the paths to CAGR, Sharpe, Sortino and CVaR

Example:
  go run ./cmd/frontier simulate --portfolio config/portfolio.yaml
  go run ./cmd/frontier simulate --sims 20000 --years 15 --seed 42`,
	RunE: runSimulate,
}

var (
	simSims      int
	simYears     int
	simFrequency string
	simRebalance bool
	simSeed      int64
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	// Flags override the portfolio file's simulation block
	simulateCmd.Flags().IntVar(&simSims, "sims", 0, "number of simulated paths")
	simulateCmd.Flags().IntVar(&simYears, "years", 0, "simulation horizon in years")
	simulateCmd.Flags().StringVar(&simFrequency, "frequency", "", "step frequency (daily|monthly|quarterly|annual)")
	simulateCmd.Flags().BoolVar(&simRebalance, "rebalance", false, "rebalance to target weights annually")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (0 = nondeterministic)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
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

	runCfg := simulation.RunConfig{
		Simulations: cfg.Simulation.NumSims,
		Years:       cfg.Simulation.Years,
		Rebalancing: cfg.Simulation.Rebalancing,
		Seed:        cfg.Simulation.Seed,
	}
	runCfg.Frequency, _ = simulation.ParseFrequency(cfg.Simulation.Frequency)

	// Flag overrides
	if simSims > 0 {
		runCfg.Simulations = simSims
	}
	if simYears > 0 {
		runCfg.Years = simYears
	}
	if simFrequency != "" {
		runCfg.Frequency, err = simulation.ParseFrequency(simFrequency)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("rebalance") {
		runCfg.Rebalancing = simRebalance
	}
	if cmd.Flags().Changed("seed") {
		runCfg.Seed = simSeed
	}

	if !quiet {
		fmt.Printf("=== Monte Carlo Simulation: %s ===\n", p.Name())
		fmt.Printf("Paths: %d  Years: %d  Frequency: %s  Rebalancing: %t\n\n",
			runCfg.Simulations, runCfg.Years, runCfg.Frequency, runCfg.Rebalancing)
	}

	start := time.Now()
	res, err := simulation.Run(ctx, p, runCfg)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Print(report.FormatSummary(res.Summary))
		fmt.Printf("\nCompleted in %.2fs (seed %d)\n", time.Since(start).Seconds(), res.Seed)
	}

	if !noReport {
		writer := report.NewWriter(a.cfg.ReportDir, a.logger)
		dir, err := writer.WriteSimulation(p.Name(), p.Symbols(), hash, res)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Report written to %s\n", dir)
		}
	}

	return nil
}
