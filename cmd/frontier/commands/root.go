package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	portfolioFile string
	noReport      bool
	quiet         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "frontier",
	Short: "Monte Carlo portfolio simulation and efficient frontier search",
	Long: `Frontier CLI

Monte Carlo portfolio simulation engine. Estimates a covariance model
from historical returns, generates correlated return paths, and
summarizes the outcome distribution with risk-adjusted metrics.

Usage:
  go run ./cmd/frontier [command]

Examples:
  go run ./cmd/frontier simulate --portfolio config/portfolio.yaml
  go run ./cmd/frontier search --portfolio config/portfolio.yaml
  go run ./cmd/frontier fetch --portfolio config/portfolio.yaml
  go run ./cmd/frontier serve`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&portfolioFile, "portfolio", "", "portfolio definition file (default $FRONTIER_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&noReport, "no-report", false, "skip writing report files")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
}
