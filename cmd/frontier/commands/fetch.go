package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and cache return history for the configured securities",
	Long: `Fetches daily adjusted return history for every security in the
portfolio definition and stores it in the database cache, so later
simulate and search runs work offline.

Requires ALPHAVANTAGE_API_KEY; the free tier allows 5 requests per
minute, which the client respects automatically.

Example:
  go run ./cmd/frontier fetch --portfolio config/portfolio.yaml`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	start := time.Now()
	p, _, _, err := loadPortfolio(ctx, a)
	if err != nil {
		return err
	}

	if !quiet {
		for _, sec := range p.Securities() {
			returns, err := sec.AdjustedReturns()
			if err != nil {
				return err
			}
			fmt.Printf("  %-8s %d observations (%s ~ %s)\n",
				sec.Symbol(), len(returns),
				returns[0].Date.Format("2006-01-02"),
				returns[len(returns)-1].Date.Format("2006-01-02"))
		}
		fmt.Printf("\nFetched %d securities in %.2fs\n", len(p.Securities()), time.Since(start).Seconds())
	}

	return nil
}
