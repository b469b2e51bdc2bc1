// Package frontier searches a discretized simplex of weight
// allocations for the allocations that optimize risk-adjusted return,
// driving the simulation engine once per candidate.
package frontier

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/frontier/internal/metrics"
	"github.com/wonny/frontier/internal/simulation"
)

// Config holds the search parameters.
type Config struct {
	MinWeight int `json:"min_weight"` // integer percentage points
	MaxWeight int `json:"max_weight"`
	Increment int `json:"weight_increment"`

	NumSims     int                  `json:"num_sims"` // simulations per candidate
	Years       int                  `json:"years"`
	Frequency   simulation.Frequency `json:"frequency"`
	Rebalancing bool                 `json:"rebalancing"`
	Seed        int64                `json:"seed"`

	TopN    int `json:"top_n"`
	Workers int `json:"-"` // 0 = GOMAXPROCS

	// Progress, when set, is invoked after every Verbose candidates.
	// Observability only; it must not block for long.
	Verbose  int                        `json:"-"`
	Progress func(evaluated, total int) `json:"-"`
}

// Candidate is one evaluated weight combination.
type Candidate struct {
	WeightsPct   []int         `json:"weights_pct"`
	Weights      []float64     `json:"weights"`
	CAGRMean     float64       `json:"cagr_mean"`
	ExpectedRisk float64       `json:"expected_risk"`
	Sharpe       metrics.Ratio `json:"sharpe_ratio"`
	Sortino      metrics.Ratio `json:"sortino_ratio"`
	CVaRRatio    metrics.Ratio `json:"cvar_ratio"`
}

// Result holds the three independently ranked tables.
type Result struct {
	Evaluated      int         `json:"evaluated"`
	TopBySharpe    []Candidate `json:"top_by_sharpe"`
	TopBySortino   []Candidate `json:"top_by_sortino"`
	TopByCVaRRatio []Candidate `json:"top_by_cvar_ratio"`
}

// Search enumerates the weight grid and runs the full engine once per
// candidate. Candidates are independent and evaluated concurrently;
// every candidate reuses the caller's seed (common random numbers),
// so the ranking compares allocations rather than sampling noise.
func Search(ctx context.Context, t simulation.Target, cfg Config) (*Result, error) {
	weights, err := t.NormalizedWeights()
	if err != nil {
		return nil, err
	}
	n := len(weights)

	if cfg.TopN <= 0 {
		return nil, fmt.Errorf("frontier search: top_n must be positive, got %d", cfg.TopN)
	}

	combos, err := Compositions(n, cfg.MinWeight, cfg.MaxWeight, cfg.Increment)
	if err != nil {
		return nil, err
	}

	// One covariance model shared by all candidates; estimated (or
	// served from the portfolio cache) before fan-out.
	model, err := t.Covariance(cfg.Frequency)
	if err != nil {
		return nil, err
	}

	runCfg := simulation.RunConfig{
		Simulations: cfg.NumSims,
		Years:       cfg.Years,
		Frequency:   cfg.Frequency,
		Rebalancing: cfg.Rebalancing,
		Seed:        cfg.Seed,
	}
	if err := runCfg.Validate(); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	initialValue := t.Value()
	riskFree := t.RiskFreeRate()
	confidence := t.ConfidenceLevel()

	candidates := make([]Candidate, len(combos))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pct := range combos {
		i, pct := i, pct
		g.Go(func() error {
			res, err := simulation.RunWithModel(gctx, model, toWeights(pct), initialValue, riskFree, confidence, runCfg)
			if err != nil {
				return fmt.Errorf("candidate %v: %w", pct, err)
			}

			candidates[i] = Candidate{
				WeightsPct:   pct,
				Weights:      res.Weights,
				CAGRMean:     res.Summary.CAGRMean,
				ExpectedRisk: res.Summary.ExpectedRisk,
				Sharpe:       res.Summary.Sharpe,
				Sortino:      res.Summary.Sortino,
				CVaRRatio:    res.Summary.CVaRRatio,
			}

			if d := done.Add(1); cfg.Verbose > 0 && cfg.Progress != nil && d%int64(cfg.Verbose) == 0 {
				cfg.Progress(int(d), len(combos))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Evaluated:      len(candidates),
		TopBySharpe:    top(candidates, cfg.TopN, func(c Candidate) metrics.Ratio { return c.Sharpe }),
		TopBySortino:   top(candidates, cfg.TopN, func(c Candidate) metrics.Ratio { return c.Sortino }),
		TopByCVaRRatio: top(candidates, cfg.TopN, func(c Candidate) metrics.Ratio { return c.CVaRRatio }),
	}, nil
}

// top ranks candidates by one metric, descending, undefined values
// last, and returns the leading n. The input slice is not modified.
func top(candidates []Candidate, n int, metric func(Candidate) metrics.Ratio) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := metric(ranked[i]), metric(ranked[j])
		switch {
		case a.Defined() && !b.Defined():
			return true
		case !a.Defined():
			return false
		default:
			return a.Value() > b.Value()
		}
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
