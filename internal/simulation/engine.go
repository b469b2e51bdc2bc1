package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/frontier/internal/metrics"
)

// Target is what the engine needs from a portfolio: validated weights,
// a covariance model per frequency, and the risk parameters. The
// portfolio package implements it.
type Target interface {
	NormalizedWeights() ([]float64, error)
	Covariance(freq Frequency) (*CovarianceModel, error)
	Value() float64
	RiskFreeRate() float64
	ConfidenceLevel() float64
}

// RunConfig holds one simulation run's parameters. Constructed per
// call, consumed by the engine, discarded afterwards.
type RunConfig struct {
	Simulations int       `json:"simulations"`
	Years       int       `json:"years"`
	Frequency   Frequency `json:"frequency"`
	Rebalancing bool      `json:"rebalancing"`
	Seed        int64     `json:"seed"` // 0 = random
}

// Validate checks the run parameters.
func (c RunConfig) Validate() error {
	if c.Simulations <= 0 {
		return fmt.Errorf("simulations must be positive, got %d", c.Simulations)
	}
	if c.Years <= 0 {
		return fmt.Errorf("years must be positive, got %d", c.Years)
	}
	if !c.Frequency.Valid() {
		return fmt.Errorf("invalid frequency %q", c.Frequency)
	}
	return nil
}

// Result holds one simulation run's output. The value paths are never
// mutated after generation.
type Result struct {
	RunID   string    `json:"run_id"`
	RunDate time.Time `json:"run_date"`

	Config  RunConfig `json:"config"`
	Weights []float64 `json:"weights"`
	Seed    uint64    `json:"effective_seed"`

	ValuePaths [][]float64     `json:"-"`
	Summary    metrics.Summary `json:"summary"`
}

// Run executes a Monte Carlo simulation for the target's own weights.
func Run(ctx context.Context, t Target, cfg RunConfig) (*Result, error) {
	weights, err := t.NormalizedWeights()
	if err != nil {
		return nil, err
	}

	model, err := t.Covariance(cfg.Frequency)
	if err != nil {
		return nil, err
	}

	return RunWithModel(ctx, model, weights, t.Value(), t.RiskFreeRate(), t.ConfidenceLevel(), cfg)
}

// RunWithModel executes a Monte Carlo simulation against an explicit
// covariance model and weight vector. The frontier search uses this
// form to reuse one model across many candidate weight vectors.
func RunWithModel(ctx context.Context, model *CovarianceModel, weights []float64, initialValue, riskFree, confidence float64, cfg RunConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(weights) != model.Dim() {
		return nil, fmt.Errorf("weight vector length %d does not match model dimension %d",
			len(weights), model.Dim())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gen, err := NewPathGenerator(model)
	if err != nil {
		return nil, err
	}

	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	stepsPerYear := cfg.Frequency.StepsPerYear()
	steps := cfg.Years * stepsPerYear

	returns := gen.Generate(steps, cfg.Simulations, seed)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths := EvolvePaths(returns, weights, initialValue, cfg.Rebalancing, stepsPerYear)
	summary := metrics.Reduce(paths, cfg.Years, riskFree, confidence)

	return &Result{
		RunID:      uuid.New().String(),
		RunDate:    time.Now(),
		Config:     cfg,
		Weights:    weights,
		Seed:       seed,
		ValuePaths: paths,
		Summary:    summary,
	}, nil
}
