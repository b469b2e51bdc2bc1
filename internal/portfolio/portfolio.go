// Package portfolio holds the target allocation a simulation runs
// against: securities, target weights, and the risk parameters, plus
// a versioned cache of the estimated covariance model.
package portfolio

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/wonny/frontier/internal/security"
	"github.com/wonny/frontier/internal/simulation"
)

// ErrInvalidWeights is returned when a weight vector is malformed:
// wrong length, negative entries, or a sum away from 1 beyond
// tolerance.
var ErrInvalidWeights = errors.New("invalid target weights")

// weightSumTolerance is how far the input weights may stray from 1
// before being rejected. Accepted weights are renormalized to sum to
// exactly 1.
const weightSumTolerance = 1e-6

// Portfolio is a named set of unique securities with target weights.
// The covariance model is computed lazily and cached with a
// generation counter: any change to the security set or the weights
// bumps the generation, and a stale cache entry is replaced by a
// fresh immutable model rather than mutated in place.
type Portfolio struct {
	name       string
	value      float64
	riskFree   float64
	confidence float64

	mu         sync.Mutex
	securities []*security.Security
	weights    []float64
	generation uint64
	covCache   map[simulation.Frequency]covEntry
}

type covEntry struct {
	generation uint64
	model      *simulation.CovarianceModel
}

// New creates a portfolio. A nil weight vector means equal weighting.
func New(name string, securities []*security.Security, weights []float64, value, riskFree, confidence float64) (*Portfolio, error) {
	if len(securities) == 0 {
		return nil, fmt.Errorf("portfolio %q: no securities", name)
	}
	seen := make(map[string]bool, len(securities))
	for _, sec := range securities {
		if seen[sec.Symbol()] {
			return nil, fmt.Errorf("portfolio %q: duplicate security %s", name, sec.Symbol())
		}
		seen[sec.Symbol()] = true
	}
	if value <= 0 {
		return nil, fmt.Errorf("portfolio %q: value must be positive, got %v", name, value)
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("portfolio %q: confidence level must be in (0,1), got %v", name, confidence)
	}

	if weights == nil {
		weights = make([]float64, len(securities))
		for i := range weights {
			weights[i] = 1 / float64(len(securities))
		}
	}
	normalized, err := normalizeWeights(weights, len(securities))
	if err != nil {
		return nil, fmt.Errorf("portfolio %q: %w", name, err)
	}

	return &Portfolio{
		name:       name,
		value:      value,
		riskFree:   riskFree,
		confidence: confidence,
		securities: securities,
		weights:    normalized,
		covCache:   make(map[simulation.Frequency]covEntry),
	}, nil
}

// normalizeWeights validates a weight vector and renormalizes it to
// sum to exactly 1.
func normalizeWeights(weights []float64, n int) ([]float64, error) {
	if len(weights) != n {
		return nil, fmt.Errorf("%w: got %d weights for %d securities",
			ErrInvalidWeights, len(weights), n)
	}

	sum := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("%w: negative or NaN weight %v", ErrInvalidWeights, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return nil, fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidWeights, sum)
	}

	out := make([]float64, n)
	for i, w := range weights {
		out[i] = w / sum
	}
	return out, nil
}

// Name returns the portfolio name.
func (p *Portfolio) Name() string { return p.name }

// Value returns the initial portfolio value.
func (p *Portfolio) Value() float64 { return p.value }

// RiskFreeRate returns the annualized risk-free rate.
func (p *Portfolio) RiskFreeRate() float64 { return p.riskFree }

// ConfidenceLevel returns the tail-risk confidence level.
func (p *Portfolio) ConfidenceLevel() float64 { return p.confidence }

// Securities returns a copy of the security list.
func (p *Portfolio) Securities() []*security.Security {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*security.Security, len(p.securities))
	copy(out, p.securities)
	return out
}

// Symbols returns the security symbols in portfolio order.
func (p *Portfolio) Symbols() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.securities))
	for i, sec := range p.securities {
		out[i] = sec.Symbol()
	}
	return out
}

// NormalizedWeights returns a copy of the target weights. The vector
// always sums to exactly 1.
func (p *Portfolio) NormalizedWeights() ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]float64, len(p.weights))
	copy(out, p.weights)
	return out, nil
}

// SetTargetWeights replaces the target weights and invalidates the
// covariance cache.
func (p *Portfolio) SetTargetWeights(weights []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	normalized, err := normalizeWeights(weights, len(p.securities))
	if err != nil {
		return fmt.Errorf("portfolio %q: %w", p.name, err)
	}

	p.weights = normalized
	p.generation++
	return nil
}

// Covariance returns the covariance model for the frequency,
// estimating it on first use and caching it until the portfolio
// changes. Callers always receive an immutable model; invalidation
// installs a fresh object instead of mutating the one concurrent
// readers may still hold.
func (p *Portfolio) Covariance(freq simulation.Frequency) (*simulation.CovarianceModel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.covCache[freq]; ok && entry.generation == p.generation {
		return entry.model, nil
	}

	model, err := simulation.EstimateCovariance(p.securities, freq)
	if err != nil {
		return nil, err
	}

	p.covCache[freq] = covEntry{generation: p.generation, model: model}
	return model, nil
}

// InvalidateCovariance forces re-estimation on the next Covariance
// call, e.g. after new history has been attached to the securities.
func (p *Portfolio) InvalidateCovariance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
}
