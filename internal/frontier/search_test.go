package frontier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/wonny/frontier/internal/metrics"
	"github.com/wonny/frontier/internal/simulation"
)

// stubTarget satisfies simulation.Target with a fixed model.
type stubTarget struct {
	weights []float64
	model   *simulation.CovarianceModel
}

func (s *stubTarget) NormalizedWeights() ([]float64, error) { return s.weights, nil }

func (s *stubTarget) Covariance(simulation.Frequency) (*simulation.CovarianceModel, error) {
	return s.model, nil
}

func (s *stubTarget) Value() float64 { return 10000 }

func (s *stubTarget) RiskFreeRate() float64 { return 0.02 }

func (s *stubTarget) ConfidenceLevel() float64 { return 0.95 }

func twoAssetTarget() *stubTarget {
	return &stubTarget{
		weights: []float64{0.5, 0.5},
		model: &simulation.CovarianceModel{
			Symbols:   []string{"A", "B"},
			Mean:      []float64{0.007, 0.003},
			Cov:       mat.NewSymDense(2, []float64{0.0030, 0.0004, 0.0004, 0.0008}),
			Frequency: simulation.FrequencyMonthly,
		},
	}
}

func searchConfig() Config {
	return Config{
		MinWeight: 0,
		MaxWeight: 100,
		Increment: 50,
		NumSims:   300,
		Years:     5,
		Frequency: simulation.FrequencyMonthly,
		Seed:      42,
		TopN:      3,
	}
}

func TestSearch_EvaluatesFullGrid(t *testing.T) {
	res, err := Search(context.Background(), twoAssetTarget(), searchConfig())
	require.NoError(t, err)

	// Grid (0,100), (50,50), (100,0).
	assert.Equal(t, 3, res.Evaluated)
	assert.Len(t, res.TopBySharpe, 3)
	assert.Len(t, res.TopBySortino, 3)
	assert.Len(t, res.TopByCVaRRatio, 3)
}

func TestSearch_TopNCapsTables(t *testing.T) {
	cfg := searchConfig()
	cfg.Increment = 10
	cfg.TopN = 5

	res, err := Search(context.Background(), twoAssetTarget(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 11, res.Evaluated)
	assert.Len(t, res.TopBySharpe, 5)
}

func TestSearch_DeterministicUnderSeed(t *testing.T) {
	a, err := Search(context.Background(), twoAssetTarget(), searchConfig())
	require.NoError(t, err)
	b, err := Search(context.Background(), twoAssetTarget(), searchConfig())
	require.NoError(t, err)

	require.Equal(t, len(a.TopBySharpe), len(b.TopBySharpe))
	for i := range a.TopBySharpe {
		assert.Equal(t, a.TopBySharpe[i].WeightsPct, b.TopBySharpe[i].WeightsPct)
		assert.Equal(t, a.TopBySharpe[i].CAGRMean, b.TopBySharpe[i].CAGRMean)
	}
}

func TestSearch_RankingDescending(t *testing.T) {
	cfg := searchConfig()
	cfg.Increment = 20

	res, err := Search(context.Background(), twoAssetTarget(), cfg)
	require.NoError(t, err)

	for i := 1; i < len(res.TopBySharpe); i++ {
		prev, cur := res.TopBySharpe[i-1].Sharpe, res.TopBySharpe[i].Sharpe
		if prev.Defined() && cur.Defined() {
			assert.GreaterOrEqual(t, prev.Value(), cur.Value())
		} else {
			assert.True(t, prev.Defined() || !cur.Defined(), "undefined ranked above defined")
		}
	}
}

func TestSearch_EmptySearchSpace(t *testing.T) {
	cfg := searchConfig()
	cfg.MaxWeight = 40

	_, err := Search(context.Background(), twoAssetTarget(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySearchSpace))
}

func TestSearch_RejectsNonpositiveTopN(t *testing.T) {
	cfg := searchConfig()
	cfg.TopN = 0

	_, err := Search(context.Background(), twoAssetTarget(), cfg)
	assert.Error(t, err)
}

func TestSearch_ProgressCallback(t *testing.T) {
	cfg := searchConfig()
	cfg.Increment = 10
	cfg.Verbose = 1
	var calls int
	cfg.Progress = func(evaluated, total int) {
		calls++
		assert.Equal(t, 11, total)
	}
	// Sequential so the callback count is exact.
	cfg.Workers = 1

	_, err := Search(context.Background(), twoAssetTarget(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 11, calls)
}

func TestTop_UndefinedRankedLast(t *testing.T) {
	candidates := []Candidate{
		{WeightsPct: []int{100, 0}, Sharpe: metrics.Undefined},
		{WeightsPct: []int{0, 100}, Sharpe: metrics.NewRatio(0.5)},
		{WeightsPct: []int{50, 50}, Sharpe: metrics.NewRatio(1.5)},
	}

	ranked := top(candidates, 3, func(c Candidate) metrics.Ratio { return c.Sharpe })

	assert.Equal(t, []int{50, 50}, ranked[0].WeightsPct)
	assert.Equal(t, []int{0, 100}, ranked[1].WeightsPct)
	assert.Equal(t, []int{100, 0}, ranked[2].WeightsPct)
}

func TestToWeights(t *testing.T) {
	w := toWeights([]int{25, 75})
	assert.InDelta(t, 0.25, w[0], 1e-12)
	assert.InDelta(t, 0.75, w[1], 1e-12)
}
