package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pathsFromCAGRs builds one 1-year value path per target CAGR.
func pathsFromCAGRs(cagrs ...float64) [][]float64 {
	out := make([][]float64, len(cagrs))
	for i, c := range cagrs {
		out[i] = []float64{100, 100 * (1 + c)}
	}
	return out
}

func TestReduce_CAGRAndPercentiles(t *testing.T) {
	s := Reduce(pathsFromCAGRs(-0.10, 0.00, 0.05, 0.10, 0.20), 1, 0.0, 0.95)

	assert.Equal(t, 5, s.Paths)
	assert.InDelta(t, 0.05, s.CAGRMean, 1e-9)
	assert.InDelta(t, 0.05, s.CAGRPercentiles[50], 1e-9)
	assert.InDelta(t, -0.10, s.CAGRPercentiles[5], 1e-9)
	assert.InDelta(t, 0.20, s.CAGRPercentiles[95], 1e-9)
	assert.True(t, s.ExpectedRisk > 0)
}

func TestReduce_MultiYearCAGR(t *testing.T) {
	// 100 -> 400 over 2 years is exactly +100%/yr.
	s := Reduce([][]float64{{100, 150, 400}}, 2, 0.0, 0.95)
	assert.InDelta(t, 1.0, s.CAGRMean, 1e-9)
}

func TestReduce_TotalLossFloor(t *testing.T) {
	s := Reduce([][]float64{{100, 50, 0}}, 2, 0.0, 0.95)
	assert.InDelta(t, -1.0, s.CAGRMean, 1e-12, "nonpositive final value floors at -100%/yr")
}

func TestReduce_SortinoUndefinedWhenNoDownside(t *testing.T) {
	// Every CAGR above the risk-free rate: downside deviation has no
	// observations, so the ratio must be the undefined sentinel.
	s := Reduce(pathsFromCAGRs(0.05, 0.08, 0.12), 1, 0.0, 0.95)

	assert.True(t, s.Sharpe.Defined())
	assert.False(t, s.Sortino.Defined())
	assert.Equal(t, "n/a", s.Sortino.String())
}

func TestReduce_SharpeUndefinedOnZeroRisk(t *testing.T) {
	s := Reduce(pathsFromCAGRs(0.05, 0.05, 0.05), 1, 0.0, 0.95)
	assert.Equal(t, 0.0, s.ExpectedRisk)
	assert.False(t, s.Sharpe.Defined())
}

func TestReduce_CVaR(t *testing.T) {
	// 20 paths, conf 0.95 -> tail is ceil(20*0.05)=1 worst observation.
	cagrs := make([]float64, 20)
	for i := range cagrs {
		cagrs[i] = float64(i-5) / 100 // -0.05 .. 0.14
	}
	s := Reduce(pathsFromCAGRs(cagrs...), 1, 0.0, 0.95)

	assert.InDelta(t, -0.05, s.CVaR, 1e-9)
	require.True(t, s.CVaRRatio.Defined())
	assert.InDelta(t, s.CAGRMean/0.05, s.CVaRRatio.Value(), 1e-9)
}

func TestReduce_CVaRRatioUndefinedOnPositiveTail(t *testing.T) {
	s := Reduce(pathsFromCAGRs(0.02, 0.05, 0.08), 1, 0.0, 0.95)
	assert.True(t, s.CVaR >= 0)
	assert.False(t, s.CVaRRatio.Defined())
}

func TestReduce_Empty(t *testing.T) {
	s := Reduce(nil, 10, 0.0, 0.95)
	assert.Equal(t, 0, s.Paths)
	assert.False(t, s.Sharpe.Defined())
}

func TestRatio_JSON(t *testing.T) {
	defined, err := json.Marshal(NewRatio(1.25))
	require.NoError(t, err)
	assert.Equal(t, "1.25", string(defined))

	undefined, err := json.Marshal(Undefined)
	require.NoError(t, err)
	assert.Equal(t, "null", string(undefined))
}

func TestNewRatio_RejectsNonFinite(t *testing.T) {
	assert.False(t, NewRatio(math.NaN()).Defined())
	assert.False(t, NewRatio(math.Inf(1)).Defined())
	assert.True(t, NewRatio(-2.5).Defined())
}
