// Package metrics reduces an ensemble of simulated portfolio value
// paths into summary risk statistics.
//
// Ratios whose denominator is zero or sign-inconsistent are reported
// as an explicit undefined value, never as NaN or Inf, so ranking and
// display code cannot accidentally compare them as numbers.
package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Ratio is an optionally-defined risk-adjusted return metric.
// The zero value is the undefined sentinel.
type Ratio struct {
	value   float64
	defined bool
}

// Undefined is the sentinel for a ratio that cannot be computed.
var Undefined = Ratio{}

// NewRatio returns a defined ratio, unless v is NaN or Inf in which
// case the undefined sentinel is returned.
func NewRatio(v float64) Ratio {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return Ratio{value: v, defined: true}
}

// Defined reports whether the ratio carries a value.
func (r Ratio) Defined() bool { return r.defined }

// Value returns the ratio value. Only meaningful when Defined() is true.
func (r Ratio) Value() float64 { return r.value }

// String renders the ratio for reports.
func (r Ratio) String() string {
	if !r.defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", r.value)
}

// MarshalJSON emits the value, or null when undefined.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// Summary holds the reduced risk statistics of one simulation run.
type Summary struct {
	Paths int `json:"paths"`
	Years int `json:"years"`

	// CAGR distribution across paths
	CAGRMean        float64         `json:"cagr_mean"`
	ExpectedRisk    float64         `json:"expected_risk"` // std dev of CAGRs
	CAGRPercentiles map[int]float64 `json:"cagr_percentiles"`

	// Risk-adjusted ratios
	Sharpe  Ratio `json:"sharpe_ratio"`
	Sortino Ratio `json:"sortino_ratio"`

	// Tail risk on the CAGR distribution
	CVaR      float64 `json:"cvar"`
	CVaRRatio Ratio   `json:"cvar_ratio"`

	FinalValueMean float64 `json:"final_value_mean"`
}

// Reduce converts S portfolio value paths into summary statistics.
//
// Each path contributes one CAGR = (final/initial)^(1/years) - 1.
// Sharpe divides mean excess CAGR by the CAGR standard deviation,
// Sortino by the downside deviation over the CAGRs below the
// risk-free rate, and the CVaR ratio divides the mean CAGR by the
// magnitude of the tail mean. See the Ratio type for how impossible
// denominators are reported.
func Reduce(valuePaths [][]float64, years int, riskFree, confidence float64) Summary {
	s := Summary{
		Paths:           len(valuePaths),
		Years:           years,
		CAGRPercentiles: make(map[int]float64),
	}
	if len(valuePaths) == 0 || years <= 0 {
		return s
	}

	cagrs := make([]float64, 0, len(valuePaths))
	var finalSum float64
	for _, path := range valuePaths {
		if len(path) < 2 || path[0] <= 0 {
			continue
		}
		final := path[len(path)-1]
		finalSum += final
		cagrs = append(cagrs, cagr(path[0], final, years))
	}
	if len(cagrs) == 0 {
		return s
	}
	s.Paths = len(cagrs)
	s.FinalValueMean = finalSum / float64(len(cagrs))

	s.CAGRMean = stat.Mean(cagrs, nil)
	if len(cagrs) > 1 {
		s.ExpectedRisk = stat.StdDev(cagrs, nil)
	}

	sorted := make([]float64, len(cagrs))
	copy(sorted, cagrs)
	sort.Float64s(sorted)

	for _, p := range []int{5, 25, 50, 75, 95} {
		s.CAGRPercentiles[p] = stat.Quantile(float64(p)/100, stat.Empirical, sorted, nil)
	}

	s.Sharpe = safeDiv(s.CAGRMean-riskFree, s.ExpectedRisk)
	s.Sortino = safeDiv(s.CAGRMean-riskFree, downsideDeviation(cagrs, riskFree))
	s.CVaR = tailMean(sorted, confidence)
	if s.CVaR < 0 {
		s.CVaRRatio = NewRatio(s.CAGRMean / math.Abs(s.CVaR))
	} else {
		// Non-negative worst tail: ratio has no meaning
		s.CVaRRatio = Undefined
	}

	return s
}

// cagr computes the compound annual growth rate of one path.
func cagr(initial, final float64, years int) float64 {
	if final <= 0 {
		// Total loss; -100%/yr floor keeps the distribution real-valued.
		return -1
	}
	return math.Pow(final/initial, 1/float64(years)) - 1
}

// downsideDeviation is the root mean squared shortfall of the CAGRs
// below the threshold, over the below-threshold observations only.
// Returns 0 when no observation falls below, which safeDiv turns into
// the undefined sentinel.
func downsideDeviation(cagrs []float64, threshold float64) float64 {
	var sumSq float64
	var count int
	for _, c := range cagrs {
		if c < threshold {
			d := c - threshold
			sumSq += d * d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(count))
}

// tailMean is the mean of the worst (1-confidence) fraction of the
// sorted CAGRs, with a minimum of one observation.
func tailMean(sorted []float64, confidence float64) float64 {
	n := int(math.Ceil(float64(len(sorted)) * (1 - confidence)))
	if n < 1 {
		n = 1
	}
	if n > len(sorted) {
		n = len(sorted)
	}

	var sum float64
	for _, v := range sorted[:n] {
		sum += v
	}
	return sum / float64(n)
}

// safeDiv builds a ratio, undefined when the denominator is zero.
func safeDiv(num, den float64) Ratio {
	if den == 0 {
		return Undefined
	}
	return NewRatio(num / den)
}
