package simulation

// EvolvePaths applies the generated per-asset returns to portfolio
// holdings over time, producing one value series per simulation path.
//
// For each path independently, the initial value is distributed across
// per-security holdings per the target weights; each period's returns
// compound the holdings, and when rebalancing is enabled the holdings
// are reset to the target weights against the new total once per
// simulated year. Each output series has length steps+1, including
// the initial value. Pure function: no shared state is touched.
func EvolvePaths(returns [][][]float64, weights []float64, initialValue float64, rebalance bool, stepsPerYear int) [][]float64 {
	out := make([][]float64, len(returns))
	for p, path := range returns {
		out[p] = evolvePath(path, weights, initialValue, rebalance, stepsPerYear)
	}
	return out
}

func evolvePath(periodReturns [][]float64, weights []float64, initialValue float64, rebalance bool, stepsPerYear int) []float64 {
	n := len(weights)

	holdings := make([]float64, n)
	for i, w := range weights {
		holdings[i] = initialValue * w
	}

	series := make([]float64, len(periodReturns)+1)
	series[0] = initialValue

	for t, rets := range periodReturns {
		total := 0.0
		for i := 0; i < n; i++ {
			holdings[i] *= 1 + rets[i]
			total += holdings[i]
		}

		// Annual rebalancing boundary, steps counted from 1.
		if rebalance && (t+1)%stepsPerYear == 0 {
			for i, w := range weights {
				holdings[i] = total * w
			}
		}

		series[t+1] = total
	}

	return series
}
