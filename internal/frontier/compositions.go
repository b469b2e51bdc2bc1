package frontier

import (
	"errors"
	"fmt"
)

// ErrEmptySearchSpace is returned when no weight combination within
// the bounds sums to exactly 100 percentage points.
var ErrEmptySearchSpace = errors.New("empty frontier search space")

// totalPct is the integer percentage the weights of every candidate
// must sum to.
const totalPct = 100

// Compositions enumerates every combination of n per-security
// weights, each a multiple of increment within [minWeight, maxWeight]
// (inclusive, in integer percentage points), constrained to sum to
// exactly 100. This is a bounded integer composition enumeration,
// not a continuous optimizer.
func Compositions(n, minWeight, maxWeight, increment int) ([][]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("composition enumeration: need at least 1 security, got %d", n)
	}
	if increment <= 0 {
		return nil, fmt.Errorf("composition enumeration: increment must be positive, got %d", increment)
	}
	if minWeight < 0 || maxWeight > totalPct || minWeight > maxWeight {
		return nil, fmt.Errorf("composition enumeration: bounds [%d,%d] out of range", minWeight, maxWeight)
	}

	var out [][]int
	current := make([]int, n)

	var recurse func(idx, remaining int)
	recurse = func(idx, remaining int) {
		if idx == n-1 {
			// Last slot is forced by the sum constraint.
			if remaining >= minWeight && remaining <= maxWeight && remaining%increment == 0 {
				candidate := make([]int, n)
				copy(candidate, current)
				candidate[n-1] = remaining
				out = append(out, candidate)
			}
			return
		}
		// First multiple of increment inside the bounds.
		start := ((minWeight + increment - 1) / increment) * increment
		for w := start; w <= maxWeight && w <= remaining; w += increment {
			current[idx] = w
			recurse(idx+1, remaining-w)
		}
	}
	recurse(0, totalPct)

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: bounds [%d,%d] with increment %d cannot sum to %d across %d securities",
			ErrEmptySearchSpace, minWeight, maxWeight, increment, totalPct, n)
	}
	return out, nil
}

// toWeights converts integer percentage points to a weight vector.
func toWeights(pct []int) []float64 {
	out := make([]float64, len(pct))
	for i, p := range pct {
		out[i] = float64(p) / totalPct
	}
	return out
}
