package simulation

import (
	"math"
	"runtime"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// jitterSteps are the diagonal regularization magnitudes tried, in
// order, when the sample covariance matrix is not strictly positive
// definite due to estimation noise.
var jitterSteps = []float64{1e-12, 1e-10, 1e-8}

// PathGenerator draws correlated per-period return increments for all
// securities simultaneously across independent simulation paths.
//
// The covariance matrix is factored once at construction into a
// transform L with L*Lᵀ = Σ; each period's independent standard
// normal vector z becomes the correlated draw μ + L·z.
type PathGenerator struct {
	mu        []float64
	transform *mat.Dense // n×n
	n         int
}

// NewPathGenerator factors the model's covariance matrix. It tries a
// plain Cholesky factorization first, then diagonal jitter, then an
// eigen-decomposition with negative eigenvalues clipped to zero.
// Fails with ErrNonPositiveSemidefinite when nothing factors.
func NewPathGenerator(model *CovarianceModel) (*PathGenerator, error) {
	transform, err := factorCovariance(model.Cov)
	if err != nil {
		return nil, err
	}

	mu := make([]float64, len(model.Mean))
	copy(mu, model.Mean)

	return &PathGenerator{
		mu:        mu,
		transform: transform,
		n:         len(mu),
	}, nil
}

// factorCovariance finds L with L*Lᵀ = Σ.
func factorCovariance(sigma *mat.SymDense) (*mat.Dense, error) {
	n := sigma.SymmetricDim()

	// A zero-variance asset makes Σ singular in a way regularization
	// cannot meaningfully repair.
	for i := 0; i < n; i++ {
		if sigma.At(i, i) <= 0 {
			return nil, ErrNonPositiveSemidefinite
		}
	}

	var chol mat.Cholesky
	if chol.Factorize(sigma) {
		return lowerToDense(&chol, n), nil
	}

	// Estimation noise: retry with growing diagonal jitter.
	for _, eps := range jitterSteps {
		jittered := mat.NewSymDense(n, nil)
		jittered.CopySym(sigma)
		for i := 0; i < n; i++ {
			jittered.SetSym(i, i, jittered.At(i, i)+eps)
		}
		if chol.Factorize(jittered) {
			return lowerToDense(&chol, n), nil
		}
	}

	// Eigen-decomposition fallback: Σ = QΛQᵀ, clip λ<0, L = Q·√Λ.
	var es mat.EigenSym
	if !es.Factorize(sigma, true) {
		return nil, ErrNonPositiveSemidefinite
	}
	vals := es.Values(nil)
	var q mat.Dense
	es.VectorsTo(&q)

	anyPositive := false
	sqrtVals := make([]float64, n)
	for i, v := range vals {
		if v > 0 {
			anyPositive = true
			sqrtVals[i] = math.Sqrt(v)
		}
	}
	if !anyPositive {
		return nil, ErrNonPositiveSemidefinite
	}

	l := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			l.Set(i, j, q.At(i, j)*sqrtVals[j])
		}
	}
	return l, nil
}

func lowerToDense(chol *mat.Cholesky, n int) *mat.Dense {
	var tri mat.TriDense
	chol.LTo(&tri)
	l := mat.NewDense(n, n, nil)
	l.Copy(&tri)
	return l
}

// Generate draws per-period returns of shape [paths][steps][assets].
//
// Paths are computed concurrently, but every path owns an RNG stream
// derived from the base seed and its own index, so the output is
// bit-identical for a given seed regardless of how the work is
// scheduled.
func (g *PathGenerator) Generate(steps, paths int, seed uint64) [][][]float64 {
	out := make([][][]float64, paths)

	workers := runtime.GOMAXPROCS(0)
	if workers > paths {
		workers = paths
	}

	var wg sync.WaitGroup
	next := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range next {
				out[p] = g.generatePath(steps, pathSeed(seed, p))
			}
		}()
	}
	for p := 0; p < paths; p++ {
		next <- p
	}
	close(next)
	wg.Wait()

	return out
}

// generatePath draws one path's steps×n return matrix.
func (g *PathGenerator) generatePath(steps int, seed uint64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	z := make([]float64, g.n)

	path := make([][]float64, steps)
	for t := 0; t < steps; t++ {
		for i := range z {
			z[i] = rng.NormFloat64()
		}

		row := make([]float64, g.n)
		for i := 0; i < g.n; i++ {
			v := g.mu[i]
			for j := 0; j < g.n; j++ {
				v += g.transform.At(i, j) * z[j]
			}
			row[i] = v
		}
		path[t] = row
	}
	return path
}

// pathSeed derives an independent stream seed per path index
// (splitmix-style odd-constant multiply).
func pathSeed(base uint64, path int) uint64 {
	return base + 0x9E3779B97F4A7C15*uint64(path+1)
}
