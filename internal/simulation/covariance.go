package simulation

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/frontier/internal/security"
)

// CovarianceModel holds the sample mean vector and sample covariance
// matrix of the securities' per-period returns over their common
// aligned time window. Instances are immutable once built.
type CovarianceModel struct {
	Symbols      []string
	Mean         []float64
	Cov          *mat.SymDense
	Frequency    Frequency
	Observations int
	Start, End   time.Time
}

// Dim returns the number of securities in the model.
func (m *CovarianceModel) Dim() int { return len(m.Mean) }

// EstimateCovariance aligns the adjusted return series of all
// securities to their common overlapping date window, resampled to
// the requested frequency, and computes the sample mean vector and
// sample covariance matrix over that window.
//
// Fails with ErrInsufficientData when fewer than 2 overlapping
// observations remain, or fewer observations than securities, which
// would make the covariance matrix singular.
func EstimateCovariance(securities []*security.Security, freq Frequency) (*CovarianceModel, error) {
	n := len(securities)
	if n == 0 {
		return nil, fmt.Errorf("estimate covariance: no securities")
	}
	if !freq.Valid() {
		return nil, fmt.Errorf("estimate covariance: invalid frequency %q", freq)
	}

	// Per-security period returns keyed by period end date.
	series := make([]map[int64]float64, n)
	symbols := make([]string, n)
	for i, sec := range securities {
		daily, err := sec.AdjustedReturns()
		if err != nil {
			return nil, fmt.Errorf("estimate covariance: %w", err)
		}
		resampled := Resample(daily, freq)
		m := make(map[int64]float64, len(resampled))
		for _, r := range resampled {
			m[dayKey(r.Date)] = r.Value
		}
		series[i] = m
		symbols[i] = sec.Symbol()
	}

	// Intersection of observation dates across all securities.
	var keys []int64
	for k := range series[0] {
		shared := true
		for i := 1; i < n; i++ {
			if _, ok := series[i][k]; !ok {
				shared = false
				break
			}
		}
		if shared {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	obs := len(keys)
	if obs < 2 || obs < n {
		return nil, fmt.Errorf("%w: %d overlapping observations for %d securities",
			ErrInsufficientData, obs, n)
	}

	data := mat.NewDense(obs, n, nil)
	for row, k := range keys {
		for col := 0; col < n; col++ {
			data.Set(row, col, series[col][k])
		}
	}

	mean := make([]float64, n)
	col := make([]float64, obs)
	for j := 0; j < n; j++ {
		mat.Col(col, j, data)
		mean[j] = stat.Mean(col, nil)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	return &CovarianceModel{
		Symbols:      symbols,
		Mean:         mean,
		Cov:          &cov,
		Frequency:    freq,
		Observations: obs,
		Start:        time.Unix(keys[0], 0).UTC(),
		End:          time.Unix(keys[obs-1], 0).UTC(),
	}, nil
}

// Resample compounds a daily return series into the period returns of
// the requested frequency. Daily input passes through unchanged; for
// coarser frequencies each calendar bucket compounds to a single
// observation dated at the bucket's last trading day.
func Resample(daily []security.Return, freq Frequency) []security.Return {
	if freq == FrequencyDaily || len(daily) == 0 {
		return daily
	}

	var out []security.Return
	curKey := bucketKey(daily[0].Date, freq)
	growth := 1.0
	last := daily[0].Date
	for _, r := range daily {
		k := bucketKey(r.Date, freq)
		if k != curKey {
			out = append(out, security.Return{Date: last, Value: growth - 1})
			curKey = k
			growth = 1.0
		}
		growth *= 1 + r.Value
		last = r.Date
	}
	out = append(out, security.Return{Date: last, Value: growth - 1})
	return out
}

// bucketKey maps a date onto its calendar bucket for the frequency.
func bucketKey(d time.Time, freq Frequency) int {
	y, m, _ := d.Date()
	switch freq {
	case FrequencyMonthly:
		return y*12 + int(m) - 1
	case FrequencyQuarterly:
		return y*4 + (int(m)-1)/3
	default: // annual
		return y
	}
}

func dayKey(d time.Time) int64 {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC).Unix()
}
