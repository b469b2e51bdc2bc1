package simulation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/frontier/internal/security"
)

func testDay(d int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func equityWithReturns(t *testing.T, symbol string, values []float64, dates []time.Time) *security.Security {
	t.Helper()
	sec, err := security.NewEquity(symbol)
	require.NoError(t, err)

	history := make([]security.Return, len(values))
	for i, v := range values {
		history[i] = security.Return{Date: dates[i], Value: v}
	}
	require.NoError(t, sec.SetHistory(history))
	return sec
}

func TestEstimateCovariance_AlignsToCommonWindow(t *testing.T) {
	// Security A observes days 0-4, security B days 2-6; only the
	// overlap (days 2-4) may contribute.
	datesA := []time.Time{testDay(0), testDay(1), testDay(2), testDay(3), testDay(4)}
	datesB := []time.Time{testDay(2), testDay(3), testDay(4), testDay(5), testDay(6)}

	a := equityWithReturns(t, "A", []float64{0.10, 0.10, 0.01, 0.02, 0.03}, datesA)
	b := equityWithReturns(t, "B", []float64{0.02, 0.04, 0.06, 0.10, 0.10}, datesB)

	model, err := EstimateCovariance([]*security.Security{a, b}, FrequencyDaily)
	require.NoError(t, err)

	assert.Equal(t, 3, model.Observations)
	assert.Equal(t, testDay(2), model.Start)
	assert.Equal(t, testDay(4), model.End)
	assert.Equal(t, []string{"A", "B"}, model.Symbols)

	// Means over the overlap only.
	assert.InDelta(t, 0.02, model.Mean[0], 1e-12)
	assert.InDelta(t, 0.04, model.Mean[1], 1e-12)
}

func TestEstimateCovariance_SymmetricPositiveVariance(t *testing.T) {
	dates := []time.Time{testDay(0), testDay(1), testDay(2), testDay(3)}
	a := equityWithReturns(t, "A", []float64{0.01, -0.02, 0.03, 0.00}, dates)
	b := equityWithReturns(t, "B", []float64{0.02, -0.01, 0.02, -0.03}, dates)

	model, err := EstimateCovariance([]*security.Security{a, b}, FrequencyDaily)
	require.NoError(t, err)

	assert.InDelta(t, model.Cov.At(0, 1), model.Cov.At(1, 0), 1e-15)
	assert.Greater(t, model.Cov.At(0, 0), 0.0)
	assert.Greater(t, model.Cov.At(1, 1), 0.0)
}

func TestEstimateCovariance_InsufficientData(t *testing.T) {
	// Disjoint histories: zero overlapping observations.
	a := equityWithReturns(t, "A", []float64{0.01, 0.02}, []time.Time{testDay(0), testDay(1)})
	b := equityWithReturns(t, "B", []float64{0.01, 0.02}, []time.Time{testDay(10), testDay(11)})

	_, err := EstimateCovariance([]*security.Security{a, b}, FrequencyDaily)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestEstimateCovariance_FewerObservationsThanSecurities(t *testing.T) {
	dates := []time.Time{testDay(0), testDay(1)}
	a := equityWithReturns(t, "A", []float64{0.01, 0.02}, dates)
	b := equityWithReturns(t, "B", []float64{0.02, 0.01}, dates)
	c := equityWithReturns(t, "C", []float64{0.00, 0.03}, dates)

	_, err := EstimateCovariance([]*security.Security{a, b, c}, FrequencyDaily)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestResample_MonthlyCompounding(t *testing.T) {
	jan1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	feb1 := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

	out := Resample([]security.Return{
		{Date: jan1, Value: 0.10},
		{Date: jan2, Value: 0.10},
		{Date: feb1, Value: -0.05},
	}, FrequencyMonthly)

	require.Len(t, out, 2)
	assert.InDelta(t, 1.1*1.1-1, out[0].Value, 1e-12)
	assert.Equal(t, jan2, out[0].Date, "bucket dated at its last observation")
	assert.InDelta(t, -0.05, out[1].Value, 1e-12)
}

func TestResample_DailyPassThrough(t *testing.T) {
	in := []security.Return{{Date: testDay(0), Value: 0.01}}
	out := Resample(in, FrequencyDaily)
	assert.Equal(t, in, out)
}

func TestResample_AnnualBuckets(t *testing.T) {
	out := Resample([]security.Return{
		{Date: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), Value: 0.20},
		{Date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), Value: 0.10},
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Value: -0.10},
	}, FrequencyAnnual)

	require.Len(t, out, 2)
	assert.InDelta(t, 1.2*1.1-1, out[0].Value, 1e-12)
	assert.InDelta(t, -0.10, out[1].Value, 1e-12)
}
