package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/frontier/internal/metrics"
	"github.com/wonny/frontier/internal/simulation"
	"github.com/wonny/frontier/pkg/logger"
)

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "7.31%", FormatPct(0.0731))
	assert.Equal(t, "-2.50%", FormatPct(-0.025))
	assert.Equal(t, "0.00%", FormatPct(0))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatMoney(1234567.891))
	assert.Equal(t, "999.99", FormatMoney(999.99))
	assert.Equal(t, "-12,000.00", FormatMoney(-12000))
	assert.Equal(t, "0.00", FormatMoney(0))
}

func TestWriteSimulation(t *testing.T) {
	res := &simulation.Result{
		RunID:   "test-run",
		RunDate: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Config: simulation.RunConfig{
			Simulations: 3,
			Years:       1,
			Frequency:   simulation.FrequencyAnnual,
		},
		Weights: []float64{0.6, 0.4},
		Seed:    42,
		ValuePaths: [][]float64{
			{100, 110},
			{100, 95},
			{100, 120},
		},
	}
	res.Summary = metrics.Reduce(res.ValuePaths, 1, 0.02, 0.95)

	writer := NewWriter(t.TempDir(), logger.NewNop())
	dir, err := writer.WriteSimulation("Test Portfolio", []string{"VOO", "UPRO"}, "abc123", res)
	require.NoError(t, err)

	body, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "Test Portfolio"))
	assert.True(t, strings.Contains(text, "test-run"))
	assert.True(t, strings.Contains(text, "abc123"))
	assert.True(t, strings.Contains(text, "VOO"))
	assert.True(t, strings.Contains(text, "CAGR"))
}

func TestFormatSummary_UndefinedRatios(t *testing.T) {
	// All paths identical: zero risk, Sharpe and Sortino undefined.
	paths := [][]float64{{100, 110}, {100, 110}}
	s := metrics.Reduce(paths, 1, 0.02, 0.95)

	out := FormatSummary(s)
	assert.True(t, strings.Contains(out, "n/a"))
}
