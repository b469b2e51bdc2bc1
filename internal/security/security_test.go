package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewLeveragedEquity_Validation(t *testing.T) {
	_, err := NewLeveragedEquity("UPRO", 0, 0.01)
	assert.Error(t, err, "zero leverage should be rejected")

	_, err = NewLeveragedEquity("UPRO", 3, -0.01)
	assert.Error(t, err, "negative expense ratio should be rejected")

	_, err = NewLeveragedEquity("", 3, 0.01)
	assert.Error(t, err, "empty symbol should be rejected")

	sec, err := NewLeveragedEquity("UPRO", 3, 0.0091)
	require.NoError(t, err)
	assert.Equal(t, KindLeveragedEquity, sec.Kind())
	assert.Equal(t, 3.0, sec.Leverage())
}

func TestSetHistory_Ordering(t *testing.T) {
	sec, err := NewEquity("VOO")
	require.NoError(t, err)

	err = sec.SetHistory([]Return{
		{Date: day(2), Value: 0.01},
		{Date: day(1), Value: 0.02},
	})
	assert.Error(t, err, "descending dates should be rejected")

	err = sec.SetHistory([]Return{
		{Date: day(1), Value: 0.01},
		{Date: day(1), Value: 0.02},
	})
	assert.Error(t, err, "duplicate dates should be rejected")

	err = sec.SetHistory(nil)
	assert.Error(t, err, "empty history should be rejected")

	err = sec.SetHistory([]Return{
		{Date: day(1), Value: 0.01},
		{Date: day(2), Value: -0.005},
	})
	require.NoError(t, err)
	assert.True(t, sec.HasHistory())

	err = sec.SetHistory([]Return{{Date: day(3), Value: 0.01}})
	assert.Error(t, err, "history may only be set once")
}

func TestSetHistory_CopiesInput(t *testing.T) {
	sec, err := NewEquity("VOO")
	require.NoError(t, err)

	input := []Return{{Date: day(1), Value: 0.01}}
	require.NoError(t, sec.SetHistory(input))

	input[0].Value = 99

	adjusted, err := sec.AdjustedReturns()
	require.NoError(t, err)
	assert.Equal(t, 0.01, adjusted[0].Value)
}

func TestAdjustedReturns_LeverageAndDrag(t *testing.T) {
	sec, err := NewLeveragedEquity("UPRO", 3, 0.0252)
	require.NoError(t, err)

	require.NoError(t, sec.SetHistory([]Return{
		{Date: day(1), Value: 0.01},
		{Date: day(2), Value: -0.02},
	}))

	adjusted, err := sec.AdjustedReturns()
	require.NoError(t, err)
	require.Len(t, adjusted, 2)

	// r' = 3r - 0.0252/252 = 3r - 0.0001
	assert.InDelta(t, 0.03-0.0001, adjusted[0].Value, 1e-12)
	assert.InDelta(t, -0.06-0.0001, adjusted[1].Value, 1e-12)
}

func TestAdjustedReturns_PlainEquityPassThrough(t *testing.T) {
	sec, err := NewEquity("VOO")
	require.NoError(t, err)
	require.NoError(t, sec.SetHistory([]Return{{Date: day(1), Value: 0.0123}}))

	adjusted, err := sec.AdjustedReturns()
	require.NoError(t, err)
	assert.Equal(t, 0.0123, adjusted[0].Value)
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("equity")
	require.NoError(t, err)
	assert.Equal(t, KindEquity, kind)

	_, err = ParseKind("bond")
	assert.Error(t, err)
}
