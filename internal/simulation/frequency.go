package simulation

import "fmt"

// Frequency is the sampling frequency of simulated time steps.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

// ParseFrequency converts a string to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyDaily, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("unknown frequency: %q (want daily|monthly|quarterly|annual)", s)
	}
}

// StepsPerYear returns the fixed number of simulated steps per year.
func (f Frequency) StepsPerYear() int {
	switch f {
	case FrequencyDaily:
		return 252
	case FrequencyMonthly:
		return 12
	case FrequencyQuarterly:
		return 4
	case FrequencyAnnual:
		return 1
	default:
		return 0
	}
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f.StepsPerYear() > 0
}
