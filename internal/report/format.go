package report

import (
	"fmt"
	"strings"
)

// FormatPct renders a fractional rate as a percentage, e.g. 0.0731
// becomes "7.31%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatMoney renders a value with thousands separators and two
// decimals, e.g. 1234567.891 becomes "1,234,567.89".
func FormatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(fracPart)
	return b.String()
}
