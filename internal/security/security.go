// Package security models the assets a portfolio can hold.
//
// Securities form a closed set of tagged variants (plain equity,
// leveraged equity) sharing one capability: an ordered historical
// return series with the variant's leverage and cost drag applied.
// The engine never needs anything else from an asset.
package security

import (
	"fmt"
	"sort"
	"time"
)

// TradingDaysPerYear is the daily sampling convention used for the
// per-period expense drag.
const TradingDaysPerYear = 252

// Kind identifies a security variant.
type Kind string

const (
	KindEquity          Kind = "equity"
	KindLeveragedEquity Kind = "leveraged_equity"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindEquity, KindLeveragedEquity:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown security kind: %q", s)
	}
}

// Return is one observation of a daily simple return.
type Return struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Security is one asset with its daily return history.
// The history is attached once and is immutable afterwards.
type Security struct {
	symbol       string
	kind         Kind
	leverage     float64 // 1.0 for plain equity
	expenseRatio float64 // annual cost drag
	history      []Return
}

// NewEquity creates a plain (unleveraged, no-cost) equity security.
func NewEquity(symbol string) (*Security, error) {
	if symbol == "" {
		return nil, fmt.Errorf("security symbol must not be empty")
	}
	return &Security{symbol: symbol, kind: KindEquity, leverage: 1.0}, nil
}

// NewLeveragedEquity creates a daily-reset leveraged equity security.
// Each daily return of the underlying is multiplied by the leverage
// factor, and the annual expense ratio is deducted pro rata per
// trading day.
func NewLeveragedEquity(symbol string, leverage, expenseRatio float64) (*Security, error) {
	if symbol == "" {
		return nil, fmt.Errorf("security symbol must not be empty")
	}
	if leverage <= 0 {
		return nil, fmt.Errorf("leverage must be positive, got %v", leverage)
	}
	if expenseRatio < 0 {
		return nil, fmt.Errorf("expense ratio must not be negative, got %v", expenseRatio)
	}
	return &Security{
		symbol:       symbol,
		kind:         KindLeveragedEquity,
		leverage:     leverage,
		expenseRatio: expenseRatio,
	}, nil
}

// Symbol returns the security's identifier.
func (s *Security) Symbol() string { return s.symbol }

// Kind returns the security variant.
func (s *Security) Kind() Kind { return s.kind }

// Leverage returns the leverage factor (1.0 for plain equity).
func (s *Security) Leverage() float64 { return s.leverage }

// ExpenseRatio returns the annual cost drag.
func (s *Security) ExpenseRatio() float64 { return s.expenseRatio }

// HasHistory reports whether a return history has been attached.
func (s *Security) HasHistory() bool { return len(s.history) > 0 }

// SetHistory attaches the underlying daily return series. It may be
// called once; the series must be non-empty and strictly ascending by
// date. The slice is copied.
func (s *Security) SetHistory(returns []Return) error {
	if s.history != nil {
		return fmt.Errorf("security %s: history already set", s.symbol)
	}
	if len(returns) == 0 {
		return fmt.Errorf("security %s: empty return history", s.symbol)
	}
	if !sort.SliceIsSorted(returns, func(i, j int) bool {
		return returns[i].Date.Before(returns[j].Date)
	}) {
		return fmt.Errorf("security %s: return history not ascending by date", s.symbol)
	}
	for i := 1; i < len(returns); i++ {
		if returns[i].Date.Equal(returns[i-1].Date) {
			return fmt.Errorf("security %s: duplicate date %s in history",
				s.symbol, returns[i].Date.Format("2006-01-02"))
		}
	}

	s.history = make([]Return, len(returns))
	copy(s.history, returns)
	return nil
}

// AdjustedReturns returns the daily return series with the variant's
// leverage and expense drag applied:
//
//	r' = leverage*r - expenseRatio/252
//
// A fresh slice is returned on every call.
func (s *Security) AdjustedReturns() ([]Return, error) {
	if len(s.history) == 0 {
		return nil, fmt.Errorf("security %s: no history attached", s.symbol)
	}

	dailyDrag := s.expenseRatio / TradingDaysPerYear
	out := make([]Return, len(s.history))
	for i, r := range s.history {
		out[i] = Return{
			Date:  r.Date,
			Value: s.leverage*r.Value - dailyDrag,
		}
	}
	return out, nil
}
