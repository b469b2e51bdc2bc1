// Package simconfig defines the YAML portfolio definition file: the
// securities, target weights, and run parameters a simulation or
// frontier search starts from.
package simconfig

import (
	"fmt"

	"github.com/wonny/frontier/internal/security"
	"github.com/wonny/frontier/internal/simulation"
)

// Config is the full portfolio definition.
type Config struct {
	Meta       Meta             `yaml:"meta" json:"meta"`
	General    General          `yaml:"general" json:"general"`
	Portfolio  PortfolioConfig  `yaml:"portfolio" json:"portfolio"`
	Securities []SecurityConfig `yaml:"securities" json:"securities"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Frontier   FrontierConfig   `yaml:"frontier" json:"frontier"`
}

// Meta identifies a config revision.
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// General holds parameters shared by every run.
type General struct {
	RiskFreeRate    float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	ConfidenceLevel float64 `yaml:"conf_level" json:"conf_level"`
	PriceStartYear  int     `yaml:"price_start_year" json:"price_start_year"`
}

// PortfolioConfig names the portfolio and its target allocation.
// Weights may be omitted for equal weighting.
type PortfolioConfig struct {
	Name    string    `yaml:"name" json:"name"`
	Value   float64   `yaml:"value" json:"value"`
	Weights []float64 `yaml:"weights" json:"weights"`
}

// SecurityConfig describes one security. Leverage and ExpenseRatio are
// only meaningful for kind "leveraged_equity".
type SecurityConfig struct {
	Symbol       string  `yaml:"symbol" json:"symbol"`
	Kind         string  `yaml:"kind" json:"kind"`
	Leverage     float64 `yaml:"leverage" json:"leverage"`
	ExpenseRatio float64 `yaml:"expense_ratio" json:"expense_ratio"`
}

// SimulationConfig holds the default run parameters.
type SimulationConfig struct {
	NumSims     int    `yaml:"num_sims" json:"num_sims"`
	Years       int    `yaml:"years" json:"years"`
	Frequency   string `yaml:"frequency" json:"frequency"`
	Rebalancing bool   `yaml:"rebalancing" json:"rebalancing"`
	Seed        int64  `yaml:"seed" json:"seed"`
}

// FrontierConfig holds the default frontier search parameters.
type FrontierConfig struct {
	MinWeight int `yaml:"min_weight" json:"min_weight"`
	MaxWeight int `yaml:"max_weight" json:"max_weight"`
	Increment int `yaml:"weight_increment" json:"weight_increment"`
	NumSims   int `yaml:"num_sims" json:"num_sims"`
	TopN      int `yaml:"top_n" json:"top_n"`
}

// Validate checks structural constraints. Weight semantics are checked
// again by the portfolio itself; this catches config mistakes early
// with file-oriented messages.
func Validate(cfg *Config) error {
	if len(cfg.Securities) == 0 {
		return fmt.Errorf("securities: at least one security is required")
	}
	seen := make(map[string]bool, len(cfg.Securities))
	for i, sec := range cfg.Securities {
		if sec.Symbol == "" {
			return fmt.Errorf("securities[%d]: symbol is required", i)
		}
		if seen[sec.Symbol] {
			return fmt.Errorf("securities[%d]: duplicate symbol %s", i, sec.Symbol)
		}
		seen[sec.Symbol] = true
		if _, err := security.ParseKind(sec.Kind); err != nil {
			return fmt.Errorf("securities[%d]: %w", i, err)
		}
	}

	if cfg.Portfolio.Value <= 0 {
		return fmt.Errorf("portfolio.value: must be positive, got %v", cfg.Portfolio.Value)
	}
	if len(cfg.Portfolio.Weights) != 0 && len(cfg.Portfolio.Weights) != len(cfg.Securities) {
		return fmt.Errorf("portfolio.weights: got %d weights for %d securities",
			len(cfg.Portfolio.Weights), len(cfg.Securities))
	}

	if cfg.General.ConfidenceLevel <= 0 || cfg.General.ConfidenceLevel >= 1 {
		return fmt.Errorf("general.conf_level: must be in (0,1), got %v", cfg.General.ConfidenceLevel)
	}
	if cfg.General.PriceStartYear <= 0 {
		return fmt.Errorf("general.price_start_year: must be positive, got %d", cfg.General.PriceStartYear)
	}

	if cfg.Simulation.NumSims <= 0 {
		return fmt.Errorf("simulation.num_sims: must be positive, got %d", cfg.Simulation.NumSims)
	}
	if cfg.Simulation.Years <= 0 {
		return fmt.Errorf("simulation.years: must be positive, got %d", cfg.Simulation.Years)
	}
	if _, err := simulation.ParseFrequency(cfg.Simulation.Frequency); err != nil {
		return fmt.Errorf("simulation.frequency: %w", err)
	}

	if cfg.Frontier.Increment <= 0 {
		return fmt.Errorf("frontier.weight_increment: must be positive, got %d", cfg.Frontier.Increment)
	}
	if cfg.Frontier.MinWeight < 0 || cfg.Frontier.MaxWeight > 100 || cfg.Frontier.MinWeight > cfg.Frontier.MaxWeight {
		return fmt.Errorf("frontier: bounds [%d,%d] out of range",
			cfg.Frontier.MinWeight, cfg.Frontier.MaxWeight)
	}
	if cfg.Frontier.NumSims <= 0 {
		return fmt.Errorf("frontier.num_sims: must be positive, got %d", cfg.Frontier.NumSims)
	}
	if cfg.Frontier.TopN <= 0 {
		return fmt.Errorf("frontier.top_n: must be positive, got %d", cfg.Frontier.TopN)
	}

	return nil
}

// BuildSecurities constructs the security objects in config order.
func (c *Config) BuildSecurities() ([]*security.Security, error) {
	out := make([]*security.Security, 0, len(c.Securities))
	for i, sc := range c.Securities {
		kind, err := security.ParseKind(sc.Kind)
		if err != nil {
			return nil, fmt.Errorf("securities[%d]: %w", i, err)
		}

		var sec *security.Security
		switch kind {
		case security.KindLeveragedEquity:
			sec, err = security.NewLeveragedEquity(sc.Symbol, sc.Leverage, sc.ExpenseRatio)
		default:
			sec, err = security.NewEquity(sc.Symbol)
		}
		if err != nil {
			return nil, fmt.Errorf("securities[%d]: %w", i, err)
		}
		out = append(out, sec)
	}
	return out, nil
}
