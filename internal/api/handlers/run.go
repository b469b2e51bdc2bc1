// Package handlers implements the HTTP API handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/frontier/internal/frontier"
	"github.com/wonny/frontier/internal/market"
	"github.com/wonny/frontier/internal/portfolio"
	"github.com/wonny/frontier/internal/simconfig"
	"github.com/wonny/frontier/internal/simulation"
	"github.com/wonny/frontier/pkg/logger"
)

// maxRequestSims caps per-request work so one call cannot occupy the
// server indefinitely.
const maxRequestSims = 100_000

// RunHandler serves simulation and frontier requests.
type RunHandler struct {
	loader         *market.Loader
	priceStartYear int
	logger         *logger.Logger
}

// NewRunHandler creates a run handler.
func NewRunHandler(loader *market.Loader, priceStartYear int, log *logger.Logger) *RunHandler {
	return &RunHandler{
		loader:         loader,
		priceStartYear: priceStartYear,
		logger:         log,
	}
}

// SecurityRequest describes one security in a run request.
type SecurityRequest struct {
	Symbol       string  `json:"symbol"`
	Kind         string  `json:"kind"`
	Leverage     float64 `json:"leverage,omitempty"`
	ExpenseRatio float64 `json:"expense_ratio,omitempty"`
}

// SimulateRequest is the POST /api/v1/simulate body.
type SimulateRequest struct {
	Name         string            `json:"name"`
	Securities   []SecurityRequest `json:"securities"`
	Weights      []float64         `json:"weights,omitempty"`
	Value        float64           `json:"value"`
	RiskFreeRate float64           `json:"risk_free_rate"`
	ConfLevel    float64           `json:"conf_level"`

	Simulations int    `json:"simulations"`
	Years       int    `json:"years"`
	Frequency   string `json:"frequency"`
	Rebalancing bool   `json:"rebalancing"`
	Seed        int64  `json:"seed,omitempty"`
}

// Simulate runs one Monte Carlo simulation.
// POST /api/v1/simulate
func (h *RunHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Simulations > maxRequestSims {
		respondError(w, http.StatusBadRequest, "Too many simulations requested")
		return
	}

	p, err := h.buildPortfolio(r, req.Name, req.Securities, req.Weights, req.Value, req.RiskFreeRate, req.ConfLevel)
	if err != nil {
		respondRunError(w, h.logger, err)
		return
	}

	freq, err := simulation.ParseFrequency(req.Frequency)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := simulation.Run(ctx, p, simulation.RunConfig{
		Simulations: req.Simulations,
		Years:       req.Years,
		Frequency:   freq,
		Rebalancing: req.Rebalancing,
		Seed:        req.Seed,
	})
	if err != nil {
		respondRunError(w, h.logger, err)
		return
	}

	// Result marshals without the raw value paths.
	respondJSON(w, http.StatusOK, res)
}

// FrontierRequest is the POST /api/v1/frontier body.
type FrontierRequest struct {
	SimulateRequest

	MinWeight int `json:"min_weight"`
	MaxWeight int `json:"max_weight"`
	Increment int `json:"weight_increment"`
	TopN      int `json:"top_n"`
}

// Frontier runs an efficient frontier search.
// POST /api/v1/frontier
func (h *RunHandler) Frontier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FrontierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Simulations > maxRequestSims {
		respondError(w, http.StatusBadRequest, "Too many simulations requested")
		return
	}

	p, err := h.buildPortfolio(r, req.Name, req.Securities, req.Weights, req.Value, req.RiskFreeRate, req.ConfLevel)
	if err != nil {
		respondRunError(w, h.logger, err)
		return
	}

	freq, err := simulation.ParseFrequency(req.Frequency)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := frontier.Search(ctx, p, frontier.Config{
		MinWeight:   req.MinWeight,
		MaxWeight:   req.MaxWeight,
		Increment:   req.Increment,
		NumSims:     req.Simulations,
		Years:       req.Years,
		Frequency:   freq,
		Rebalancing: req.Rebalancing,
		Seed:        req.Seed,
		TopN:        req.TopN,
	})
	if err != nil {
		respondRunError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// buildPortfolio validates the security list, hydrates return history
// and assembles the portfolio.
func (h *RunHandler) buildPortfolio(r *http.Request, name string, secs []SecurityRequest, weights []float64, value, riskFree, confLevel float64) (*portfolio.Portfolio, error) {
	cfgSecs := make([]simconfig.SecurityConfig, len(secs))
	for i, s := range secs {
		cfgSecs[i] = simconfig.SecurityConfig{
			Symbol:       s.Symbol,
			Kind:         s.Kind,
			Leverage:     s.Leverage,
			ExpenseRatio: s.ExpenseRatio,
		}
	}

	cfg := simconfig.Config{Securities: cfgSecs}
	securities, err := cfg.BuildSecurities()
	if err != nil {
		return nil, err
	}

	if err := h.loader.Hydrate(r.Context(), securities, h.priceStartYear); err != nil {
		return nil, err
	}

	return portfolio.New(name, securities, weights, value, riskFree, confLevel)
}

// respondRunError maps the engine error taxonomy to HTTP statuses.
func respondRunError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, portfolio.ErrInvalidWeights),
		errors.Is(err, frontier.ErrEmptySearchSpace):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, simulation.ErrInsufficientData),
		errors.Is(err, simulation.ErrNonPositiveSemidefinite):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.WithError(err).Error("Run failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
