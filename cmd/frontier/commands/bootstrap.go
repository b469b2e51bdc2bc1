package commands

import (
	"context"
	"fmt"

	"github.com/wonny/frontier/internal/market"
	"github.com/wonny/frontier/internal/portfolio"
	"github.com/wonny/frontier/internal/simconfig"
	"github.com/wonny/frontier/pkg/config"
	"github.com/wonny/frontier/pkg/database"
	"github.com/wonny/frontier/pkg/logger"
)

// app bundles the pieces every command starts from.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *database.DB // nil when no database is configured
	loader *market.Loader
}

// close releases the app's resources.
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// bootstrap loads the environment config, logger and market data
// loader. The database cache is optional; the provider client is
// created only when an API key is configured.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	var db *database.DB
	var repo *market.Repository
	if cfg.Database.Enabled() {
		db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		repo = market.NewRepository(db, log)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Connected to return cache database")
	}

	var client *market.Client
	if cfg.AlphaVantage.APIKey != "" {
		client = market.NewClient(cfg, log)
	}

	return &app{
		cfg:    cfg,
		logger: log,
		db:     db,
		loader: market.NewLoader(client, repo, log),
	}, nil
}

// loadPortfolio reads the portfolio definition, hydrates return
// history and assembles the portfolio. It returns the parsed config
// and its hash alongside.
func loadPortfolio(ctx context.Context, a *app) (*portfolio.Portfolio, *simconfig.Config, string, error) {
	cfg, _, err := simconfig.LoadDefault(portfolioFile)
	if err != nil {
		return nil, nil, "", err
	}

	hash, err := simconfig.Hash(cfg)
	if err != nil {
		return nil, nil, "", fmt.Errorf("hash portfolio config: %w", err)
	}

	securities, err := cfg.BuildSecurities()
	if err != nil {
		return nil, nil, "", err
	}

	fromYear := cfg.General.PriceStartYear
	if fromYear == 0 {
		fromYear = a.cfg.AlphaVantage.StartYear
	}
	if err := a.loader.Hydrate(ctx, securities, fromYear); err != nil {
		return nil, nil, "", err
	}

	var weights []float64
	if len(cfg.Portfolio.Weights) > 0 {
		weights = cfg.Portfolio.Weights
	}

	p, err := portfolio.New(cfg.Portfolio.Name, securities, weights,
		cfg.Portfolio.Value, cfg.General.RiskFreeRate, cfg.General.ConfidenceLevel)
	if err != nil {
		return nil, nil, "", err
	}

	return p, cfg, hash, nil
}
