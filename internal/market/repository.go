package market

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/frontier/internal/security"
	"github.com/wonny/frontier/pkg/database"
	"github.com/wonny/frontier/pkg/logger"
)

// Repository caches daily return series in PostgreSQL so repeated
// runs do not re-fetch from the provider.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a return cache backed by the given database.
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// EnsureSchema creates the cache table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS market_returns (
			symbol     TEXT             NOT NULL,
			trade_date DATE             NOT NULL,
			ret        DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, trade_date)
		)`)
	if err != nil {
		return fmt.Errorf("ensure market_returns schema: %w", err)
	}
	return nil
}

// SaveReturns stores a return series for a symbol. Existing rows are
// left untouched, so re-saving an overlapping series is safe.
func (r *Repository) SaveReturns(ctx context.Context, symbol string, returns []security.Return) error {
	if len(returns) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, ret := range returns {
		batch.Queue(`
			INSERT INTO market_returns (symbol, trade_date, ret)
			VALUES ($1, $2, $3)
			ON CONFLICT (symbol, trade_date) DO NOTHING`,
			symbol, ret.Date, ret.Value)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for range returns {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save returns for %s: %w", symbol, err)
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(returns),
	}).Debug("Saved returns to cache")

	return nil
}

// GetReturns loads the cached return series for a symbol from
// fromYear onwards, ascending by date. An empty result is not an
// error; it means the cache has nothing for this symbol.
func (r *Repository) GetReturns(ctx context.Context, symbol string, fromYear int) ([]security.Return, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT trade_date, ret
		FROM market_returns
		WHERE symbol = $1 AND trade_date >= make_date($2, 1, 1)
		ORDER BY trade_date`,
		symbol, fromYear)
	if err != nil {
		return nil, fmt.Errorf("load returns for %s: %w", symbol, err)
	}
	defer rows.Close()

	var returns []security.Return
	for rows.Next() {
		var ret security.Return
		if err := rows.Scan(&ret.Date, &ret.Value); err != nil {
			return nil, fmt.Errorf("scan return for %s: %w", symbol, err)
		}
		returns = append(returns, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load returns for %s: %w", symbol, err)
	}

	return returns, nil
}
