package market

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/frontier/internal/security"
	"github.com/wonny/frontier/pkg/logger"
)

// fetchConcurrency bounds parallel symbol hydration. The provider
// limiter already serializes outbound requests, so this mostly bounds
// cache reads.
const fetchConcurrency = 4

// Loader attaches return history to securities, preferring the cache
// and falling back to the provider. The repository may be nil when no
// database is configured.
type Loader struct {
	client *Client
	repo   *Repository
	logger *logger.Logger
}

// NewLoader creates a loader. Pass a nil repository to run without a
// cache.
func NewLoader(client *Client, repo *Repository, log *logger.Logger) *Loader {
	return &Loader{client: client, repo: repo, logger: log}
}

// Hydrate loads return history for every security that does not have
// one yet. Fetched series are written back to the cache when one is
// configured.
func (l *Loader) Hydrate(ctx context.Context, securities []*security.Security, fromYear int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for _, sec := range securities {
		if sec.HasHistory() {
			continue
		}
		sec := sec
		g.Go(func() error {
			return l.hydrateOne(gctx, sec, fromYear)
		})
	}

	return g.Wait()
}

func (l *Loader) hydrateOne(ctx context.Context, sec *security.Security, fromYear int) error {
	symbol := sec.Symbol()

	if l.repo != nil {
		cached, err := l.repo.GetReturns(ctx, symbol, fromYear)
		if err != nil {
			l.logger.WithError(err).WithField("symbol", symbol).Warn("Cache read failed, falling back to provider")
		} else if len(cached) > 0 {
			l.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
				"count":  len(cached),
			}).Info("Loaded returns from cache")
			return sec.SetHistory(cached)
		}
	}

	if l.client == nil {
		return fmt.Errorf("hydrate %s: no cached history and no provider configured", symbol)
	}

	fetched, err := l.client.FetchDailyReturns(ctx, symbol, fromYear)
	if err != nil {
		return err
	}

	if l.repo != nil {
		if err := l.repo.SaveReturns(ctx, symbol, fetched); err != nil {
			l.logger.WithError(err).WithField("symbol", symbol).Warn("Cache write failed")
		}
	}

	l.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(fetched),
	}).Info("Fetched returns from provider")

	return sec.SetHistory(fetched)
}
