// Package market supplies historical return series to the simulation
// core: a rate-limited Alpha Vantage client, an optional PostgreSQL
// cache, and a loader that hydrates securities from either.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/frontier/internal/security"
	"github.com/wonny/frontier/pkg/config"
	"github.com/wonny/frontier/pkg/httputil"
	"github.com/wonny/frontier/pkg/logger"
)

// Client fetches daily adjusted price history from Alpha Vantage.
// The free tier allows 5 requests per minute; every request waits on
// the token bucket before going out.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
}

// NewClient creates a rate-limited Alpha Vantage client from config.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.AlphaVantage.RequestsPerMinute)), 1)

	return &Client{
		httpClient: httputil.NewWithTimeout(log, 60*time.Second).WithRateLimiter(limiter),
		logger:     log,
		apiKey:     cfg.AlphaVantage.APIKey,
		baseURL:    cfg.AlphaVantage.BaseURL,
	}
}

// dailyResponse mirrors the TIME_SERIES_DAILY_ADJUSTED payload.
type dailyResponse struct {
	TimeSeries map[string]map[string]string `json:"Time Series (Daily)"`

	// Alpha Vantage reports problems inside a 200 response.
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// FetchDailyReturns fetches the full adjusted daily history for a
// symbol and converts it to simple returns, keeping observations from
// fromYear onwards.
func (c *Client) FetchDailyReturns(ctx context.Context, symbol string, fromYear int) ([]security.Return, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Get(ctx, c.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", symbol, err)
	}

	returns, err := parseDailyReturns(body, fromYear)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(returns),
	}).Debug("Fetched daily returns")

	return returns, nil
}

// parseDailyReturns converts an Alpha Vantage daily payload into an
// ascending series of simple returns computed from adjusted closes.
func parseDailyReturns(body []byte, fromYear int) ([]security.Return, error) {
	var payload dailyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch {
	case payload.ErrorMessage != "":
		return nil, fmt.Errorf("provider error: %s", payload.ErrorMessage)
	case payload.Note != "":
		return nil, fmt.Errorf("provider throttled: %s", payload.Note)
	case payload.Information != "":
		return nil, fmt.Errorf("provider notice: %s", payload.Information)
	case len(payload.TimeSeries) == 0:
		return nil, fmt.Errorf("empty time series")
	}

	type observation struct {
		date  time.Time
		close float64
	}

	obs := make([]observation, 0, len(payload.TimeSeries))
	for dateStr, fields := range payload.TimeSeries {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		closeStr, ok := fields["5. adjusted close"]
		if !ok {
			continue
		}
		closePrice, err := strconv.ParseFloat(closeStr, 64)
		if err != nil || closePrice <= 0 {
			continue
		}

		obs = append(obs, observation{date: date, close: closePrice})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].date.Before(obs[j].date) })

	var returns []security.Return
	for i := 1; i < len(obs); i++ {
		if obs[i].date.Year() < fromYear {
			continue
		}
		returns = append(returns, security.Return{
			Date:  obs[i].date,
			Value: obs[i].close/obs[i-1].close - 1,
		})
	}
	if len(returns) == 0 {
		return nil, fmt.Errorf("no observations from year %d", fromYear)
	}

	return returns, nil
}
