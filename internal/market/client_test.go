package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wonny/frontier/pkg/httputil"
	"github.com/wonny/frontier/pkg/logger"
)

const dailyPayload = `{
  "Meta Data": {"2. Symbol": "VOO"},
  "Time Series (Daily)": {
    "2024-01-05": {"5. adjusted close": "103.0"},
    "2024-01-04": {"5. adjusted close": "100.0"},
    "2024-01-03": {"5. adjusted close": "101.0"},
    "2023-12-29": {"5. adjusted close": "100.0"}
  }
}`

func TestParseDailyReturns(t *testing.T) {
	returns, err := parseDailyReturns([]byte(dailyPayload), 2024)
	require.NoError(t, err)
	require.Len(t, returns, 3, "first observation has no prior close within the series")

	// Ascending by date.
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), returns[0].Date)
	assert.InDelta(t, 101.0/100.0-1, returns[0].Value, 1e-12)
	assert.InDelta(t, 100.0/101.0-1, returns[1].Value, 1e-12)
	assert.InDelta(t, 103.0/100.0-1, returns[2].Value, 1e-12)
}

func TestParseDailyReturns_FromYearFilter(t *testing.T) {
	returns, err := parseDailyReturns([]byte(dailyPayload), 2025)
	require.Error(t, err, "no observations survive the year filter")
	assert.Nil(t, returns)
}

func TestParseDailyReturns_ProviderErrors(t *testing.T) {
	cases := []string{
		`{"Error Message": "Invalid API call"}`,
		`{"Note": "API call frequency exceeded"}`,
		`{"Information": "premium endpoint"}`,
		`{"Time Series (Daily)": {}}`,
		`not json`,
	}
	for _, body := range cases {
		_, err := parseDailyReturns([]byte(body), 2020)
		assert.Error(t, err, "payload %q should fail", body)
	}
}

func TestFetchDailyReturns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY_ADJUSTED", r.URL.Query().Get("function"))
		assert.Equal(t, "VOO", r.URL.Query().Get("symbol"))
		assert.Equal(t, "full", r.URL.Query().Get("outputsize"))
		w.Write([]byte(dailyPayload))
	}))
	defer srv.Close()

	log := logger.NewNop()
	client := &Client{
		httpClient: httputil.NewWithTimeout(log, 5*time.Second).
			WithRateLimiter(rate.NewLimiter(rate.Inf, 1)),
		logger:  log,
		apiKey:  "test-key",
		baseURL: srv.URL,
	}

	returns, err := client.FetchDailyReturns(context.Background(), "VOO", 2024)
	require.NoError(t, err)
	assert.Len(t, returns, 3)
}

func TestFetchDailyReturns_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	log := logger.NewNop()
	client := &Client{
		httpClient: httputil.NewWithTimeout(log, 5*time.Second),
		logger:     log,
		apiKey:     "test-key",
		baseURL:    srv.URL,
	}

	_, err := client.FetchDailyReturns(context.Background(), "VOO", 2024)
	assert.Error(t, err)
}
