package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Client defines the interface for fetching end-of-day price data from the
// market data provider. This interface enables dependency injection and
// testing with mock implementations.
type Client interface {
	FetchDailyCloses(ctx context.Context, token, symbol string, startDate, endDate time.Time) ([]ClosePrice, error)
}

// EODClient provides methods for fetching end-of-day price data from the
// provider's REST API. Calls pass through a client-side rate limiter and a
// circuit breaker so a degraded provider cannot soak up the sync job.
type EODClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewEODClient creates a new provider client against the given base URL.
// The breaker opens after three consecutive failures and probes again after
// a minute; the limiter allows 10 requests per second with matching burst.
func NewEODClient(baseURL string) *EODClient {
	settings := gobreaker.Settings{Name: "marketdata"}
	settings.Interval = 60 * time.Second
	settings.Timeout = 60 * time.Second
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}

	return &EODClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// FetchDailyCloses fetches daily close prices for a symbol within a specific
// date range, both bounds inclusive. Splits are already adjusted for in the
// returned closes.
//
// Parameters:
//   - token: provider API token (plaintext; decrypted by the caller)
//   - symbol: provider ticker (e.g., "VWRL.AS", "AAPL.US")
//   - startDate: beginning of date range (inclusive)
//   - endDate: end of date range (inclusive)
//
// Returns the parsed closes oldest first, or an error if the request fails,
// the breaker is open, or the response cannot be parsed.
func (c *EODClient) FetchDailyCloses(ctx context.Context, token, symbol string, startDate, endDate time.Time) ([]ClosePrice, error) {
	if token == "" || symbol == "" {
		return nil, fmt.Errorf("token and symbol are required")
	}

	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		c.baseURL,
		url.PathEscape(symbol),
		url.QueryEscape(token),
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"),
	)

	result, err := c.breaker.Execute(func() (any, error) {
		return c.queryProvider(ctx, addr)
	})
	if err != nil {
		return nil, err
	}

	bars := result.([]Bar)
	closes := make([]ClosePrice, 0, len(bars))

	for _, bar := range bars {
		day, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse provider date %q: %w", bar.Date, err)
		}

		// Indices carry no adjusted close; fall back to the raw one.
		price := bar.AdjustedClose
		if price == 0 {
			price = bar.Close
		}

		closes = append(closes, ClosePrice{Date: day.UTC(), Close: price})
	}

	return closes, nil
}

// queryProvider is an internal helper that executes HTTP requests to the
// provider API. It waits for the rate limiter, performs the request, and
// parses the JSON body into bars.
func (c *EODClient) queryProvider(ctx context.Context, addr string) ([]Bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var bars []Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}

	return bars, nil
}
