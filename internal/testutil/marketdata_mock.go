package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/marketdata"
)

// MockMarketDataClient is a mock implementation of marketdata.Client for
// testing. It returns predefined close data instead of calling the provider.
// Calls are serialized, since a bulk sync fetches symbols concurrently.
type MockMarketDataClient struct {
	mu sync.Mutex

	// MockCloses is the close series to return from FetchDailyCloses
	MockCloses []marketdata.ClosePrice
	// MockError is the error to return from FetchDailyCloses
	MockError error
	// QueryCount tracks how many times FetchDailyCloses was called
	QueryCount int
	// LastToken, LastSymbol, LastStart and LastEnd record the arguments of
	// the most recent call, for assertions on the requested sync window
	LastToken  string
	LastSymbol string
	LastStart  time.Time
	LastEnd    time.Time
}

// NewMockMarketDataClient creates a new mock client with default test data:
// 5 consecutive days of closes starting 2024-01-01.
func NewMockMarketDataClient() *MockMarketDataClient {
	return &MockMarketDataClient{
		MockCloses: CreateMockCloses(5),
		MockError:  nil,
		QueryCount: 0,
	}
}

// FetchDailyCloses mocks the provider query with predefined test data.
// It records the call arguments and returns the configured MockCloses and
// MockError.
func (m *MockMarketDataClient) FetchDailyCloses(_ context.Context, token, symbol string, startDate, endDate time.Time) ([]marketdata.ClosePrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	m.LastToken = token
	m.LastSymbol = symbol
	m.LastStart = startDate
	m.LastEnd = endDate

	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockCloses, nil
}

// WithError configures the mock to return the specified error.
func (m *MockMarketDataClient) WithError(err error) *MockMarketDataClient {
	m.MockError = err
	return m
}

// WithCloses configures the mock to return the specified close series.
func (m *MockMarketDataClient) WithCloses(closes []marketdata.ClosePrice) *MockMarketDataClient {
	m.MockCloses = closes
	return m
}

// WithEmptyCloses configures the mock to return no data.
func (m *MockMarketDataClient) WithEmptyCloses() *MockMarketDataClient {
	m.MockCloses = []marketdata.ClosePrice{}
	return m
}

// CreateMockCloses creates `days` consecutive daily closes starting
// 2024-01-01. Prices start at 100.0 and step 0.5 per day.
func CreateMockCloses(days int) []marketdata.ClosePrice {
	closes := make([]marketdata.ClosePrice, days)
	start := Date(2024, 1, 1)

	for i := 0; i < days; i++ {
		closes[i] = marketdata.ClosePrice{
			Date:  start.AddDate(0, 0, i),
			Close: 100.0 + float64(i)*0.5,
		}
	}

	return closes
}
