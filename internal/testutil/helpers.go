package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/marketdata"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/repository"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/secrets"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
)

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	allocationRepo := repository.NewAllocationModelRepository(db)

	return service.NewPortfolioService(
		portfolioRepo,
		allocationRepo,
	)
}

func NewTestAccountingService(t *testing.T, db *sql.DB) *service.AccountingService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)

	return service.NewAccountingService(
		transactionRepo,
		portfolioRepo,
	)
}

func NewTestPricingService(t *testing.T, db *sql.DB) *service.PricingService {
	t.Helper()

	return NewTestPricingServiceWithClient(t, db, NewMockMarketDataClient())
}

// NewTestPricingServiceWithClient creates a PricingService backed by the given
// market data client. This is useful for testing sync operations without
// making real provider calls.
func NewTestPricingServiceWithClient(t *testing.T, db *sql.DB, client marketdata.Client) *service.PricingService {
	t.Helper()

	priceRepo := repository.NewSymbolPriceRepository(db)
	benchmarkRepo := repository.NewBenchmarkRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	providerRepo := repository.NewProviderConfigRepository(db)

	return service.NewPricingService(
		priceRepo,
		benchmarkRepo,
		transactionRepo,
		providerRepo,
		client,
		TestEncryptor(t),
	)
}

func NewTestPerformanceService(t *testing.T, db *sql.DB) *service.PerformanceService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	benchmarkRepo := repository.NewBenchmarkRepository(db)

	return service.NewPerformanceService(
		transactionRepo,
		portfolioRepo,
		benchmarkRepo,
		NewTestPricingService(t, db),
		0.02,
	)
}

func NewTestRebalanceService(t *testing.T, db *sql.DB) *service.RebalanceService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	allocationRepo := repository.NewAllocationModelRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewRebalanceService(
		portfolioRepo,
		allocationRepo,
		transactionRepo,
		NewTestPricingService(t, db),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, repository.NewProviderConfigRepository(db))
}

// TestEncryptor creates an Encryptor with a freshly generated key. Tokens
// encrypted with it are only readable within the same test.
func TestEncryptor(t *testing.T) *secrets.Encryptor {
	t.Helper()

	key, err := secrets.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate test key: %v", err)
	}

	encryptor, err := secrets.NewEncryptor(key)
	if err != nil {
		t.Fatalf("Failed to create test encryptor: %v", err)
	}

	return encryptor
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("VWRL")
//	// Returns: "VWRL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeModelName generates a unique allocation model name for testing.
//
// Example usage:
//
//	name := testutil.MakeModelName("Balanced")
//	// Returns: "Balanced XYZ789"
func MakeModelName(base string) string {
	if base == "" {
		base = "Model"
	}
	return base + " " + randomAlphanumeric(6)
}

// Date builds a UTC midnight time for fixture dates.
//
// Example usage:
//
//	on := testutil.Date(2024, 3, 1)
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
