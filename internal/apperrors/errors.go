package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrModelNotFound indicates that an allocation model with the given ID does not exist.
	ErrModelNotFound = errors.New("allocation model not found")

	// ErrBenchmarkNotFound indicates that a benchmark with the given ID does not exist.
	ErrBenchmarkNotFound = errors.New("benchmark not found")

	// ErrPriceNotFound indicates no stored price for a specific symbol and date combination.
	ErrPriceNotFound = errors.New("price for symbol/date not found")

	// ErrProviderConfigNotFound indicates the market data provider has not been set up.
	ErrProviderConfigNotFound = errors.New("provider configuration not found")
)

// Configuration errors represent operations attempted against entities that exist
// but lack the configuration the operation depends on. Distinct from not-found:
// the portfolio is there, a prerequisite is not.
var (
	// ErrModelNotConfigured indicates that a portfolio has no allocation model assigned,
	// so drift and rebalancing cannot be computed for it.
	ErrModelNotConfigured = errors.New("no allocation model configured for portfolio")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidTransaction indicates that a transaction violates the rules of its kind
	// (wrong cash sign, missing instrument fields, non-positive quantity or price).
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInvalidAllocation indicates that a set of model weights does not sum to 1.0
	// within tolerance, or contains a weight outside [0, 1].
	ErrInvalidAllocation = errors.New("invalid allocation weights")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Validation errors for required fields
	ErrInvalidPortfolioID = errors.New("portfolio ID is required")
	ErrInvalidSymbol      = errors.New("symbol is required")
	ErrInvalidDate        = errors.New("date parameter is required")
)

// Data integrity errors represent inconsistencies in stored data. The ledger is
// append-only, so these are reported and survived rather than repaired in place.
var (
	// ErrDataIntegrity indicates that replaying the ledger encountered a state the
	// data should not produce (e.g., selling more units than are held). Processing
	// continues; the condition is logged.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Numeric and upstream errors represent degenerate computations and provider
// failures. Degenerate numeric cases are recovered close to where they occur;
// upstream failures propagate so callers never act on silently invented data.
var (
	// ErrNumericDegenerate indicates a computation hit a degenerate case such as a
	// zero denominator or a non-finite intermediate value.
	ErrNumericDegenerate = errors.New("degenerate numeric computation")

	// ErrUpstreamUnavailable indicates the market data provider could not supply a
	// price. Valuations fail rather than substitute a zero.
	ErrUpstreamUnavailable = errors.New("market data provider unavailable")
)
