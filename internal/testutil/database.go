package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production database schema.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Allocation model table
		CREATE TABLE IF NOT EXISTS allocation_model (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Portfolio table
		CREATE TABLE IF NOT EXISTS portfolio (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			description TEXT,
			model_id VARCHAR(36),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(model_id) REFERENCES allocation_model(id) ON DELETE SET NULL
		);

		-- Transaction ledger table (append-only)
		CREATE TABLE IF NOT EXISTS portfolio_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			kind VARCHAR(15) NOT NULL,
			asset_class VARCHAR(10),
			symbol VARCHAR(20),
			quantity FLOAT,
			unit_price FLOAT,
			cash_amount FLOAT NOT NULL,
			occurred_on DATE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE
		);

		-- Model allocation table (target weights per symbol)
		CREATE TABLE IF NOT EXISTS model_allocation (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			model_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			asset_class VARCHAR(10) NOT NULL,
			weight FLOAT NOT NULL,
			FOREIGN KEY(model_id) REFERENCES allocation_model(id) ON DELETE CASCADE,
			CONSTRAINT unique_model_symbol UNIQUE (model_id, symbol)
		);

		-- Benchmark table
		CREATE TABLE IF NOT EXISTS benchmark (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Benchmark price table
		CREATE TABLE IF NOT EXISTS benchmark_price (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			benchmark_id VARCHAR(36) NOT NULL,
			price_date DATE NOT NULL,
			close_price FLOAT NOT NULL,
			FOREIGN KEY(benchmark_id) REFERENCES benchmark(id) ON DELETE CASCADE,
			CONSTRAINT unique_benchmark_price UNIQUE (benchmark_id, price_date)
		);

		-- Symbol price table
		CREATE TABLE IF NOT EXISTS symbol_price (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			price_date DATE NOT NULL,
			close_price FLOAT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_symbol_price UNIQUE (symbol, price_date)
		);

		-- Market data provider configuration table
		CREATE TABLE IF NOT EXISTS provider_config (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			api_token VARCHAR(500) NOT NULL,
			enabled BOOLEAN NOT NULL,
			auto_sync_enabled BOOLEAN NOT NULL,
			last_synced_at DATETIME,
			created_at DATETIME DEFAULT (CURRENT_TIMESTAMP),
			updated_at DATETIME DEFAULT (CURRENT_TIMESTAMP)
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS ix_portfolio_transaction_portfolio_id ON portfolio_transaction(portfolio_id);
		CREATE INDEX IF NOT EXISTS ix_portfolio_transaction_occurred_on ON portfolio_transaction(occurred_on);
		CREATE INDEX IF NOT EXISTS ix_portfolio_transaction_portfolio_id_occurred_on ON portfolio_transaction(portfolio_id, occurred_on);
		CREATE INDEX IF NOT EXISTS ix_portfolio_transaction_symbol ON portfolio_transaction(symbol);
		CREATE INDEX IF NOT EXISTS ix_symbol_price_symbol ON symbol_price(symbol);
		CREATE INDEX IF NOT EXISTS ix_symbol_price_price_date ON symbol_price(price_date);
		CREATE INDEX IF NOT EXISTS ix_symbol_price_symbol_price_date ON symbol_price(symbol, price_date);
		CREATE INDEX IF NOT EXISTS ix_benchmark_price_benchmark_id ON benchmark_price(benchmark_id);
		CREATE INDEX IF NOT EXISTS ix_benchmark_price_price_date ON benchmark_price(price_date);
		CREATE INDEX IF NOT EXISTS ix_model_allocation_model_id ON model_allocation(model_id);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables in dependency order.
// Useful for reusing the same database across multiple tests.
//
// Example usage:
//
//	func TestMultipleThings(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//
//	    t.Run("First test", func(t *testing.T) {
//	        // Create data
//	        testutil.CleanDatabase(t, db)  // Clean after
//	    })
//
//	    t.Run("Second test", func(t *testing.T) {
//	        // Fresh clean database
//	    })
//	}
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	tables := []string{
		"portfolio_transaction",
		"portfolio",
		"model_allocation",
		"allocation_model",
		"benchmark_price",
		"benchmark",
		"symbol_price",
		"provider_config",
	}

	for _, table := range tables {
		//nolint:gosec // G202: Table names are from hardcoded slice, no SQL injection risk
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
//
// Example usage:
//
//	count := testutil.CountRows(t, db, "portfolio")
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "portfolio", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
