package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// BenchmarkRepository provides data access methods for the benchmark and
// benchmark_price tables.
type BenchmarkRepository struct {
	db *sql.DB
}

// NewBenchmarkRepository creates a new BenchmarkRepository with the provided database connection.
func NewBenchmarkRepository(db *sql.DB) *BenchmarkRepository {
	return &BenchmarkRepository{db: db}
}

// InsertBenchmark stores a new benchmark record.
func (r *BenchmarkRepository) InsertBenchmark(ctx context.Context, b model.Benchmark) error {
	query := `
        INSERT INTO benchmark (id, symbol, name, created_at)
        VALUES (?, ?, ?, ?)
    `

	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.Symbol,
		b.Name,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert benchmark: %w", err)
	}

	return nil
}

// GetBenchmarks retrieves all benchmarks ordered by symbol.
// Returns an empty slice if no benchmarks exist.
func (r *BenchmarkRepository) GetBenchmarks() ([]model.Benchmark, error) {
	query := `
        SELECT id, symbol, name
        FROM benchmark
        ORDER BY symbol ASC
    `

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark table: %w", err)
	}
	defer rows.Close()

	benchmarks := []model.Benchmark{}

	for rows.Next() {
		var b model.Benchmark

		err := rows.Scan(
			&b.ID,
			&b.Symbol,
			&b.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan benchmark table results: %w", err)
		}

		benchmarks = append(benchmarks, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benchmark table: %w", err)
	}

	return benchmarks, nil
}

// GetBenchmarkOnID retrieves a single benchmark by its ID.
func (r *BenchmarkRepository) GetBenchmarkOnID(benchmarkID string) (model.Benchmark, error) {
	query := `
        SELECT id, symbol, name
        FROM benchmark
        WHERE id = ?
    `

	var b model.Benchmark

	err := r.db.QueryRow(query, benchmarkID).Scan(
		&b.ID,
		&b.Symbol,
		&b.Name,
	)
	if err == sql.ErrNoRows {
		return model.Benchmark{}, apperrors.ErrBenchmarkNotFound
	}
	if err != nil {
		return model.Benchmark{}, fmt.Errorf("failed to query benchmark: %w", err)
	}

	return b, nil
}

// GetBenchmarkOnSymbol retrieves a single benchmark by its symbol.
func (r *BenchmarkRepository) GetBenchmarkOnSymbol(symbol string) (model.Benchmark, error) {
	query := `
        SELECT id, symbol, name
        FROM benchmark
        WHERE symbol = ?
    `

	var b model.Benchmark

	err := r.db.QueryRow(query, symbol).Scan(
		&b.ID,
		&b.Symbol,
		&b.Name,
	)
	if err == sql.ErrNoRows {
		return model.Benchmark{}, apperrors.ErrBenchmarkNotFound
	}
	if err != nil {
		return model.Benchmark{}, fmt.Errorf("failed to query benchmark: %w", err)
	}

	return b, nil
}

// UpsertPrices writes a batch of benchmark price points atomically, replacing
// any existing close for the same benchmark and date. Returns the number of
// rows written.
func (r *BenchmarkRepository) UpsertPrices(ctx context.Context, prices []model.BenchmarkPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
        INSERT INTO benchmark_price (id, benchmark_id, price_date, close_price)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(benchmark_id, price_date) DO UPDATE SET close_price = excluded.close_price
    `

	written := 0
	for _, p := range prices {
		_, err = tx.ExecContext(ctx, query,
			uuid.New().String(),
			p.BenchmarkID,
			p.Date.Format("2006-01-02"),
			p.Price,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert benchmark_price: %w", err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit benchmark prices: %w", err)
	}

	return written, nil
}

// GetPriceOnOrBefore retrieves the most recent stored benchmark price on or
// before the given date.
func (r *BenchmarkRepository) GetPriceOnOrBefore(benchmarkID string, on time.Time) (model.BenchmarkPrice, error) {
	query := `
        SELECT id, benchmark_id, price_date, close_price
        FROM benchmark_price
        WHERE benchmark_id = ?
        AND price_date <= ?
        ORDER BY price_date DESC
        LIMIT 1
    `

	var p model.BenchmarkPrice
	var dateStr string

	err := r.db.QueryRow(query, benchmarkID, on.Format("2006-01-02")).Scan(
		&p.ID,
		&p.BenchmarkID,
		&dateStr,
		&p.Price,
	)
	if err == sql.ErrNoRows {
		return model.BenchmarkPrice{}, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return model.BenchmarkPrice{}, fmt.Errorf("failed to query benchmark_price: %w", err)
	}

	p.Date, err = ParseTime(dateStr)
	if err != nil || p.Date.IsZero() {
		return model.BenchmarkPrice{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return p, nil
}
