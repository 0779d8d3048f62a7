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

// SymbolPriceRepository provides data access methods for the symbol_price
// table, the store the price oracle reads from.
type SymbolPriceRepository struct {
	db *sql.DB
}

// NewSymbolPriceRepository creates a new SymbolPriceRepository with the provided database connection.
func NewSymbolPriceRepository(db *sql.DB) *SymbolPriceRepository {
	return &SymbolPriceRepository{db: db}
}

// UpsertPrices writes a batch of price points atomically, replacing any
// existing close for the same symbol and date. Returns the number of rows
// written.
func (r *SymbolPriceRepository) UpsertPrices(ctx context.Context, prices []model.SymbolPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
        INSERT INTO symbol_price (id, symbol, price_date, close_price, created_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(symbol, price_date) DO UPDATE SET close_price = excluded.close_price
    `

	written := 0
	for _, p := range prices {
		_, err = tx.ExecContext(ctx, query,
			uuid.New().String(),
			p.Symbol,
			p.Date.Format("2006-01-02"),
			p.Price,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert symbol_price: %w", err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit symbol prices: %w", err)
	}

	return written, nil
}

// GetPriceOnOrBefore retrieves the most recent stored price for a symbol on
// or before the given date. The fallback to an earlier close is what lets
// valuations span weekends and holidays.
func (r *SymbolPriceRepository) GetPriceOnOrBefore(symbol string, on time.Time) (model.SymbolPrice, error) {
	query := `
        SELECT id, symbol, price_date, close_price
        FROM symbol_price
        WHERE symbol = ?
        AND price_date <= ?
        ORDER BY price_date DESC
        LIMIT 1
    `

	var p model.SymbolPrice
	var dateStr string

	err := r.db.QueryRow(query, symbol, on.Format("2006-01-02")).Scan(
		&p.ID,
		&p.Symbol,
		&dateStr,
		&p.Price,
	)
	if err == sql.ErrNoRows {
		return model.SymbolPrice{}, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return model.SymbolPrice{}, fmt.Errorf("failed to query symbol_price: %w", err)
	}

	p.Date, err = ParseTime(dateStr)
	if err != nil || p.Date.IsZero() {
		return model.SymbolPrice{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return p, nil
}

// GetPrices retrieves stored prices for a symbol within the date range,
// oldest first. Returns an empty slice if none are stored.
func (r *SymbolPriceRepository) GetPrices(symbol string, startDate, endDate time.Time) ([]model.SymbolPrice, error) {
	query := `
        SELECT id, symbol, price_date, close_price
        FROM symbol_price
        WHERE symbol = ?
        AND price_date >= ?
        AND price_date <= ?
        ORDER BY price_date ASC
    `

	rows, err := r.db.Query(query, symbol, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query symbol_price table: %w", err)
	}
	defer rows.Close()

	prices := []model.SymbolPrice{}

	for rows.Next() {
		var p model.SymbolPrice
		var dateStr string

		err := rows.Scan(
			&p.ID,
			&p.Symbol,
			&dateStr,
			&p.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan symbol_price table results: %w", err)
		}

		p.Date, err = ParseTime(dateStr)
		if err != nil || p.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		prices = append(prices, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbol_price table: %w", err)
	}

	return prices, nil
}

// GetLatestPriceDate finds the date of the newest stored price for a symbol.
// Used by the sync job to fetch only what is missing.
//
// Returns time.Time{} (zero value) if the symbol has no stored prices.
func (r *SymbolPriceRepository) GetLatestPriceDate(symbol string) time.Time {
	var latestDateStr sql.NullString

	query := `
        SELECT MAX(price_date)
        FROM symbol_price
        WHERE symbol = ?
    `

	err := r.db.QueryRow(query, symbol).Scan(&latestDateStr)
	if err != nil || !latestDateStr.Valid {
		return time.Time{}
	}

	latestDate, err := time.Parse("2006-01-02", latestDateStr.String)
	if err != nil {
		return time.Time{}
	}

	return latestDate
}
