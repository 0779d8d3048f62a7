package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// TransactionRepository provides data access methods for the portfolio_transaction table.
// The ledger is append-only: there are insert and read methods, nothing else.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// InsertTransaction appends a transaction to a portfolio's ledger.
// Instrument columns are stored as NULL for pure cash entries.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t model.Transaction) error {
	query := `
        INSERT INTO portfolio_transaction
            (id, portfolio_id, kind, asset_class, symbol, quantity, unit_price, cash_amount, occurred_on, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	var assetClass, symbol, quantity, unitPrice any
	if t.AssetClass != "" {
		assetClass = string(t.AssetClass)
	}
	if t.Symbol != "" {
		symbol = t.Symbol
	}
	if t.IsTrade() {
		quantity = t.Quantity
		unitPrice = t.UnitPrice
	}

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.PortfolioID,
		string(t.Kind),
		assetClass,
		symbol,
		quantity,
		unitPrice,
		t.CashAmount,
		t.OccurredOn.Format("2006-01-02"),
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetTransactionsForPortfolio retrieves a portfolio's full ledger in replay
// order: occurred_on ascending, insertion order within a day.
// Returns an empty slice for a portfolio with no transactions.
func (r *TransactionRepository) GetTransactionsForPortfolio(portfolioID string) ([]model.Transaction, error) {
	query := `
        SELECT id, portfolio_id, kind, asset_class, symbol, quantity, unit_price, cash_amount, occurred_on, created_at
        FROM portfolio_transaction
        WHERE portfolio_id = ?
        ORDER BY occurred_on ASC, created_at ASC, id ASC
    `

	rows, err := r.db.Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a single transaction by its ID.
func (r *TransactionRepository) GetTransaction(transactionID string) (model.Transaction, error) {
	query := `
        SELECT id, portfolio_id, kind, asset_class, symbol, quantity, unit_price, cash_amount, occurred_on, created_at
        FROM portfolio_transaction
        WHERE id = ?
    `

	row := r.db.QueryRow(query, transactionID)

	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// GetTradedSymbols returns the distinct instrument symbols appearing in buy or
// sell entries. With an empty portfolioID the search spans all portfolios,
// which is what the price sync job wants.
func (r *TransactionRepository) GetTradedSymbols(portfolioID string) ([]string, error) {
	query := `
        SELECT DISTINCT symbol
        FROM portfolio_transaction
        WHERE symbol IS NOT NULL
        AND kind IN ('buy', 'sell')
    `
	var args []any

	if portfolioID != "" {
		query += " AND portfolio_id = ?"
		args = append(args, portfolioID)
	}

	query += " ORDER BY symbol ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	symbols := []string{}

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return symbols, nil
}

// GetOldestTransactionDate finds the date of a portfolio's earliest ledger
// entry. Used as the natural start of full-history calculations.
//
// Returns time.Time{} (zero value) if the portfolio has no transactions or
// the query fails.
func (r *TransactionRepository) GetOldestTransactionDate(portfolioID string) time.Time {
	var oldestDateStr sql.NullString

	query := `
        SELECT MIN(occurred_on)
        FROM portfolio_transaction
        WHERE portfolio_id = ?
    `

	err := r.db.QueryRow(query, portfolioID).Scan(&oldestDateStr)
	if err != nil || !oldestDateStr.Valid {
		return time.Time{}
	}

	oldestDate, err := time.Parse("2006-01-02", oldestDateStr.String)
	if err != nil {
		return time.Time{}
	}

	return oldestDate
}

// GetOldestTradeDate finds the first date a symbol was traded in any
// portfolio. Used to anchor the start of a symbol's price history.
//
// Returns time.Time{} (zero value) if the symbol has never been traded or
// the query fails.
func (r *TransactionRepository) GetOldestTradeDate(symbol string) time.Time {
	var oldestDateStr sql.NullString

	query := `
        SELECT MIN(occurred_on)
        FROM portfolio_transaction
        WHERE symbol = ?
    `

	err := r.db.QueryRow(query, symbol).Scan(&oldestDateStr)
	if err != nil || !oldestDateStr.Valid {
		return time.Time{}
	}

	oldestDate, err := time.Parse("2006-01-02", oldestDateStr.String)
	if err != nil {
		return time.Time{}
	}

	return oldestDate
}

// scanner covers both sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var t model.Transaction
	var assetClass, symbol sql.NullString
	var quantity, unitPrice sql.NullFloat64
	var occurredOnStr, createdAtStr string

	err := row.Scan(
		&t.ID,
		&t.PortfolioID,
		&t.Kind,
		&assetClass,
		&symbol,
		&quantity,
		&unitPrice,
		&t.CashAmount,
		&occurredOnStr,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}

	if assetClass.Valid {
		t.AssetClass = model.AssetClass(assetClass.String)
	}
	if symbol.Valid {
		t.Symbol = symbol.String
	}
	if quantity.Valid {
		t.Quantity = quantity.Float64
	}
	if unitPrice.Valid {
		t.UnitPrice = unitPrice.Float64
	}

	t.OccurredOn, err = ParseTime(occurredOnStr)
	if err != nil || t.OccurredOn.IsZero() {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil || t.CreatedAt.IsZero() {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return t, nil
}
