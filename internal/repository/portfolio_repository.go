package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
// It handles portfolio metadata and the link to an assigned allocation model.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// InsertPortfolio stores a new portfolio record.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, p model.Portfolio) error {
	query := `
        INSERT INTO portfolio (id, name, description, model_id, created_at)
        VALUES (?, ?, ?, ?, ?)
    `

	var modelID any
	if p.ModelID != "" {
		modelID = p.ModelID
	}

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		modelID,
		p.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	return nil
}

// GetPortfolios retrieves all portfolios ordered by name.
// Returns an empty slice if no portfolios exist.
func (r *PortfolioRepository) GetPortfolios() ([]model.Portfolio, error) {
	query := `
        SELECT id, name, description, model_id, created_at
        FROM portfolio
        ORDER BY name ASC
    `

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}

	for rows.Next() {
		var p model.Portfolio
		var modelID sql.NullString
		var createdAtStr string

		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&modelID,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}

		if modelID.Valid {
			p.ModelID = modelID.String
		}

		p.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil || p.CreatedAt.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolioOnID retrieves a single portfolio by its ID.
func (r *PortfolioRepository) GetPortfolioOnID(portfolioID string) (model.Portfolio, error) {
	query := `
        SELECT id, name, description, model_id, created_at
        FROM portfolio
        WHERE id = ?
    `

	var p model.Portfolio
	var modelID sql.NullString
	var createdAtStr string

	err := r.db.QueryRow(query, portfolioID).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&modelID,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	if modelID.Valid {
		p.ModelID = modelID.String
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil || p.CreatedAt.IsZero() {
		return model.Portfolio{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return p, nil
}

// AssignModel links a portfolio to an allocation model.
func (r *PortfolioRepository) AssignModel(ctx context.Context, portfolioID, modelID string) error {
	query := `UPDATE portfolio SET model_id = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, modelID, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrPortfolioNotFound
	}

	return nil
}
