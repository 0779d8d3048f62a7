package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// AllocationModelRepository provides data access methods for the
// allocation_model and model_allocation tables.
type AllocationModelRepository struct {
	db *sql.DB
}

// NewAllocationModelRepository creates a new AllocationModelRepository with the provided database connection.
func NewAllocationModelRepository(db *sql.DB) *AllocationModelRepository {
	return &AllocationModelRepository{db: db}
}

// InsertModel stores an allocation model and its target weights atomically.
func (r *AllocationModelRepository) InsertModel(ctx context.Context, m model.AllocationModel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	modelQuery := `
        INSERT INTO allocation_model (id, name, created_at)
        VALUES (?, ?, ?)
    `

	_, err = tx.ExecContext(ctx, modelQuery,
		m.ID,
		m.Name,
		m.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation_model: %w", err)
	}

	allocationQuery := `
        INSERT INTO model_allocation (id, model_id, symbol, asset_class, weight)
        VALUES (?, ?, ?, ?, ?)
    `

	for _, a := range m.Allocations {
		_, err = tx.ExecContext(ctx, allocationQuery,
			uuid.New().String(),
			m.ID,
			a.Symbol,
			string(a.AssetClass),
			a.Weight,
		)
		if err != nil {
			return fmt.Errorf("failed to insert model_allocation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit allocation model: %w", err)
	}

	return nil
}

// GetModels retrieves all allocation models with their target weights.
// Returns an empty slice if no models exist.
func (r *AllocationModelRepository) GetModels() ([]model.AllocationModel, error) {
	query := `
        SELECT id, name, created_at
        FROM allocation_model
        ORDER BY name ASC
    `

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation_model table: %w", err)
	}
	defer rows.Close()

	models := []model.AllocationModel{}

	for rows.Next() {
		var m model.AllocationModel
		var createdAtStr string

		err := rows.Scan(
			&m.ID,
			&m.Name,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation_model table results: %w", err)
		}

		m.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil || m.CreatedAt.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		models = append(models, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation_model table: %w", err)
	}

	if len(models) == 0 {
		return models, nil
	}

	allocationsByModel, err := r.getAllocations(modelIDs(models))
	if err != nil {
		return nil, err
	}

	for i := range models {
		models[i].Allocations = allocationsByModel[models[i].ID]
	}

	return models, nil
}

// GetModelOnID retrieves a single allocation model with its target weights.
func (r *AllocationModelRepository) GetModelOnID(modelID string) (model.AllocationModel, error) {
	query := `
        SELECT id, name, created_at
        FROM allocation_model
        WHERE id = ?
    `

	var m model.AllocationModel
	var createdAtStr string

	err := r.db.QueryRow(query, modelID).Scan(
		&m.ID,
		&m.Name,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.AllocationModel{}, apperrors.ErrModelNotFound
	}
	if err != nil {
		return model.AllocationModel{}, fmt.Errorf("failed to query allocation_model: %w", err)
	}

	m.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil || m.CreatedAt.IsZero() {
		return model.AllocationModel{}, fmt.Errorf("failed to parse date: %w", err)
	}

	allocationsByModel, err := r.getAllocations([]string{m.ID})
	if err != nil {
		return model.AllocationModel{}, err
	}
	m.Allocations = allocationsByModel[m.ID]

	return m, nil
}

// getAllocations retrieves model_allocation rows for the given model IDs,
// grouped by model. Symbols come back in alphabetical order.
func (r *AllocationModelRepository) getAllocations(ids []string) (map[string][]model.ModelAllocation, error) {
	if len(ids) == 0 {
		return make(map[string][]model.ModelAllocation), nil
	}

	allocationPlaceholders := make([]string, len(ids))
	for i := range allocationPlaceholders {
		allocationPlaceholders[i] = "?"
	}

	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `
        SELECT model_id, symbol, asset_class, weight
        FROM model_allocation
        WHERE model_id IN (` + strings.Join(allocationPlaceholders, ",") + `)
        ORDER BY symbol ASC
    `

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query model_allocation table: %w", err)
	}
	defer rows.Close()

	allocationsByModel := make(map[string][]model.ModelAllocation)

	for rows.Next() {
		var modelID string
		var a model.ModelAllocation

		err := rows.Scan(
			&modelID,
			&a.Symbol,
			&a.AssetClass,
			&a.Weight,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model_allocation table results: %w", err)
		}

		allocationsByModel[modelID] = append(allocationsByModel[modelID], a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating model_allocation table: %w", err)
	}

	return allocationsByModel, nil
}

func modelIDs(models []model.AllocationModel) []string {
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	return ids
}
