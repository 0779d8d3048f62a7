package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// The provider configuration is a single row; a fixed ID keeps writes idempotent.
const providerConfigID = "provider-config"

// ProviderConfigRepository provides data access methods for the
// provider_config table. The API token column holds a fernet token, never
// the plaintext credential.
type ProviderConfigRepository struct {
	db *sql.DB
}

// NewProviderConfigRepository creates a new ProviderConfigRepository with the provided database connection.
func NewProviderConfigRepository(db *sql.DB) *ProviderConfigRepository {
	return &ProviderConfigRepository{db: db}
}

// GetProviderConfig retrieves the provider settings without the token.
// An absent row is not an error: the provider is simply not configured yet.
func (r *ProviderConfigRepository) GetProviderConfig() (*model.ProviderConfig, error) {
	query := `
        SELECT enabled, auto_sync_enabled, last_synced_at, created_at, updated_at
        FROM provider_config
        WHERE id = ?
    `

	var pc model.ProviderConfig
	var lastSyncedStr sql.NullString
	var createdAtStr, updatedAtStr string

	err := r.db.QueryRow(query, providerConfigID).Scan(
		&pc.Enabled,
		&pc.AutoSyncEnabled,
		&lastSyncedStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return &model.ProviderConfig{Configured: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query provider_config: %w", err)
	}

	// Config exists in database
	pc.Configured = true

	if lastSyncedStr.Valid {
		lastSynced, err := ParseTime(lastSyncedStr.String)
		if err != nil || lastSynced.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		pc.LastSyncedAt = &lastSynced
	}

	pc.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil || pc.CreatedAt.IsZero() {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}

	pc.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil || pc.UpdatedAt.IsZero() {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}

	return &pc, nil
}

// GetAPIToken retrieves the encrypted provider token.
func (r *ProviderConfigRepository) GetAPIToken() (string, error) {
	query := `
        SELECT api_token
        FROM provider_config
        WHERE id = ?
    `

	var token string

	err := r.db.QueryRow(query, providerConfigID).Scan(&token)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrProviderConfigNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query provider_config: %w", err)
	}

	return token, nil
}

// SaveProviderConfig stores the provider settings, creating or replacing the
// single configuration row. The token must already be encrypted.
func (r *ProviderConfigRepository) SaveProviderConfig(ctx context.Context, encryptedToken string, enabled, autoSyncEnabled bool) error {
	query := `
        INSERT INTO provider_config (id, api_token, enabled, auto_sync_enabled, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            api_token = excluded.api_token,
            enabled = excluded.enabled,
            auto_sync_enabled = excluded.auto_sync_enabled,
            updated_at = excluded.updated_at
    `

	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := r.db.ExecContext(ctx, query,
		providerConfigID,
		encryptedToken,
		enabled,
		autoSyncEnabled,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save provider_config: %w", err)
	}

	return nil
}

// UpdateLastSynced stamps the time of the most recent successful price sync.
func (r *ProviderConfigRepository) UpdateLastSynced(ctx context.Context, at time.Time) error {
	query := `
        UPDATE provider_config
        SET last_synced_at = ?, updated_at = ?
        WHERE id = ?
    `

	result, err := r.db.ExecContext(ctx, query,
		at.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		providerConfigID,
	)
	if err != nil {
		return fmt.Errorf("failed to update provider_config: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrProviderConfigNotFound
	}

	return nil
}
