package model

import "time"

// ProviderConfig represents the market data provider integration settings.
// The API token itself is stored encrypted and never leaves the service layer.
type ProviderConfig struct {
	Configured      bool       `json:"configured"`
	Enabled         bool       `json:"enabled"`
	AutoSyncEnabled bool       `json:"autoSyncEnabled"`
	LastSyncedAt    *time.Time `json:"lastSyncedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
