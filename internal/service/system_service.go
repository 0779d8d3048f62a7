package service

import (
	"database/sql"
	"strconv"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/database"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/repository"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db           *sql.DB
	providerRepo *repository.ProviderConfigRepository
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, providerRepo *repository.ProviderConfigRepository) *SystemService {
	return &SystemService{
		db:           db,
		providerRepo: providerRepo,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// Version reports the application version, the applied migration version and
// which optional features are live. Failures reading either are reported as
// unknown rather than failing the endpoint.
func (s *SystemService) Version() model.VersionInfo {
	info := model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  "unknown",
		Features:   map[string]bool{},
	}

	if v, err := database.Version(s.db); err == nil {
		info.DbVersion = strconv.FormatInt(v, 10)
	}

	info.Features["priceSync"] = false
	info.Features["autoPriceSync"] = false
	if cfg, err := s.providerRepo.GetProviderConfig(); err == nil && cfg.Configured {
		info.Features["priceSync"] = cfg.Enabled
		info.Features["autoPriceSync"] = cfg.Enabled && cfg.AutoSyncEnabled
	}

	return info
}
