package validation

import (
	"strings"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/request"
)

// ValidateSyncPrices validates a price sync request. All fields are optional,
// but dates must parse and the range must run forward. A date range without a
// symbol is rejected, since an all-symbol sync picks its own range per symbol.
func ValidateSyncPrices(req request.SyncPricesRequest) error {
	errors := make(map[string]string)

	var start, end time.Time
	var err error

	if req.StartDate != "" {
		if start, err = time.Parse("2006-01-02", req.StartDate); err != nil {
			errors["startDate"] = err.Error()
		}
	}
	if req.EndDate != "" {
		if end, err = time.Parse("2006-01-02", req.EndDate); err != nil {
			errors["endDate"] = err.Error()
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		errors["endDate"] = "endDate must not be before startDate"
	}
	if req.Symbol == "" && (req.StartDate != "" || req.EndDate != "") {
		errors["symbol"] = "symbol is required when a date range is given"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateCreateBenchmark validates a benchmark registration request.
func ValidateCreateBenchmark(req request.CreateBenchmarkRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}
	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdateProviderConfig validates a provider configuration request.
func ValidateUpdateProviderConfig(req request.UpdateProviderConfigRequest) error {
	errors := make(map[string]string)

	if req.APIToken == nil || strings.TrimSpace(*req.APIToken) == "" {
		errors["apiToken"] = "apiToken is required"
	}
	if req.Enabled == nil {
		errors["enabled"] = "enabled is required"
	}
	if req.AutoSyncEnabled == nil {
		errors["autoSyncEnabled"] = "autoSyncEnabled is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
