package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/validation"
)

// TestParseDateParam tests the shared date query parameter helper.
// This is an internal test (package handlers, not handlers_test) because
// parseDateParam is unexported.
func TestParseDateParam(t *testing.T) {
	t.Run("parses a valid date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/anything?as_of=2024-03-15", nil)

		got, err := parseDateParam(req, "as_of")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got.Format(dateLayout) != "2024-03-15" {
			t.Errorf("Expected 2024-03-15, got %s", got.Format(dateLayout))
		}
	})

	t.Run("returns zero time for a missing parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/anything", nil)

		got, err := parseDateParam(req, "as_of")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !got.IsZero() {
			t.Errorf("Expected zero time, got %s", got)
		}
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/anything?as_of=15-03-2024", nil)

		if _, err := parseDateParam(req, "as_of"); err == nil {
			t.Error("Expected an error for a malformed date")
		}
	})
}

// TestRespondServiceError tests the mapping from service-layer error
// categories to HTTP status codes.
func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"portfolio not found maps to 404", fmt.Errorf("%w: p1", apperrors.ErrPortfolioNotFound), http.StatusNotFound},
		{"transaction not found maps to 404", apperrors.ErrTransactionNotFound, http.StatusNotFound},
		{"model not found maps to 404", apperrors.ErrModelNotFound, http.StatusNotFound},
		{"benchmark not found maps to 404", apperrors.ErrBenchmarkNotFound, http.StatusNotFound},
		{"price not found maps to 404", apperrors.ErrPriceNotFound, http.StatusNotFound},
		{"model not configured maps to 409", fmt.Errorf("%w: p1", apperrors.ErrModelNotConfigured), http.StatusConflict},
		{"provider not configured maps to 409", apperrors.ErrProviderConfigNotFound, http.StatusConflict},
		{"duplicate entry maps to 409", apperrors.ErrDuplicateEntry, http.StatusConflict},
		{"upstream unavailable maps to 502", fmt.Errorf("%w: timeout", apperrors.ErrUpstreamUnavailable), http.StatusBadGateway},
		{"invalid date range maps to 400", apperrors.ErrInvalidDateRange, http.StatusBadRequest},
		{"invalid transaction maps to 400", apperrors.ErrInvalidTransaction, http.StatusBadRequest},
		{"invalid allocation maps to 400", apperrors.ErrInvalidAllocation, http.StatusBadRequest},
		{"invalid UUID maps to 400", apperrors.ErrInvalidUUID, http.StatusBadRequest},
		{"missing required field maps to 400", apperrors.ErrMissingRequiredField, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			respondServiceError(w, tc.err)

			if w.Code != tc.wantStatus {
				t.Errorf("Expected %d, got %d", tc.wantStatus, w.Code)
			}
		})
	}

	t.Run("validation errors map to 400 with field details", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := &validation.Error{Fields: map[string]string{"name": "name is required"}}

		respondServiceError(w, err)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}

		var response struct {
			Error   string            `json:"error"`
			Details map[string]string `json:"details"`
		}
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Error != "validation failed" {
			t.Errorf("Expected 'validation failed', got %q", response.Error)
		}
		if response.Details["name"] != "name is required" {
			t.Errorf("Expected the field message in details, got %v", response.Details)
		}
	})

	t.Run("unrecognized errors map to a generic 500", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondServiceError(w, errors.New("sql: database is closed"))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}

		var response struct {
			Error string `json:"error"`
		}
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Error != "internal error" {
			t.Errorf("Expected generic 'internal error', got %q", response.Error)
		}
	})
}
