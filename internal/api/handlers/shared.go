package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/validation"
)

// dateLayout is the wire format for date parameters and date fields.
const dateLayout = "2006-01-02"

// parseJSON decodes the request body into the given request type.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. A missing
// parameter returns the zero time with no error.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

// respondServiceError translates a service-layer error into the HTTP status
// its category calls for. Handlers call this after their own expected-case
// checks; anything unrecognized becomes a 500.
//
// Not-found and not-configured get distinct statuses on purpose: a missing
// portfolio is 404, a portfolio that exists but has no model assigned is 409.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", validationErr.Fields)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrModelNotFound),
		errors.Is(err, apperrors.ErrBenchmarkNotFound),
		errors.Is(err, apperrors.ErrPriceNotFound):
		response.RespondError(w, http.StatusNotFound, err.Error(), "")

	case errors.Is(err, apperrors.ErrModelNotConfigured),
		errors.Is(err, apperrors.ErrProviderConfigNotFound),
		errors.Is(err, apperrors.ErrDuplicateEntry):
		response.RespondError(w, http.StatusConflict, err.Error(), "")

	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		response.RespondError(w, http.StatusBadGateway, err.Error(), "")

	case errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrInvalidTransaction),
		errors.Is(err, apperrors.ErrInvalidAllocation),
		errors.Is(err, apperrors.ErrInvalidUUID),
		errors.Is(err, apperrors.ErrEmptyID),
		errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrMissingRequiredField):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")

	default:
		response.RespondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
