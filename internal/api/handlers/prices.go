package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/request"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/validation"
)

// PriceHandler handles HTTP requests for price syncing and the market data
// provider configuration.
type PriceHandler struct {
	pricingService *service.PricingService
}

// NewPriceHandler creates a new PriceHandler with the provided service dependency.
func NewPriceHandler(pricingService *service.PricingService) *PriceHandler {
	return &PriceHandler{
		pricingService: pricingService,
	}
}

// SyncPrices handles POST requests to pull daily closes from the provider.
// With a symbol in the body it syncs that one symbol over the optional date
// range; with an empty body it syncs every tracked symbol and benchmark from
// their last stored prices forward.
//
// Endpoint: POST /api/prices/sync
// Request Body: SyncPricesRequest (symbol?, startDate?, endDate?), or empty
// Response: 200 OK with SyncSummary (all symbols) or SymbolSyncResult (one symbol)
// Error: 400 Bad Request if the body or date range is invalid
// Error: 409 Conflict if the provider is not configured
// Error: 502 Bad Gateway if the provider cannot be reached
func (h *PriceHandler) SyncPrices(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SyncPricesRequest](r)
	if err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSyncPrices(req); err != nil {
		respondServiceError(w, err)
		return
	}

	if req.Symbol == "" {
		summary, err := h.pricingService.SyncAll(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		response.RespondJSON(w, http.StatusOK, summary)
		return
	}

	var from, to time.Time
	if req.StartDate != "" {
		from, _ = time.Parse(dateLayout, req.StartDate)
	}
	if req.EndDate != "" {
		to, _ = time.Parse(dateLayout, req.EndDate)
	}

	result, err := h.pricingService.SyncSymbol(r.Context(), req.Symbol, from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// ProviderStatus handles GET requests for the market data provider settings.
// The API token itself is never returned.
//
// Endpoint: GET /api/provider
// Response: 200 OK with ProviderConfig
// Error: 500 Internal Server Error if retrieval fails
func (h *PriceHandler) ProviderStatus(w http.ResponseWriter, _ *http.Request) {
	status, err := h.pricingService.ProviderStatus()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, status)
}

// UpdateProviderConfig handles PUT requests to configure the market data
// provider. The token is encrypted before it is stored.
//
// Endpoint: PUT /api/provider
// Request Body: UpdateProviderConfigRequest (apiToken, enabled, autoSyncEnabled)
// Response: 200 OK with the stored ProviderConfig
// Error: 400 Bad Request if validation fails or request body is invalid
func (h *PriceHandler) UpdateProviderConfig(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateProviderConfigRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateProviderConfig(req); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.pricingService.SaveProviderConfig(r.Context(), *req.APIToken, *req.Enabled, *req.AutoSyncEnabled); err != nil {
		respondServiceError(w, err)
		return
	}

	status, err := h.pricingService.ProviderStatus()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, status)
}
