package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/request"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests: the portfolio
// registry itself, model assignment, and replayed point-in-time state.
type PortfolioHandler struct {
	portfolioService  *service.PortfolioService
	accountingService *service.AccountingService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService, accountingService *service.AccountingService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService:  portfolioService,
		accountingService: accountingService,
	}
}

// Portfolios handles GET requests to list all portfolios.
//
// Endpoint: GET /api/portfolios
// Response: 200 OK with array of Portfolio
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, _ *http.Request) {
	portfolios, err := h.portfolioService.GetAllPortfolios()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolios)
}

// CreatePortfolio handles POST requests to create a new portfolio.
//
// Endpoint: POST /api/portfolios
// Request Body: CreatePortfolioRequest (name, description)
// Response: 201 Created with Portfolio
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		respondServiceError(w, err)
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), req.Name, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, portfolio)
}

// Portfolio handles GET requests to retrieve a single portfolio by ID.
//
// Endpoint: GET /api/portfolios/{portfolioId}
// Response: 200 OK with Portfolio
// Error: 400 Bad Request if the ID is not a UUID (validated by middleware)
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	portfolio, err := h.portfolioService.GetPortfolio(portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// AssignModel handles POST requests to attach an allocation model to a
// portfolio. The body either references an existing model by modelId or
// defines a new model inline, which is created and assigned in one call.
//
// Endpoint: POST /api/portfolios/{portfolioId}/model
// Request Body: AssignModelRequest (modelId | name + allocations)
// Response: 200 OK with the assigned AllocationModel
// Error: 400 Bad Request if validation fails or weights do not sum to 1.0
// Error: 404 Not Found if the portfolio or referenced model does not exist
func (h *PortfolioHandler) AssignModel(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	req, err := parseJSON[request.AssignModelRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAssignModel(req); err != nil {
		respondServiceError(w, err)
		return
	}

	modelID := req.ModelID
	if modelID == "" {
		allocations := make([]model.ModelAllocation, len(req.Allocations))
		for i, a := range req.Allocations {
			allocations[i] = model.ModelAllocation{
				Symbol:     a.Symbol,
				AssetClass: model.AssetClass(a.AssetClass),
				Weight:     a.Weight,
			}
		}
		created, err := h.portfolioService.CreateModel(r.Context(), req.Name, allocations)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		modelID = created.ID
	}

	if err := h.portfolioService.AssignModel(r.Context(), portfolioID, modelID); err != nil {
		respondServiceError(w, err)
		return
	}

	assigned, err := h.portfolioService.GetModel(modelID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, assigned)
}

// HoldingResponse is one open position in a portfolio state response.
type HoldingResponse struct {
	Symbol     string  `json:"symbol"`
	AssetClass string  `json:"assetClass"`
	Quantity   float64 `json:"quantity"`
	AvgCost    float64 `json:"avgCost"`
}

// PortfolioStateResponse is the replayed state of a portfolio as of a date.
// Monetary amounts are rounded to two decimals; quantities are not.
type PortfolioStateResponse struct {
	PortfolioID string            `json:"portfolioId"`
	AsOf        string            `json:"asOf,omitempty"`
	CashBalance float64           `json:"cashBalance"`
	Holdings    []HoldingResponse `json:"holdings"`
}

// State handles GET requests for a portfolio's replayed state: cash balance
// plus open holdings, as of an optional date.
//
// Endpoint: GET /api/portfolios/{portfolioId}/state?as_of=YYYY-MM-DD
// Response: 200 OK with PortfolioStateResponse
// Error: 400 Bad Request if as_of is malformed
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) State(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	asOf, err := parseDateParam(r, "as_of")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD", err.Error())
		return
	}

	state, err := h.accountingService.PortfolioState(portfolioID, asOf)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	holdings := make([]HoldingResponse, len(state.Holdings))
	for i, holding := range state.Holdings {
		holdings[i] = HoldingResponse{
			Symbol:     holding.Symbol,
			AssetClass: string(holding.AssetClass),
			Quantity:   holding.Quantity,
			AvgCost:    response.Round(holding.AvgCost),
		}
	}

	resp := PortfolioStateResponse{
		PortfolioID: state.PortfolioID,
		CashBalance: response.Round(state.CashBalance),
		Holdings:    holdings,
	}
	if !state.AsOf.IsZero() {
		resp.AsOf = state.AsOf.Format(dateLayout)
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
