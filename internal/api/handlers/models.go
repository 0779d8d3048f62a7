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

// ModelHandler handles HTTP requests for standalone allocation models, which
// can be shared across portfolios.
type ModelHandler struct {
	portfolioService *service.PortfolioService
}

// NewModelHandler creates a new ModelHandler with the provided service dependency.
func NewModelHandler(portfolioService *service.PortfolioService) *ModelHandler {
	return &ModelHandler{
		portfolioService: portfolioService,
	}
}

// Models handles GET requests to list all allocation models.
//
// Endpoint: GET /api/models
// Response: 200 OK with array of AllocationModel
// Error: 500 Internal Server Error if retrieval fails
func (h *ModelHandler) Models(w http.ResponseWriter, _ *http.Request) {
	models, err := h.portfolioService.GetAllModels()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, models)
}

// Model handles GET requests to retrieve a single allocation model by ID.
//
// Endpoint: GET /api/models/{modelId}
// Response: 200 OK with AllocationModel
// Error: 400 Bad Request if the ID is not a UUID (validated by middleware)
// Error: 404 Not Found if the model does not exist
func (h *ModelHandler) Model(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, "modelId")

	allocModel, err := h.portfolioService.GetModel(modelID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, allocModel)
}

// CreateModel handles POST requests to create a standalone allocation model.
// Weights must sum to 1.0 within tolerance.
//
// Endpoint: POST /api/models
// Request Body: CreateModelRequest (name, allocations)
// Response: 201 Created with AllocationModel
// Error: 400 Bad Request if validation fails or weights do not sum to 1.0
func (h *ModelHandler) CreateModel(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateModelRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateModel(req); err != nil {
		respondServiceError(w, err)
		return
	}

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

	response.RespondJSON(w, http.StatusCreated, created)
}
