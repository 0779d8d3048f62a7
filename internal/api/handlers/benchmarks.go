package handlers

import (
	"net/http"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/request"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/validation"
)

// BenchmarkHandler handles HTTP requests for the benchmark registry.
// Benchmarks exist so performance reports have something to compare against;
// their price history fills in through the regular sync.
type BenchmarkHandler struct {
	performanceService *service.PerformanceService
}

// NewBenchmarkHandler creates a new BenchmarkHandler with the provided service dependency.
func NewBenchmarkHandler(performanceService *service.PerformanceService) *BenchmarkHandler {
	return &BenchmarkHandler{
		performanceService: performanceService,
	}
}

// Benchmarks handles GET requests to list all registered benchmarks.
//
// Endpoint: GET /api/benchmarks
// Response: 200 OK with array of Benchmark
// Error: 500 Internal Server Error if retrieval fails
func (h *BenchmarkHandler) Benchmarks(w http.ResponseWriter, _ *http.Request) {
	benchmarks, err := h.performanceService.GetAllBenchmarks()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, benchmarks)
}

// CreateBenchmark handles POST requests to register a benchmark index.
//
// Endpoint: POST /api/benchmarks
// Request Body: CreateBenchmarkRequest (name, symbol)
// Response: 201 Created with Benchmark
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if a benchmark with the same symbol already exists
func (h *BenchmarkHandler) CreateBenchmark(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateBenchmarkRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateBenchmark(req); err != nil {
		respondServiceError(w, err)
		return
	}

	benchmark, err := h.performanceService.CreateBenchmark(r.Context(), req.Name, req.Symbol)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, benchmark)
}
