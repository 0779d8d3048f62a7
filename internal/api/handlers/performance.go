package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/validation"
)

// PerformanceHandler handles HTTP requests for portfolio performance reports.
type PerformanceHandler struct {
	performanceService *service.PerformanceService
}

// NewPerformanceHandler creates a new PerformanceHandler with the provided service dependency.
func NewPerformanceHandler(performanceService *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{
		performanceService: performanceService,
	}
}

// PerformanceResponse is the combined performance report for a portfolio
// over a date range. TimeWeightedReturn, BenchmarkReturn and MaxDrawdown are
// percentages rounded to two decimals; Volatility and SharpeRatio are ratios
// kept at full precision.
type PerformanceResponse struct {
	PortfolioID        string   `json:"portfolioId"`
	StartDate          string   `json:"startDate"`
	EndDate            string   `json:"endDate"`
	TimeWeightedReturn float64  `json:"timeWeightedReturn"`
	BenchmarkReturn    *float64 `json:"benchmarkReturn,omitempty"`
	Volatility         float64  `json:"volatility"`
	SharpeRatio        float64  `json:"sharpeRatio"`
	MaxDrawdown        float64  `json:"maxDrawdown"`
}

// Performance handles GET requests for a portfolio's performance report:
// time-weighted return plus risk metrics over a date range, optionally
// compared against a benchmark's return over the same range.
//
// Endpoint: GET /api/portfolios/{portfolioId}/performance?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD&benchmark_id=
// Response: 200 OK with PerformanceResponse
// Error: 400 Bad Request if dates are missing, malformed, or run backward
// Error: 404 Not Found if the portfolio or benchmark does not exist
// Error: 502 Bad Gateway if a valuation needs a price no source can supply
func (h *PerformanceHandler) Performance(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	start, err := parseDateParam(r, "start_date")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD", err.Error())
		return
	}
	end, err := parseDateParam(r, "end_date")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD", err.Error())
		return
	}
	if start.IsZero() || end.IsZero() {
		response.RespondError(w, http.StatusBadRequest, "start_date and end_date are required", "")
		return
	}

	benchmarkID := r.URL.Query().Get("benchmark_id")
	if benchmarkID != "" {
		if err := validation.ValidateUUID(benchmarkID); err != nil {
			respondServiceError(w, err)
			return
		}
	}

	report, err := h.performanceService.Report(r.Context(), portfolioID, start, end, benchmarkID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := PerformanceResponse{
		PortfolioID:        report.PortfolioID,
		StartDate:          report.StartDate.Format(dateLayout),
		EndDate:            report.EndDate.Format(dateLayout),
		TimeWeightedReturn: response.Round(report.TimeWeightedReturn),
		Volatility:         report.Volatility,
		SharpeRatio:        report.SharpeRatio,
		MaxDrawdown:        response.Round(report.MaxDrawdown),
	}
	if report.BenchmarkReturn != nil {
		rounded := response.Round(*report.BenchmarkReturn)
		resp.BenchmarkReturn = &rounded
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
