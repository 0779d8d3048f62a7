package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
)

// RebalanceHandler handles HTTP requests for drift measurement and
// rebalancing proposals. Both require the portfolio to have an allocation
// model assigned; without one the service reports a conflict, not a 404.
type RebalanceHandler struct {
	rebalanceService *service.RebalanceService
}

// NewRebalanceHandler creates a new RebalanceHandler with the provided service dependency.
func NewRebalanceHandler(rebalanceService *service.RebalanceService) *RebalanceHandler {
	return &RebalanceHandler{
		rebalanceService: rebalanceService,
	}
}

// DriftEntryResponse is one symbol's position relative to its model target.
type DriftEntryResponse struct {
	Symbol        string  `json:"symbol"`
	TargetWeight  float64 `json:"targetWeight"`
	CurrentWeight float64 `json:"currentWeight"`
	CurrentValue  float64 `json:"currentValue"`
	Drift         float64 `json:"drift"`
}

// Drift handles GET requests to measure how far a portfolio's actual weights
// sit from its model targets, valued as of an optional date (default today).
//
// Endpoint: GET /api/portfolios/{portfolioId}/drift?as_of=YYYY-MM-DD
// Response: 200 OK with array of DriftEntryResponse, sorted by symbol
// Error: 400 Bad Request if as_of is malformed
// Error: 404 Not Found if the portfolio does not exist
// Error: 409 Conflict if the portfolio has no model assigned
// Error: 502 Bad Gateway if a holding cannot be priced
func (h *RebalanceHandler) Drift(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	asOf, err := parseDateParam(r, "as_of")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD", err.Error())
		return
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	entries, err := h.rebalanceService.Drift(r.Context(), portfolioID, asOf)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, driftEntryResponses(entries))
}

// RebalancingTradeResponse is one proposed trade, by absolute cash value.
type RebalancingTradeResponse struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Value  float64 `json:"value"`
}

// RebalanceProposalResponse is the full rebalancing run: the market value the
// weights were computed against, the drift table, and the proposed trades.
type RebalanceProposalResponse struct {
	PortfolioID      string                     `json:"portfolioId"`
	AsOf             string                     `json:"asOf"`
	TotalMarketValue float64                    `json:"totalMarketValue"`
	DriftEntries     []DriftEntryResponse       `json:"driftEntries"`
	Trades           []RebalancingTradeResponse `json:"trades"`
}

// Rebalance handles GET requests for the trades that would bring a portfolio
// back to its model targets, valued as of an optional date (default today).
// Trades too small to matter are dropped.
//
// Endpoint: GET /api/portfolios/{portfolioId}/rebalance?as_of=YYYY-MM-DD
// Response: 200 OK with RebalanceProposalResponse
// Error: 400 Bad Request if as_of is malformed
// Error: 404 Not Found if the portfolio does not exist
// Error: 409 Conflict if the portfolio has no model assigned
// Error: 502 Bad Gateway if a holding cannot be priced
func (h *RebalanceHandler) Rebalance(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	asOf, err := parseDateParam(r, "as_of")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD", err.Error())
		return
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	proposal, err := h.rebalanceService.ProposeRebalance(r.Context(), portfolioID, asOf)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	trades := make([]RebalancingTradeResponse, len(proposal.Trades))
	for i, trade := range proposal.Trades {
		trades[i] = RebalancingTradeResponse{
			Symbol: trade.Symbol,
			Side:   string(trade.Side),
			Value:  response.Round(trade.Value),
		}
	}

	response.RespondJSON(w, http.StatusOK, RebalanceProposalResponse{
		PortfolioID:      proposal.PortfolioID,
		AsOf:             proposal.AsOf.Format(dateLayout),
		TotalMarketValue: response.Round(proposal.TotalMarketValue),
		DriftEntries:     driftEntryResponses(proposal.DriftEntries),
		Trades:           trades,
	})
}

func driftEntryResponses(entries []model.DriftEntry) []DriftEntryResponse {
	out := make([]DriftEntryResponse, len(entries))
	for i, entry := range entries {
		out[i] = DriftEntryResponse{
			Symbol:        entry.Symbol,
			TargetWeight:  entry.TargetWeight,
			CurrentWeight: entry.CurrentWeight,
			CurrentValue:  response.Round(entry.CurrentValue),
			Drift:         entry.Drift,
		}
	}
	return out
}
