package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/request"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/service"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/validation"
)

// TransactionHandler handles HTTP requests for a portfolio's ledger.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the accountingService. The ledger is append-only, so
// there are no update or delete endpoints.
type TransactionHandler struct {
	accountingService *service.AccountingService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(accountingService *service.AccountingService) *TransactionHandler {
	return &TransactionHandler{
		accountingService: accountingService,
	}
}

// Transactions handles GET requests to retrieve a portfolio's full ledger in
// replay order: by occurred-on date, entries sharing a date in insertion
// order.
//
// Endpoint: GET /api/portfolios/{portfolioId}/transactions
// Response: 200 OK with array of Transaction
// Error: 400 Bad Request if the ID is not a UUID (validated by middleware)
// Error: 404 Not Found if the portfolio does not exist
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	transactions, err := h.accountingService.Transactions(portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST requests to append one ledger entry to a
// portfolio. The cash impact is derived from the kind, never taken from the
// caller: trades from quantity times unit price, cash kinds from the signed
// interpretation of amount.
//
// Endpoint: POST /api/portfolios/{portfolioId}/transactions
// Request Body: CreateTransactionRequest (kind, occurredOn, and the fields the kind requires)
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the portfolio does not exist
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		respondServiceError(w, err)
		return
	}

	transaction, err := h.accountingService.RecordTransaction(r.Context(), portfolioID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// Anomalies handles GET requests to audit a portfolio's ledger. Replay
// tolerates inconsistent ledgers so reads never fail; this endpoint is where
// those inconsistencies surface: oversells and cash dipping below zero. An
// empty array means the ledger is internally consistent.
//
// Endpoint: GET /api/portfolios/{portfolioId}/anomalies
// Response: 200 OK with array of LedgerAnomaly
// Error: 400 Bad Request if the ID is not a UUID (validated by middleware)
// Error: 404 Not Found if the portfolio does not exist
func (h *TransactionHandler) Anomalies(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	anomalies, err := h.accountingService.LedgerAnomalies(portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, anomalies)
}
