package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/testutil"
)

func setupTransactionHandler(t *testing.T) (*TransactionHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	as := testutil.NewTestAccountingService(t, db)
	return NewTransactionHandler(as), db
}

func TestTransactionHandler_Transactions(t *testing.T) {
	t.Run("returns empty array when the ledger is empty", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Empty Ledger")

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolios/"+p.ID+"/transactions",
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response == nil {
			t.Error("Expected non-nil array, got nil")
		}

		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d transactions", len(response))
		}
	})

	t.Run("returns the ledger in replay order", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Ordered Ledger")

		// Insert out of date order; the endpoint must sort by occurred-on
		buy := testutil.CreateBuy(t, db, p.ID, "VWRL", 10, 100, testutil.Date(2024, 1, 5))
		deposit := testutil.CreateDeposit(t, db, p.ID, 5000, testutil.Date(2024, 1, 2))

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolios/"+p.ID+"/transactions",
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Fatalf("Expected 2 transactions, got %d", len(response))
		}

		if response[0].ID != deposit.ID {
			t.Errorf("Expected deposit first, got %s", response[0].Kind)
		}
		if response[1].ID != buy.ID {
			t.Errorf("Expected buy second, got %s", response[1].Kind)
		}
	})

	t.Run("returns 404 for unknown portfolio", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		unknown := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolios/"+unknown+"/transactions",
			map[string]string{"portfolioId": unknown},
		)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("records a buy and derives its cash impact", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Buy Portfolio")

		payload := map[string]any{
			"kind":       "buy",
			"assetClass": "equity",
			"symbol":     "VWRL",
			"quantity":   10,
			"unitPrice":  100,
			"occurredOn": "2024-01-02",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/api/portfolios/"+p.ID+"/transactions",
			payload,
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID == "" {
			t.Error("Expected ID to be generated")
		}
		if response.Kind != model.KindBuy {
			t.Errorf("Expected kind 'buy', got '%s'", response.Kind)
		}
		// Cash impact comes from the trade legs, not the caller
		if response.CashAmount != -1000 {
			t.Errorf("Expected cash amount -1000, got %v", response.CashAmount)
		}

		testutil.AssertRowCount(t, db, "portfolio_transaction", 1)
	})

	t.Run("records a cash deposit with a positive cash impact", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Deposit Portfolio")

		payload := map[string]any{
			"kind":       "cash_deposit",
			"amount":     2500.50,
			"occurredOn": "2024-01-02",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/api/portfolios/"+p.ID+"/transactions",
			payload,
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.CashAmount != 2500.50 {
			t.Errorf("Expected cash amount 2500.50, got %v", response.CashAmount)
		}
	})

	t.Run("records a withdrawal with a negative cash impact", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Withdrawal Portfolio")

		payload := map[string]any{
			"kind":       "cash_withdrawal",
			"amount":     500,
			"occurredOn": "2024-01-03",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/api/portfolios/"+p.ID+"/transactions",
			payload,
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.CashAmount != -500 {
			t.Errorf("Expected cash amount -500, got %v", response.CashAmount)
		}
	})

	t.Run("accepts a sell that exceeds held quantity", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Oversell Portfolio")

		// Nothing held; the ledger is append-only and replay flags this
		// later instead of the write rejecting it
		payload := map[string]any{
			"kind":       "sell",
			"assetClass": "equity",
			"symbol":     "VWRL",
			"quantity":   5,
			"unitPrice":  110,
			"occurredOn": "2024-01-02",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/api/portfolios/"+p.ID+"/transactions",
			payload,
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		testutil.AssertRowCount(t, db, "portfolio_transaction", 1)
	})

	t.Run("returns 400 when trade fields are missing", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Invalid Trade Portfolio")

		payload := map[string]any{
			"kind":       "buy",
			"occurredOn": "2024-01-02",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/api/portfolios/"+p.ID+"/transactions",
			payload,
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}

		var response map[string]any
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response["error"] != "validation failed" {
			t.Errorf("Expected validation error, got '%v'", response["error"])
		}

		testutil.AssertRowCount(t, db, "portfolio_transaction", 0)
	})

	t.Run("returns 400 for an unknown kind", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Unknown Kind Portfolio")

		payload := map[string]any{
			"kind":       "transfer",
			"amount":     100,
			"occurredOn": "2024-01-02",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/api/portfolios/"+p.ID+"/transactions",
			payload,
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for a malformed date", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Bad Date Ledger")

		payload := map[string]any{
			"kind":       "cash_deposit",
			"amount":     100,
			"occurredOn": "02-01-2024",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/api/portfolios/"+p.ID+"/transactions",
			payload,
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown portfolio", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		unknown := testutil.MakeID()

		payload := map[string]any{
			"kind":       "cash_deposit",
			"amount":     100,
			"occurredOn": "2024-01-02",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/api/portfolios/"+unknown+"/transactions",
			payload,
			map[string]string{"portfolioId": unknown},
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_Anomalies(t *testing.T) {
	t.Run("returns empty array for a consistent ledger", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Clean Ledger")
		testutil.CreateDeposit(t, db, p.ID, 10000, testutil.Date(2024, 1, 1))
		testutil.CreateBuy(t, db, p.ID, "VWRL", 10, 100, testutil.Date(2024, 1, 2))
		testutil.CreateSell(t, db, p.ID, "VWRL", 5, 110, testutil.Date(2024, 1, 3))

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolios/"+p.ID+"/anomalies",
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.Anomalies(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.LedgerAnomaly
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 0 {
			t.Errorf("Expected no anomalies, got %d", len(response))
		}
	})

	t.Run("flags an oversell", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Oversold Ledger")
		testutil.CreateDeposit(t, db, p.ID, 10000, testutil.Date(2024, 1, 1))
		testutil.CreateBuy(t, db, p.ID, "VWRL", 10, 100, testutil.Date(2024, 1, 2))
		sell := testutil.CreateSell(t, db, p.ID, "VWRL", 15, 110, testutil.Date(2024, 1, 3))

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolios/"+p.ID+"/anomalies",
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.Anomalies(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.LedgerAnomaly
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 anomaly, got %d", len(response))
		}

		anomaly := response[0]
		if anomaly.Kind != model.AnomalyOversell {
			t.Errorf("Expected kind 'oversell', got '%s'", anomaly.Kind)
		}
		if anomaly.Symbol != "VWRL" {
			t.Errorf("Expected symbol 'VWRL', got '%s'", anomaly.Symbol)
		}
		if anomaly.TransactionID != sell.ID {
			t.Errorf("Expected transaction ID %s, got %s", sell.ID, anomaly.TransactionID)
		}
	})

	t.Run("flags cash going negative", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.CreatePortfolio(t, db, "Margin Ledger")
		testutil.CreateDeposit(t, db, p.ID, 500, testutil.Date(2024, 1, 1))
		testutil.CreateBuy(t, db, p.ID, "VWRL", 10, 100, testutil.Date(2024, 1, 2))

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolios/"+p.ID+"/anomalies",
			map[string]string{"portfolioId": p.ID},
		)
		w := httptest.NewRecorder()

		handler.Anomalies(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.LedgerAnomaly
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 anomaly, got %d", len(response))
		}

		if response[0].Kind != model.AnomalyNegativeCash {
			t.Errorf("Expected kind 'negative_cash', got '%s'", response[0].Kind)
		}
	})

	t.Run("returns 404 for unknown portfolio", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		unknown := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolios/"+unknown+"/anomalies",
			map[string]string{"portfolioId": unknown},
		)
		w := httptest.NewRecorder()

		handler.Anomalies(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
