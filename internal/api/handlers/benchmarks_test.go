package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/testutil"
)

func setupBenchmarkHandler(t *testing.T) (*BenchmarkHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ps := testutil.NewTestPerformanceService(t, db)
	return NewBenchmarkHandler(ps), db
}

func TestBenchmarkHandler_Benchmarks(t *testing.T) {
	t.Run("returns empty array when no benchmarks exist", func(t *testing.T) {
		handler, _ := setupBenchmarkHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/benchmarks", nil)
		w := httptest.NewRecorder()

		handler.Benchmarks(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Benchmark
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response == nil {
			t.Error("Expected non-nil array, got nil")
		}
		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d benchmarks", len(response))
		}
	})

	t.Run("lists benchmarks in symbol order", func(t *testing.T) {
		handler, db := setupBenchmarkHandler(t)

		second := testutil.NewBenchmark().WithSymbol("SPX").WithName("S&P 500").Build(t, db)
		first := testutil.NewBenchmark().WithSymbol("AEX").WithName("Amsterdam Exchange").Build(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/benchmarks", nil)
		w := httptest.NewRecorder()

		handler.Benchmarks(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Benchmark
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Fatalf("Expected 2 benchmarks, got %d", len(response))
		}
		if response[0].ID != first.ID || response[1].ID != second.ID {
			t.Errorf("Expected symbol order [AEX SPX], got [%s %s]",
				response[0].Symbol, response[1].Symbol)
		}
	})
}

func TestBenchmarkHandler_CreateBenchmark(t *testing.T) {
	t.Run("registers a benchmark", func(t *testing.T) {
		handler, db := setupBenchmarkHandler(t)

		payload := map[string]any{"name": "MSCI World", "symbol": "MWRD"}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/benchmarks", payload, nil)
		w := httptest.NewRecorder()

		handler.CreateBenchmark(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Benchmark
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID == "" {
			t.Error("Expected a generated benchmark ID, got empty")
		}
		if response.Name != "MSCI World" || response.Symbol != "MWRD" {
			t.Errorf("Expected MSCI World/MWRD, got %s/%s", response.Name, response.Symbol)
		}

		testutil.AssertRowCount(t, db, "benchmark", 1)
	})

	t.Run("returns 409 for a duplicate symbol", func(t *testing.T) {
		handler, db := setupBenchmarkHandler(t)
		testutil.NewBenchmark().WithSymbol("SPX").Build(t, db)

		payload := map[string]any{"name": "Another S&P", "symbol": "SPX"}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/benchmarks", payload, nil)
		w := httptest.NewRecorder()

		handler.CreateBenchmark(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "benchmark", 1)
	})

	t.Run("returns 400 when name or symbol is missing", func(t *testing.T) {
		handler, db := setupBenchmarkHandler(t)

		payload := map[string]any{"name": "Nameless Index"}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/benchmarks", payload, nil)
		w := httptest.NewRecorder()

		handler.CreateBenchmark(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
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
		if _, ok := response.Details["symbol"]; !ok {
			t.Error("Expected a symbol field error")
		}

		testutil.AssertRowCount(t, db, "benchmark", 0)
	})

	t.Run("returns 400 for malformed JSON", func(t *testing.T) {
		handler, _ := setupBenchmarkHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/benchmarks", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.CreateBenchmark(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
