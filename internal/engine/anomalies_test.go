package engine_test

import (
	"testing"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/engine"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// TestDetectAnomalies tests the ledger audit fold.
//
// WHY: Replay deliberately tolerates bad ledgers so reads never fail; the
// audit is the only place those problems become visible. It has to flag
// exactly the entries replay warned about, and nothing else.
func TestDetectAnomalies(t *testing.T) {
	t.Run("a clean ledger reports nothing", func(t *testing.T) {
		// Setup
		pid := "p1"
		txs := []model.Transaction{
			mustDeposit(t, pid, 10000, day(1)),
			mustBuy(t, pid, "VWRL", 50, 100, day(2)),
			mustSell(t, pid, "VWRL", 20, 110, day(10)),
		}

		// Execute
		anomalies := engine.DetectAnomalies(pid, txs)

		// Assert
		if len(anomalies) != 0 {
			t.Errorf("Expected no anomalies for a clean ledger, got %+v", anomalies)
		}
	})

	t.Run("selling more than held is flagged as an oversell", func(t *testing.T) {
		pid := "p1"
		txs := []model.Transaction{
			mustDeposit(t, pid, 10000, day(1)),
			mustBuy(t, pid, "VWRL", 10, 100, day(2)),
			mustSell(t, pid, "VWRL", 15, 100, day(3)),
		}

		anomalies := engine.DetectAnomalies(pid, txs)

		if len(anomalies) != 1 {
			t.Fatalf("Expected 1 anomaly, got %d: %+v", len(anomalies), anomalies)
		}
		a := anomalies[0]
		if a.Kind != model.AnomalyOversell {
			t.Errorf("Expected oversell kind, got %q", a.Kind)
		}
		if a.Symbol != "VWRL" {
			t.Errorf("Expected symbol VWRL, got %q", a.Symbol)
		}
		if a.TransactionID != txs[2].ID {
			t.Errorf("Expected the sell's transaction ID, got %q", a.TransactionID)
		}
		if !a.OccurredOn.Equal(day(3)) {
			t.Errorf("Expected occurredOn day 3, got %v", a.OccurredOn)
		}
	})

	t.Run("selling a never-bought symbol is an oversell against zero", func(t *testing.T) {
		pid := "p1"
		txs := []model.Transaction{
			mustDeposit(t, pid, 1000, day(1)),
			mustSell(t, pid, "GHOST", 5, 10, day(2)),
		}

		anomalies := engine.DetectAnomalies(pid, txs)

		if len(anomalies) != 1 || anomalies[0].Kind != model.AnomalyOversell {
			t.Fatalf("Expected a single oversell anomaly, got %+v", anomalies)
		}
	})

	t.Run("a full sale within float residue is not an oversell", func(t *testing.T) {
		pid := "p1"
		txs := []model.Transaction{
			mustDeposit(t, pid, 1000, day(1)),
			mustBuy(t, pid, "VWRL", 0.1, 100, day(2)),
			mustBuy(t, pid, "VWRL", 0.2, 100, day(3)),
			// 0.1+0.2 != 0.3 in floats; selling 0.3 must still be clean.
			mustSell(t, pid, "VWRL", 0.3, 100, day(4)),
		}

		anomalies := engine.DetectAnomalies(pid, txs)

		if len(anomalies) != 0 {
			t.Errorf("Expected float residue to be tolerated, got %+v", anomalies)
		}
	})

	t.Run("cash going negative is reported once per dip", func(t *testing.T) {
		pid := "p1"
		withdraw := func(amount float64, dayN int) model.Transaction {
			tx, err := model.NewCashWithdrawal(pid, amount, day(dayN))
			if err != nil {
				t.Fatalf("NewCashWithdrawal returned unexpected error: %v", err)
			}
			return tx
		}
		txs := []model.Transaction{
			mustDeposit(t, pid, 100, day(1)),
			withdraw(150, 2), // dips to -50
			withdraw(10, 3),  // still negative, same dip
			mustDeposit(t, pid, 200, day(4)),
			withdraw(200, 5), // second dip
		}

		anomalies := engine.DetectAnomalies(pid, txs)

		if len(anomalies) != 2 {
			t.Fatalf("Expected 2 negative-cash anomalies, got %d: %+v", len(anomalies), anomalies)
		}
		for _, a := range anomalies {
			if a.Kind != model.AnomalyNegativeCash {
				t.Errorf("Expected negative_cash kind, got %q", a.Kind)
			}
		}
		if !anomalies[0].OccurredOn.Equal(day(2)) || !anomalies[1].OccurredOn.Equal(day(5)) {
			t.Errorf("Expected dips on days 2 and 5, got %v and %v", anomalies[0].OccurredOn, anomalies[1].OccurredOn)
		}
	})

	t.Run("buying on margin flags the buy that crossed zero", func(t *testing.T) {
		pid := "p1"
		txs := []model.Transaction{
			mustDeposit(t, pid, 500, day(1)),
			mustBuy(t, pid, "VWRL", 10, 100, day(2)), // costs 1000, cash -500
		}

		anomalies := engine.DetectAnomalies(pid, txs)

		if len(anomalies) != 1 {
			t.Fatalf("Expected 1 anomaly, got %d: %+v", len(anomalies), anomalies)
		}
		if anomalies[0].Kind != model.AnomalyNegativeCash || anomalies[0].TransactionID != txs[1].ID {
			t.Errorf("Expected the buy flagged for negative cash, got %+v", anomalies[0])
		}
	})
}
