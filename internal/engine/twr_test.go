package engine_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/engine"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// chainLink manually chain-links sub-period factors over the given boundary
// dates using the documented rules: value at the close of the day before each
// sub-period plus the flows dated on its first day, against the value at the
// sub-period's end (the close before an interior boundary, the end date's own
// close for the last). It is the hand-computed cross-check the engine must
// agree with.
func chainLink(t *testing.T, pid string, txs []model.Transaction, boundaries []time.Time, oracle engine.PriceOracle) float64 {
	t.Helper()
	ctx := context.Background()

	flows := make(map[time.Time]float64)
	for _, tx := range txs {
		if tx.IsExternalFlow() {
			flows[tx.OccurredOn] += tx.CashAmount
		}
	}

	valueOn := func(on time.Time) float64 {
		v, err := engine.MarketValue(ctx, engine.Replay(pid, txs, on), on, oracle)
		if err != nil {
			t.Fatalf("MarketValue(%s) returned unexpected error: %v", on.Format("2006-01-02"), err)
		}
		return v
	}

	cumulative := 1.0
	for i := 0; i < len(boundaries)-1; i++ {
		pStart, pEnd := boundaries[i], boundaries[i+1]
		adjusted := valueOn(pStart.AddDate(0, 0, -1)) + flows[pStart]
		if adjusted == 0 {
			continue
		}
		if i+1 < len(boundaries)-1 {
			pEnd = pEnd.AddDate(0, 0, -1)
		}
		cumulative *= valueOn(pEnd) / adjusted
	}
	return (cumulative - 1) * 100
}

// TestTimeWeightedReturn_DepositAndTradeScenario tests the full statement
// scenario: a funded portfolio trading through three price regimes.
//
// WHY: This is the canonical worked example for the return engine. The engine
// result must match a manual chain-linking of the cash-flow-delimited
// sub-periods computed from the same ledger, and the concrete number must stay
// pinned so regressions in replay, valuation or chaining cannot hide.
func TestTimeWeightedReturn_DepositAndTradeScenario(t *testing.T) {
	pid := "p1"
	txs := []model.Transaction{
		mustDeposit(t, pid, 15500, day(1)),
		mustBuy(t, pid, "VWRL", 100, 100, day(1)),
		mustBuy(t, pid, "VWRL", 50, 110, day(15)),
		mustSell(t, pid, "VWRL", 30, 120, day(32)),
	}
	oracle := steppedOracle("VWRL", []priceStep{
		{fromDay: 1, price: 115},
		{fromDay: 15, price: 125},
		{fromDay: 32, price: 130},
	})

	t.Run("engine agrees with manual chain-linking", func(t *testing.T) {
		// The only external flow is the day-1 deposit (trades swap cash for
		// holdings inside the portfolio), so the boundaries are day 1 and
		// day 32.
		got, err := engine.TimeWeightedReturn(context.Background(), pid, txs, day(1), day(32), oracle)
		if err != nil {
			t.Fatalf("TimeWeightedReturn() returned unexpected error: %v", err)
		}

		want := chainLink(t, pid, txs, []time.Time{day(1), day(32)}, oracle)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Expected TWR %v to equal manual chain-link %v", got, want)
		}
	})

	t.Run("pins the concrete return value", func(t *testing.T) {
		// End state: cash 15500-10000-5500+3600 = 3600, 120 units at 130.
		// Single sub-period: 19200 / 15500.
		got, err := engine.TimeWeightedReturn(context.Background(), pid, txs, day(1), day(32), oracle)
		if err != nil {
			t.Fatalf("TimeWeightedReturn() returned unexpected error: %v", err)
		}

		want := (19200.0/15500.0 - 1) * 100
		if math.Abs(got-want) > 0.01 {
			t.Errorf("Expected TWR %.4f, got %.4f", want, got)
		}
	})

	t.Run("a mid-period dividend splits the chain", func(t *testing.T) {
		// A dividend is an external flow, so day 20 becomes a boundary and
		// the period chain-links across it.
		dividend, err := model.NewDividend(pid, "VWRL", 450, day(20))
		if err != nil {
			t.Fatalf("NewDividend returned unexpected error: %v", err)
		}
		withDividend := append(append([]model.Transaction{}, txs...), dividend)

		got, err := engine.TimeWeightedReturn(context.Background(), pid, withDividend, day(1), day(32), oracle)
		if err != nil {
			t.Fatalf("TimeWeightedReturn() returned unexpected error: %v", err)
		}

		want := chainLink(t, pid, withDividend, []time.Time{day(1), day(20), day(32)}, oracle)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Expected TWR %v to equal manual chain-link %v", got, want)
		}
		single := chainLink(t, pid, txs, []time.Time{day(1), day(32)}, oracle)
		if math.Abs(got-single) < 1e-9 {
			t.Errorf("Expected the dividend to change the chained return, still %v", got)
		}
	})
}

// TestTimeWeightedReturn_ChainLinkIdentity tests the no-flow reduction.
//
// WHY: With no external flows in range the chain must collapse to a single
// whole-period factor, the plain growth of the starting value. This identity
// is what makes the sub-period machinery trustworthy.
func TestTimeWeightedReturn_ChainLinkIdentity(t *testing.T) {
	t.Run("no flows reduce to single-period growth", func(t *testing.T) {
		// Setup: position established well before the window, no flows inside it.
		pid := "p1"
		txs := []model.Transaction{
			mustDeposit(t, pid, 10000, day(1)),
			mustBuy(t, pid, "VWRL", 100, 100, day(1)),
		}
		oracle := steppedOracle("VWRL", []priceStep{
			{fromDay: 1, price: 100},
			{fromDay: 10, price: 100},
			{fromDay: 20, price: 110},
		})

		// Execute
		got, err := engine.TimeWeightedReturn(context.Background(), pid, txs, day(10), day(25), oracle)
		if err != nil {
			t.Fatalf("TimeWeightedReturn() returned unexpected error: %v", err)
		}

		// Assert: the price holds at 100 across the window's opening, so the
		// starting value is 10000 and the ending value is 100*110 = 11000.
		want := (11000.0/10000.0 - 1) * 100
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Expected TWR %v, got %v", want, got)
		}
	})

	t.Run("flat prices yield zero return regardless of deposits", func(t *testing.T) {
		// A deposit moves the portfolio's size but not its performance. With
		// prices flat, the chained return must be exactly zero.
		pid := "p1"
		txs := []model.Transaction{
			mustDeposit(t, pid, 10000, day(1)),
			mustBuy(t, pid, "VWRL", 100, 100, day(1)),
			mustDeposit(t, pid, 7000, day(10)),
		}
		oracle := fixedOracle(100)

		got, err := engine.TimeWeightedReturn(context.Background(), pid, txs, day(1), day(20), oracle)
		if err != nil {
			t.Fatalf("TimeWeightedReturn() returned unexpected error: %v", err)
		}

		if math.Abs(got) > 1e-9 {
			t.Errorf("Expected zero TWR under flat prices, got %v", got)
		}
	})
}

// TestTimeWeightedReturn_EdgeCases tests the degenerate ranges.
//
// WHY: Empty ledgers, same-day ranges and zero starting values must come out
// as calm zeros, not NaN or infinity leaking into reports.
func TestTimeWeightedReturn_EdgeCases(t *testing.T) {
	t.Run("zero transactions still compute a whole-period return of zero", func(t *testing.T) {
		got, err := engine.TimeWeightedReturn(context.Background(), "p1", nil, day(1), day(30), fixedOracle(100))

		if err != nil {
			t.Fatalf("TimeWeightedReturn() returned unexpected error: %v", err)
		}
		if got != 0 {
			t.Errorf("Expected 0 for an empty ledger, got %v", got)
		}
	})

	t.Run("same-day start and end with no flows yields zero", func(t *testing.T) {
		pid := "p1"
		txs := []model.Transaction{
			mustDeposit(t, pid, 10000, day(1)),
			mustBuy(t, pid, "VWRL", 100, 100, day(1)),
		}

		got, err := engine.TimeWeightedReturn(context.Background(), pid, txs, day(5), day(5), fixedOracle(100))

		if err != nil {
			t.Fatalf("TimeWeightedReturn() returned unexpected error: %v", err)
		}
		if got != 0 {
			t.Errorf("Expected 0 for a same-day range, got %v", got)
		}
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		_, err := engine.TimeWeightedReturn(context.Background(), "p1", nil, day(10), day(5), fixedOracle(100))

		if err == nil {
			t.Fatal("Expected error for inverted range, got nil")
		}
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})

	t.Run("oracle failure propagates instead of returning a partial chain", func(t *testing.T) {
		pid := "p1"
		txs := []model.Transaction{
			mustDeposit(t, pid, 10000, day(1)),
			mustBuy(t, pid, "VWRL", 100, 100, day(1)),
		}
		oracle := steppedOracle("VWRL", []priceStep{{fromDay: 1, price: 100}})
		failing := oracleFunc(func(symbol string, on time.Time) (float64, error) {
			if !on.Before(day(15)) {
				return 0, apperrors.ErrUpstreamUnavailable
			}
			return oracle(symbol, on)
		})

		_, err := engine.TimeWeightedReturn(context.Background(), pid, txs, day(5), day(20), failing)

		if err == nil {
			t.Fatal("Expected error when the oracle fails mid-range, got nil")
		}
		if !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
			t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
		}
	})
}
