package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// MinTradeValue is the absolute cash value below which a proposed rebalancing
// trade is noise and gets dropped.
const MinTradeValue = 0.01

// ComputeDrift measures how far a portfolio's actual weights sit from its
// allocation model's targets on a date.
//
// The symbol universe is the union of the model's symbols and the symbols
// actually held: a held position absent from the model drifts against a
// target of zero, and a model line the portfolio never bought shows up as
// fully underweight. Weights are fractions of total market value including
// cash; an empty portfolio (zero total) weighs everything at zero. Entries
// come back sorted by symbol.
func ComputeDrift(ctx context.Context, alloc model.AllocationModel, state model.PortfolioState, on time.Time, oracle PriceOracle) ([]model.DriftEntry, error) {
	entries, _, err := driftTable(ctx, alloc, state, on, oracle)
	return entries, err
}

// ProposeRebalance turns drift into the trades that would close it: for each
// symbol, the difference between its target value (target weight times total
// market value) and its current value, as a buy when short of target and a
// sell when over it. Trades under MinTradeValue are dropped. The proposal
// carries the total market value and drift table the trades were derived
// from, both computed in the same pricing pass.
func ProposeRebalance(ctx context.Context, alloc model.AllocationModel, state model.PortfolioState, on time.Time, oracle PriceOracle) (model.RebalanceProposal, error) {
	entries, total, err := driftTable(ctx, alloc, state, on, oracle)
	if err != nil {
		return model.RebalanceProposal{}, err
	}

	trades := make([]model.RebalancingTrade, 0, len(entries))
	for _, entry := range entries {
		tradeValue := entry.TargetWeight*total - entry.CurrentValue
		if math.Abs(tradeValue) < MinTradeValue {
			continue
		}
		side := model.TradeSideBuy
		if tradeValue < 0 {
			side = model.TradeSideSell
		}
		trades = append(trades, model.RebalancingTrade{
			Symbol: entry.Symbol,
			Side:   side,
			Value:  math.Abs(tradeValue),
		})
	}

	return model.RebalanceProposal{
		PortfolioID:      state.PortfolioID,
		AsOf:             dateOnly(on),
		TotalMarketValue: total,
		DriftEntries:     entries,
		Trades:           trades,
	}, nil
}

// driftTable prices the portfolio once and builds the per-symbol drift
// entries over the union of modeled and held symbols, sorted by symbol.
func driftTable(ctx context.Context, alloc model.AllocationModel, state model.PortfolioState, on time.Time, oracle PriceOracle) ([]model.DriftEntry, float64, error) {
	valueBySymbol, total, err := symbolValues(ctx, state, on, oracle)
	if err != nil {
		return nil, 0, err
	}

	targets := make(map[string]float64, len(alloc.Allocations))
	for _, a := range alloc.Allocations {
		targets[a.Symbol] = a.Weight
	}

	entries := make([]model.DriftEntry, 0, len(targets))
	for _, symbol := range symbolUniverse(targets, valueBySymbol) {
		current := 0.0
		if total != 0 {
			current = valueBySymbol[symbol] / total
		}
		target := targets[symbol]
		entries = append(entries, model.DriftEntry{
			Symbol:        symbol,
			TargetWeight:  target,
			CurrentWeight: current,
			CurrentValue:  valueBySymbol[symbol],
			Drift:         current - target,
		})
	}
	return entries, total, nil
}

// symbolValues prices each holding on a date and returns per-symbol values
// plus the portfolio total including cash.
func symbolValues(ctx context.Context, state model.PortfolioState, on time.Time, oracle PriceOracle) (map[string]float64, float64, error) {
	values, err := holdingValues(ctx, state.Holdings, on, oracle)
	if err != nil {
		return nil, 0, err
	}

	valueBySymbol := make(map[string]float64, len(state.Holdings))
	total := state.CashBalance
	for i, holding := range state.Holdings {
		valueBySymbol[holding.Symbol] = values[i]
		total += values[i]
	}
	return valueBySymbol, total, nil
}

// symbolUniverse is the sorted union of modeled and held symbols.
func symbolUniverse(targets, held map[string]float64) []string {
	seen := make(map[string]bool, len(targets)+len(held))
	universe := make([]string, 0, len(targets)+len(held))
	for symbol := range targets {
		if !seen[symbol] {
			seen[symbol] = true
			universe = append(universe, symbol)
		}
	}
	for symbol := range held {
		if !seen[symbol] {
			seen[symbol] = true
			universe = append(universe, symbol)
		}
	}
	sort.Strings(universe)
	return universe
}
