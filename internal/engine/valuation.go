package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// valuationConcurrency caps parallel oracle lookups during a single valuation.
const valuationConcurrency = 8

// holdingValues prices every holding as of a date and returns the values in
// holding order. Lookups run concurrently; the first oracle failure cancels
// the rest and fails the whole valuation. Cash-class holdings are valued at a
// unit price of 1.0 without consulting the oracle.
func holdingValues(ctx context.Context, holdings []model.Holding, on time.Time, oracle PriceOracle) ([]float64, error) {
	values := make([]float64, len(holdings))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(valuationConcurrency)
	for i, holding := range holdings {
		if holding.AssetClass == model.ClassCash {
			values[i] = holding.Quantity
			continue
		}
		i, holding := i, holding
		g.Go(func() error {
			price, err := oracle.Price(ctx, holding.Symbol, holding.AssetClass, on)
			if err != nil {
				return err
			}
			values[i] = holding.Quantity * price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// MarketValue computes the total value of a portfolio state on a date: the
// cash balance plus every holding priced through the oracle. Holdings arrive
// sorted by symbol and are summed in that order, so the floating point result
// is identical across runs even though prices are fetched concurrently.
func MarketValue(ctx context.Context, state model.PortfolioState, on time.Time, oracle PriceOracle) (float64, error) {
	values, err := holdingValues(ctx, state.Holdings, on, oracle)
	if err != nil {
		return 0, err
	}

	total := state.CashBalance
	for _, v := range values {
		total += v
	}
	return total, nil
}
