package engine_test

import (
	"context"
	"fmt"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// oracleFunc adapts a plain function to the engine.PriceOracle interface so
// tests can describe price schedules inline.
type oracleFunc func(symbol string, on time.Time) (float64, error)

func (f oracleFunc) Price(_ context.Context, symbol string, _ model.AssetClass, on time.Time) (float64, error) {
	return f(symbol, on)
}

// fixedOracle prices every symbol at the same value on every date.
func fixedOracle(price float64) oracleFunc {
	return func(string, time.Time) (float64, error) {
		return price, nil
	}
}

// tableOracle prices each symbol from a per-symbol constant, failing lookups
// for symbols outside the table.
func tableOracle(prices map[string]float64) oracleFunc {
	return func(symbol string, on time.Time) (float64, error) {
		price, ok := prices[symbol]
		if !ok {
			return 0, fmt.Errorf("%w: no price for %s on %s",
				apperrors.ErrUpstreamUnavailable, symbol, on.Format("2006-01-02"))
		}
		return price, nil
	}
}

// steppedOracle prices a single symbol along the day-numbered regime changes
// the statement scenarios use: each step applies from its day onward.
type priceStep struct {
	fromDay int
	price   float64
}

func steppedOracle(symbol string, steps []priceStep) oracleFunc {
	return func(s string, on time.Time) (float64, error) {
		if s != symbol {
			return 0, fmt.Errorf("%w: no price for %s", apperrors.ErrUpstreamUnavailable, s)
		}
		price := 0.0
		found := false
		for _, step := range steps {
			if !on.Before(day(step.fromDay)) {
				price = step.price
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: no price for %s on %s",
				apperrors.ErrUpstreamUnavailable, s, on.Format("2006-01-02"))
		}
		return price, nil
	}
}
