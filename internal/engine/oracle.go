package engine

import (
	"context"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// PriceOracle supplies the price of one symbol on one date. Implementations
// must return an error wrapping apperrors.ErrUpstreamUnavailable when no price
// can be produced; returning a made-up value (in particular zero) would
// silently corrupt every valuation built on top.
type PriceOracle interface {
	Price(ctx context.Context, symbol string, class model.AssetClass, on time.Time) (float64, error)
}

// dateOnly strips a timestamp down to its UTC calendar day. All engine
// arithmetic is day-granular; normalizing here keeps map keys and comparisons
// consistent regardless of how callers constructed their times.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
