package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// TimeWeightedReturn computes a portfolio's return over [start, end] as a
// percentage, neutralizing the timing and size of external cash flows.
//
// External flows are the entries that move cash across the portfolio
// boundary: deposits, withdrawals, dividends, interest and fees. Buys and
// sells swap cash for holdings inside the portfolio and are not flows.
//
// The calculation:
//  1. Collect the dates of external flows inside the range.
//  2. Boundary dates are start, those flow dates, and end, sorted and
//     deduplicated. Adjacent pairs delimit the sub-periods.
//  3. For each sub-period, value the portfolio at the close of the day
//     before the sub-period starts, add the flows dated on the start day
//     itself, and divide the sub-period's ending value by that adjusted
//     start. A zero adjusted start contributes nothing and is skipped.
//  4. Chain-link the sub-period factors and report (product - 1) * 100.
//
// A sub-period that ends on an interior boundary ends at the close of the day
// before that boundary; the boundary day itself, flows neutralized, belongs
// to the next sub-period. Only the final sub-period ends at the close of the
// end date. Valuing interior boundaries at their own close instead would
// count every interior flow as growth once, which is exactly the distortion
// this measure exists to remove.
//
// The transactions slice must be the portfolio's full ledger, not just the
// entries inside the range: valuing any boundary date requires replaying
// everything before it. A degenerate chain (division spraying NaN or an
// infinity through the product) collapses to 0 rather than leaking a
// non-finite value to callers.
func TimeWeightedReturn(ctx context.Context, portfolioID string, transactions []model.Transaction, start, end time.Time, oracle PriceOracle) (float64, error) {
	start, end = dateOnly(start), dateOnly(end)
	if end.Before(start) {
		return 0, fmt.Errorf("%w: start %s is after end %s", apperrors.ErrInvalidDateRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	flowsByDay := make(map[time.Time]float64)
	for _, tx := range transactions {
		if !tx.IsExternalFlow() {
			continue
		}
		day := dateOnly(tx.OccurredOn)
		if day.Before(start) || day.After(end) {
			continue
		}
		flowsByDay[day] += tx.CashAmount
	}

	boundaries := make([]time.Time, 0, len(flowsByDay)+2)
	boundaries = append(boundaries, start)
	for day := range flowsByDay {
		boundaries = append(boundaries, day)
	}
	boundaries = append(boundaries, end)
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Before(boundaries[j]) })
	boundaries = dedupeDays(boundaries)

	cumulative := 1.0
	for i := 0; i < len(boundaries)-1; i++ {
		periodStart, periodEnd := boundaries[i], boundaries[i+1]

		dayBefore := periodStart.AddDate(0, 0, -1)
		mvBefore, err := MarketValue(ctx, Replay(portfolioID, transactions, dayBefore), dayBefore, oracle)
		if err != nil {
			return 0, err
		}

		adjustedStart := mvBefore + flowsByDay[periodStart]
		if adjustedStart == 0 {
			continue
		}

		valueAt := periodEnd
		if i+1 < len(boundaries)-1 {
			valueAt = periodEnd.AddDate(0, 0, -1)
		}
		mvEnd, err := MarketValue(ctx, Replay(portfolioID, transactions, valueAt), valueAt, oracle)
		if err != nil {
			return 0, err
		}

		cumulative *= mvEnd / adjustedStart
	}

	twr := (cumulative - 1) * 100
	if math.IsNaN(twr) || math.IsInf(twr, 0) {
		log.Warn().
			Str("portfolioId", portfolioID).
			Time("start", start).
			Time("end", end).
			Msg("time-weighted return is not finite, reporting zero")
		return 0, nil
	}
	return twr, nil
}

// dedupeDays removes consecutive duplicates from a sorted day slice.
func dedupeDays(days []time.Time) []time.Time {
	out := days[:0]
	for _, day := range days {
		if len(out) == 0 || !out[len(out)-1].Equal(day) {
			out = append(out, day)
		}
	}
	return out
}
