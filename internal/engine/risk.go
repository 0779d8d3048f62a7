package engine

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// TradingDaysPerYear is the annualization base for daily return statistics.
const TradingDaysPerYear = 252

// ComputeRiskMetrics derives volatility, Sharpe ratio and maximum drawdown
// from a portfolio's daily valuation series over [start, end].
//
// The series holds one valuation per calendar day in the range. Daily returns
// are (V(d) - V(d-1)) / V(d-1); days whose previous valuation is zero produce
// no return observation. Fewer than two valuations in the range means nothing
// can be derived and all three metrics are zero.
//
//   - Volatility is the sample standard deviation of the daily returns,
//     annualized by sqrt(252). Fewer than two returns yields zero.
//   - The Sharpe ratio compares the annualized time-weighted return against
//     riskFreeRate per unit of volatility. Zero volatility yields zero, never
//     a division blowup.
//   - Maximum drawdown walks a cumulative return index, tracks its running
//     peak, and reports the most negative (index - peak) / peak seen, as a
//     percentage.
func ComputeRiskMetrics(ctx context.Context, portfolioID string, transactions []model.Transaction, start, end time.Time, riskFreeRate float64, oracle PriceOracle) (model.RiskMetrics, error) {
	start, end = dateOnly(start), dateOnly(end)

	days := int(end.Sub(start).Hours()/24) + 1
	if days < 2 {
		return model.RiskMetrics{}, nil
	}

	values := make([]float64, days)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(valuationConcurrency)
	for i := 0; i < days; i++ {
		i := i
		day := start.AddDate(0, 0, i)
		g.Go(func() error {
			value, err := MarketValue(gctx, Replay(portfolioID, transactions, day), day, oracle)
			if err != nil {
				return err
			}
			values[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.RiskMetrics{}, err
	}

	returns := make([]float64, 0, days-1)
	for i := 1; i < days; i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	if len(returns) == 0 {
		return model.RiskMetrics{}, nil
	}

	volatility := annualizedVolatility(returns)

	sharpe := 0.0
	if volatility != 0 {
		twr, err := TimeWeightedReturn(ctx, portfolioID, transactions, start, end, oracle)
		if err != nil {
			return model.RiskMetrics{}, err
		}
		annualized := math.Pow(1+twr/100, TradingDaysPerYear/float64(len(returns))) - 1
		if !math.IsNaN(annualized) && !math.IsInf(annualized, 0) {
			sharpe = (annualized - riskFreeRate) / volatility
		}
	}

	return model.RiskMetrics{
		Volatility:  volatility,
		SharpeRatio: sharpe,
		MaxDrawdown: maxDrawdown(returns),
	}, nil
}

// annualizedVolatility is the sample standard deviation of daily returns
// scaled to a yearly horizon. It needs at least two observations.
func annualizedVolatility(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(n)

	var sumSq float64
	for _, r := range returns {
		d := r - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq/float64(n-1)) * math.Sqrt(TradingDaysPerYear)
}

// maxDrawdown reports the worst peak-to-trough decline of a cumulative return
// index built from daily returns, as a non-positive percentage.
func maxDrawdown(returns []float64) float64 {
	index, peak, worst := 1.0, 1.0, 0.0
	for _, r := range returns {
		index *= 1 + r
		if index > peak {
			peak = index
		}
		if dd := (index - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst * 100
}
