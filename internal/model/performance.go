package model

import "time"

// RiskMetrics bundles the three volatility-derived statistics computed from a
// portfolio's daily valuation series.
type RiskMetrics struct {
	Volatility  float64 `json:"volatility"`  // annualized standard deviation of daily returns
	SharpeRatio float64 `json:"sharpeRatio"` // excess annualized return per unit of volatility
	MaxDrawdown float64 `json:"maxDrawdown"` // worst peak-to-trough decline, as a percentage (<= 0)
}

// PerformanceReport combines the time-weighted return and risk metrics for a
// portfolio over a date range, optionally alongside a benchmark's return over
// the same range.
type PerformanceReport struct {
	PortfolioID        string    `json:"portfolioId"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	TimeWeightedReturn float64   `json:"timeWeightedReturn"`
	BenchmarkReturn    *float64  `json:"benchmarkReturn,omitempty"`
	Volatility         float64   `json:"volatility"`
	SharpeRatio        float64   `json:"sharpeRatio"`
	MaxDrawdown        float64   `json:"maxDrawdown"`
}
