package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/engine"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/repository"
)

// PerformanceService computes return and risk analytics over a portfolio's
// ledger, optionally against a registered benchmark. All portfolio numbers
// come from the engines; this service loads the inputs, wires in the price
// oracle, and handles benchmark registration and comparison.
type PerformanceService struct {
	transactionRepo *repository.TransactionRepository
	portfolioRepo   *repository.PortfolioRepository
	benchmarkRepo   *repository.BenchmarkRepository
	oracle          engine.PriceOracle
	riskFreeRate    float64
}

// NewPerformanceService creates a new PerformanceService with the provided
// dependencies. riskFreeRate is the annual rate Sharpe ratios are measured
// against, as a fraction (0.02 means 2%).
func NewPerformanceService(
	transactionRepo *repository.TransactionRepository,
	portfolioRepo *repository.PortfolioRepository,
	benchmarkRepo *repository.BenchmarkRepository,
	oracle engine.PriceOracle,
	riskFreeRate float64,
) *PerformanceService {
	return &PerformanceService{
		transactionRepo: transactionRepo,
		portfolioRepo:   portfolioRepo,
		benchmarkRepo:   benchmarkRepo,
		oracle:          oracle,
		riskFreeRate:    riskFreeRate,
	}
}

// TimeWeightedReturn computes a portfolio's time-weighted return over
// [start, end] as a percentage.
func (s *PerformanceService) TimeWeightedReturn(ctx context.Context, portfolioID string, start, end time.Time) (float64, error) {
	ledger, err := s.ledger(portfolioID)
	if err != nil {
		return 0, err
	}
	return engine.TimeWeightedReturn(ctx, portfolioID, ledger, start, end, s.oracle)
}

// RiskMetrics computes volatility, Sharpe ratio and maximum drawdown from a
// portfolio's daily valuations over [start, end].
func (s *PerformanceService) RiskMetrics(ctx context.Context, portfolioID string, start, end time.Time) (model.RiskMetrics, error) {
	if end.Before(start) {
		return model.RiskMetrics{}, fmt.Errorf("%w: start %s is after end %s", apperrors.ErrInvalidDateRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	ledger, err := s.ledger(portfolioID)
	if err != nil {
		return model.RiskMetrics{}, err
	}
	return engine.ComputeRiskMetrics(ctx, portfolioID, ledger, start, end, s.riskFreeRate, s.oracle)
}

// Report combines the time-weighted return and risk metrics for a portfolio
// over [start, end] into one report. With a benchmark ID it also computes the
// benchmark's two-point return over the same range for comparison; without
// one, the benchmark field stays empty.
func (s *PerformanceService) Report(ctx context.Context, portfolioID string, start, end time.Time, benchmarkID string) (model.PerformanceReport, error) {
	report := model.PerformanceReport{
		PortfolioID: portfolioID,
		StartDate:   start,
		EndDate:     end,
	}

	ledger, err := s.ledger(portfolioID)
	if err != nil {
		return report, err
	}

	twr, err := engine.TimeWeightedReturn(ctx, portfolioID, ledger, start, end, s.oracle)
	if err != nil {
		return report, err
	}
	report.TimeWeightedReturn = twr

	risk, err := engine.ComputeRiskMetrics(ctx, portfolioID, ledger, start, end, s.riskFreeRate, s.oracle)
	if err != nil {
		return report, err
	}
	report.Volatility = risk.Volatility
	report.SharpeRatio = risk.SharpeRatio
	report.MaxDrawdown = risk.MaxDrawdown

	if benchmarkID != "" {
		benchmarkReturn, err := s.benchmarkReturn(benchmarkID, start, end)
		if err != nil {
			return report, err
		}
		report.BenchmarkReturn = &benchmarkReturn
	}

	return report, nil
}

// CreateBenchmark registers a benchmark index that reports can compare
// against. Its price history fills in on the next sync. Symbols are unique
// across the registry, so registering the same index twice is rejected.
func (s *PerformanceService) CreateBenchmark(ctx context.Context, name, symbol string) (*model.Benchmark, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: benchmark name", apperrors.ErrMissingRequiredField)
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: benchmark symbol", apperrors.ErrMissingRequiredField)
	}

	if _, err := s.benchmarkRepo.GetBenchmarkOnSymbol(symbol); err == nil {
		return nil, fmt.Errorf("%w: benchmark symbol %s", apperrors.ErrDuplicateEntry, symbol)
	} else if !errors.Is(err, apperrors.ErrBenchmarkNotFound) {
		return nil, err
	}

	benchmark := model.Benchmark{
		ID:     uuid.New().String(),
		Name:   name,
		Symbol: symbol,
	}

	if err := s.benchmarkRepo.InsertBenchmark(ctx, benchmark); err != nil {
		return nil, fmt.Errorf("failed to create benchmark: %w", err)
	}

	return &benchmark, nil
}

// GetAllBenchmarks retrieves every registered benchmark, ordered by symbol.
func (s *PerformanceService) GetAllBenchmarks() ([]model.Benchmark, error) {
	return s.benchmarkRepo.GetBenchmarks()
}

// benchmarkReturn computes a benchmark's simple two-point return over
// [start, end] as a percentage, resolving each endpoint to the price on or
// most recently before it. A benchmark with no usable price at either
// endpoint cannot be compared against, which surfaces the same way as any
// other missing market data.
func (s *PerformanceService) benchmarkReturn(benchmarkID string, start, end time.Time) (float64, error) {
	benchmark, err := s.benchmarkRepo.GetBenchmarkOnID(benchmarkID)
	if err != nil {
		return 0, err
	}

	startPrice, err := s.benchmarkRepo.GetPriceOnOrBefore(benchmark.ID, start)
	if err != nil {
		return 0, fmt.Errorf("%w: no stored price for benchmark %s on or before %s",
			apperrors.ErrUpstreamUnavailable, benchmark.Symbol, start.Format("2006-01-02"))
	}
	endPrice, err := s.benchmarkRepo.GetPriceOnOrBefore(benchmark.ID, end)
	if err != nil {
		return 0, fmt.Errorf("%w: no stored price for benchmark %s on or before %s",
			apperrors.ErrUpstreamUnavailable, benchmark.Symbol, end.Format("2006-01-02"))
	}

	if startPrice.Price == 0 {
		log.Warn().
			Str("benchmarkId", benchmark.ID).
			Str("symbol", benchmark.Symbol).
			Time("start", start).
			Msg("benchmark start price is zero, reporting zero return")
		return 0, nil
	}

	return (endPrice.Price - startPrice.Price) / startPrice.Price * 100, nil
}

// ledger loads a portfolio's full transaction history, confirming the
// portfolio exists first. The engines need the complete ledger even for a
// windowed calculation, since valuing any date means replaying everything
// before it.
func (s *PerformanceService) ledger(portfolioID string) ([]model.Transaction, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(portfolioID); err != nil {
		return nil, err
	}
	return s.transactionRepo.GetTransactionsForPortfolio(portfolioID)
}
