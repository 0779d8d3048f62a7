package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/engine"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/repository"
)

// RebalanceService measures portfolios against their allocation models:
// how far each symbol's weight has drifted from target, and which trades
// would close the gap. Both need a portfolio with a model assigned.
type RebalanceService struct {
	portfolioRepo   *repository.PortfolioRepository
	allocationRepo  *repository.AllocationModelRepository
	transactionRepo *repository.TransactionRepository
	oracle          engine.PriceOracle
}

// NewRebalanceService creates a new RebalanceService with the provided dependencies.
func NewRebalanceService(
	portfolioRepo *repository.PortfolioRepository,
	allocationRepo *repository.AllocationModelRepository,
	transactionRepo *repository.TransactionRepository,
	oracle engine.PriceOracle,
) *RebalanceService {
	return &RebalanceService{
		portfolioRepo:   portfolioRepo,
		allocationRepo:  allocationRepo,
		transactionRepo: transactionRepo,
		oracle:          oracle,
	}
}

// Drift reports how far each symbol's actual weight sits from its model
// target on a date, sorted by symbol. The universe covers both modeled and
// held symbols, so positions outside the model show up drifting against a
// target of zero.
func (s *RebalanceService) Drift(ctx context.Context, portfolioID string, on time.Time) ([]model.DriftEntry, error) {
	alloc, state, err := s.modelAndState(portfolioID, on)
	if err != nil {
		return nil, err
	}
	return engine.ComputeDrift(ctx, alloc, state, on, s.oracle)
}

// ProposeRebalance computes the trades that would bring a portfolio back to
// its model targets on a date, sorted by symbol, along with the market value
// and drift table they were derived from. Trades too small to matter are
// dropped.
func (s *RebalanceService) ProposeRebalance(ctx context.Context, portfolioID string, on time.Time) (model.RebalanceProposal, error) {
	alloc, state, err := s.modelAndState(portfolioID, on)
	if err != nil {
		return model.RebalanceProposal{}, err
	}
	return engine.ProposeRebalance(ctx, alloc, state, on, s.oracle)
}

// modelAndState loads a portfolio's assigned allocation model and replays its
// ledger into state as of a date. A portfolio without a model assigned cannot
// be measured for drift.
func (s *RebalanceService) modelAndState(portfolioID string, on time.Time) (model.AllocationModel, model.PortfolioState, error) {
	portfolio, err := s.portfolioRepo.GetPortfolioOnID(portfolioID)
	if err != nil {
		return model.AllocationModel{}, model.PortfolioState{}, err
	}
	if portfolio.ModelID == "" {
		return model.AllocationModel{}, model.PortfolioState{},
			fmt.Errorf("%w: portfolio %s", apperrors.ErrModelNotConfigured, portfolioID)
	}

	alloc, err := s.allocationRepo.GetModelOnID(portfolio.ModelID)
	if err != nil {
		return model.AllocationModel{}, model.PortfolioState{}, err
	}

	transactions, err := s.transactionRepo.GetTransactionsForPortfolio(portfolioID)
	if err != nil {
		return model.AllocationModel{}, model.PortfolioState{}, err
	}

	return alloc, engine.Replay(portfolioID, transactions, on), nil
}
