package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/request"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/engine"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/repository"
)

// AccountingService owns the portfolio ledger: appending entries and replaying
// them into point-in-time state. The ledger is append-only; there is no update
// or delete path, and state is always derived by replay, never stored.
type AccountingService struct {
	transactionRepo *repository.TransactionRepository
	portfolioRepo   *repository.PortfolioRepository
}

// NewAccountingService creates a new AccountingService with the provided repository dependencies.
func NewAccountingService(
	transactionRepo *repository.TransactionRepository,
	portfolioRepo *repository.PortfolioRepository,
) *AccountingService {
	return &AccountingService{
		transactionRepo: transactionRepo,
		portfolioRepo:   portfolioRepo,
	}
}

// RecordTransaction validates and appends one ledger entry to a portfolio.
//
// The entry is built through the kind's constructor, so the cash amount
// always carries the sign the kind dictates regardless of what the caller
// sent: trades derive it from quantity times unit price, the cash kinds
// take the positive magnitude from amount. The portfolio must exist.
func (s *AccountingService) RecordTransaction(ctx context.Context, portfolioID string, req request.CreateTransactionRequest) (*model.Transaction, error) {
	occurredOn, err := time.Parse("2006-01-02", req.OccurredOn)
	if err != nil {
		return nil, fmt.Errorf("%w: occurredOn must be YYYY-MM-DD, got %q", apperrors.ErrInvalidDate, req.OccurredOn)
	}

	if _, err := s.portfolioRepo.GetPortfolioOnID(portfolioID); err != nil {
		return nil, err
	}

	var transaction model.Transaction
	switch model.TransactionKind(req.Kind) {
	case model.KindBuy:
		transaction, err = model.NewBuy(portfolioID, model.AssetClass(req.AssetClass), req.Symbol, req.Quantity, req.UnitPrice, occurredOn)
	case model.KindSell:
		transaction, err = model.NewSell(portfolioID, model.AssetClass(req.AssetClass), req.Symbol, req.Quantity, req.UnitPrice, occurredOn)
	case model.KindDividend:
		transaction, err = model.NewDividend(portfolioID, req.Symbol, req.Amount, occurredOn)
	case model.KindInterest:
		transaction, err = model.NewInterest(portfolioID, req.Amount, occurredOn)
	case model.KindCashDeposit:
		transaction, err = model.NewCashDeposit(portfolioID, req.Amount, occurredOn)
	case model.KindCashWithdrawal:
		transaction, err = model.NewCashWithdrawal(portfolioID, req.Amount, occurredOn)
	case model.KindFee:
		transaction, err = model.NewFee(portfolioID, req.Amount, occurredOn)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalidTransaction, req.Kind)
	}
	if err != nil {
		return nil, err
	}

	transaction.ID = uuid.New().String()
	transaction.CreatedAt = time.Now().UTC()

	if err := s.transactionRepo.InsertTransaction(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	return &transaction, nil
}

// Transactions retrieves a portfolio's full ledger in replay order: by
// occurred-on date, entries sharing a date in insertion order.
func (s *AccountingService) Transactions(portfolioID string) ([]model.Transaction, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(portfolioID); err != nil {
		return nil, err
	}
	return s.transactionRepo.GetTransactionsForPortfolio(portfolioID)
}

// PortfolioState replays a portfolio's ledger into its cash balance and open
// holdings as of a date. A zero asOf means the full ledger.
func (s *AccountingService) PortfolioState(portfolioID string, asOf time.Time) (model.PortfolioState, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(portfolioID); err != nil {
		return model.PortfolioState{}, err
	}

	transactions, err := s.transactionRepo.GetTransactionsForPortfolio(portfolioID)
	if err != nil {
		return model.PortfolioState{}, err
	}

	return engine.Replay(portfolioID, transactions, asOf), nil
}

// HeldSymbols lists the symbols a portfolio currently holds, sorted. Closed
// positions are not included.
func (s *AccountingService) HeldSymbols(portfolioID string) ([]string, error) {
	state, err := s.PortfolioState(portfolioID, time.Time{})
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(state.Holdings))
	for _, holding := range state.Holdings {
		symbols = append(symbols, holding.Symbol)
	}
	return symbols, nil
}

// LedgerAnomalies audits a portfolio's full ledger for entries replay
// tolerates but flags: oversells and cash dipping negative. An empty result
// means the ledger is internally consistent.
func (s *AccountingService) LedgerAnomalies(portfolioID string) ([]model.LedgerAnomaly, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(portfolioID); err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetTransactionsForPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}

	return engine.DetectAnomalies(portfolioID, transactions), nil
}
