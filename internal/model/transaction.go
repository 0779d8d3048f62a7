package model

import (
	"fmt"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
)

// TransactionKind identifies what a ledger entry does to the portfolio.
// The set is closed; replay rejects anything else.
type TransactionKind string

const (
	KindBuy            TransactionKind = "buy"
	KindSell           TransactionKind = "sell"
	KindDividend       TransactionKind = "dividend"
	KindInterest       TransactionKind = "interest"
	KindCashDeposit    TransactionKind = "cash_deposit"
	KindCashWithdrawal TransactionKind = "cash_withdrawal"
	KindFee            TransactionKind = "fee"
)

// AssetClass categorizes the instrument a transaction touches.
type AssetClass string

const (
	ClassEquity AssetClass = "equity"
	ClassFund   AssetClass = "fund"
	ClassBond   AssetClass = "bond"
	ClassCrypto AssetClass = "crypto"
	ClassCash   AssetClass = "cash"
)

// Transaction represents a single immutable entry in a portfolio's ledger.
// CashAmount carries its own sign and is the single source of truth for cash
// impact: negative for buy, fee and cash_withdrawal, positive for sell,
// dividend, interest and cash_deposit. Symbol, Quantity and UnitPrice are
// meaningful only for buy and sell entries.
type Transaction struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	Kind        TransactionKind `json:"kind"`
	AssetClass  AssetClass      `json:"assetClass,omitempty"`
	Symbol      string          `json:"symbol,omitempty"`
	Quantity    float64         `json:"quantity,omitempty"`
	UnitPrice   float64         `json:"unitPrice,omitempty"`
	CashAmount  float64         `json:"cashAmount"`
	OccurredOn  time.Time       `json:"occurredOn"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

// IsTrade reports whether the transaction exchanges cash for an instrument.
func (t Transaction) IsTrade() bool {
	return t.Kind == KindBuy || t.Kind == KindSell
}

// IsExternalFlow reports whether the transaction moves cash across the
// portfolio boundary rather than between cash and holdings. These entries
// delimit the sub-periods of time-weighted return calculations.
func (t Transaction) IsExternalFlow() bool {
	switch t.Kind {
	case KindCashDeposit, KindCashWithdrawal, KindDividend, KindInterest, KindFee:
		return true
	}
	return false
}

// NewBuy creates a buy transaction. Cash impact is derived from the trade
// legs: quantity times unit price leaves the cash balance.
func NewBuy(portfolioID string, class AssetClass, symbol string, quantity, unitPrice float64, occurredOn time.Time) (Transaction, error) {
	t := Transaction{
		PortfolioID: portfolioID,
		Kind:        KindBuy,
		AssetClass:  class,
		Symbol:      symbol,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		CashAmount:  -(quantity * unitPrice),
		OccurredOn:  occurredOn,
	}
	return t, t.Validate()
}

// NewSell creates a sell transaction. Proceeds of quantity times unit price
// enter the cash balance.
func NewSell(portfolioID string, class AssetClass, symbol string, quantity, unitPrice float64, occurredOn time.Time) (Transaction, error) {
	t := Transaction{
		PortfolioID: portfolioID,
		Kind:        KindSell,
		AssetClass:  class,
		Symbol:      symbol,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		CashAmount:  quantity * unitPrice,
		OccurredOn:  occurredOn,
	}
	return t, t.Validate()
}

// NewDividend creates a dividend receipt. Symbol may name the paying holding
// or be empty. Amount must be positive.
func NewDividend(portfolioID, symbol string, amount float64, occurredOn time.Time) (Transaction, error) {
	t := Transaction{
		PortfolioID: portfolioID,
		Kind:        KindDividend,
		Symbol:      symbol,
		CashAmount:  amount,
		OccurredOn:  occurredOn,
	}
	return t, t.Validate()
}

// NewInterest creates an interest receipt. Amount must be positive.
func NewInterest(portfolioID string, amount float64, occurredOn time.Time) (Transaction, error) {
	t := Transaction{
		PortfolioID: portfolioID,
		Kind:        KindInterest,
		CashAmount:  amount,
		OccurredOn:  occurredOn,
	}
	return t, t.Validate()
}

// NewCashDeposit creates an external cash contribution. Amount must be positive.
func NewCashDeposit(portfolioID string, amount float64, occurredOn time.Time) (Transaction, error) {
	t := Transaction{
		PortfolioID: portfolioID,
		Kind:        KindCashDeposit,
		CashAmount:  amount,
		OccurredOn:  occurredOn,
	}
	return t, t.Validate()
}

// NewCashWithdrawal creates an external cash withdrawal. Amount is the positive
// magnitude being withdrawn; the stored cash impact is negative.
func NewCashWithdrawal(portfolioID string, amount float64, occurredOn time.Time) (Transaction, error) {
	t := Transaction{
		PortfolioID: portfolioID,
		Kind:        KindCashWithdrawal,
		CashAmount:  -amount,
		OccurredOn:  occurredOn,
	}
	return t, t.Validate()
}

// NewFee creates a fee charge. Amount is the positive magnitude charged; the
// stored cash impact is negative.
func NewFee(portfolioID string, amount float64, occurredOn time.Time) (Transaction, error) {
	t := Transaction{
		PortfolioID: portfolioID,
		Kind:        KindFee,
		CashAmount:  -amount,
		OccurredOn:  occurredOn,
	}
	return t, t.Validate()
}

// Validate checks the per-kind invariants: cash sign, instrument fields on
// trades, and absence of instrument quantities on pure cash entries. Entries
// read back from storage pass through the same checks as new ones.
func (t Transaction) Validate() error {
	if t.PortfolioID == "" {
		return fmt.Errorf("%w: portfolio ID is required", apperrors.ErrInvalidTransaction)
	}
	if t.OccurredOn.IsZero() {
		return fmt.Errorf("%w: occurred-on date is required", apperrors.ErrInvalidTransaction)
	}
	if t.CashAmount == 0 {
		return fmt.Errorf("%w: cash amount cannot be zero", apperrors.ErrInvalidTransaction)
	}

	switch t.Kind {
	case KindBuy, KindSell:
		if t.Symbol == "" {
			return fmt.Errorf("%w: %s requires a symbol", apperrors.ErrInvalidTransaction, t.Kind)
		}
		if t.AssetClass == "" {
			return fmt.Errorf("%w: %s requires an asset class", apperrors.ErrInvalidTransaction, t.Kind)
		}
		if t.Quantity <= 0 {
			return fmt.Errorf("%w: %s requires a positive quantity", apperrors.ErrInvalidTransaction, t.Kind)
		}
		if t.UnitPrice <= 0 {
			return fmt.Errorf("%w: %s requires a positive unit price", apperrors.ErrInvalidTransaction, t.Kind)
		}
		if t.Kind == KindBuy && t.CashAmount > 0 {
			return fmt.Errorf("%w: buy must have a negative cash amount", apperrors.ErrInvalidTransaction)
		}
		if t.Kind == KindSell && t.CashAmount < 0 {
			return fmt.Errorf("%w: sell must have a positive cash amount", apperrors.ErrInvalidTransaction)
		}
	case KindDividend, KindInterest, KindCashDeposit:
		if t.Quantity != 0 || t.UnitPrice != 0 {
			return fmt.Errorf("%w: %s cannot carry quantity or unit price", apperrors.ErrInvalidTransaction, t.Kind)
		}
		if t.CashAmount < 0 {
			return fmt.Errorf("%w: %s must have a positive cash amount", apperrors.ErrInvalidTransaction, t.Kind)
		}
	case KindCashWithdrawal, KindFee:
		if t.Quantity != 0 || t.UnitPrice != 0 {
			return fmt.Errorf("%w: %s cannot carry quantity or unit price", apperrors.ErrInvalidTransaction, t.Kind)
		}
		if t.CashAmount > 0 {
			return fmt.Errorf("%w: %s must have a negative cash amount", apperrors.ErrInvalidTransaction, t.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalidTransaction, t.Kind)
	}

	return nil
}
