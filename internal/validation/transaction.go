package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/api/request"
)

// ValidTransactionKind contains the allowed transaction kind values.
var ValidTransactionKind = map[string]bool{
	"buy": true, "sell": true, "dividend": true, "interest": true,
	"cash_deposit": true, "cash_withdrawal": true, "fee": true,
}

// ValidAssetClass contains the allowed asset class values.
var ValidAssetClass = map[string]bool{
	"equity": true, "fund": true, "bond": true, "crypto": true, "cash": true,
}

// tradeKinds are the kinds that exchange cash for an instrument and therefore
// carry instrument fields.
var tradeKinds = map[string]bool{"buy": true, "sell": true}

// ValidateCreateTransaction validates a ledger entry creation request.
// Which fields are required depends on the kind.
//
// Always required:
//   - kind: Must be one of: buy, sell, dividend, interest, cash_deposit, cash_withdrawal, fee
//   - occurredOn: Must be in YYYY-MM-DD format
//
// Trades (buy, sell) additionally require:
//   - assetClass: Must be one of: equity, fund, bond, crypto, cash
//   - symbol: Must be non-empty
//   - quantity: Must be positive
//   - unitPrice: Must be positive
//
// The cash kinds instead require:
//   - amount: Must be positive (the sign of the stored cash impact follows from the kind)
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Kind) == "" {
		errors["kind"] = "kind is required"
	} else if !ValidTransactionKind[req.Kind] {
		errors["kind"] = fmt.Sprintf("invalid kind: %s", req.Kind)
	}

	if strings.TrimSpace(req.OccurredOn) == "" {
		errors["occurredOn"] = "occurredOn is required"
	} else if _, err := time.Parse("2006-01-02", req.OccurredOn); err != nil {
		errors["occurredOn"] = err.Error()
	}

	if tradeKinds[req.Kind] {
		if strings.TrimSpace(req.Symbol) == "" {
			errors["symbol"] = "symbol is required for trades"
		}
		if strings.TrimSpace(req.AssetClass) == "" {
			errors["assetClass"] = "assetClass is required for trades"
		} else if !ValidAssetClass[req.AssetClass] {
			errors["assetClass"] = fmt.Sprintf("invalid assetClass: %s", req.AssetClass)
		}
		if req.Quantity <= 0.0 {
			errors["quantity"] = "quantity must be positive"
		}
		if req.UnitPrice <= 0.0 {
			errors["unitPrice"] = "unitPrice must be positive"
		}
	} else if ValidTransactionKind[req.Kind] {
		if req.Amount <= 0.0 {
			errors["amount"] = "amount must be positive"
		}
		if req.Quantity != 0.0 {
			errors["quantity"] = fmt.Sprintf("quantity does not apply to %s", req.Kind)
		}
		if req.UnitPrice != 0.0 {
			errors["unitPrice"] = fmt.Sprintf("unitPrice does not apply to %s", req.Kind)
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
