package request

// CreateTransactionRequest is the request body for appending a ledger entry.
//
// Which fields matter depends on the kind. Buys and sells require assetClass,
// symbol, quantity and unitPrice and derive their cash impact from the trade
// legs. The cash kinds (dividend, interest, cash_deposit, cash_withdrawal,
// fee) take the positive magnitude in amount; the stored sign follows from
// the kind. Dividends may optionally name the paying symbol.
type CreateTransactionRequest struct {
	Kind       string  `json:"kind"`                 // Kind is one of: buy, sell, dividend, interest, cash_deposit, cash_withdrawal, fee.
	AssetClass string  `json:"assetClass,omitempty"` // AssetClass is one of: equity, fund, bond, crypto, cash. Trades only.
	Symbol     string  `json:"symbol,omitempty"`     // Symbol is the instrument ticker. Required for trades.
	Quantity   float64 `json:"quantity,omitempty"`   // Quantity is the number of units traded. Trades only.
	UnitPrice  float64 `json:"unitPrice,omitempty"`  // UnitPrice is the per-unit price. Trades only.
	Amount     float64 `json:"amount,omitempty"`     // Amount is the positive cash magnitude for non-trade kinds.
	OccurredOn string  `json:"occurredOn"`           // OccurredOn is the transaction date in YYYY-MM-DD format.
}
