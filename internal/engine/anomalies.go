package engine

import (
	"fmt"
	"sort"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// DetectAnomalies refolds a portfolio's ledger looking for entries that
// Replay tolerates but a correct ledger would never contain: sells that
// exceed the quantity held at that point, and transactions that take the
// cash balance below zero. The fold uses Replay's ordering, so findings line
// up with what replay actually did.
//
// A negative cash balance is reported once per dip, on the transaction that
// crossed zero, not on every entry that follows while the balance stays
// negative.
func DetectAnomalies(portfolioID string, transactions []model.Transaction) []model.LedgerAnomaly {
	ordered := make([]model.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredOn.Before(ordered[j].OccurredOn)
	})

	anomalies := make([]model.LedgerAnomaly, 0)
	var cash float64
	qty := make(map[string]float64)

	for _, tx := range ordered {
		prevCash := cash
		cash += tx.CashAmount

		switch tx.Kind {
		case model.KindBuy:
			qty[tx.Symbol] += tx.Quantity
		case model.KindSell:
			held := qty[tx.Symbol]
			if tx.Quantity > held+QuantityEpsilon {
				anomalies = append(anomalies, model.LedgerAnomaly{
					PortfolioID:   portfolioID,
					TransactionID: tx.ID,
					Kind:          model.AnomalyOversell,
					Symbol:        tx.Symbol,
					OccurredOn:    tx.OccurredOn,
					Detail:        fmt.Sprintf("sold %g units of %s with only %g held", tx.Quantity, tx.Symbol, held),
				})
			}
			qty[tx.Symbol] = held - tx.Quantity
		}

		if prevCash >= -QuantityEpsilon && cash < -QuantityEpsilon {
			anomalies = append(anomalies, model.LedgerAnomaly{
				PortfolioID:   portfolioID,
				TransactionID: tx.ID,
				Kind:          model.AnomalyNegativeCash,
				OccurredOn:    tx.OccurredOn,
				Detail:        fmt.Sprintf("cash balance fell to %.2f", cash),
			})
		}
	}
	return anomalies
}
