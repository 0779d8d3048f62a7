package engine

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/model"
)

// QuantityEpsilon is the threshold below which a position counts as closed.
// Replay drops holdings at or under it so float residue from a full sale does
// not surface as a phantom position.
const QuantityEpsilon = 1e-6

type position struct {
	class   model.AssetClass
	qty     float64
	avgCost float64
}

// Replay folds a portfolio's ledger into its state as of a date.
//
// The fold is pure: the same transactions and cutoff always produce the same
// state, bit for bit. Transactions are sorted by occurred-on date before
// folding (a stable sort, so entries sharing a date keep their stored order)
// and entries after asOf are ignored. A zero asOf means no cutoff.
//
// Every entry moves cash by its signed CashAmount, whatever its kind. Buys
// additionally fold into the weighted average cost of the position:
//
//	avgCost = (qty*avgCost + buyQty*buyPrice) / (qty + buyQty)
//
// Sells reduce quantity and leave the average cost untouched. Selling more
// than is held is a data integrity problem, not a reason to halt: the
// condition is logged and the quantity goes negative, to be filtered from the
// holdings below the closed-position threshold.
func Replay(portfolioID string, transactions []model.Transaction, asOf time.Time) model.PortfolioState {
	ordered := make([]model.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredOn.Before(ordered[j].OccurredOn)
	})

	cutoff := time.Time{}
	if !asOf.IsZero() {
		cutoff = dateOnly(asOf)
	}

	var cash float64
	positions := make(map[string]*position)

	for _, tx := range ordered {
		if !cutoff.IsZero() && dateOnly(tx.OccurredOn).After(cutoff) {
			break
		}

		cash += tx.CashAmount

		switch tx.Kind {
		case model.KindBuy:
			pos, ok := positions[tx.Symbol]
			if !ok {
				pos = &position{class: tx.AssetClass}
				positions[tx.Symbol] = pos
			}
			newQty := pos.qty + tx.Quantity
			if newQty == 0 {
				pos.avgCost = 0
			} else {
				pos.avgCost = (pos.qty*pos.avgCost + tx.Quantity*tx.UnitPrice) / newQty
			}
			pos.qty = newQty
		case model.KindSell:
			pos, ok := positions[tx.Symbol]
			if !ok {
				pos = &position{class: tx.AssetClass}
				positions[tx.Symbol] = pos
			}
			if pos.qty < tx.Quantity {
				log.Warn().
					Str("portfolioId", portfolioID).
					Str("symbol", tx.Symbol).
					Float64("held", pos.qty).
					Float64("sold", tx.Quantity).
					Time("occurredOn", tx.OccurredOn).
					Msg("sell exceeds held quantity, ledger is inconsistent")
			}
			pos.qty -= tx.Quantity
		}
	}

	symbols := make([]string, 0, len(positions))
	for symbol, pos := range positions {
		if pos.qty > QuantityEpsilon {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)

	holdings := make([]model.Holding, 0, len(symbols))
	for _, symbol := range symbols {
		pos := positions[symbol]
		holdings = append(holdings, model.Holding{
			Symbol:     symbol,
			AssetClass: pos.class,
			Quantity:   pos.qty,
			AvgCost:    pos.avgCost,
		})
	}

	return model.PortfolioState{
		PortfolioID: portfolioID,
		AsOf:        cutoff,
		CashBalance: cash,
		Holdings:    holdings,
	}
}
