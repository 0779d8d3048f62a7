package model

import (
	"fmt"
	"math"
	"time"

	"github.com/mkuiper/Portfolio-Analytics-Backend/internal/apperrors"
)

// WeightSumTolerance is how far the sum of a model's target weights may sit
// from 1.0 before the model is rejected.
const WeightSumTolerance = 0.001

// AllocationModel is a named set of target weights that portfolios can be
// measured against. Weights are fractions of total market value.
type AllocationModel struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Allocations []ModelAllocation `json:"allocations"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ModelAllocation is one target line of an allocation model.
type ModelAllocation struct {
	Symbol     string     `json:"symbol"`
	AssetClass AssetClass `json:"assetClass"`
	Weight     float64    `json:"weight"`
}

// Validate checks that the model has at least one allocation, that every
// weight lies in [0, 1] under a non-empty unique symbol, and that the weights
// sum to 1.0 within WeightSumTolerance.
func (m AllocationModel) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: model name is required", apperrors.ErrMissingRequiredField)
	}
	if len(m.Allocations) == 0 {
		return fmt.Errorf("%w: model has no allocations", apperrors.ErrInvalidAllocation)
	}

	var sum float64
	seen := make(map[string]bool, len(m.Allocations))
	for _, a := range m.Allocations {
		if a.Symbol == "" {
			return fmt.Errorf("%w: allocation symbol is required", apperrors.ErrInvalidAllocation)
		}
		if seen[a.Symbol] {
			return fmt.Errorf("%w: duplicate symbol %q", apperrors.ErrInvalidAllocation, a.Symbol)
		}
		seen[a.Symbol] = true
		if a.Weight < 0 || a.Weight > 1 {
			return fmt.Errorf("%w: weight for %q is outside [0, 1]", apperrors.ErrInvalidAllocation, a.Symbol)
		}
		sum += a.Weight
	}

	if math.Abs(sum-1.0) > WeightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, expected 1.0", apperrors.ErrInvalidAllocation, sum)
	}
	return nil
}

// DriftEntry reports how far one symbol's actual weight sits from its target.
// Drift is current minus target, so overweight positions are positive.
type DriftEntry struct {
	Symbol        string  `json:"symbol"`
	TargetWeight  float64 `json:"targetWeight"`
	CurrentWeight float64 `json:"currentWeight"`
	CurrentValue  float64 `json:"currentValue"`
	Drift         float64 `json:"drift"`
}

// TradeSide indicates the direction of a proposed rebalancing trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// RebalancingTrade is one proposed trade that would move a portfolio back to
// its model. Value is the absolute cash value of the trade.
type RebalancingTrade struct {
	Symbol string    `json:"symbol"`
	Side   TradeSide `json:"side"`
	Value  float64   `json:"value"`
}

// RebalanceProposal is the full result of a rebalancing run: the market value
// the weights were computed against, the per-symbol drift, and the trades that
// would close it.
type RebalanceProposal struct {
	PortfolioID      string             `json:"portfolioId"`
	AsOf             time.Time          `json:"asOf"`
	TotalMarketValue float64            `json:"totalMarketValue"`
	DriftEntries     []DriftEntry       `json:"driftEntries"`
	Trades           []RebalancingTrade `json:"trades"`
}
