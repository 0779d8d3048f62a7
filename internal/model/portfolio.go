package model

import "time"

// Portfolio represents a portfolio from the database
type Portfolio struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ModelID     string    `json:"modelId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Holding represents a single open position produced by replaying a
// portfolio's ledger. AvgCost is the weighted average acquisition cost per
// unit; sells reduce quantity but never move the average.
type Holding struct {
	Symbol     string     `json:"symbol"`
	AssetClass AssetClass `json:"assetClass"`
	Quantity   float64    `json:"quantity"`
	AvgCost    float64    `json:"avgCost"`
}

// PortfolioState is the point-in-time result of replaying a portfolio's
// ledger: the cash balance plus every open position. Holdings are sorted by
// symbol so that equal inputs always produce identical output.
type PortfolioState struct {
	PortfolioID string    `json:"portfolioId"`
	AsOf        time.Time `json:"asOf"`
	CashBalance float64   `json:"cashBalance"`
	Holdings    []Holding `json:"holdings"`
}
