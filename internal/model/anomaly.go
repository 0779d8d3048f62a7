package model

import "time"

// AnomalyKind classifies a ledger inconsistency found during replay.
type AnomalyKind string

const (
	// AnomalyOversell marks a sell that exceeded the quantity held at that
	// point in the ledger.
	AnomalyOversell AnomalyKind = "oversell"
	// AnomalyNegativeCash marks a transaction that took the cash balance
	// below zero.
	AnomalyNegativeCash AnomalyKind = "negative_cash"
)

// LedgerAnomaly is one inconsistency detected while folding a portfolio's
// ledger. Anomalies never stop a replay; they are surfaced so the ledger can
// be corrected at the source.
type LedgerAnomaly struct {
	PortfolioID   string      `json:"portfolioId"`
	TransactionID string      `json:"transactionId"`
	Kind          AnomalyKind `json:"kind"`
	Symbol        string      `json:"symbol,omitempty"`
	OccurredOn    time.Time   `json:"occurredOn"`
	Detail        string      `json:"detail"`
}
