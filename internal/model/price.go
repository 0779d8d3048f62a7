package model

import "time"

// SymbolPrice represents a stored end-of-day price point for a symbol.
type SymbolPrice struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Date      time.Time `json:"date"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Benchmark represents a market index or instrument that portfolio
// performance can be compared against.
type Benchmark struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// BenchmarkPrice represents a stored price point for a benchmark.
type BenchmarkPrice struct {
	ID          string    `json:"id"`
	BenchmarkID string    `json:"benchmarkId"`
	Date        time.Time `json:"date"`
	Price       float64   `json:"price"`
}

// SymbolSyncResult reports the outcome of syncing prices for a single symbol.
type SymbolSyncResult struct {
	Symbol      string `json:"symbol"`
	PricesAdded int    `json:"pricesAdded"`
}

// SymbolSyncError reports a symbol whose price sync failed and why.
type SymbolSyncError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// SyncSummary represents the outcome of a bulk price sync across every symbol
// the system tracks. Success is true if at least one symbol synced cleanly.
type SyncSummary struct {
	Success      bool               `json:"success"`
	Updated      []SymbolSyncResult `json:"updated"`
	Errors       []SymbolSyncError  `json:"errors"`
	TotalUpdated int                `json:"totalUpdated"`
	TotalErrors  int                `json:"totalErrors"`
}
