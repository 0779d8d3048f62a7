package request

// SyncPricesRequest is the request body for triggering a price sync. With a
// symbol it syncs that one symbol over the optional date range; without one it
// syncs every tracked symbol from its last stored price forward.
type SyncPricesRequest struct {
	Symbol    string `json:"symbol,omitempty"`    // Symbol is the instrument ticker to sync. Empty means all tracked symbols.
	StartDate string `json:"startDate,omitempty"` // StartDate is the first date to fetch, YYYY-MM-DD. Defaults to the day after the last stored price.
	EndDate   string `json:"endDate,omitempty"`   // EndDate is the last date to fetch, YYYY-MM-DD. Defaults to today.
}

// CreateBenchmarkRequest is the request body for registering a benchmark index.
type CreateBenchmarkRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// UpdateProviderConfigRequest is the request body for configuring the market
// data provider. The token is encrypted before it is stored; it is never
// returned by any endpoint.
type UpdateProviderConfigRequest struct {
	APIToken        *string `json:"apiToken,omitempty"`
	Enabled         *bool   `json:"enabled"`
	AutoSyncEnabled *bool   `json:"autoSyncEnabled"`
}
