package marketdata

import "time"

// Bar represents one end-of-day record in the provider's JSON response.
// The provider returns a flat array of these, oldest first, with both the
// raw and the split-adjusted close.
type Bar struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// ClosePrice represents a single parsed daily close.
// This is the application's internal representation after parsing the raw
// provider bars: a proper time.Time date and the split-adjusted close.
type ClosePrice struct {
	Date  time.Time
	Close float64
}
