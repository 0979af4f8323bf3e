// Package models defines the data structures shared across Twindex
package models

// Tracked index identity and snapshot provenance values.
const (
	IndexCode = "TWN"
	IndexName = "FTSE TWSE Taiwan Index"

	SourceHiStock  = "histock"  // live fetch from the HiStock page
	SourceFallback = "fallback" // synthesized default snapshot
)

// IndexQuote holds the three raw fields extracted from the index page,
// after sign correction but before quantization.
type IndexQuote struct {
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_percent"`
}

// IndexSnapshot is the published state of the tracked index: the last known
// value plus capture metadata. Exactly one snapshot is current at any time;
// consumers always receive a copy.
type IndexSnapshot struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"` // quarter-rounded index price
	Change        float64 `json:"change"`
	ChangePct     float64 `json:"change_percent"`
	FuturesPrice  float64 `json:"futures_price"`
	FuturesOffset float64 `json:"futures_offset"`
	Timestamp     int64   `json:"timestamp"`   // capture time, epoch seconds
	TaipeiTime    string  `json:"taipei_time"` // display only, not used for staleness
	Source        string  `json:"source"`      // "histock" or "fallback"
	MarketOpen    bool    `json:"market_open"`
	Error         string  `json:"error,omitempty"` // set on fallback or stale reuse
}

// Live reports whether the snapshot came from a fully successful fetch.
func (s *IndexSnapshot) Live() bool {
	return s.Source == SourceHiStock && s.Error == ""
}
