package market

import "strings"

// PriceTick is one real-time price update for an instrument, normalized
// from the provider's 24h ticker payload.
type PriceTick struct {
	Instrument string  `json:"instrument"`   // Canonical symbol (e.g., "BTCUSDT")
	Price      float64 `json:"price"`        // Last trade price
	ChangeAbs  float64 `json:"change_abs"`   // Absolute 24h price change
	ChangePct  float64 `json:"change_pct"`   // 24h price change (%)
	High24h    float64 `json:"high_24h"`     // Highest price over the last 24h
	Low24h     float64 `json:"low_24h"`      // Lowest price over the last 24h
	Volume24h  float64 `json:"volume_24h"`   // Base-asset volume over the last 24h
	EventTime  int64   `json:"event_time_ms"` // Provider event time (ms since epoch)
}

// Candle is a single candlestick from a REST snapshot.
type Candle struct {
	OpenTime  int64   `json:"open_time_ms"`  // Candle open time (ms since epoch)
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time_ms"` // Candle close time (ms since epoch)
}

// Instrument is one entry of the tradable-symbol catalog.
type Instrument struct {
	Symbol     string `json:"symbol"`      // e.g., "BTCUSDT"
	BaseAsset  string `json:"base_asset"`  // e.g., "BTC"
	QuoteAsset string `json:"quote_asset"` // e.g., "USDT"
}

// Canonical normalizes an instrument identifier to its canonical
// uppercase form. Input is case-insensitive.
func Canonical(instrument string) string {
	return strings.ToUpper(strings.TrimSpace(instrument))
}
