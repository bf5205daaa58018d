package binance

import "encoding/json"

// StreamEnvelope is the wrapper around every frame of a combined stream.
// The stream name identifies which instrument/channel the payload
// belongs to, e.g. "btcusdt@ticker".
type StreamEnvelope struct {
	Stream string          `json:"stream"` // e.g., "btcusdt@ticker"
	Data   json.RawMessage `json:"data"`   // Delay decoding; shape depends on the channel
}

// TickerPayload is the 24h rolling ticker event carried on <symbol>@ticker
// streams. All numeric fields arrive as strings and must be parsed.
type TickerPayload struct {
	EventType string `json:"e"` // "24hrTicker"
	EventTime int64  `json:"E"` // Event time (ms since epoch)
	Symbol    string `json:"s"` // e.g., "BTCUSDT"
	LastPrice string `json:"c"` // Last trade price
	Change    string `json:"p"` // Absolute 24h price change
	ChangePct string `json:"P"` // 24h price change (%)
	High      string `json:"h"` // 24h high
	Low       string `json:"l"` // 24h low
	Volume    string `json:"v"` // 24h base-asset volume
}

// Ticker24hResponse is the REST /api/v3/ticker/24hr response body.
type Ticker24hResponse struct {
	Symbol        string `json:"symbol"`
	PriceChange   string `json:"priceChange"`
	PriceChangePc string `json:"priceChangePercent"`
	LastPrice     string `json:"lastPrice"`
	HighPrice     string `json:"highPrice"`
	LowPrice      string `json:"lowPrice"`
	Volume        string `json:"volume"`
	CloseTime     int64  `json:"closeTime"` // ms since epoch
}

// ExchangeInfoResponse is the REST /api/v3/exchangeInfo response body,
// reduced to the fields the catalog needs.
type ExchangeInfoResponse struct {
	Symbols []SymbolInfo `json:"symbols"`
}

// SymbolInfo is one symbol entry of the exchange-info catalog.
type SymbolInfo struct {
	Symbol     string `json:"symbol"`     // e.g., "BTCUSDT"
	Status     string `json:"status"`     // "TRADING" when live
	BaseAsset  string `json:"baseAsset"`  // e.g., "BTC"
	QuoteAsset string `json:"quoteAsset"` // e.g., "USDT"
}

// KlineRow is one kline tuple from /api/v3/klines. The API returns a
// mixed-type JSON array (ints and strings), so cells are decoded lazily.
type KlineRow []json.RawMessage
