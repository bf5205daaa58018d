package binance

import "strings"

// TickerStreamName returns the combined-stream name for an instrument's
// 24h ticker channel, e.g. "btcusdt@ticker". Stream names are lowercase
// on the wire.
func TickerStreamName(symbol string) string {
	return strings.ToLower(symbol) + "@ticker"
}

// SymbolFromStream parses the instrument out of a stream name like
// "btcusdt@ticker". The symbol is returned uppercase; an empty string
// means the name did not look like a ticker stream.
func SymbolFromStream(stream string) string {
	name, channel, ok := strings.Cut(stream, "@")
	if !ok || channel != "ticker" || name == "" {
		return ""
	}
	return strings.ToUpper(name)
}

// CombinedStreamURL builds the multiplexed subscription URL for the
// given instruments, e.g.
// wss://stream.example.com/stream?streams=btcusdt@ticker/ethusdt@ticker
func CombinedStreamURL(wsBaseURL string, symbols []string) string {
	names := make([]string, 0, len(symbols))
	for _, s := range symbols {
		names = append(names, TickerStreamName(s))
	}
	return strings.TrimSuffix(wsBaseURL, "/") + "/stream?streams=" + strings.Join(names, "/")
}
