package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketfeed/internal/market"
)

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// GetInstruments fetches the exchange catalog filtered to live symbols
// quoted in quoteAsset. Leveraged tokens (bases ending in UP/DOWN, e.g.
// BTCUP) are excluded.
func (c *RESTClient) GetInstruments(ctx context.Context, quoteAsset string) ([]market.Instrument, error) {
	var info ExchangeInfoResponse
	if err := c.getJSON(ctx, "/api/v3/exchangeInfo", &info); err != nil {
		return nil, err
	}

	quoteAsset = strings.ToUpper(quoteAsset)
	var out []market.Instrument
	for _, s := range info.Symbols {
		if s.Status != "TRADING" || s.QuoteAsset != quoteAsset {
			continue
		}
		if isLeveragedToken(s.BaseAsset) {
			continue
		}
		out = append(out, market.Instrument{
			Symbol:     s.Symbol,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
		})
	}
	return out, nil
}

// GetKlines fetches up to limit candles for the symbol and interval.
func (c *RESTClient) GetKlines(ctx context.Context, symbol string, interval CandleInterval, limit int) ([]market.Candle, error) {
	if !interval.IsValid() {
		return nil, fmt.Errorf("invalid candle interval: %s", interval)
	}

	path := fmt.Sprintf("/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		market.Canonical(symbol), interval, limit)

	var rows []KlineRow
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}
	return ParseKlineRows(rows), nil
}

// Get24hTicker fetches the rolling 24h ticker snapshot for the symbol.
func (c *RESTClient) Get24hTicker(ctx context.Context, symbol string) (*market.PriceTick, error) {
	path := "/api/v3/ticker/24hr?symbol=" + market.Canonical(symbol)

	var body Ticker24hResponse
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}

	tick, err := restTickerToPriceTick(&body)
	if err != nil {
		return nil, fmt.Errorf("decode ticker: %w", err)
	}
	return &tick, nil
}

// getJSON performs a GET against the API and decodes the JSON body.
func (c *RESTClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("binance error (%d): %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// isLeveragedToken reports whether a base asset names a leveraged token
// product rather than a spot asset (e.g. "BTCUP", "ETHDOWN").
func isLeveragedToken(baseAsset string) bool {
	return strings.HasSuffix(baseAsset, "UP") || strings.HasSuffix(baseAsset, "DOWN") ||
		strings.HasSuffix(baseAsset, "BULL") || strings.HasSuffix(baseAsset, "BEAR")
}
