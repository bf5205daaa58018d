package feed

import (
	"context"
	"sort"
	"sync"
	"time"

	"marketfeed/internal/market"
	"marketfeed/pkg/binance"

	"go.uber.org/zap"
)

const defaultCatalogTTL = 5 * time.Minute

// defaultInstruments is served when the catalog has never been fetched
// and the exchange-info request fails, so callers always have something
// to render.
var defaultInstruments = []market.Instrument{
	{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT"},
	{Symbol: "ETHUSDT", BaseAsset: "ETH", QuoteAsset: "USDT"},
	{Symbol: "BNBUSDT", BaseAsset: "BNB", QuoteAsset: "USDT"},
	{Symbol: "SOLUSDT", BaseAsset: "SOL", QuoteAsset: "USDT"},
	{Symbol: "XRPUSDT", BaseAsset: "XRP", QuoteAsset: "USDT"},
}

// Catalog caches the tradable-instrument list with a freshness window.
// A failed refresh degrades to the previous list, or to the hardcoded
// defaults when nothing was ever fetched — never to an empty result.
type Catalog struct {
	rest       *binance.RESTClient
	quoteAsset string
	ttl        time.Duration
	logger     *zap.Logger

	mu        sync.Mutex
	cached    []market.Instrument
	fetchedAt time.Time
}

func NewCatalog(rest *binance.RESTClient, quoteAsset string, ttl time.Duration, logger *zap.Logger) *Catalog {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &Catalog{
		rest:       rest,
		quoteAsset: quoteAsset,
		ttl:        ttl,
		logger:     logger,
	}
}

// All returns the instrument catalog sorted by symbol. The lock is held
// across the refresh so concurrent callers past the freshness window
// share one upstream request instead of stampeding the API.
func (c *Catalog) All(ctx context.Context) []market.Instrument {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.fetchedAt) < c.ttl {
		return cloneInstruments(c.cached)
	}

	fetched, err := c.rest.GetInstruments(ctx, c.quoteAsset)
	if err != nil || len(fetched) == 0 {
		c.logger.Warn("instrument catalog fetch failed, serving fallback",
			zap.Bool("have_stale", c.cached != nil), zap.Error(err))
		if c.cached != nil {
			return cloneInstruments(c.cached)
		}
		return cloneInstruments(defaultInstruments)
	}

	sort.Slice(fetched, func(i, j int) bool {
		return fetched[i].Symbol < fetched[j].Symbol
	})

	c.cached = fetched
	c.fetchedAt = time.Now()
	return cloneInstruments(c.cached)
}

func cloneInstruments(in []market.Instrument) []market.Instrument {
	out := make([]market.Instrument, len(in))
	copy(out, in)
	return out
}
