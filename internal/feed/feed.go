// Package feed implements the real-time market-data client: one
// multiplexed WebSocket stream fanned out to subscribers, a last-known
// price cache, bounded reconnection, and REST snapshot access for
// cold-start state.
package feed

import (
	"context"
	"sync"
	"time"

	"marketfeed/internal/market"
	"marketfeed/pkg/binance"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRESTTimeout = 10 * time.Second
	defaultQuoteAsset  = "USDT"
	defaultCandleLimit = 100
	maxCandleLimit     = 1000
)

// Options configures a Feed. Zero fields fall back to sane defaults.
type Options struct {
	WSBaseURL   string
	RESTBaseURL string
	RESTTimeout time.Duration
	QuoteAsset  string
	CatalogTTL  time.Duration
	Reconnect   ReconnectConfig
	Logger      *zap.Logger
}

// Feed is the single shared market-data instance for a process. It is
// constructed explicitly and injected into consumers; screens call
// Subscribe on mount and the returned unsubscribe func on unmount, and
// the application calls Disconnect on shutdown.
type Feed struct {
	logger   *zap.Logger
	cache    *market.PriceCache
	registry *Registry
	rest     *binance.RESTClient
	catalog  *Catalog
	stream   *StreamClient

	// mu makes registry mutation atomic with the "which instruments
	// need a live connection" decision.
	mu sync.Mutex

	stateMu  sync.Mutex
	state    ConnState
	stateFns []func(ConnState)
}

func New(opts Options) *Feed {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RESTTimeout <= 0 {
		opts.RESTTimeout = defaultRESTTimeout
	}
	if opts.QuoteAsset == "" {
		opts.QuoteAsset = defaultQuoteAsset
	}

	f := &Feed{
		logger:   opts.Logger,
		cache:    market.NewPriceCache(),
		registry: NewRegistry(opts.Logger),
		rest:     binance.NewRESTClient(opts.RESTBaseURL, opts.RESTTimeout),
		state:    StateDisconnected,
	}
	f.catalog = NewCatalog(f.rest, opts.QuoteAsset, opts.CatalogTTL, opts.Logger)
	f.stream = NewStreamClient(opts.WSBaseURL, f.cache, f.registry,
		NewReconnectPolicy(opts.Reconnect), f.setState, opts.Logger)
	return f
}

// Subscribe registers onTick for the instrument and returns the
// unsubscribe func that owns the subscription's lifetime. If a cached
// tick exists it is replayed synchronously before Subscribe returns, so
// late joiners see last-known state immediately.
func (f *Feed) Subscribe(instrument string, onTick TickHandler) (unsubscribe func()) {
	symbol := market.Canonical(instrument)

	// Replay before registering: once the handler joins the fan-out the
	// read goroutine may deliver fresh frames, and a replay issued after
	// that could hand the subscriber an older price on top of a newer one.
	if tick, ok := f.cache.Get(symbol); ok {
		f.registry.dispatch(symbol, onTick, tick)
	}

	f.mu.Lock()
	id, grew := f.registry.Add(symbol, onTick)
	if grew {
		f.stream.EnsureConnected()
	}
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.unsubscribe(symbol, id)
		})
	}
}

func (f *Feed) unsubscribe(symbol string, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	removed, gone := f.registry.Remove(symbol, id)
	if !removed || !gone {
		return
	}
	if f.registry.Empty() {
		f.stream.Stop()
		return
	}
	// Other instruments still have listeners; redial with the set minus
	// this one.
	f.stream.EnsureConnected()
}

// GetPrice returns the cached last-known tick for the instrument.
func (f *Feed) GetPrice(instrument string) (market.PriceTick, bool) {
	return f.cache.Get(instrument)
}

// GetCandles fetches a candle series snapshot. Transport and decode
// failures are returned to the caller rather than silently degraded to
// an empty slice.
func (f *Feed) GetCandles(ctx context.Context, instrument, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = defaultCandleLimit
	}
	if limit > maxCandleLimit {
		limit = maxCandleLimit
	}
	return f.rest.GetKlines(ctx, instrument, binance.CandleInterval(interval), limit)
}

// Get24hTicker fetches a one-shot ticker snapshot. On success the tick
// also seeds the cache, so it can serve late subscribers before the
// stream connects.
func (f *Feed) Get24hTicker(ctx context.Context, instrument string) (*market.PriceTick, error) {
	tick, err := f.rest.Get24hTicker(ctx, instrument)
	if err != nil {
		return nil, err
	}
	f.cache.Put(*tick)
	return tick, nil
}

// AllInstruments returns the tradable-instrument catalog, cached with a
// freshness window and degrading to a fallback list on fetch failure.
func (f *Feed) AllInstruments(ctx context.Context) []market.Instrument {
	return f.catalog.All(ctx)
}

// Disconnect tears the stream down. Idempotent. Registered listeners
// stay registered; a later Subscribe for a new instrument reconnects.
func (f *Feed) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stream.Stop()
}

// State returns the current connection state.
func (f *Feed) State() ConnState {
	f.stateMu.Lock()
	defer f.stateMu.Unlock()
	return f.state
}

// OnStateChange registers a hook invoked on every connection-state
// transition, including the final one when the retry budget runs out,
// so the application layer can prompt a manual retry.
func (f *Feed) OnStateChange(fn func(ConnState)) {
	f.stateMu.Lock()
	defer f.stateMu.Unlock()
	f.stateFns = append(f.stateFns, fn)
}

func (f *Feed) setState(s ConnState) {
	f.stateMu.Lock()
	if f.state == s {
		f.stateMu.Unlock()
		return
	}
	f.state = s
	fns := make([]func(ConnState), len(f.stateFns))
	copy(fns, f.stateFns)
	f.stateMu.Unlock()

	connectionState.Set(float64(s))
	f.logger.Info("connection state changed", zap.Stringer("state", s))
	for _, fn := range fns {
		fn(s)
	}
}
