package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"marketfeed/internal/market"
	"marketfeed/pkg/binance"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// StreamClient owns the single multiplexed WebSocket connection. The
// connection is scoped to the current set of instruments with live
// subscribers; the upstream combined-stream endpoint has no incremental
// subscribe message, so every set change tears the socket down and
// redials with the new list.
type StreamClient struct {
	wsBaseURL string
	dialer    *websocket.Dialer
	cache     *market.PriceCache
	registry  *Registry
	policy    *ReconnectPolicy
	logger    *zap.Logger
	onState   func(ConnState)

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	gen    int
	resub  bool
}

func NewStreamClient(wsBaseURL string, cache *market.PriceCache, registry *Registry,
	policy *ReconnectPolicy, onState func(ConnState), logger *zap.Logger) *StreamClient {
	return &StreamClient{
		wsBaseURL: wsBaseURL,
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		cache:     cache,
		registry:  registry,
		policy:    policy,
		logger:    logger,
		onState:   onState,
	}
}

// EnsureConnected brings the connection in line with the registry's
// current instrument set. With no session running it starts one; with a
// live session it forces a teardown-and-redial so the new set takes
// effect.
func (c *StreamClient) EnsureConnected() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.gen++
		c.policy.Reset()
		go c.run(ctx, c.gen)
		return
	}

	c.resub = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Stop tears the connection down. Idempotent; the session goroutine
// exits without scheduling a reconnect.
func (c *StreamClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.resub = false
}

// run is the session loop: dial, read until closed, then either redial
// (set change), retry under the policy (connection loss), or exit
// (explicit stop, empty set, or exhausted budget).
func (c *StreamClient) run(ctx context.Context, gen int) {
	defer c.finish(gen)

	dialing := true
	for {
		if ctx.Err() != nil {
			return
		}

		// A pending redial request is satisfied by reading the set fresh.
		c.takeResub()
		set := c.registry.Instruments()
		if len(set) == 0 {
			return
		}
		if dialing {
			c.setState(gen, StateConnecting)
		}

		conn, err := c.dial(ctx, set)
		if err != nil {
			c.logger.Warn("stream dial failed",
				zap.Strings("instruments", set), zap.Error(err))
			if !c.backoff(ctx, gen) {
				return
			}
			dialing = false
			continue
		}

		c.policy.Reset()
		if !c.install(gen, conn) {
			_ = conn.Close()
			return
		}
		if c.takeResub() {
			// The set changed while this dial was in flight; the socket
			// carries a stale stream list, so redial immediately.
			_ = conn.Close()
			dialing = true
			continue
		}
		c.setState(gen, StateConnected)
		c.logger.Info("stream connected", zap.Strings("instruments", set))

		c.readLoop(conn)

		if ctx.Err() != nil {
			return // explicit disconnect
		}
		if c.takeResub() {
			// Deliberate teardown on instrument-set change; does not
			// consume the retry budget.
			dialing = true
			continue
		}
		if !c.backoff(ctx, gen) {
			return
		}
		dialing = false
	}
}

// backoff asks the policy for the next retry slot and waits it out.
// Returns false when the budget is exhausted or the session was stopped.
func (c *StreamClient) backoff(ctx context.Context, gen int) bool {
	delay, ok := c.policy.Next()
	if !ok {
		c.logger.Error("reconnect attempts exhausted, giving up",
			zap.Int("attempts", c.policy.Attempts()))
		return false
	}
	c.setState(gen, StateReconnecting)
	c.logger.Info("reconnect scheduled",
		zap.Duration("delay", delay), zap.Int("attempt", c.policy.Attempts()))

	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

func (c *StreamClient) dial(ctx context.Context, set []string) (*websocket.Conn, error) {
	url := binance.CombinedStreamURL(c.wsBaseURL, set)
	conn, _, err := c.dialer.DialContext(ctx, url, nil)
	return conn, err
}

func (c *StreamClient) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			// Close is the authoritative loss signal; the caller decides
			// whether this was an explicit stop or a loss.
			c.logger.Warn("stream read ended", zap.Error(err))
			_ = conn.Close()
			return
		}
		framesReceived.Inc()
		c.handleMessage(msg)
	}
}

// handleMessage decodes one combined-stream frame. Malformed frames are
// dropped and logged; they never tear the connection down.
func (c *StreamClient) handleMessage(msg []byte) {
	var env binance.StreamEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		framesDropped.WithLabelValues("malformed").Inc()
		c.logger.Warn("failed to decode stream envelope", zap.Error(err))
		return
	}
	if env.Stream == "" || len(env.Data) == 0 {
		// Subscription acks and other control frames carry no envelope.
		framesDropped.WithLabelValues("control").Inc()
		return
	}

	symbol := binance.SymbolFromStream(env.Stream)
	if symbol == "" {
		framesDropped.WithLabelValues("unknown_stream").Inc()
		return
	}

	var payload binance.TickerPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		framesDropped.WithLabelValues("malformed").Inc()
		c.logger.Warn("failed to decode ticker payload",
			zap.String("stream", env.Stream), zap.Error(err))
		return
	}

	tick, err := payload.ToPriceTick()
	if err != nil {
		framesDropped.WithLabelValues("malformed").Inc()
		c.logger.Warn("invalid ticker payload",
			zap.String("stream", env.Stream), zap.Error(err))
		return
	}

	if !c.cache.Put(tick) {
		staleTicks.Inc()
	}
	// Delivery is not gated on the cache verdict: listeners observe the
	// frames in emission order even when the cache kept a newer tick.
	c.registry.Notify(symbol, tick)
}

// install records the live connection unless the session was stopped or
// superseded while dialing.
func (c *StreamClient) install(gen int, conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen || c.cancel == nil {
		return false
	}
	c.conn = conn
	return true
}

func (c *StreamClient) takeResub() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.resub
	c.resub = false
	return v
}

// setState forwards a state transition, unless this session has been
// superseded by a newer one.
func (c *StreamClient) setState(gen int, s ConnState) {
	c.mu.Lock()
	active := c.gen == gen && c.cancel != nil
	c.mu.Unlock()
	if active {
		c.onState(s)
	}
}

// finish clears session bookkeeping when the loop exits on its own
// (empty set, exhausted retries, or stop). A resubscribe request that
// landed after the loop decided to exit is handed a fresh session
// instead of being discarded.
func (c *StreamClient) finish(gen int) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}

	if c.resub && !c.registry.Empty() {
		c.resub = false
		if c.cancel != nil {
			c.cancel()
		}
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.conn = nil
		c.gen++
		c.policy.Reset()
		go c.run(ctx, c.gen)
		c.mu.Unlock()
		return
	}

	c.cancel = nil
	c.conn = nil
	c.resub = false
	c.mu.Unlock()

	c.onState(StateDisconnected)
}
