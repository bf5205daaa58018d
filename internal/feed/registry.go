package feed

import (
	"sort"
	"sync"

	"marketfeed/internal/market"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TickHandler receives one real-time price update. Handlers are invoked
// synchronously on the stream's read goroutine; slow handlers delay tick
// delivery for the whole connection.
type TickHandler func(market.PriceTick)

// Registry maps instruments to subscriber callbacks. It is safe for
// concurrent use; dispatch recovers panicking handlers so one bad
// listener cannot starve the others.
type Registry struct {
	logger *zap.Logger

	mu        sync.Mutex
	listeners map[string]map[uuid.UUID]TickHandler
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger:    logger,
		listeners: make(map[string]map[uuid.UUID]TickHandler),
	}
}

// Add registers a handler for the instrument and reports whether the
// instrument previously had no listeners (meaning the desired stream
// set grew).
func (r *Registry) Add(instrument string, handler TickHandler) (uuid.UUID, bool) {
	symbol := market.Canonical(instrument)
	id := uuid.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.listeners[symbol]
	if !ok {
		set = make(map[uuid.UUID]TickHandler)
		r.listeners[symbol] = set
	}
	set[id] = handler
	activeSubscriptions.Inc()
	return id, !ok
}

// Remove drops exactly one handler. It is idempotent: removing an
// already-removed listener is a no-op. The second result reports whether
// the instrument is now listener-free (the desired stream set shrank).
func (r *Registry) Remove(instrument string, id uuid.UUID) (removed, instrumentGone bool) {
	symbol := market.Canonical(instrument)

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.listeners[symbol]
	if !ok {
		return false, false
	}
	if _, ok := set[id]; !ok {
		return false, false
	}
	delete(set, id)
	activeSubscriptions.Dec()
	if len(set) == 0 {
		delete(r.listeners, symbol)
		return true, true
	}
	return true, false
}

// Notify delivers the tick to every handler registered for the
// instrument. A handler that panics is recovered and logged; remaining
// handlers still receive the tick and Notify never panics to its caller.
func (r *Registry) Notify(instrument string, tick market.PriceTick) {
	symbol := market.Canonical(instrument)

	r.mu.Lock()
	handlers := make([]TickHandler, 0, len(r.listeners[symbol]))
	for _, h := range r.listeners[symbol] {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()

	for _, h := range handlers {
		r.dispatch(symbol, h, tick)
		ticksDelivered.Inc()
	}
}

func (r *Registry) dispatch(symbol string, h TickHandler, tick market.PriceTick) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("subscriber callback panicked",
				zap.String("instrument", symbol), zap.Any("panic", p))
		}
	}()
	h(tick)
}

// Instruments returns the sorted set of instruments with at least one
// listener; the union defines the desired stream subscription.
func (r *Registry) Instruments() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.listeners))
	for symbol := range r.listeners {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether no listener exists for any instrument.
func (r *Registry) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners) == 0
}
