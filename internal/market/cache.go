package market

import "sync"

// PriceCache holds the last-known tick per instrument. Entries are only
// replaced by ticks with an equal or newer event time, so out-of-order
// frames never roll the cache backwards. There is no eviction: the cache
// is bounded by the number of instruments ever subscribed.
type PriceCache struct {
	mu    sync.RWMutex
	ticks map[string]PriceTick
}

func NewPriceCache() *PriceCache {
	return &PriceCache{
		ticks: make(map[string]PriceTick),
	}
}

// Put stores the tick unless a newer tick for the same instrument is
// already cached. It reports whether the update was applied.
func (c *PriceCache) Put(tick PriceTick) bool {
	symbol := Canonical(tick.Instrument)

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.ticks[symbol]; ok && tick.EventTime < prev.EventTime {
		return false
	}
	tick.Instrument = symbol
	c.ticks[symbol] = tick
	return true
}

// Get returns the cached tick for the instrument, if any.
func (c *PriceCache) Get(instrument string) (PriceTick, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tick, ok := c.ticks[Canonical(instrument)]
	return tick, ok
}

// Len returns the number of instruments with a cached tick.
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ticks)
}
