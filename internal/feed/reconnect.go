package feed

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Reconnect defaults. Backoff is exponential with jitter but strictly
// bounded: once the attempt budget is spent no further retry is
// scheduled until a successful open (or an explicit resubscribe) resets
// the policy.
const (
	defaultMaxAttempts  = 5
	defaultBaseDelay    = 3 * time.Second
	defaultMaxDelay     = 30 * time.Second
	defaultJitterFactor = 0.1
)

// ReconnectConfig tunes the bounded-retry backoff controller.
type ReconnectConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	Jitter      float64       `mapstructure:"jitter"`
}

func (c ReconnectConfig) withDefaults() ReconnectConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.Jitter < 0 || c.Jitter >= 1 {
		c.Jitter = defaultJitterFactor
	}
	return c
}

// ReconnectPolicy decides whether a failed or lost connection may retry
// and with what delay.
type ReconnectPolicy struct {
	cfg ReconnectConfig

	mu       sync.Mutex
	attempts int
}

func NewReconnectPolicy(cfg ReconnectConfig) *ReconnectPolicy {
	return &ReconnectPolicy{cfg: cfg.withDefaults()}
}

// Next consumes one retry attempt. It returns the delay to wait before
// dialing again, or ok=false when the budget is exhausted.
func (p *ReconnectPolicy) Next() (delay time.Duration, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.attempts >= p.cfg.MaxAttempts {
		return 0, false
	}
	p.attempts++

	backoff := float64(p.cfg.BaseDelay) * math.Pow(2, float64(p.attempts-1))
	if backoff > float64(p.cfg.MaxDelay) {
		backoff = float64(p.cfg.MaxDelay)
	}
	// Spread delays by ±jitter so reconnecting clients do not thunder in
	// lockstep.
	backoff *= 1 + p.cfg.Jitter*(2*rand.Float64()-1)

	reconnectAttempts.Inc()
	return time.Duration(backoff), true
}

// Reset clears the attempt counter. Called after every successful open
// so a later, unrelated outage gets the full budget again.
func (p *ReconnectPolicy) Reset() {
	p.mu.Lock()
	p.attempts = 0
	p.mu.Unlock()
}

// Attempts returns the number of consumed attempts since the last reset.
func (p *ReconnectPolicy) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}
