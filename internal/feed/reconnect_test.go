package feed

import (
	"testing"
	"time"
)

func TestRetriesAreBounded(t *testing.T) {
	p := NewReconnectPolicy(ReconnectConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
	})

	for i := 0; i < 5; i++ {
		if _, ok := p.Next(); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if _, ok := p.Next(); ok {
		t.Fatal("sixth attempt must be refused")
	}
	if _, ok := p.Next(); ok {
		t.Fatal("budget must stay exhausted")
	}
}

func TestResetRestoresBudget(t *testing.T) {
	p := NewReconnectPolicy(ReconnectConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
	})

	// Burn part of the budget, then simulate a successful open.
	p.Next()
	p.Next()
	p.Next()
	p.Reset()

	if p.Attempts() != 0 {
		t.Fatalf("expected counter cleared, got %d", p.Attempts())
	}
	for i := 0; i < 5; i++ {
		if _, ok := p.Next(); !ok {
			t.Fatalf("attempt %d after reset should be allowed", i+1)
		}
	}
	if _, ok := p.Next(); ok {
		t.Fatal("budget must be bounded again after reset")
	}
}

func TestDelayGrowsAndIsCapped(t *testing.T) {
	base := 100 * time.Millisecond
	max := 300 * time.Millisecond
	p := NewReconnectPolicy(ReconnectConfig{
		MaxAttempts: 5,
		BaseDelay:   base,
		MaxDelay:    max,
		Jitter:      0.1,
	})

	for i := 0; i < 5; i++ {
		delay, ok := p.Next()
		if !ok {
			t.Fatalf("attempt %d refused", i+1)
		}
		// Backoff doubles each attempt, capped, with ±10% jitter.
		ideal := base << i
		if ideal > max {
			ideal = max
		}
		lo := time.Duration(float64(ideal) * 0.9)
		hi := time.Duration(float64(ideal) * 1.1)
		if delay < lo || delay > hi {
			t.Errorf("attempt %d: delay %v outside [%v, %v]", i+1, delay, lo, hi)
		}
	}
}

func TestZeroConfigGetsDefaults(t *testing.T) {
	p := NewReconnectPolicy(ReconnectConfig{})

	for i := 0; i < defaultMaxAttempts; i++ {
		if _, ok := p.Next(); !ok {
			t.Fatalf("attempt %d should be allowed under defaults", i+1)
		}
	}
	if _, ok := p.Next(); ok {
		t.Fatal("defaults must still bound the retries")
	}
}
