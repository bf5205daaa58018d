package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marketfeed/pkg/binance"

	"go.uber.org/zap"
)

const exchangeInfoBody = `{"symbols":[
	{"symbol":"ETHUSDT","status":"TRADING","baseAsset":"ETH","quoteAsset":"USDT"},
	{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT"}
]}`

func TestCatalogFallbackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewCatalog(binance.NewRESTClient(srv.URL, time.Second), "USDT", time.Minute, zap.NewNop())

	got := c.All(context.Background())
	if len(got) == 0 {
		t.Fatal("fallback list must not be empty")
	}
	for _, in := range got {
		if in.Symbol == "" {
			t.Fatalf("fallback entry missing symbol: %+v", in)
		}
	}
}

func TestCatalogCachesWithinTTL(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte(exchangeInfoBody))
	}))
	t.Cleanup(srv.Close)

	c := NewCatalog(binance.NewRESTClient(srv.URL, time.Second), "USDT", time.Minute, zap.NewNop())

	first := c.All(context.Background())
	second := c.All(context.Background())

	if fetches.Load() != 1 {
		t.Fatalf("expected a single fetch within the freshness window, got %d", fetches.Load())
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected catalog sizes: %d, %d", len(first), len(second))
	}
	if first[0].Symbol != "BTCUSDT" || first[1].Symbol != "ETHUSDT" {
		t.Fatalf("catalog not sorted by symbol: %+v", first)
	}
}

func TestCatalogCoalescesConcurrentRefreshes(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(exchangeInfoBody))
	}))
	t.Cleanup(srv.Close)

	c := NewCatalog(binance.NewRESTClient(srv.URL, time.Second), "USDT", time.Minute, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.All(context.Background()); len(got) != 2 {
				t.Errorf("expected 2 instruments, got %d", len(got))
			}
		}()
	}
	wg.Wait()

	if fetches.Load() != 1 {
		t.Fatalf("concurrent callers should share one refresh, got %d", fetches.Load())
	}
}

func TestCatalogServesStaleOnFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(exchangeInfoBody))
	}))
	t.Cleanup(srv.Close)

	// TTL of one nanosecond forces a refresh on every call.
	c := NewCatalog(binance.NewRESTClient(srv.URL, time.Second), "USDT", time.Nanosecond, zap.NewNop())

	first := c.All(context.Background())
	if len(first) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(first))
	}

	fail.Store(true)
	time.Sleep(time.Millisecond)

	second := c.All(context.Background())
	if len(second) != 2 {
		t.Fatalf("expected the stale catalog on refresh failure, got %+v", second)
	}
}
