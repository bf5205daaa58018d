package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRESTClient(srv.URL, 5*time.Second)
}

func TestGetKlines(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "1m" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[
			[1499040000000,"0.01634790","0.80000000","0.01575800","0.01577100","148976.11427815",1499644799999,"2434.19055334",308,"1756.87402397","28.46694368","0"],
			[1499040060000,"0.01577100","0.01700000","0.01500000","0.01600000","100.0",1499040119999,"1.6",10,"50.0","0.8","0"]
		]`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	candles, err := client.GetKlines(ctx, "btcusdt", Interval1Min, 2)
	if err != nil {
		t.Fatalf("GetKlines returned error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	first := candles[0]
	if first.OpenTime != 1499040000000 || first.CloseTime != 1499644799999 {
		t.Errorf("unexpected times: %+v", first)
	}
	if first.Open != 0.0163479 || first.High != 0.8 {
		t.Errorf("unexpected prices: %+v", first)
	}
}

func TestGetKlinesSkipsBadRows(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			[1499040000000,"0.016"],
			[1499040000000,"not-a-number","0.8","0.015","0.015","100",1499040059999],
			[1499040060000,"0.016","0.8","0.015","0.015","100",1499040119999]
		]`))
	})

	candles, err := client.GetKlines(context.Background(), "BTCUSDT", Interval1Min, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("expected bad rows skipped, got %d candles", len(candles))
	}
}

func TestGetKlinesRejectsInvalidInterval(t *testing.T) {
	client := NewRESTClient("http://127.0.0.1:0", time.Second)
	if _, err := client.GetKlines(context.Background(), "BTCUSDT", "7m", 10); err == nil {
		t.Fatal("expected error for invalid interval")
	}
}

func TestGet24hTicker(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"symbol":"BTCUSDT",
			"priceChange":"-94.99999800",
			"priceChangePercent":"-95.960",
			"lastPrice":"4.00000200",
			"highPrice":"100.00000000",
			"lowPrice":"0.10000000",
			"volume":"8913.30000000",
			"closeTime":1499869899040
		}`))
	})

	tick, err := client.Get24hTicker(context.Background(), "btcusdt")
	if err != nil {
		t.Fatalf("Get24hTicker returned error: %v", err)
	}
	if tick.Instrument != "BTCUSDT" {
		t.Errorf("unexpected instrument: %q", tick.Instrument)
	}
	if tick.Price != 4.000002 || tick.High24h != 100 || tick.Low24h != 0.1 {
		t.Errorf("unexpected tick: %+v", tick)
	}
	if tick.EventTime != 1499869899040 {
		t.Errorf("unexpected event time: %d", tick.EventTime)
	}
}

func TestGetInstrumentsFilters(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/exchangeInfo" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT"},
			{"symbol":"ETHBTC","status":"TRADING","baseAsset":"ETH","quoteAsset":"BTC"},
			{"symbol":"XYZUSDT","status":"BREAK","baseAsset":"XYZ","quoteAsset":"USDT"},
			{"symbol":"BTCUPUSDT","status":"TRADING","baseAsset":"BTCUP","quoteAsset":"USDT"},
			{"symbol":"ETHDOWNUSDT","status":"TRADING","baseAsset":"ETHDOWN","quoteAsset":"USDT"},
			{"symbol":"SOLUSDT","status":"TRADING","baseAsset":"SOL","quoteAsset":"USDT"}
		]}`))
	})

	instruments, err := client.GetInstruments(context.Background(), "usdt")
	if err != nil {
		t.Fatalf("GetInstruments returned error: %v", err)
	}

	got := make(map[string]bool, len(instruments))
	for _, in := range instruments {
		got[in.Symbol] = true
	}
	if len(instruments) != 2 || !got["BTCUSDT"] || !got["SOLUSDT"] {
		t.Fatalf("unexpected catalog: %+v", instruments)
	}
}

func TestErrorStatusSurfaced(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	})

	if _, err := client.Get24hTicker(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if _, err := client.GetInstruments(context.Background(), "USDT"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
