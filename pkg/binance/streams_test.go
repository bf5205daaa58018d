package binance

import "testing"

func TestTickerStreamName(t *testing.T) {
	if got := TickerStreamName("BTCUSDT"); got != "btcusdt@ticker" {
		t.Fatalf("unexpected stream name: %q", got)
	}
}

func TestSymbolFromStream(t *testing.T) {
	cases := []struct {
		stream string
		want   string
	}{
		{"btcusdt@ticker", "BTCUSDT"},
		{"ethusdt@ticker", "ETHUSDT"},
		{"btcusdt@depth", ""},
		{"@ticker", ""},
		{"btcusdt", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := SymbolFromStream(c.stream); got != c.want {
			t.Errorf("SymbolFromStream(%q) = %q, want %q", c.stream, got, c.want)
		}
	}
}

func TestCombinedStreamURL(t *testing.T) {
	got := CombinedStreamURL("wss://stream.example.com:9443/", []string{"BTCUSDT", "ETHUSDT"})
	want := "wss://stream.example.com:9443/stream?streams=btcusdt@ticker/ethusdt@ticker"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
