package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketfeed/config"
	"marketfeed/internal/feed"
	"marketfeed/internal/market"
	"marketfeed/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	f := feed.New(feed.Options{
		WSBaseURL:   cfg.Binance.WS.BaseURL,
		RESTBaseURL: cfg.Binance.REST.BaseURL,
		RESTTimeout: cfg.Binance.REST.Timeout,
		QuoteAsset:  cfg.Feed.QuoteAsset,
		CatalogTTL:  cfg.Feed.CatalogTTL,
		Reconnect: feed.ReconnectConfig{
			MaxAttempts: cfg.Feed.Reconnect.MaxAttempts,
			BaseDelay:   cfg.Feed.Reconnect.BaseDelay,
			MaxDelay:    cfg.Feed.Reconnect.MaxDelay,
			Jitter:      cfg.Feed.Reconnect.Jitter,
		},
		Logger: log,
	})

	f.OnStateChange(func(s feed.ConnState) {
		if s == feed.StateDisconnected {
			log.Warn("feed disconnected; manual resubscribe required if unintended")
		}
	})

	// Seed the cache from REST snapshots before the stream connects.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	for _, symbol := range cfg.Feed.Symbols {
		if _, err := f.Get24hTicker(ctx, symbol); err != nil {
			log.Warn("failed to seed ticker snapshot",
				zap.String("symbol", symbol), zap.Error(err))
		}
	}
	cancel()

	// Subscribe to the configured instruments and log each tick.
	unsubs := make([]func(), 0, len(cfg.Feed.Symbols))
	for _, symbol := range cfg.Feed.Symbols {
		symbol := symbol
		unsub := f.Subscribe(symbol, func(tick market.PriceTick) {
			log.Info("tick",
				zap.String("instrument", tick.Instrument),
				zap.Float64("price", tick.Price),
				zap.Float64("change_pct", tick.ChangePct),
				zap.Int64("event_time_ms", tick.EventTime),
			)
		})
		unsubs = append(unsubs, unsub)
	}

	// Prometheus metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.Feed.MetricsBind, mux); err != nil {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	for _, unsub := range unsubs {
		unsub()
	}
	f.Disconnect()
}
