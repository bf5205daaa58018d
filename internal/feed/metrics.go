package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketfeed",
			Subsystem: "stream",
			Name:      "frames_received_total",
			Help:      "Frames read from the market-data stream",
		},
	)

	framesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketfeed",
			Subsystem: "stream",
			Name:      "frames_dropped_total",
			Help:      "Frames dropped before dispatch",
		},
		[]string{"reason"},
	)

	ticksDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketfeed",
			Subsystem: "stream",
			Name:      "ticks_delivered_total",
			Help:      "Ticks fanned out to subscriber callbacks",
		},
	)

	staleTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketfeed",
			Subsystem: "cache",
			Name:      "stale_ticks_total",
			Help:      "Ticks rejected by the cache monotonic-timestamp rule",
		},
	)

	reconnectAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketfeed",
			Subsystem: "stream",
			Name:      "reconnect_attempts_total",
			Help:      "Scheduled reconnection attempts",
		},
	)

	connectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marketfeed",
			Subsystem: "stream",
			Name:      "connection_state",
			Help:      "Connection state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting)",
		},
	)

	activeSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marketfeed",
			Subsystem: "registry",
			Name:      "active_subscriptions",
			Help:      "Currently registered subscriber callbacks",
		},
	)
)
