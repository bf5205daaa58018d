package binance

import "fmt"

// CandleInterval is the interval string used for kline API requests.
type CandleInterval string

// CandleIntervalMeta holds the API value and minute span for an interval.
type CandleIntervalMeta struct {
	APIValue string
	Minutes  int
}

const (
	Interval1Min   CandleInterval = "1m"
	Interval3Min   CandleInterval = "3m"
	Interval5Min   CandleInterval = "5m"
	Interval15Min  CandleInterval = "15m"
	Interval30Min  CandleInterval = "30m"
	Interval1Hour  CandleInterval = "1h"
	Interval2Hour  CandleInterval = "2h"
	Interval4Hour  CandleInterval = "4h"
	Interval6Hour  CandleInterval = "6h"
	Interval12Hour CandleInterval = "12h"
	IntervalDaily  CandleInterval = "1d"
	IntervalWeekly CandleInterval = "1w"
	IntervalMonth  CandleInterval = "1M"
)

// validCandleIntervals maps CandleInterval to its metadata.
var validCandleIntervals = map[CandleInterval]CandleIntervalMeta{
	Interval1Min:   {APIValue: "1m", Minutes: 1},
	Interval3Min:   {APIValue: "3m", Minutes: 3},
	Interval5Min:   {APIValue: "5m", Minutes: 5},
	Interval15Min:  {APIValue: "15m", Minutes: 15},
	Interval30Min:  {APIValue: "30m", Minutes: 30},
	Interval1Hour:  {APIValue: "1h", Minutes: 60},
	Interval2Hour:  {APIValue: "2h", Minutes: 120},
	Interval4Hour:  {APIValue: "4h", Minutes: 240},
	Interval6Hour:  {APIValue: "6h", Minutes: 360},
	Interval12Hour: {APIValue: "12h", Minutes: 720},
	IntervalDaily:  {APIValue: "1d", Minutes: 1440},
	IntervalWeekly: {APIValue: "1w", Minutes: 10080},
	IntervalMonth:  {APIValue: "1M", Minutes: 43200}, // 30-day approximation
}

// IsValid checks whether the interval is a known API interval.
func (k CandleInterval) IsValid() bool {
	_, ok := validCandleIntervals[k]
	return ok
}

// ParseCandleInterval parses a string into interval metadata.
func ParseCandleInterval(s string) (CandleIntervalMeta, error) {
	meta, ok := validCandleIntervals[CandleInterval(s)]
	if !ok {
		return CandleIntervalMeta{}, fmt.Errorf("invalid candle interval: %s", s)
	}
	return meta, nil
}
