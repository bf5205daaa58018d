package binance

import (
	"encoding/json"
	"strconv"

	"marketfeed/internal/market"
)

// ParseKlineRows converts /api/v3/klines tuples into candles. Rows that
// are too short or carry unparsable cells are skipped rather than
// failing the whole batch.
func ParseKlineRows(rows []KlineRow) []market.Candle {
	out := make([]market.Candle, 0, len(rows))

	for _, row := range rows {
		if len(row) < 7 {
			continue // skip incomplete row
		}

		openTime, err := rawInt64(row[0])
		if err != nil {
			continue
		}
		open, err := rawFloat(row[1])
		if err != nil {
			continue
		}
		high, err := rawFloat(row[2])
		if err != nil {
			continue
		}
		low, err := rawFloat(row[3])
		if err != nil {
			continue
		}
		closeVal, err := rawFloat(row[4])
		if err != nil {
			continue
		}
		volume, err := rawFloat(row[5])
		if err != nil {
			continue
		}
		closeTime, err := rawInt64(row[6])
		if err != nil {
			continue
		}

		out = append(out, market.Candle{
			OpenTime:  openTime,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closeVal,
			Volume:    volume,
			CloseTime: closeTime,
		})
	}
	return out
}

// rawInt64 decodes a bare JSON number cell.
func rawInt64(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// rawFloat decodes a string-encoded numeric cell like "0.0163479".
func rawFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
