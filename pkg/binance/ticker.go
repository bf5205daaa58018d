package binance

import (
	"fmt"
	"strconv"

	"marketfeed/internal/market"
)

// ToPriceTick converts a streamed ticker payload into a PriceTick,
// parsing the string-encoded numeric fields. A payload with a missing
// symbol or an unparsable field is rejected as a protocol error.
func (p *TickerPayload) ToPriceTick() (market.PriceTick, error) {
	if p.Symbol == "" {
		return market.PriceTick{}, fmt.Errorf("ticker payload missing symbol")
	}

	price, err := strconv.ParseFloat(p.LastPrice, 64)
	if err != nil {
		return market.PriceTick{}, fmt.Errorf("parse last price %q: %w", p.LastPrice, err)
	}
	change, err := strconv.ParseFloat(p.Change, 64)
	if err != nil {
		return market.PriceTick{}, fmt.Errorf("parse price change %q: %w", p.Change, err)
	}
	changePct, err := strconv.ParseFloat(p.ChangePct, 64)
	if err != nil {
		return market.PriceTick{}, fmt.Errorf("parse change percent %q: %w", p.ChangePct, err)
	}
	high, err := strconv.ParseFloat(p.High, 64)
	if err != nil {
		return market.PriceTick{}, fmt.Errorf("parse high %q: %w", p.High, err)
	}
	low, err := strconv.ParseFloat(p.Low, 64)
	if err != nil {
		return market.PriceTick{}, fmt.Errorf("parse low %q: %w", p.Low, err)
	}
	volume, err := strconv.ParseFloat(p.Volume, 64)
	if err != nil {
		return market.PriceTick{}, fmt.Errorf("parse volume %q: %w", p.Volume, err)
	}

	return market.PriceTick{
		Instrument: market.Canonical(p.Symbol),
		Price:      price,
		ChangeAbs:  change,
		ChangePct:  changePct,
		High24h:    high,
		Low24h:     low,
		Volume24h:  volume,
		EventTime:  p.EventTime,
	}, nil
}

// restTickerToPriceTick converts a REST 24h ticker body. The REST shape
// has no event time of its own; closeTime stands in for it.
func restTickerToPriceTick(r *Ticker24hResponse) (market.PriceTick, error) {
	payload := TickerPayload{
		EventTime: r.CloseTime,
		Symbol:    r.Symbol,
		LastPrice: r.LastPrice,
		Change:    r.PriceChange,
		ChangePct: r.PriceChangePc,
		High:      r.HighPrice,
		Low:       r.LowPrice,
		Volume:    r.Volume,
	}
	return payload.ToPriceTick()
}
