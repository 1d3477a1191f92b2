package strategy

import (
	"math"

	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/indicator"
	"github.com/finagent/quantcore/logger"
	"github.com/finagent/quantcore/types"
)

// TrendFollowing gates a +DI/-DI directional call on ADX trend strength and
// confirms it against a long moving average.
type TrendFollowing struct {
	base
}

func NewTrendFollowing(cfg config.StrategyConfig, log logger.Logger) (*TrendFollowing, error) {
	b, err := newBase("trend_following", cfg, log)
	if err != nil {
		return nil, err
	}
	return &TrendFollowing{base: b}, nil
}

func (s *TrendFollowing) Evaluate(symbol string, data MarketData) types.StrategySignal {
	// ADX needs 2×period bars to produce its first value; the long MA
	// confirmation needs its own warm-up on top.
	warmup := 2 * s.cfg.ADXPeriod
	if w := s.cfg.TrendMAPeriod; w > warmup {
		warmup = w
	}
	if data.len() < warmup+1 {
		return s.abstain(symbol, data)
	}

	adx, plusDI, minusDI := indicator.ADX(data.Highs, data.Lows, data.Closes, s.cfg.ADXPeriod)
	trendMA := indicator.SMA(data.Closes, s.cfg.TrendMAPeriod)

	n := data.len()
	adxCur, plusCur, minusCur, maCur := adx[n-1], plusDI[n-1], minusDI[n-1], trendMA[n-1]
	for _, v := range []float64{adxCur, plusCur, minusCur, maCur} {
		if !indicator.Defined(v) {
			return s.abstain(symbol, data)
		}
	}
	if adxCur < s.cfg.ADXThreshold {
		return s.abstain(symbol, data)
	}

	close := data.lastClose()
	var sig types.Signal
	switch {
	case plusCur > minusCur && close > maCur:
		sig = types.Buy
		if adxCur >= s.cfg.ADXThreshold+15 {
			sig = types.StrongBuy
		}
	case minusCur > plusCur && close < maCur:
		sig = types.Sell
		if adxCur >= s.cfg.ADXThreshold+15 {
			sig = types.StrongSell
		}
	default:
		return s.abstain(symbol, data)
	}

	conf := 0.5 + math.Min(0.5, (adxCur-s.cfg.ADXThreshold)/50)
	return s.emit(symbol, data, sig, conf, map[string]float64{
		"adx":      adxCur,
		"plus_di":  plusCur,
		"minus_di": minusCur,
		"trend_ma": maCur,
	})
}
