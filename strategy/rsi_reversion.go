package strategy

import (
	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/indicator"
	"github.com/finagent/quantcore/logger"
	"github.com/finagent/quantcore/types"
)

// RSIMeanReversion buys oversold and sells overbought readings, with
// confidence scaled by how far the RSI sits beyond the threshold.
type RSIMeanReversion struct {
	base
}

func NewRSIMeanReversion(cfg config.StrategyConfig, log logger.Logger) (*RSIMeanReversion, error) {
	b, err := newBase("rsi_mean_reversion", cfg, log)
	if err != nil {
		return nil, err
	}
	return &RSIMeanReversion{base: b}, nil
}

func (s *RSIMeanReversion) Evaluate(symbol string, data MarketData) types.StrategySignal {
	if data.len() < s.cfg.RSIPeriod+1 {
		return s.abstain(symbol, data)
	}
	rsi := indicator.RSI(data.Closes, s.cfg.RSIPeriod)
	cur := rsi[len(rsi)-1]
	if !indicator.Defined(cur) {
		return s.abstain(symbol, data)
	}

	var sig types.Signal
	var conf float64
	switch {
	case cur <= s.cfg.RSIOversold-10:
		sig = types.StrongBuy
		conf = 0.7 + (s.cfg.RSIOversold-10-cur)/s.cfg.RSIOversold
	case cur <= s.cfg.RSIOversold:
		sig = types.Buy
		conf = 0.5 + (s.cfg.RSIOversold-cur)/s.cfg.RSIOversold
	case cur >= s.cfg.RSIOverbought+10:
		sig = types.StrongSell
		conf = 0.7 + (cur-s.cfg.RSIOverbought-10)/(100-s.cfg.RSIOverbought)
	case cur >= s.cfg.RSIOverbought:
		sig = types.Sell
		conf = 0.5 + (cur-s.cfg.RSIOverbought)/(100-s.cfg.RSIOverbought)
	default:
		return s.abstain(symbol, data)
	}
	return s.emit(symbol, data, sig, conf, map[string]float64{"rsi": cur})
}
