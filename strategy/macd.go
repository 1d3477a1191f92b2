package strategy

import (
	"math"

	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/indicator"
	"github.com/finagent/quantcore/logger"
	"github.com/finagent/quantcore/signal"
	"github.com/finagent/quantcore/types"
)

// MACDStrategy trades signal-line crossovers; a histogram that has been
// widening in the cross direction upgrades the call to the STRONG variant.
type MACDStrategy struct {
	base
}

func NewMACDStrategy(cfg config.StrategyConfig, log logger.Logger) (*MACDStrategy, error) {
	b, err := newBase("macd", cfg, log)
	if err != nil {
		return nil, err
	}
	return &MACDStrategy{base: b}, nil
}

func (s *MACDStrategy) Evaluate(symbol string, data MarketData) types.StrategySignal {
	warmup := s.cfg.MACDSlow + s.cfg.MACDSignal
	if data.len() < warmup+1 {
		return s.abstain(symbol, data)
	}
	line, sigLine, hist := indicator.MACD(data.Closes, s.cfg.MACDFast, s.cfg.MACDSlow, s.cfg.MACDSignal)

	linePrev, lineCur := last2(line)
	sigPrev, sigCur := last2(sigLine)
	sig := signal.FromMACDCross(linePrev, sigPrev, lineCur, sigCur)
	if sig == types.Neutral {
		return s.abstain(symbol, data)
	}

	histCur := hist[len(hist)-1]
	if widening(hist, sig.Direction()) {
		if sig == types.Buy {
			sig = types.StrongBuy
		} else if sig == types.Sell {
			sig = types.StrongSell
		}
	}

	conf := 0.55
	if c := data.lastClose(); c > 0 {
		conf += math.Min(0.45, math.Abs(histCur)/c*100)
	}
	return s.emit(symbol, data, sig, conf, map[string]float64{
		"macd_line":   lineCur,
		"signal_line": sigCur,
		"histogram":   histCur,
	})
}

// widening reports whether the histogram grew in the trade direction over
// the last three bars.
func widening(hist []float64, dir types.Direction) bool {
	n := len(hist)
	if n < 3 {
		return false
	}
	a, b, c := hist[n-3], hist[n-2], hist[n-1]
	for _, v := range []float64{a, b, c} {
		if !indicator.Defined(v) {
			return false
		}
	}
	if dir == types.DirBuy {
		return c > b && b > a
	}
	return c < b && b < a
}
