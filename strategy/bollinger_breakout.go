package strategy

import (
	"math"

	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/indicator"
	"github.com/finagent/quantcore/logger"
	"github.com/finagent/quantcore/signal"
	"github.com/finagent/quantcore/types"
)

// BollingerBandBreakout trades the reversal after price pierces a band and
// re-enters the channel on the following bar.
type BollingerBandBreakout struct {
	base
}

func NewBollingerBandBreakout(cfg config.StrategyConfig, log logger.Logger) (*BollingerBandBreakout, error) {
	b, err := newBase("bollinger_breakout", cfg, log)
	if err != nil {
		return nil, err
	}
	return &BollingerBandBreakout{base: b}, nil
}

func (s *BollingerBandBreakout) Evaluate(symbol string, data MarketData) types.StrategySignal {
	if data.len() < s.cfg.BollingerPeriod+1 {
		return s.abstain(symbol, data)
	}
	upper, middle, lower := indicator.Bollinger(data.Closes, s.cfg.BollingerPeriod, s.cfg.BollingerStdDev)

	closePrev, closeCur := last2(data.Closes)
	upperPrev, upperCur := last2(upper)
	lowerPrev, lowerCur := last2(lower)
	sig := signal.FromBollinger(closePrev, closeCur, upperPrev, upperCur, lowerPrev, lowerCur)
	if sig == types.Neutral {
		return s.abstain(symbol, data)
	}

	// Deeper penetration on the pierce bar makes the snap-back more
	// convincing.
	width := upperCur - lowerCur
	depth := 0.0
	if width > 0 {
		if sig.Direction() == types.DirBuy {
			depth = (lowerPrev - closePrev) / width
		} else {
			depth = (closePrev - upperPrev) / width
		}
	}
	conf := 0.55 + math.Min(0.45, math.Max(0, depth))
	mid := middle[len(middle)-1]
	return s.emit(symbol, data, sig, conf, map[string]float64{
		"upper_band":  upperCur,
		"middle_band": mid,
		"lower_band":  lowerCur,
	})
}
