package strategy

import (
	"math"

	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/indicator"
	"github.com/finagent/quantcore/logger"
	"github.com/finagent/quantcore/signal"
	"github.com/finagent/quantcore/types"
)

// MovingAverageCrossover trades transitions of a fast moving average across
// a slow one. EMA or SMA is selectable via config.
type MovingAverageCrossover struct {
	base
}

func NewMovingAverageCrossover(cfg config.StrategyConfig, log logger.Logger) (*MovingAverageCrossover, error) {
	b, err := newBase("ma_crossover", cfg, log)
	if err != nil {
		return nil, err
	}
	return &MovingAverageCrossover{base: b}, nil
}

func (s *MovingAverageCrossover) Evaluate(symbol string, data MarketData) types.StrategySignal {
	// One extra bar beyond the slow warm-up so a previous-bar comparison
	// exists.
	if data.len() < s.cfg.SlowPeriod+1 {
		return s.abstain(symbol, data)
	}
	fast := s.ma(data.Closes, s.cfg.FastPeriod)
	slow := s.ma(data.Closes, s.cfg.SlowPeriod)

	fastPrev, fastCur := last2(fast)
	slowPrev, slowCur := last2(slow)
	sig := signal.FromMACross(fastPrev, slowPrev, fastCur, slowCur)
	if sig == types.Neutral {
		return s.abstain(symbol, data)
	}

	// Wider separation right after the cross means a cleaner break.
	spread := 0.0
	if c := data.lastClose(); c > 0 {
		spread = math.Abs(fastCur-slowCur) / c
	}
	conf := 0.5 + math.Min(0.5, spread*50)
	return s.emit(symbol, data, sig, conf, map[string]float64{
		"fast_ma": fastCur,
		"slow_ma": slowCur,
	})
}

func (s *MovingAverageCrossover) ma(closes []float64, period int) []float64 {
	if s.cfg.UseEMA {
		return indicator.EMA(closes, period)
	}
	return indicator.SMA(closes, period)
}
