// Package strategy wraps the indicator library and signal generator into
// named per-symbol strategies and a weighted consensus engine.
package strategy

import (
	"math"
	"time"

	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/indicator"
	"github.com/finagent/quantcore/logger"
	"github.com/finagent/quantcore/metrics"
	"github.com/finagent/quantcore/types"
)

// MarketData is the read-only price history handed to a strategy: everything
// available through "today", most recent bar last. Strategies never see
// future bars.
type MarketData struct {
	Closes    []float64
	Highs     []float64
	Lows      []float64
	Volumes   []float64
	Timestamp time.Time
}

// DataFromBars flattens a bar slice into the column form strategies consume.
func DataFromBars(bars []types.PriceBar) MarketData {
	d := MarketData{
		Closes:  make([]float64, len(bars)),
		Highs:   make([]float64, len(bars)),
		Lows:    make([]float64, len(bars)),
		Volumes: make([]float64, len(bars)),
	}
	for i, b := range bars {
		d.Closes[i] = b.Close
		d.Highs[i] = b.High
		d.Lows[i] = b.Low
		d.Volumes[i] = b.Volume
	}
	if len(bars) > 0 {
		d.Timestamp = bars[len(bars)-1].Timestamp
	}
	return d
}

func (d MarketData) len() int { return len(d.Closes) }

func (d MarketData) lastClose() float64 {
	if len(d.Closes) == 0 {
		return 0
	}
	return d.Closes[len(d.Closes)-1]
}

// Strategy produces one recommendation per call from the supplied history.
// Insufficient history is never an error: the strategy abstains with a
// NEUTRAL, zero-confidence signal.
type Strategy interface {
	Name() string
	Evaluate(symbol string, data MarketData) types.StrategySignal
}

// base bundles the dependencies and helpers shared by the concrete
// strategies.
type base struct {
	name string
	cfg  config.StrategyConfig
	log  logger.Logger
}

func newBase(name string, cfg config.StrategyConfig, log logger.Logger) (base, error) {
	if err := cfg.Validate(); err != nil {
		return base{}, err
	}
	return base{name: name, cfg: cfg, log: logger.OrNop(log)}, nil
}

func (b *base) Name() string { return b.name }

// abstain is the no-opinion result for short history or a flat read.
func (b *base) abstain(symbol string, data MarketData) types.StrategySignal {
	return types.StrategySignal{
		Symbol:    symbol,
		Signal:    types.Neutral,
		Strategy:  b.name,
		Timestamp: data.Timestamp,
	}
}

// emit finalizes a directional signal: entry at the last close, stop/target
// from ATR×multiplier when the ATR is defined (percentage fallback
// otherwise) honoring the configured reward:risk ratio.
func (b *base) emit(symbol string, data MarketData, sig types.Signal, confidence float64, meta map[string]float64) types.StrategySignal {
	if sig == types.Neutral {
		return b.abstain(symbol, data)
	}
	entry := data.lastClose()
	stopDist := entry * b.cfg.StopLossPct
	atr := indicator.ATR(data.Highs, data.Lows, data.Closes, b.cfg.ATRPeriod)
	if last := atr[len(atr)-1]; indicator.Defined(last) && last > 0 {
		stopDist = last * b.cfg.ATRMultiplier
	}
	targetDist := stopDist * b.cfg.RewardRisk

	out := types.StrategySignal{
		Symbol:     symbol,
		Signal:     sig,
		Strategy:   b.name,
		Confidence: clamp01(confidence),
		Entry:      entry,
		Metadata:   meta,
		Timestamp:  data.Timestamp,
	}
	if sig.Direction() == types.DirBuy {
		out.StopLoss = entry - stopDist
		out.TakeProfit = entry + targetDist
	} else {
		out.StopLoss = entry + stopDist
		out.TakeProfit = entry - targetDist
	}

	metrics.SignalsGenerated.WithLabelValues(b.name, sig.String()).Inc()
	b.log.Info("signal_generated",
		logger.String("strategy", b.name),
		logger.String("symbol", symbol),
		logger.String("signal", sig.String()),
		logger.Float64("confidence", out.Confidence),
		logger.Float64("entry", out.Entry),
		logger.Float64("stop_loss", out.StopLoss),
		logger.Float64("take_profit", out.TakeProfit),
	)
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func last2(series []float64) (prev, cur float64) {
	n := len(series)
	if n < 2 {
		return math.NaN(), math.NaN()
	}
	return series[n-2], series[n-1]
}
