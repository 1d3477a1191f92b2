package strategy

import (
	"fmt"
	"sync"

	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/logger"
	"github.com/finagent/quantcore/types"
)

// WeightedStrategy pairs a strategy with its vote weight in the consensus.
type WeightedStrategy struct {
	Strategy Strategy
	Weight   float64
}

// Engine aggregates a weighted list of strategies into a consensus signal.
type Engine struct {
	strategies   []WeightedStrategy
	minConsensus float64
	log          logger.Logger
}

func NewEngine(minConsensus float64, log logger.Logger, strategies ...WeightedStrategy) (*Engine, error) {
	if minConsensus <= 0 || minConsensus > 1 {
		return nil, fmt.Errorf("min consensus %.2f out of (0,1]", minConsensus)
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("engine needs at least one strategy")
	}
	for _, ws := range strategies {
		if ws.Weight <= 0 {
			return nil, fmt.Errorf("strategy %q has non-positive weight %.2f", ws.Strategy.Name(), ws.Weight)
		}
	}
	return &Engine{
		strategies:   strategies,
		minConsensus: minConsensus,
		log:          logger.OrNop(log),
	}, nil
}

// BuildEngine assembles the standard five strategies from configuration.
// Weights default to 1 unless overridden in cfg.Engine.Weights.
func BuildEngine(cfg *config.Config, log logger.Logger) (*Engine, error) {
	ctors := []func(config.StrategyConfig, logger.Logger) (Strategy, error){
		func(c config.StrategyConfig, l logger.Logger) (Strategy, error) { return NewMovingAverageCrossover(c, l) },
		func(c config.StrategyConfig, l logger.Logger) (Strategy, error) { return NewRSIMeanReversion(c, l) },
		func(c config.StrategyConfig, l logger.Logger) (Strategy, error) { return NewBollingerBandBreakout(c, l) },
		func(c config.StrategyConfig, l logger.Logger) (Strategy, error) { return NewMACDStrategy(c, l) },
		func(c config.StrategyConfig, l logger.Logger) (Strategy, error) { return NewTrendFollowing(c, l) },
	}
	weighted := make([]WeightedStrategy, 0, len(ctors))
	for _, ctor := range ctors {
		s, err := ctor(cfg.Strategy, log)
		if err != nil {
			return nil, err
		}
		w := 1.0
		if override, ok := cfg.Engine.Weights[s.Name()]; ok {
			w = override
		}
		weighted = append(weighted, WeightedStrategy{Strategy: s, Weight: w})
	}
	return NewEngine(cfg.Engine.MinConsensus, log, weighted...)
}

// Consensus collects one signal per strategy and aggregates them:
// score = Σ(signal·weight·confidence) / Σweight, bucketed back onto the
// 5-level scale; agreement is the fraction of strategies matching the
// consensus direction; stop/target are the mean of the levels proposed by
// agreeing strategies.
func (e *Engine) Consensus(symbol string, data MarketData) types.ConsensusSignal {
	breakdown := make([]types.StrategySignal, len(e.strategies))
	var score, totalWeight float64
	for i, ws := range e.strategies {
		sig := ws.Strategy.Evaluate(symbol, data)
		breakdown[i] = sig
		score += sig.Signal.Score() * ws.Weight * sig.Confidence
		totalWeight += ws.Weight
	}
	if totalWeight > 0 {
		score /= totalWeight
	}
	final := types.SignalFromScore(score)

	var agree int
	var stopSum, targetSum float64
	var stopN, targetN int
	for _, sig := range breakdown {
		if sig.Signal.Direction() != final.Direction() {
			continue
		}
		agree++
		if sig.StopLoss > 0 {
			stopSum += sig.StopLoss
			stopN++
		}
		if sig.TakeProfit > 0 {
			targetSum += sig.TakeProfit
			targetN++
		}
	}
	agreement := float64(agree) / float64(len(e.strategies))

	out := types.ConsensusSignal{
		Symbol:         symbol,
		Signal:         final,
		Score:          score,
		Agreement:      agreement,
		MeetsThreshold: agreement >= e.minConsensus,
		Breakdown:      breakdown,
		Timestamp:      data.Timestamp,
	}
	if stopN > 0 {
		out.StopLoss = stopSum / float64(stopN)
	}
	if targetN > 0 {
		out.TakeProfit = targetSum / float64(targetN)
	}

	e.log.Info("consensus_signal",
		logger.String("symbol", symbol),
		logger.String("signal", final.String()),
		logger.Float64("score", score),
		logger.Float64("agreement", agreement),
	)
	return out
}

// ConsensusAll evaluates every symbol concurrently. Signal generation is
// pure over read-only slices, so symbols parallelize freely.
func (e *Engine) ConsensusAll(data map[string]MarketData) map[string]types.ConsensusSignal {
	var mu sync.Mutex
	var wg sync.WaitGroup
	out := make(map[string]types.ConsensusSignal, len(data))
	for symbol, d := range data {
		wg.Add(1)
		go func(symbol string, d MarketData) {
			defer wg.Done()
			cs := e.Consensus(symbol, d)
			mu.Lock()
			out[symbol] = cs
			mu.Unlock()
		}(symbol, d)
	}
	wg.Wait()
	return out
}

// MinConsensus exposes the agreement threshold, mainly for reporting.
func (e *Engine) MinConsensus() float64 { return e.minConsensus }
