// Package backtest simulates strategy execution day-by-day over historical
// bars, maintaining a cash/position ledger and producing trade history, an
// equity curve and derived performance metrics.
package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/logger"
	"github.com/finagent/quantcore/metrics"
	"github.com/finagent/quantcore/strategy"
	"github.com/finagent/quantcore/types"
)

// Backtester runs simulations. Each Run owns an independent ledger, so a
// single Backtester may be reused across runs, but one run is strictly
// sequential: day t+1 depends on the outcome of day t.
type Backtester struct {
	cfg config.BacktestConfig
	log logger.Logger
}

func New(cfg config.BacktestConfig, log logger.Logger) (*Backtester, error) {
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %.2f", cfg.InitialCapital)
	}
	if cfg.PositionSizePct <= 0 || cfg.PositionSizePct > 1 {
		return nil, fmt.Errorf("position size pct %.4f out of (0,1]", cfg.PositionSizePct)
	}
	if cfg.MaxPositions <= 0 {
		return nil, fmt.Errorf("max positions must be positive, got %d", cfg.MaxPositions)
	}
	if cfg.MarginRequirement <= 0 {
		return nil, fmt.Errorf("margin requirement must be positive, got %.2f", cfg.MarginRequirement)
	}
	return &Backtester{cfg: cfg, log: logger.OrNop(log)}, nil
}

// advice is the per-symbol/day decision input the day loop consumes,
// produced either by a single strategy or by the consensus engine.
type advice struct {
	signal     types.Signal
	stopLoss   float64
	takeProfit float64
	qualifies  bool // entry gate (consensus threshold for multi-strategy)
}

type adviceFunc func(symbol string, data strategy.MarketData) advice

// Run simulates a single strategy over per-symbol bar series.
func (b *Backtester) Run(strat strategy.Strategy, series map[string][]types.PriceBar) (*Result, error) {
	return b.run(strat.Name(), series, func(symbol string, data strategy.MarketData) advice {
		sig := strat.Evaluate(symbol, data)
		return advice{
			signal:     sig.Signal,
			stopLoss:   sig.StopLoss,
			takeProfit: sig.TakeProfit,
			qualifies:  true,
		}
	})
}

// RunMultiStrategy replaces the single-strategy signal with the engine's
// consensus and additionally gates entries on the agreement threshold.
func (b *Backtester) RunMultiStrategy(engine *strategy.Engine, series map[string][]types.PriceBar) (*Result, error) {
	return b.run("consensus", series, func(symbol string, data strategy.MarketData) advice {
		cs := engine.Consensus(symbol, data)
		return advice{
			signal:     cs.Signal,
			stopLoss:   cs.StopLoss,
			takeProfit: cs.TakeProfit,
			qualifies:  cs.MeetsThreshold,
		}
	})
}

// symbolSeries is a symbol's full history in column form plus a cursor over
// its bars during the day loop.
type symbolSeries struct {
	symbol string
	bars   []types.PriceBar
	data   strategy.MarketData
	next   int
}

func (b *Backtester) run(name string, series map[string][]types.PriceBar, advise adviceFunc) (*Result, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no price series supplied")
	}

	// Deterministic symbol order, validated history, union of trading days.
	symbols := make([]string, 0, len(series))
	for s := range series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	dateSet := make(map[time.Time]struct{})
	cols := make([]*symbolSeries, 0, len(symbols))
	for _, s := range symbols {
		bars := series[s]
		if len(bars) == 0 {
			return nil, fmt.Errorf("symbol %s has no bars", s)
		}
		if err := types.ValidateBars(bars); err != nil {
			return nil, fmt.Errorf("symbol %s: %w", s, err)
		}
		cols = append(cols, &symbolSeries{symbol: s, bars: bars, data: strategy.DataFromBars(bars)})
		for _, bar := range bars {
			dateSet[bar.Timestamp] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	led := newLedger(b.cfg.InitialCapital, b.cfg.SlippagePct, b.cfg.CommissionPerTrade,
		b.cfg.CommissionPct, b.cfg.MarginRequirement)

	equityCurve := make([]EquityPoint, 0, len(dates))
	dailyReturns := make([]float64, 0, len(dates))
	prevEquity := b.cfg.InitialCapital

	for _, today := range dates {
		for _, sc := range cols {
			if sc.next >= len(sc.bars) || !sc.bars[sc.next].Timestamp.Equal(today) {
				continue
			}
			i := sc.next
			sc.next++
			bar := sc.bars[i]
			data := strategy.MarketData{
				Closes:    sc.data.Closes[:i+1],
				Highs:     sc.data.Highs[:i+1],
				Lows:      sc.data.Lows[:i+1],
				Volumes:   sc.data.Volumes[:i+1],
				Timestamp: bar.Timestamp,
			}
			b.processDay(led, sc.symbol, bar, data, advise)
		}

		eq := led.equity()
		equityCurve = append(equityCurve, EquityPoint{Timestamp: today, Equity: eq})
		if len(equityCurve) > 1 && prevEquity != 0 {
			dailyReturns = append(dailyReturns, (eq-prevEquity)/prevEquity)
		}
		prevEquity = eq
		metrics.BacktestEquity.Set(eq)
	}

	// Close anything still open at its last known price.
	lastDate := dates[len(dates)-1]
	open := make([]string, 0, len(led.positions))
	for s := range led.positions {
		open = append(open, s)
	}
	sort.Strings(open)
	for _, s := range open {
		pos := led.positions[s]
		trade := led.close(s, pos.CurrentPrice, lastDate, ExitEndOfTest)
		b.logTrade(trade)
	}
	if len(open) > 0 {
		// Exit costs move final equity; refresh the last curve point.
		eq := led.equity()
		equityCurve[len(equityCurve)-1].Equity = eq
		if n := len(equityCurve); n > 1 && len(dailyReturns) > 0 {
			prev := equityCurve[n-2].Equity
			if prev != 0 {
				dailyReturns[len(dailyReturns)-1] = (eq - prev) / prev
			}
		}
	}

	metrics.BacktestRuns.Inc()
	res := &Result{
		RunID:           uuid.NewString(),
		Strategy:        name,
		Config:          b.cfg,
		Start:           dates[0],
		End:             lastDate,
		InitialCapital:  b.cfg.InitialCapital,
		FinalCapital:    led.equity(),
		Trades:          led.trades,
		EquityCurve:     equityCurve,
		DailyReturns:    dailyReturns,
		TotalCommission: led.totalCommission,
		TotalSlippage:   led.totalSlippage,
	}
	b.log.Info("backtest_complete",
		logger.String("run_id", res.RunID),
		logger.String("strategy", name),
		logger.Int("trades", len(res.Trades)),
		logger.Float64("final_capital", res.FinalCapital),
	)
	return res, nil
}

// processDay applies the per-day transition order for one symbol: stop
// check, target check, signal reversal, then entry.
func (b *Backtester) processDay(led *ledger, symbol string, bar types.PriceBar, data strategy.MarketData, advise adviceFunc) {
	if pos, open := led.positions[symbol]; open {
		pos.CurrentPrice = bar.Close

		if pos.StopLoss > 0 && stopHit(pos, bar) {
			b.logTrade(led.close(symbol, pos.StopLoss, bar.Timestamp, ExitStopLoss))
			return
		}
		if pos.TakeProfit > 0 && targetHit(pos, bar) {
			b.logTrade(led.close(symbol, pos.TakeProfit, bar.Timestamp, ExitTakeProfit))
			return
		}

		adv := advise(symbol, data)
		if opposes(pos.Side, adv.signal) {
			b.logTrade(led.close(symbol, bar.Close, bar.Timestamp, ExitSignal))
		}
		return
	}

	if len(led.positions) >= b.cfg.MaxPositions {
		return
	}
	adv := advise(symbol, data)
	if !adv.qualifies {
		return
	}

	var side types.Side
	switch adv.signal.Direction() {
	case types.DirBuy:
		side = types.Long
	case types.DirSell:
		if !b.cfg.AllowShort {
			return
		}
		side = types.Short
	default:
		return
	}

	shares := b.size(led, bar.Close, side)
	if shares <= 0 {
		return
	}
	led.open(symbol, side, shares, bar.Close, bar.Timestamp, adv.stopLoss, adv.takeProfit)
	b.log.Info("position_opened",
		logger.String("symbol", symbol),
		logger.String("side", string(side)),
		logger.Float64("shares", shares),
		logger.Float64("price", bar.Close),
		logger.Time("date", bar.Timestamp),
	)
}

// size computes the share count for a new position. The sizing basis is
// current equity, or initial capital when profits are not reinvested (the
// basis interpretation: cash constraints still apply either way). The count
// is capped so required cash stays within available cash × margin.
func (b *Backtester) size(led *ledger, rawPrice float64, side types.Side) float64 {
	if rawPrice <= 0 {
		return 0
	}
	basis := led.equity()
	if !b.cfg.ReinvestProfits {
		basis = b.cfg.InitialCapital
	}
	fillPrice := led.fill(rawPrice, side == types.Long)
	shares := basis * b.cfg.PositionSizePct / fillPrice

	budget := led.cash*b.cfg.MarginRequirement - b.cfg.CommissionPerTrade
	if budget <= 0 {
		return 0
	}
	maxAffordable := budget / (fillPrice * (1 + b.cfg.CommissionPct))
	if shares > maxAffordable {
		shares = maxAffordable
	}
	return shares
}

func stopHit(pos *Position, bar types.PriceBar) bool {
	if pos.Side == types.Long {
		return bar.Low <= pos.StopLoss
	}
	return bar.High >= pos.StopLoss
}

func targetHit(pos *Position, bar types.PriceBar) bool {
	if pos.Side == types.Long {
		return bar.High >= pos.TakeProfit
	}
	return bar.Low <= pos.TakeProfit
}

// opposes reports whether the signal calls the opposite direction of the
// held side. NEUTRAL holds.
func opposes(side types.Side, sig types.Signal) bool {
	if side == types.Long {
		return sig.Direction() == types.DirSell
	}
	return sig.Direction() == types.DirBuy
}

func (b *Backtester) logTrade(t Trade) {
	b.log.Info("position_closed",
		logger.String("symbol", t.Symbol),
		logger.String("side", string(t.Side)),
		logger.String("reason", string(t.Reason)),
		logger.Float64("exit_price", t.ExitPrice),
		logger.Float64("pnl", t.PnL),
	)
}
