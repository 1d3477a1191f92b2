package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/strategy"
	"github.com/finagent/quantcore/testutils"
	"github.com/finagent/quantcore/types"
)

// scriptedStrategy decides from the number of visible bars, which makes the
// day-by-day walk fully deterministic in tests.
type scriptedStrategy struct {
	name string
	fn   func(visible int) (sig types.Signal, stop, target float64)
}

func (s scriptedStrategy) Name() string { return s.name }

func (s scriptedStrategy) Evaluate(symbol string, data strategy.MarketData) types.StrategySignal {
	sig, stop, target := s.fn(len(data.Closes))
	return types.StrategySignal{
		Symbol:     symbol,
		Signal:     sig,
		Strategy:   s.name,
		Confidence: 1,
		StopLoss:   stop,
		TakeProfit: target,
		Timestamp:  data.Timestamp,
	}
}

func barsFromCloses(closes []float64) []types.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = types.PriceBar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func frictionlessConfig(t *testing.T) config.BacktestConfig {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	bt := cfg.Backtest
	bt.InitialCapital = 10000
	bt.PositionSizePct = 0.5
	bt.MaxPositions = 1
	bt.CommissionPerTrade = 0
	bt.CommissionPct = 0
	bt.SlippagePct = 0
	return bt
}

func TestRunBuyHoldSellRoundTrip(t *testing.T) {
	bt, err := New(frictionlessConfig(t), testutils.NewMockLogger())
	require.NoError(t, err)

	strat := scriptedStrategy{name: "scripted", fn: func(visible int) (types.Signal, float64, float64) {
		switch visible {
		case 1:
			return types.Buy, 90, 1000
		case 3:
			return types.Sell, 0, 0
		default:
			return types.Neutral, 0, 0
		}
	}}
	series := map[string][]types.PriceBar{"AAPL": barsFromCloses([]float64{100, 105, 110})}

	res, err := bt.Run(strat, series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, types.Long, tr.Side)
	assert.Equal(t, 50.0, tr.Shares, "half of 10k at 100/share")
	assert.Equal(t, 100.0, tr.EntryPrice)
	assert.Equal(t, 110.0, tr.ExitPrice)
	assert.Equal(t, ExitSignal, tr.Reason)
	assert.InDelta(t, 500.0, tr.PnL, 1e-9)

	assert.InDelta(t, 10500.0, res.FinalCapital, 1e-9)
	assert.InDelta(t, 5.0, res.TotalReturnPct(), 1e-9)

	require.Len(t, res.EquityCurve, 3)
	assert.InDelta(t, 10000.0, res.EquityCurve[0].Equity, 1e-9)
	assert.InDelta(t, 10250.0, res.EquityCurve[1].Equity, 1e-9, "marked to day-2 close")
	assert.InDelta(t, 10500.0, res.EquityCurve[2].Equity, 1e-9)

	require.Len(t, res.DailyReturns, 2)
	assert.InDelta(t, 0.025, res.DailyReturns[0], 1e-9)

	assert.Equal(t, 1.0, res.WinRate())
	assert.Equal(t, 999.0, res.ProfitFactor(), "no losing trades caps the factor")
	assert.NotEmpty(t, res.RunID)
}

func TestRunStopLossTakesPriorityOverTarget(t *testing.T) {
	bt, err := New(frictionlessConfig(t), testutils.NewMockLogger())
	require.NoError(t, err)

	strat := scriptedStrategy{name: "scripted", fn: func(visible int) (types.Signal, float64, float64) {
		if visible == 1 {
			return types.Buy, 95, 105
		}
		return types.Neutral, 0, 0
	}}
	// Day two sweeps through both levels; the stop is honored first.
	bars := barsFromCloses([]float64{100, 100})
	bars[1].Low = 90
	bars[1].High = 106
	series := map[string][]types.PriceBar{"AAPL": bars}

	res, err := bt.Run(strat, series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, ExitStopLoss, tr.Reason)
	assert.Equal(t, 95.0, tr.ExitPrice)
	assert.InDelta(t, -250.0, tr.PnL, 1e-9)
	assert.InDelta(t, 9750.0, res.FinalCapital, 1e-9)
}

func TestRunClosesOpenPositionAtEndOfTest(t *testing.T) {
	bt, err := New(frictionlessConfig(t), testutils.NewMockLogger())
	require.NoError(t, err)

	strat := scriptedStrategy{name: "scripted", fn: func(visible int) (types.Signal, float64, float64) {
		if visible == 1 {
			return types.Buy, 0, 0
		}
		return types.Neutral, 0, 0
	}}
	series := map[string][]types.PriceBar{"AAPL": barsFromCloses([]float64{100, 120})}

	res, err := bt.Run(strat, series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, ExitEndOfTest, tr.Reason)
	assert.Equal(t, 120.0, tr.ExitPrice)
	assert.InDelta(t, 1000.0, tr.PnL, 1e-9)
	assert.InDelta(t, 11000.0, res.FinalCapital, 1e-9)
	assert.InDelta(t, res.FinalCapital, res.EquityCurve[len(res.EquityCurve)-1].Equity, 1e-9,
		"final curve point reflects exit costs")
}

func TestRunCostsReconcileWithPnL(t *testing.T) {
	cfg := frictionlessConfig(t)
	cfg.CommissionPerTrade = 1
	cfg.CommissionPct = 0.01
	cfg.SlippagePct = 0.02
	bt, err := New(cfg, testutils.NewMockLogger())
	require.NoError(t, err)

	strat := scriptedStrategy{name: "scripted", fn: func(visible int) (types.Signal, float64, float64) {
		if visible == 1 {
			return types.Buy, 0, 0
		}
		return types.Neutral, 0, 0
	}}
	series := map[string][]types.PriceBar{"AAPL": barsFromCloses([]float64{100, 110})}

	res, err := bt.Run(strat, series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Greater(t, tr.EntryPrice, 100.0, "buy fills above the quote")
	assert.Less(t, tr.ExitPrice, 110.0, "sell fills below the quote")
	assert.Greater(t, tr.Commission, 0.0)
	assert.Greater(t, tr.Slippage, 0.0)
	assert.InDelta(t, tr.Commission, res.TotalCommission, 1e-9)
	assert.InDelta(t, tr.Slippage, res.TotalSlippage, 1e-9)

	// Net PnL already carries every cost, so the capital identity holds.
	sum := 0.0
	for _, tr := range res.Trades {
		sum += tr.PnL
	}
	assert.InDelta(t, res.FinalCapital-res.InitialCapital, sum, 1e-6)
}

func TestRunRespectsMaxPositions(t *testing.T) {
	bt, err := New(frictionlessConfig(t), testutils.NewMockLogger())
	require.NoError(t, err)

	strat := scriptedStrategy{name: "scripted", fn: func(visible int) (types.Signal, float64, float64) {
		if visible == 1 {
			return types.Buy, 0, 0
		}
		return types.Neutral, 0, 0
	}}
	series := map[string][]types.PriceBar{
		"AAPL": barsFromCloses([]float64{100, 101}),
		"MSFT": barsFromCloses([]float64{50, 51}),
	}

	res, err := bt.Run(strat, series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1, "second entry blocked by the position cap")
	assert.Equal(t, "AAPL", res.Trades[0].Symbol, "symbols process in sorted order")
}

func TestRunShortRequiresPermission(t *testing.T) {
	cfg := frictionlessConfig(t)
	cfg.AllowShort = false
	bt, err := New(cfg, testutils.NewMockLogger())
	require.NoError(t, err)

	strat := scriptedStrategy{name: "scripted", fn: func(visible int) (types.Signal, float64, float64) {
		return types.Sell, 0, 0
	}}
	series := map[string][]types.PriceBar{"AAPL": barsFromCloses([]float64{100, 90})}

	res, err := bt.Run(strat, series)
	require.NoError(t, err)
	assert.Empty(t, res.Trades)

	cfg.AllowShort = true
	bt, err = New(cfg, testutils.NewMockLogger())
	require.NoError(t, err)
	res, err = bt.Run(strat, series)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, types.Short, res.Trades[0].Side)
	assert.InDelta(t, 500.0, res.Trades[0].PnL, 1e-9, "short profits as price falls")
}

func TestRunSizingBasisWithoutReinvestment(t *testing.T) {
	script := func(visible int) (types.Signal, float64, float64) {
		switch visible {
		case 1, 4:
			return types.Buy, 0, 0
		case 3:
			return types.Sell, 0, 0
		default:
			return types.Neutral, 0, 0
		}
	}
	closes := []float64{100, 105, 110, 100, 100}

	cfg := frictionlessConfig(t)
	cfg.ReinvestProfits = false
	bt, err := New(cfg, testutils.NewMockLogger())
	require.NoError(t, err)
	res, err := bt.Run(scriptedStrategy{name: "scripted", fn: script},
		map[string][]types.PriceBar{"AAPL": barsFromCloses(closes)})
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, 50.0, res.Trades[1].Shares, "sized off initial capital despite profits")

	cfg.ReinvestProfits = true
	bt, err = New(cfg, testutils.NewMockLogger())
	require.NoError(t, err)
	res, err = bt.Run(scriptedStrategy{name: "scripted", fn: script},
		map[string][]types.PriceBar{"AAPL": barsFromCloses(closes)})
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, 52.5, res.Trades[1].Shares, "sized off grown equity")
}

func TestRunMultiStrategyGatesOnConsensus(t *testing.T) {
	bt, err := New(frictionlessConfig(t), testutils.NewMockLogger())
	require.NoError(t, err)
	series := map[string][]types.PriceBar{"AAPL": barsFromCloses([]float64{100, 110})}

	split, err := strategy.NewEngine(0.9, testutils.NewMockLogger(),
		strategy.WeightedStrategy{Strategy: scriptedStrategy{name: "bull", fn: func(int) (types.Signal, float64, float64) {
			return types.Buy, 0, 0
		}}, Weight: 1},
		strategy.WeightedStrategy{Strategy: scriptedStrategy{name: "bear", fn: func(int) (types.Signal, float64, float64) {
			return types.Sell, 0, 0
		}}, Weight: 1},
	)
	require.NoError(t, err)

	res, err := bt.RunMultiStrategy(split, series)
	require.NoError(t, err)
	assert.Empty(t, res.Trades, "split vote never clears the threshold")
	assert.Equal(t, "consensus", res.Strategy)

	unanimous, err := strategy.NewEngine(0.9, testutils.NewMockLogger(),
		strategy.WeightedStrategy{Strategy: scriptedStrategy{name: "a", fn: func(int) (types.Signal, float64, float64) {
			return types.Buy, 0, 0
		}}, Weight: 1},
		strategy.WeightedStrategy{Strategy: scriptedStrategy{name: "b", fn: func(int) (types.Signal, float64, float64) {
			return types.Buy, 0, 0
		}}, Weight: 1},
	)
	require.NoError(t, err)

	res, err = bt.RunMultiStrategy(unanimous, series)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, types.Long, res.Trades[0].Side)
}

func TestRunRejectsBadInput(t *testing.T) {
	bt, err := New(frictionlessConfig(t), testutils.NewMockLogger())
	require.NoError(t, err)
	strat := scriptedStrategy{name: "scripted", fn: func(int) (types.Signal, float64, float64) {
		return types.Neutral, 0, 0
	}}

	_, err = bt.Run(strat, map[string][]types.PriceBar{})
	assert.Error(t, err, "no series")

	_, err = bt.Run(strat, map[string][]types.PriceBar{"AAPL": nil})
	assert.Error(t, err, "empty series")

	bars := barsFromCloses([]float64{100, 101})
	bars[1].Timestamp = bars[0].Timestamp
	_, err = bt.Run(strat, map[string][]types.PriceBar{"AAPL": bars})
	assert.Error(t, err, "non-increasing timestamps")
}

func TestNewValidatesConfig(t *testing.T) {
	log := testutils.NewMockLogger()

	cfg := frictionlessConfig(t)
	cfg.InitialCapital = 0
	_, err := New(cfg, log)
	assert.Error(t, err)

	cfg = frictionlessConfig(t)
	cfg.PositionSizePct = 1.5
	_, err = New(cfg, log)
	assert.Error(t, err)

	cfg = frictionlessConfig(t)
	cfg.MaxPositions = 0
	_, err = New(cfg, log)
	assert.Error(t, err)
}
