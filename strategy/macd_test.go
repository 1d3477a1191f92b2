package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finagent/quantcore/testutils"
	"github.com/finagent/quantcore/types"
)

func TestMACDFiresBuyDuringRecovery(t *testing.T) {
	cfg := strategyConfig(t)
	s, err := NewMACDStrategy(cfg, testutils.NewMockLogger())
	require.NoError(t, err)

	// Long slide then a sharp recovery. The MACD line has to cross back
	// above its signal line somewhere on the way up.
	var closes []float64
	for i := 0; i < 45; i++ {
		closes = append(closes, 200-float64(i)*2)
	}
	for i := 0; i < 20; i++ {
		closes = append(closes, 110+float64(i)*3)
	}

	sawBuy := false
	for n := cfg.MACDSlow + cfg.MACDSignal + 1; n <= len(closes); n++ {
		out := s.Evaluate("AAPL", dataFromCloses(closes[:n]))
		if out.Signal.Direction() == types.DirBuy {
			sawBuy = true
			assert.Less(t, out.StopLoss, out.Entry)
			assert.Greater(t, out.TakeProfit, out.Entry)
			assert.Contains(t, out.Metadata, "macd_line")
			assert.Contains(t, out.Metadata, "signal_line")
			assert.Contains(t, out.Metadata, "histogram")
		}
	}
	assert.True(t, sawBuy, "recovery leg never produced a bullish crossover")
}

func TestMACDAbstainsWithoutHistory(t *testing.T) {
	cfg := strategyConfig(t)
	s, err := NewMACDStrategy(cfg, testutils.NewMockLogger())
	require.NoError(t, err)

	out := s.Evaluate("AAPL", dataFromCloses([]float64{100, 101, 102}))
	assert.Equal(t, types.Neutral, out.Signal)
	assert.Zero(t, out.Confidence)
}
