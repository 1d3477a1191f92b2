package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finagent/quantcore/testutils"
	"github.com/finagent/quantcore/types"
)

func TestTrendFollowingRidesUptrend(t *testing.T) {
	cfg := strategyConfig(t)
	s, err := NewTrendFollowing(cfg, testutils.NewMockLogger())
	require.NoError(t, err)

	n := 60
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*2
	}
	out := s.Evaluate("AAPL", dataFromCloses(closes))

	assert.Equal(t, types.DirBuy, out.Signal.Direction())
	assert.Greater(t, out.Confidence, 0.0)
	assert.Greater(t, out.Metadata["adx"], cfg.ADXThreshold)
	assert.Greater(t, out.Metadata["plus_di"], out.Metadata["minus_di"])
}

func TestTrendFollowingRidesDowntrend(t *testing.T) {
	cfg := strategyConfig(t)
	s, err := NewTrendFollowing(cfg, testutils.NewMockLogger())
	require.NoError(t, err)

	n := 60
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 220 - float64(i)*2
	}
	out := s.Evaluate("AAPL", dataFromCloses(closes))

	assert.Equal(t, types.DirSell, out.Signal.Direction())
}

func TestTrendFollowingAbstainsInChop(t *testing.T) {
	cfg := strategyConfig(t)
	s, err := NewTrendFollowing(cfg, testutils.NewMockLogger())
	require.NoError(t, err)

	// Tight oscillation never builds directional movement, so the ADX gate
	// keeps the strategy out.
	n := 60
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
		if i%2 == 1 {
			closes[i] = 100.5
		}
	}
	out := s.Evaluate("AAPL", dataFromCloses(closes))
	assert.Equal(t, types.Neutral, out.Signal)
}

func TestTrendFollowingAbstainsWithoutHistory(t *testing.T) {
	cfg := strategyConfig(t)
	s, err := NewTrendFollowing(cfg, testutils.NewMockLogger())
	require.NoError(t, err)

	out := s.Evaluate("AAPL", dataFromCloses([]float64{100, 101, 102}))
	assert.Equal(t, types.Neutral, out.Signal)
}
