package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedFractional(t *testing.T) {
	ps, err := FixedFractional(100000, 0.01, 50, 48)
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, ps.RiskAmount, 1e-9, "1% of equity at risk")
	assert.InDelta(t, 2.0, ps.StopDistance, 1e-9)
	assert.InDelta(t, 500.0, ps.Shares, 1e-9)
	assert.InDelta(t, 25000.0, ps.PositionValue, 1e-9)
}

func TestFixedFractionalStopBelowOrAboveEntry(t *testing.T) {
	long, err := FixedFractional(100000, 0.01, 50, 48)
	require.NoError(t, err)
	short, err := FixedFractional(100000, 0.01, 50, 52)
	require.NoError(t, err)
	assert.Equal(t, long.Shares, short.Shares, "distance is directionless")
}

func TestFixedFractionalErrors(t *testing.T) {
	_, err := FixedFractional(100000, 0.01, 50, 50)
	assert.ErrorIs(t, err, ErrZeroStopDistance)

	_, err = FixedFractional(0, 0.01, 50, 48)
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = FixedFractional(100000, 0, 50, 48)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestKellyCriterion(t *testing.T) {
	k, err := KellyCriterion(0.5, 200, 100)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, k.WinLossRatio, 1e-9)
	assert.InDelta(t, 0.25, k.Full, 1e-9)
	assert.InDelta(t, 0.125, k.Half, 1e-9)
	assert.InDelta(t, 0.0625, k.Quarter, 1e-9)
	assert.Equal(t, k.Half, k.Recommended, "half-Kelly is the default recommendation")
}

func TestKellyCriterionNoEdgeClampsToZero(t *testing.T) {
	k, err := KellyCriterion(0.3, 100, 100)
	require.NoError(t, err)
	assert.Zero(t, k.Full)
	assert.Zero(t, k.Recommended)
}

func TestKellyCriterionErrors(t *testing.T) {
	_, err := KellyCriterion(1.5, 100, 100)
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = KellyCriterion(0.5, 100, 0)
	assert.ErrorIs(t, err, ErrZeroAvgLoss)
}

func TestATRBased(t *testing.T) {
	ps, err := ATRBased(100000, 0.01, 50, 1.5, 2)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, ps.StopDistance, 1e-9)
	assert.InDelta(t, 1000.0/3.0, ps.Shares, 1e-9)

	_, err = ATRBased(100000, 0.01, 50, 0, 2)
	assert.ErrorIs(t, err, ErrZeroVolatility)
}

func TestVolatilityAdjusted(t *testing.T) {
	// Asset twice as volatile as the target halves the allocation.
	ps, err := VolatilityAdjusted(100000, 0.2, 0.15, 0.30, 100)
	require.NoError(t, err)
	assert.InDelta(t, 10000.0, ps.PositionValue, 1e-9)
	assert.InDelta(t, 100.0, ps.Shares, 1e-9)

	// Calm asset never levers above the base allocation.
	ps, err = VolatilityAdjusted(100000, 0.2, 0.15, 0.05, 100)
	require.NoError(t, err)
	assert.InDelta(t, 20000.0, ps.PositionValue, 1e-9)

	_, err = VolatilityAdjusted(100000, 0.2, 0.15, 0, 100)
	assert.ErrorIs(t, err, ErrZeroVolatility)
}
