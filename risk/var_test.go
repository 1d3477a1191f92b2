package risk

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalVaRPercentile(t *testing.T) {
	returns := []float64{-0.10, -0.05, -0.02}
	for i := 0; i < 17; i++ {
		returns = append(returns, 0.01)
	}

	res, err := HistoricalVaR(returns, 0.90)
	require.NoError(t, err)

	assert.InDelta(t, 0.02, res.VaR, 1e-9, "10th percentile loss")
	assert.InDelta(t, (0.10+0.05+0.02)/3, res.CVaR, 1e-9, "mean of the tail")
	assert.GreaterOrEqual(t, res.CVaR, res.VaR)
}

func TestHistoricalVaRAllGainsClampsToZero(t *testing.T) {
	res, err := HistoricalVaR([]float64{0.01, 0.02, 0.03, 0.04, 0.05}, 0.95)
	require.NoError(t, err)
	assert.Zero(t, res.VaR)
}

func TestHistoricalVaRErrors(t *testing.T) {
	_, err := HistoricalVaR(nil, 0.95)
	assert.ErrorIs(t, err, ErrNoReturns)

	_, err = HistoricalVaR([]float64{0.01}, 1.5)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestParametricVaRGaussian(t *testing.T) {
	// Alternating ±1% has zero mean and σ exactly 0.01.
	returns := make([]float64, 40)
	for i := range returns {
		returns[i] = 0.01
		if i%2 == 1 {
			returns[i] = -0.01
		}
	}

	res, err := ParametricVaR(returns, 0.95, 1)
	require.NoError(t, err)

	assert.InDelta(t, 1.645*0.01, res.VaR, 1e-9)
	assert.Greater(t, res.CVaR, res.VaR, "expected shortfall exceeds the quantile")
}

func TestParametricVaRScalesWithHoldingPeriod(t *testing.T) {
	returns := make([]float64, 40)
	for i := range returns {
		returns[i] = 0.01
		if i%2 == 1 {
			returns[i] = -0.01
		}
	}
	one, err := ParametricVaR(returns, 0.95, 1)
	require.NoError(t, err)
	four, err := ParametricVaR(returns, 0.95, 4)
	require.NoError(t, err)
	assert.InDelta(t, 2*one.VaR, four.VaR, 1e-9, "square-root-of-time scaling")
}

func TestParametricVaRUnsupportedConfidence(t *testing.T) {
	_, err := ParametricVaR([]float64{0.01, -0.01}, 0.97, 1)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestMonteCarloVaRReproducible(t *testing.T) {
	returns := make([]float64, 100)
	rng := rand.New(rand.NewSource(11))
	for i := range returns {
		returns[i] = rng.NormFloat64() * 0.02
	}

	a, err := MonteCarloVaR(returns, 0.95, 5, 2000, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := MonteCarloVaR(returns, 0.95, 5, 2000, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.Equal(t, a, b, "same seed, same estimate")
	assert.Greater(t, a.VaR, 0.0)
	assert.GreaterOrEqual(t, a.CVaR, a.VaR)
}

func TestMonteCarloVaRRequiresRNG(t *testing.T) {
	_, err := MonteCarloVaR([]float64{0.01, -0.01}, 0.95, 1, 100, nil)
	assert.ErrorIs(t, err, ErrInvalidParam)
}
