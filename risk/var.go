package risk

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// VaRResult is a Value-at-Risk estimate, expressed as positive loss
// fractions of portfolio value.
type VaRResult struct {
	Confidence float64 `json:"confidence"`
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"`
}

// zScores is the small lookup table for parametric VaR.
var zScores = map[float64]float64{
	0.90: 1.282,
	0.95: 1.645,
	0.99: 2.326,
}

func validateVaRInput(returns []float64, confidence float64) error {
	if len(returns) == 0 {
		return ErrNoReturns
	}
	if confidence <= 0 || confidence >= 1 {
		return fmt.Errorf("%w: confidence %.4f out of (0,1)", ErrInvalidParam, confidence)
	}
	return nil
}

// HistoricalVaR takes the (1−confidence) percentile of the sorted return
// series as the VaR and the mean of the tail at or beyond it as the CVaR.
func HistoricalVaR(returns []float64, confidence float64) (VaRResult, error) {
	if err := validateVaRInput(returns, confidence); err != nil {
		return VaRResult{}, err
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)) * (1 - confidence))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	v := -sorted[idx]

	tail := sorted[:idx+1]
	sum := 0.0
	for _, r := range tail {
		sum += r
	}
	cvar := -sum / float64(len(tail))

	return VaRResult{Confidence: confidence, VaR: math.Max(v, 0), CVaR: math.Max(cvar, 0)}, nil
}

// ParametricVaR assumes Gaussian returns: z·σ·√h − μ·h for holding period h
// days. CVaR uses the closed-form expected-shortfall of the normal
// distribution.
func ParametricVaR(returns []float64, confidence float64, holdingDays int) (VaRResult, error) {
	if err := validateVaRInput(returns, confidence); err != nil {
		return VaRResult{}, err
	}
	if holdingDays <= 0 {
		return VaRResult{}, fmt.Errorf("%w: holding period %d", ErrInvalidParam, holdingDays)
	}
	z, ok := zScores[confidence]
	if !ok {
		return VaRResult{}, fmt.Errorf("%w: confidence %.2f not in z-table (use 0.90, 0.95 or 0.99)", ErrInvalidParam, confidence)
	}

	mu := mean(returns)
	sigma := stdDev(returns, mu)
	h := float64(holdingDays)

	v := z*sigma*math.Sqrt(h) - mu*h
	// Normal expected shortfall: σ·φ(z)/(1−c), scaled the same way.
	pdf := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)
	cvar := sigma*math.Sqrt(h)*pdf/(1-confidence) - mu*h

	return VaRResult{Confidence: confidence, VaR: math.Max(v, 0), CVaR: math.Max(cvar, 0)}, nil
}

// MonteCarloVaR simulates Gaussian return paths over the holding period and
// reads the same percentile as HistoricalVaR off the simulated outcomes.
// The RNG is injected so runs are reproducible.
func MonteCarloVaR(returns []float64, confidence float64, holdingDays, paths int, rng *rand.Rand) (VaRResult, error) {
	if err := validateVaRInput(returns, confidence); err != nil {
		return VaRResult{}, err
	}
	if holdingDays <= 0 || paths <= 0 {
		return VaRResult{}, fmt.Errorf("%w: holdingDays=%d paths=%d", ErrInvalidParam, holdingDays, paths)
	}
	if rng == nil {
		return VaRResult{}, fmt.Errorf("%w: nil RNG", ErrInvalidParam)
	}

	mu := mean(returns)
	sigma := stdDev(returns, mu)

	simulated := make([]float64, paths)
	for p := 0; p < paths; p++ {
		growth := 1.0
		for d := 0; d < holdingDays; d++ {
			growth *= 1 + mu + sigma*boxMuller(rng)
		}
		simulated[p] = growth - 1
	}
	return HistoricalVaR(simulated, confidence)
}

// boxMuller draws a standard normal via the Box–Muller transform on the
// injected uniform source.
func boxMuller(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation around the supplied mean.
func stdDev(values []float64, mu float64) float64 {
	if len(values) == 0 {
		return 0
	}
	ss := 0.0
	for _, v := range values {
		d := v - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
