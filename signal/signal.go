// Package signal maps indicator readings onto the 5-level directional scale
// and combines multiple signals via weighted voting. Undefined readings
// (NaN) always map to NEUTRAL.
package signal

import (
	"github.com/finagent/quantcore/indicator"
	"github.com/finagent/quantcore/types"
)

// RSI thresholds. 20/80 mark the strong zone, 30/70 the plain zone.
const (
	RSIStrongOversold   = 20.0
	RSIOversold         = 30.0
	RSIOverbought       = 70.0
	RSIStrongOverbought = 80.0
)

// FromRSI buckets an RSI reading.
func FromRSI(v float64) types.Signal {
	if !indicator.Defined(v) {
		return types.Neutral
	}
	switch {
	case v <= RSIStrongOversold:
		return types.StrongBuy
	case v <= RSIOversold:
		return types.Buy
	case v >= RSIStrongOverbought:
		return types.StrongSell
	case v >= RSIOverbought:
		return types.Sell
	default:
		return types.Neutral
	}
}

// crossed reports an upward (+1), downward (-1) or no (0) crossing of a over
// b between the previous and current bar. Any undefined input means no
// crossing.
func crossed(aPrev, bPrev, a, b float64) int {
	for _, v := range []float64{aPrev, bPrev, a, b} {
		if !indicator.Defined(v) {
			return 0
		}
	}
	if aPrev <= bPrev && a > b {
		return 1
	}
	if aPrev >= bPrev && a < b {
		return -1
	}
	return 0
}

// FromMACDCross signals on the MACD line crossing its signal line. A
// transition is required; the current relative position alone is not enough.
func FromMACDCross(linePrev, sigPrev, line, sig float64) types.Signal {
	switch crossed(linePrev, sigPrev, line, sig) {
	case 1:
		return types.Buy
	case -1:
		return types.Sell
	default:
		return types.Neutral
	}
}

// FromMACross signals on a fast moving average crossing a slow one.
func FromMACross(fastPrev, slowPrev, fast, slow float64) types.Signal {
	switch crossed(fastPrev, slowPrev, fast, slow) {
	case 1:
		return types.Buy
	case -1:
		return types.Sell
	default:
		return types.Neutral
	}
}

// FromStochasticCross signals on %K crossing %D, gated to the extreme zones:
// a bullish cross only counts below 20, a bearish cross only above 80.
func FromStochasticCross(kPrev, dPrev, k, d float64) types.Signal {
	switch crossed(kPrev, dPrev, k, d) {
	case 1:
		if k < 20 {
			return types.Buy
		}
	case -1:
		if k > 80 {
			return types.Sell
		}
	}
	return types.Neutral
}

// FromBollinger signals a reversal when price pierced a band on the previous
// bar and re-entered on the current one.
func FromBollinger(closePrev, close, upperPrev, upper, lowerPrev, lower float64) types.Signal {
	for _, v := range []float64{closePrev, close, upperPrev, upper, lowerPrev, lower} {
		if !indicator.Defined(v) {
			return types.Neutral
		}
	}
	if closePrev < lowerPrev && close >= lower {
		return types.Buy
	}
	if closePrev > upperPrev && close <= upper {
		return types.Sell
	}
	return types.Neutral
}

// WeightedScore is the weighted mean of the numeric signal values. A nil
// weights slice means equal weighting; zero total weight scores neutral.
func WeightedScore(signals []types.Signal, weights []float64) float64 {
	if len(signals) == 0 {
		return 0
	}
	var score, total float64
	for i, s := range signals {
		w := 1.0
		if weights != nil && i < len(weights) {
			w = weights[i]
		}
		if w <= 0 {
			continue
		}
		score += s.Score() * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return score / total
}

// Combine re-buckets the weighted mean into the 5-level scale using the same
// thresholds as generation. Monotonic: substituting a more bullish input can
// never lower the result.
func Combine(signals []types.Signal, weights []float64) types.Signal {
	return types.SignalFromScore(WeightedScore(signals, weights))
}
