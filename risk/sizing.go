// Package risk implements position sizing, Value-at-Risk, drawdown analysis
// and risk-adjusted performance ratios. Parameter-validation failures are
// returned as sentinel errors so callers can branch on them.
package risk

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrZeroStopDistance = errors.New("risk: entry and stop price are equal")
	ErrZeroAvgLoss      = errors.New("risk: average loss is zero")
	ErrZeroVolatility   = errors.New("risk: volatility is zero")
	ErrNoReturns        = errors.New("risk: empty return series")
	ErrInvalidParam     = errors.New("risk: invalid parameter")
)

// PositionSize is the outcome of a sizing calculation.
type PositionSize struct {
	Shares        float64 `json:"shares"`
	PositionValue float64 `json:"position_value"`
	RiskAmount    float64 `json:"risk_amount"`
	StopDistance  float64 `json:"stop_distance"`
}

// FixedFractional risks a fixed fraction of equity per trade:
// shares = equity×riskPct / |entry−stop|.
func FixedFractional(equity, riskPct, entry, stop float64) (PositionSize, error) {
	if equity <= 0 || riskPct <= 0 {
		return PositionSize{}, fmt.Errorf("%w: equity=%.2f riskPct=%.4f", ErrInvalidParam, equity, riskPct)
	}
	dist := math.Abs(entry - stop)
	if dist == 0 {
		return PositionSize{}, ErrZeroStopDistance
	}
	riskAmount := equity * riskPct
	shares := riskAmount / dist
	return PositionSize{
		Shares:        shares,
		PositionValue: shares * entry,
		RiskAmount:    riskAmount,
		StopDistance:  dist,
	}, nil
}

// KellyResult carries the optimal-growth fraction and its fractional
// variants. Half-Kelly is the recommended safer default.
type KellyResult struct {
	Full         float64 `json:"full"`
	Half         float64 `json:"half"`
	Quarter      float64 `json:"quarter"`
	Recommended  float64 `json:"recommended"`
	WinLossRatio float64 `json:"win_loss_ratio"`
}

// KellyCriterion computes f* = (p·b − q)/b with b = avgWin/avgLoss,
// p = winRate, q = 1−p. A negative f* clamps to zero (no edge).
func KellyCriterion(winRate, avgWin, avgLoss float64) (KellyResult, error) {
	if winRate < 0 || winRate > 1 {
		return KellyResult{}, fmt.Errorf("%w: win rate %.4f out of [0,1]", ErrInvalidParam, winRate)
	}
	if avgLoss == 0 {
		return KellyResult{}, ErrZeroAvgLoss
	}
	b := math.Abs(avgWin) / math.Abs(avgLoss)
	if b == 0 {
		return KellyResult{}, fmt.Errorf("%w: average win is zero", ErrInvalidParam)
	}
	f := (winRate*b - (1 - winRate)) / b
	if f < 0 {
		f = 0
	}
	return KellyResult{
		Full:         f,
		Half:         f / 2,
		Quarter:      f / 4,
		Recommended:  f / 2,
		WinLossRatio: b,
	}, nil
}

// ATRBased sizes off a volatility stop: stop distance = ATR × multiplier.
func ATRBased(equity, riskPct, entry, atr, multiplier float64) (PositionSize, error) {
	if equity <= 0 || riskPct <= 0 || entry <= 0 {
		return PositionSize{}, fmt.Errorf("%w: equity=%.2f riskPct=%.4f entry=%.2f", ErrInvalidParam, equity, riskPct, entry)
	}
	if atr <= 0 || multiplier <= 0 {
		return PositionSize{}, ErrZeroVolatility
	}
	dist := atr * multiplier
	riskAmount := equity * riskPct
	shares := riskAmount / dist
	return PositionSize{
		Shares:        shares,
		PositionValue: shares * entry,
		RiskAmount:    riskAmount,
		StopDistance:  dist,
	}, nil
}

// VolatilityAdjusted scales a base allocation by the ratio of target to
// realized asset volatility, capped at the base allocation.
func VolatilityAdjusted(equity, basePct, targetVol, assetVol, entry float64) (PositionSize, error) {
	if equity <= 0 || basePct <= 0 || entry <= 0 || targetVol <= 0 {
		return PositionSize{}, fmt.Errorf("%w: equity=%.2f basePct=%.4f entry=%.2f targetVol=%.4f",
			ErrInvalidParam, equity, basePct, entry, targetVol)
	}
	if assetVol <= 0 {
		return PositionSize{}, ErrZeroVolatility
	}
	scale := targetVol / assetVol
	if scale > 1 {
		scale = 1
	}
	value := equity * basePct * scale
	return PositionSize{
		Shares:        value / entry,
		PositionValue: value,
		RiskAmount:    value * assetVol,
	}, nil
}
