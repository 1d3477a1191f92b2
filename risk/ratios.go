package risk

import (
	"fmt"
	"math"
)

const tradingDaysPerYear = 252

// Sharpe annualizes the mean daily excess return over its standard
// deviation. Zero deviation yields zero rather than a division error.
func Sharpe(dailyReturns []float64, annualRiskFree float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	dailyRF := annualRiskFree / tradingDaysPerYear
	excess := make([]float64, len(dailyReturns))
	for i, r := range dailyReturns {
		excess[i] = r - dailyRF
	}
	mu := mean(excess)
	sigma := stdDev(excess, mu)
	if sigma == 0 {
		return 0
	}
	return mu / sigma * math.Sqrt(tradingDaysPerYear)
}

// Sortino restricts the denominator to downside deviation only.
func Sortino(dailyReturns []float64, annualRiskFree float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	dailyRF := annualRiskFree / tradingDaysPerYear
	var sumExcess, downSquares float64
	for _, r := range dailyReturns {
		e := r - dailyRF
		sumExcess += e
		if e < 0 {
			downSquares += e * e
		}
	}
	downside := math.Sqrt(downSquares / float64(len(dailyReturns)))
	if downside == 0 {
		return 0
	}
	mu := sumExcess / float64(len(dailyReturns))
	return mu / downside * math.Sqrt(tradingDaysPerYear)
}

// Calmar is annualized return over max drawdown, both in percent.
func Calmar(annualizedReturnPct, maxDrawdownPct float64) float64 {
	if maxDrawdownPct == 0 {
		return 0
	}
	return annualizedReturnPct / maxDrawdownPct
}

// Beta is the regression slope of returns against the benchmark. A
// zero-variance benchmark yields beta 0 by convention.
func Beta(returns, benchmark []float64) (float64, error) {
	if len(returns) == 0 || len(benchmark) == 0 {
		return 0, ErrNoReturns
	}
	if len(returns) != len(benchmark) {
		return 0, fmt.Errorf("%w: series lengths differ (%d vs %d)", ErrInvalidParam, len(returns), len(benchmark))
	}
	muR := mean(returns)
	muB := mean(benchmark)
	var cov, varB float64
	for i := range returns {
		cov += (returns[i] - muR) * (benchmark[i] - muB)
		varB += (benchmark[i] - muB) * (benchmark[i] - muB)
	}
	if varB == 0 {
		return 0, nil
	}
	return cov / varB, nil
}

// Treynor is the annualized mean excess return per unit of beta.
func Treynor(dailyReturns, benchmark []float64, annualRiskFree float64) (float64, error) {
	beta, err := Beta(dailyReturns, benchmark)
	if err != nil {
		return 0, err
	}
	if beta == 0 {
		return 0, fmt.Errorf("%w: beta is zero", ErrInvalidParam)
	}
	dailyRF := annualRiskFree / tradingDaysPerYear
	excess := make([]float64, len(dailyReturns))
	for i, r := range dailyReturns {
		excess[i] = r - dailyRF
	}
	return mean(excess) * tradingDaysPerYear / beta, nil
}

// InformationRatio is the annualized mean active return over its tracking
// error.
func InformationRatio(returns, benchmark []float64) (float64, error) {
	if len(returns) == 0 || len(benchmark) == 0 {
		return 0, ErrNoReturns
	}
	if len(returns) != len(benchmark) {
		return 0, fmt.Errorf("%w: series lengths differ (%d vs %d)", ErrInvalidParam, len(returns), len(benchmark))
	}
	active := make([]float64, len(returns))
	for i := range returns {
		active[i] = returns[i] - benchmark[i]
	}
	mu := mean(active)
	sigma := stdDev(active, mu)
	if sigma == 0 {
		return 0, nil
	}
	return mu / sigma * math.Sqrt(tradingDaysPerYear), nil
}
