package indicator

import "math"

// ADX computes the Average Directional Index along with +DI and -DI.
// Directional movement and true range are Wilder-smoothed with the same
// seeding convention as ATR (simple average of the first period raw values),
// DI = smoothed DM / smoothed TR × 100, DX = |+DI − -DI| / (+DI + -DI) × 100
// and ADX is the Wilder-smoothed DX.
func ADX(highs, lows, closes []float64, period int) (adx, plusDI, minusDI []float64) {
	n := len(closes)
	adx = undefinedSeries(n)
	plusDI = undefinedSeries(n)
	minusDI = undefinedSeries(n)
	if period <= 0 || n < period+1 {
		return adx, plusDI, minusDI
	}

	// Raw series start at index 1 (they need a previous bar).
	plusDM := make([]float64, n-1)
	minusDM := make([]float64, n-1)
	trs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		trs[i-1] = math.Max(hl, math.Max(hc, lc))
	}

	smPlus := wilder(plusDM, period)
	smMinus := wilder(minusDM, period)
	smTR := wilder(trs, period)

	dx := undefinedSeries(n - 1)
	for i := period - 1; i < n-1; i++ {
		if smTR[i] == 0 {
			plusDI[i+1] = 0
			minusDI[i+1] = 0
		} else {
			plusDI[i+1] = smPlus[i] / smTR[i] * 100
			minusDI[i+1] = smMinus[i] / smTR[i] * 100
		}
		sum := plusDI[i+1] + minusDI[i+1]
		if sum == 0 {
			dx[i] = 0
		} else {
			dx[i] = math.Abs(plusDI[i+1]-minusDI[i+1]) / sum * 100
		}
	}

	// ADX smooths the DX values, which themselves only exist from index
	// period-1 of the raw series onward.
	if n-1 >= 2*period-1 {
		smoothedDX := wilder(dx[period-1:], period)
		for j, v := range smoothedDX {
			if Defined(v) {
				adx[period+j] = v
			}
		}
	}
	return adx, plusDI, minusDI
}
