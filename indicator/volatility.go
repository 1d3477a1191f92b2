package indicator

// Bollinger returns the upper, middle and lower bands: middle is SMA(period),
// upper/lower are middle ± stdDevMult times the population standard deviation
// of the trailing window.
func Bollinger(closes []float64, period int, stdDevMult float64) (upper, middle, lower []float64) {
	n := len(closes)
	upper = undefinedSeries(n)
	middle = SMA(closes, period)
	lower = undefinedSeries(n)
	if period <= 0 || n < period {
		return upper, middle, lower
	}
	for i := period - 1; i < n; i++ {
		sd := popStdDev(closes[i-period+1 : i+1])
		upper[i] = middle[i] + stdDevMult*sd
		lower[i] = middle[i] - stdDevMult*sd
	}
	return upper, middle, lower
}

// ATR is the Wilder-smoothed Average True Range. The first value is the
// simple mean of the first period true ranges; true ranges start at index 1,
// so the first defined ATR sits at index period.
func ATR(highs, lows, closes []float64, period int) []float64 {
	out := undefinedSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	trs := trueRanges(highs, lows, closes)
	smoothed := wilder(trs[1:], period)
	for j, v := range smoothed {
		if Defined(v) {
			out[j+1] = v
		}
	}
	return out
}
