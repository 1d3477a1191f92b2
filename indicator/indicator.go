// Package indicator implements the technical-indicator library: pure,
// stateless functions over price arrays. Every function returns a series
// aligned 1:1 with its input; entries inside the warm-up window are
// undefined (NaN), never an error.
package indicator

import "math"

// Defined reports whether a series entry carries a value.
func Defined(v float64) bool { return !math.IsNaN(v) }

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// popStdDev is the population standard deviation of window.
func popStdDev(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))
	ss := 0.0
	for _, v := range window {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(window)))
}

// wilder smooths raw with Wilder's recurrence. The seed at index period-1 is
// the simple average of the first period values; earlier entries are
// undefined. One seeding convention is used for every Wilder-smoothed series
// in this package (RSI, ATR, ADX).
func wilder(raw []float64, period int) []float64 {
	out := undefinedSeries(len(raw))
	if period <= 0 || len(raw) < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += raw[i]
	}
	avg := sum / float64(period)
	out[period-1] = avg
	for i := period; i < len(raw); i++ {
		avg = (avg*float64(period-1) + raw[i]) / float64(period)
		out[i] = avg
	}
	return out
}

// trueRanges returns the TR series for indices 1..n-1; index 0 is undefined
// because TR needs a previous close.
func trueRanges(highs, lows, closes []float64) []float64 {
	out := undefinedSeries(len(closes))
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}
