package indicator

// RSI computes the Wilder-smoothed Relative Strength Index. The seed is the
// simple average of the first period gains/losses; values are in [0,100]
// where defined, with RSI=100 when the average loss is zero.
func RSI(closes []float64, period int) []float64 {
	out := undefinedSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gainSum += d
		} else {
			lossSum -= d
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line (fast EMA − slow EMA), its signal line
// (EMA(signalPeriod) of the MACD line) and the histogram (line − signal).
// All three series realign to the input length.
func MACD(closes []float64, fast, slow, signalPeriod int) (line, signal, hist []float64) {
	n := len(closes)
	line = undefinedSeries(n)
	signal = undefinedSeries(n)
	hist = undefinedSeries(n)
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 || fast >= slow {
		return line, signal, hist
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := range closes {
		if Defined(fastEMA[i]) && Defined(slowEMA[i]) {
			line[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// Signal line runs over the defined portion of the MACD line and is
	// placed back at the original offset.
	start := slow - 1
	if start >= n {
		return line, signal, hist
	}
	sig := EMA(line[start:], signalPeriod)
	for j, v := range sig {
		if Defined(v) {
			signal[start+j] = v
			hist[start+j] = line[start+j] - v
		}
	}
	return line, signal, hist
}

// Stochastic computes %K over a trailing window and %D as SMA(%K, dPeriod).
// A zero-range window yields %K=50.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d []float64) {
	n := len(closes)
	k = undefinedSeries(n)
	d = undefinedSeries(n)
	if kPeriod <= 0 || dPeriod <= 0 || n < kPeriod {
		return k, d
	}

	for i := kPeriod - 1; i < n; i++ {
		hi, lo := highs[i], lows[i]
		for j := i - kPeriod + 1; j < i; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}
		if hi == lo {
			k[i] = 50
		} else {
			k[i] = (closes[i] - lo) / (hi - lo) * 100
		}
	}

	start := kPeriod - 1
	ds := SMA(k[start:], dPeriod)
	for j, v := range ds {
		if Defined(v) {
			d[start+j] = v
		}
	}
	return k, d
}
