package indicator

// OBV is cumulative volume: added when the close rises, subtracted when it
// falls, unchanged otherwise. The series starts at zero.
func OBV(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// VWAP is cumulative(typical price × volume) / cumulative(volume), with
// typical price = (H+L+C)/3. Entries stay undefined until volume has been
// observed.
func VWAP(highs, lows, closes, volumes []float64) []float64 {
	out := undefinedSeries(len(closes))
	var cumPV, cumV float64
	for i := range closes {
		tp := (highs[i] + lows[i] + closes[i]) / 3
		cumPV += tp * volumes[i]
		cumV += volumes[i]
		if cumV > 0 {
			out[i] = cumPV / cumV
		}
	}
	return out
}
