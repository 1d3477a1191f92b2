// Package testutils provides test doubles and reproducible synthetic market
// data. All randomness flows through a caller-supplied RNG; nothing here
// touches global RNG state.
package testutils

import (
	"math"
	"math/rand"
	"time"

	"github.com/finagent/quantcore/types"
)

// GenerateBars produces n daily OHLCV bars following a geometric random walk
// with the given per-bar drift and volatility.
func GenerateBars(rng *rand.Rand, n int, start float64, drift, vol float64, from time.Time) []types.PriceBar {
	bars := make([]types.PriceBar, n)
	price := start
	for i := 0; i < n; i++ {
		ret := drift + vol*rng.NormFloat64()
		open := price
		close := price * (1 + ret)
		hi := math.Max(open, close) * (1 + rng.Float64()*vol)
		lo := math.Min(open, close) * (1 - rng.Float64()*vol)
		bars[i] = types.PriceBar{
			Timestamp: from.AddDate(0, 0, i),
			Open:      open,
			High:      hi,
			Low:       lo,
			Close:     close,
			Volume:    1000 + rng.Float64()*9000,
		}
		price = close
	}
	return bars
}

// TrendingBars produces deterministic bars stepping the close by step each
// day, handy for forcing crossovers and trend gates.
func TrendingBars(n int, start, step float64, from time.Time) []types.PriceBar {
	bars := make([]types.PriceBar, n)
	for i := 0; i < n; i++ {
		c := start + step*float64(i)
		bars[i] = types.PriceBar{
			Timestamp: from.AddDate(0, 0, i),
			Open:      c - step/2,
			High:      c + math.Abs(step),
			Low:       c - math.Abs(step),
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

// Closes extracts the close column.
func Closes(bars []types.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
