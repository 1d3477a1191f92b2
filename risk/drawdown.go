package risk

import "math"

// DrawdownEpisode is one distinct peak-to-recovery excursion of the equity
// curve. RecoveryIndex is -1 when the curve never regained the peak.
type DrawdownEpisode struct {
	PeakIndex     int     `json:"peak_index"`
	TroughIndex   int     `json:"trough_index"`
	RecoveryIndex int     `json:"recovery_index"`
	DepthPct      float64 `json:"depth_pct"`
}

// DrawdownReport summarizes the drawdown behavior of an equity curve.
type DrawdownReport struct {
	MaxDrawdownPct float64           `json:"max_drawdown_pct"`
	AvgDrawdownPct float64           `json:"avg_drawdown_pct"`
	UlcerIndex     float64           `json:"ulcer_index"`
	Episodes       []DrawdownEpisode `json:"episodes,omitempty"`
}

// AnalyzeDrawdowns walks the equity curve tracking the running peak. A new
// episode opens when equity first dips below the peak and closes at the
// first point at or above the pre-drawdown peak. The Ulcer Index is the RMS
// of the pointwise percent drawdowns.
func AnalyzeDrawdowns(equity []float64) (DrawdownReport, error) {
	if len(equity) == 0 {
		return DrawdownReport{}, ErrNoReturns
	}

	var report DrawdownReport
	peak := equity[0]
	peakIdx := 0
	var cur *DrawdownEpisode
	var ddSquares float64

	for i, v := range equity {
		if v >= peak {
			if cur != nil {
				cur.RecoveryIndex = i
				report.Episodes = append(report.Episodes, *cur)
				cur = nil
			}
			peak = v
			peakIdx = i
			continue
		}

		dd := 0.0
		if peak > 0 {
			dd = (peak - v) / peak * 100
		}
		ddSquares += dd * dd

		if cur == nil {
			cur = &DrawdownEpisode{PeakIndex: peakIdx, TroughIndex: i, RecoveryIndex: -1, DepthPct: dd}
		} else if dd > cur.DepthPct {
			cur.TroughIndex = i
			cur.DepthPct = dd
		}
	}
	if cur != nil {
		report.Episodes = append(report.Episodes, *cur)
	}

	var depthSum float64
	for _, ep := range report.Episodes {
		depthSum += ep.DepthPct
		if ep.DepthPct > report.MaxDrawdownPct {
			report.MaxDrawdownPct = ep.DepthPct
		}
	}
	if n := len(report.Episodes); n > 0 {
		report.AvgDrawdownPct = depthSum / float64(n)
	}
	report.UlcerIndex = math.Sqrt(ddSquares / float64(len(equity)))
	return report, nil
}

// MaxDrawdown is the convenience form returning only the largest
// peak-to-trough percentage drop. An empty curve has zero drawdown.
func MaxDrawdown(equity []float64) float64 {
	report, err := AnalyzeDrawdowns(equity)
	if err != nil {
		return 0
	}
	return report.MaxDrawdownPct
}
