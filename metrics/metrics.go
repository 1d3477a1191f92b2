package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SignalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantcore_signals_generated_total",
			Help: "Total number of strategy signals generated (by strategy and direction).",
		},
		[]string{"strategy", "signal"},
	)

	BacktestRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quantcore_backtest_runs_total",
			Help: "Total number of completed backtest runs.",
		},
	)

	TradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantcore_trades_closed_total",
			Help: "Total number of simulated trades closed (by exit reason).",
		},
		[]string{"reason"},
	)

	BacktestEquity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quantcore_backtest_equity",
			Help: "Equity of the most recently updated backtest ledger.",
		},
	)
)

func init() {
	prometheus.MustRegister(SignalsGenerated, BacktestRuns, TradesClosed, BacktestEquity)
}
