package backtest

import (
	"math"
	"time"

	"github.com/finagent/quantcore/config"
	"github.com/finagent/quantcore/risk"
)

// tradingDaysPerYear is the annualization basis used throughout.
const tradingDaysPerYear = 252

// profitFactorCap keeps the reported profit factor finite when there are no
// losing trades.
const profitFactorCap = 999.0

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// Result is the outcome of one backtest run: configuration snapshot, trade
// list, equity curve and daily returns. All higher-level metrics are derived
// read-only views over these, never stored redundantly.
type Result struct {
	RunID           string                `json:"run_id"`
	Strategy        string                `json:"strategy"`
	Config          config.BacktestConfig `json:"config"`
	Start           time.Time             `json:"start"`
	End             time.Time             `json:"end"`
	InitialCapital  float64               `json:"initial_capital"`
	FinalCapital    float64               `json:"final_capital"`
	Trades          []Trade               `json:"trades"`
	EquityCurve     []EquityPoint         `json:"equity_curve"`
	DailyReturns    []float64             `json:"daily_returns"`
	TotalCommission float64               `json:"total_commission"`
	TotalSlippage   float64               `json:"total_slippage"`
}

func (r *Result) equityValues() []float64 {
	out := make([]float64, len(r.EquityCurve))
	for i, p := range r.EquityCurve {
		out[i] = p.Equity
	}
	return out
}

// TotalReturnPct is the percentage gain over the whole run.
func (r *Result) TotalReturnPct() float64 {
	if r.InitialCapital == 0 {
		return 0
	}
	return (r.FinalCapital - r.InitialCapital) / r.InitialCapital * 100
}

// AnnualizedReturnPct scales the total return to a yearly rate using the
// number of simulated trading days.
func (r *Result) AnnualizedReturnPct() float64 {
	days := len(r.EquityCurve)
	if days == 0 || r.InitialCapital <= 0 || r.FinalCapital <= 0 {
		return 0
	}
	growth := r.FinalCapital / r.InitialCapital
	return (math.Pow(growth, tradingDaysPerYear/float64(days)) - 1) * 100
}

func (r *Result) winners() (wins, losses []Trade) {
	for _, t := range r.Trades {
		if t.PnL > 0 {
			wins = append(wins, t)
		} else if t.PnL < 0 {
			losses = append(losses, t)
		}
	}
	return wins, losses
}

// WinRate is the fraction of closed trades with positive PnL.
func (r *Result) WinRate() float64 {
	if len(r.Trades) == 0 {
		return 0
	}
	wins, _ := r.winners()
	return float64(len(wins)) / float64(len(r.Trades))
}

// AvgWin is the mean PnL of winning trades.
func (r *Result) AvgWin() float64 {
	wins, _ := r.winners()
	return meanPnL(wins)
}

// AvgLoss is the mean PnL of losing trades (negative).
func (r *Result) AvgLoss() float64 {
	_, losses := r.winners()
	return meanPnL(losses)
}

func meanPnL(trades []Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range trades {
		sum += t.PnL
	}
	return sum / float64(len(trades))
}

// ProfitFactor is gross profit / gross loss, capped when there are no
// losing trades.
func (r *Result) ProfitFactor() float64 {
	var grossProfit, grossLoss float64
	for _, t := range r.Trades {
		if t.PnL > 0 {
			grossProfit += t.PnL
		} else {
			grossLoss -= t.PnL
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return profitFactorCap
		}
		return 0
	}
	return grossProfit / grossLoss
}

// LargestWin is the best single-trade PnL, zero when no trade won.
func (r *Result) LargestWin() float64 {
	best := 0.0
	for _, t := range r.Trades {
		if t.PnL > best {
			best = t.PnL
		}
	}
	return best
}

// LargestLoss is the worst single-trade PnL, zero when no trade lost.
func (r *Result) LargestLoss() float64 {
	worst := 0.0
	for _, t := range r.Trades {
		if t.PnL < worst {
			worst = t.PnL
		}
	}
	return worst
}

// MaxDrawdownPct is the largest peak-to-trough drop of the equity curve.
func (r *Result) MaxDrawdownPct() float64 {
	return risk.MaxDrawdown(r.equityValues())
}

// SharpeRatio annualizes daily excess returns over the configured risk-free
// rate.
func (r *Result) SharpeRatio() float64 {
	return risk.Sharpe(r.DailyReturns, r.Config.RiskFreeRate)
}

// SortinoRatio is Sharpe with only downside deviation in the denominator.
func (r *Result) SortinoRatio() float64 {
	return risk.Sortino(r.DailyReturns, r.Config.RiskFreeRate)
}

// CalmarRatio is annualized return over max drawdown.
func (r *Result) CalmarRatio() float64 {
	dd := r.MaxDrawdownPct()
	if dd == 0 {
		return 0
	}
	return r.AnnualizedReturnPct() / dd
}

// Report is the stable JSON-serializable summary exposed to out-of-scope
// consumers (chat agents, CLIs, alerting).
type Report struct {
	Period  ReportPeriod  `json:"period"`
	Returns ReportReturns `json:"returns"`
	Trades  ReportTrades  `json:"trades"`
	Risk    ReportRisk    `json:"risk"`
	Costs   ReportCosts   `json:"costs"`
	History []Trade       `json:"history,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

type ReportReturns struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`
	TotalPct       float64 `json:"total_pct"`
	AnnualizedPct  float64 `json:"annualized_pct"`
}

type ReportTrades struct {
	Total        int     `json:"total"`
	Winning      int     `json:"winning"`
	Losing       int     `json:"losing"`
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	ProfitFactor float64 `json:"profit_factor"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`
}

type ReportRisk struct {
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	CalmarRatio    float64 `json:"calmar_ratio"`
}

type ReportCosts struct {
	TotalCommissions float64 `json:"total_commissions"`
	TotalSlippage    float64 `json:"total_slippage"`
}

// Report builds the summary view. Pass includeHistory to attach the full
// trade list.
func (r *Result) Report(includeHistory bool) Report {
	wins, losses := r.winners()
	rep := Report{
		Period: ReportPeriod{Start: r.Start, End: r.End, Days: len(r.EquityCurve)},
		Returns: ReportReturns{
			InitialCapital: r.InitialCapital,
			FinalCapital:   r.FinalCapital,
			TotalPct:       r.TotalReturnPct(),
			AnnualizedPct:  r.AnnualizedReturnPct(),
		},
		Trades: ReportTrades{
			Total:        len(r.Trades),
			Winning:      len(wins),
			Losing:       len(losses),
			WinRate:      r.WinRate(),
			AvgWin:       r.AvgWin(),
			AvgLoss:      r.AvgLoss(),
			ProfitFactor: r.ProfitFactor(),
			LargestWin:   r.LargestWin(),
			LargestLoss:  r.LargestLoss(),
		},
		Risk: ReportRisk{
			MaxDrawdownPct: r.MaxDrawdownPct(),
			SharpeRatio:    r.SharpeRatio(),
			SortinoRatio:   r.SortinoRatio(),
			CalmarRatio:    r.CalmarRatio(),
		},
		Costs: ReportCosts{
			TotalCommissions: r.TotalCommission,
			TotalSlippage:    r.TotalSlippage,
		},
	}
	if includeHistory {
		rep.History = r.Trades
	}
	return rep
}
