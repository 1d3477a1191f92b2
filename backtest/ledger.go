package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finagent/quantcore/metrics"
	"github.com/finagent/quantcore/types"
)

// ExitReason explains why a simulated position was closed.
type ExitReason string

const (
	ExitSignal     ExitReason = "signal"
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitEndOfTest  ExitReason = "end_of_test"
)

// Position is an open holding in the ledger. At most one position per symbol
// may be open at a time; the ledger owns it for its entire lifetime.
type Position struct {
	Symbol       string
	Side         types.Side
	Shares       float64
	EntryPrice   float64 // fill price, slippage included
	EntryDate    time.Time
	StopLoss     float64
	TakeProfit   float64
	CurrentPrice float64

	entryCommission float64
	entrySlippage   float64
}

// MarketValue is the position's contribution to equity: positive for longs,
// negative (a liability) for shorts. Recomputed on demand, never cached.
func (p *Position) MarketValue() float64 {
	if p.Side == types.Short {
		return -p.Shares * p.CurrentPrice
	}
	return p.Shares * p.CurrentPrice
}

// UnrealizedPnL is the open profit at the current price, before exit costs.
func (p *Position) UnrealizedPnL() float64 {
	if p.Side == types.Short {
		return (p.EntryPrice - p.CurrentPrice) * p.Shares
	}
	return (p.CurrentPrice - p.EntryPrice) * p.Shares
}

// Trade is the immutable record of a closed position. PnL is net of
// commission on both legs; fill prices already include slippage.
type Trade struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Side       types.Side `json:"side"`
	Shares     float64    `json:"shares"`
	EntryPrice float64    `json:"entry_price"`
	EntryDate  time.Time  `json:"entry_date"`
	ExitPrice  float64    `json:"exit_price"`
	ExitDate   time.Time  `json:"exit_date"`
	PnL        float64    `json:"pnl"`
	PnLPct     float64    `json:"pnl_pct"`
	Commission float64    `json:"commission"`
	Slippage   float64    `json:"slippage"`
	Reason     ExitReason `json:"exit_reason"`
}

// ledger is the cash/position book for a single backtest run. It is mutated
// by exactly one goroutine; a corrupted book (closing a phantom position,
// negative cash without margin) is unrecoverable and panics rather than
// silently producing wrong financial results.
type ledger struct {
	cash      float64
	positions map[string]*Position
	trades    []Trade

	slippagePct        float64
	commissionPerTrade float64
	commissionPct      float64
	marginRequirement  float64

	totalCommission float64
	totalSlippage   float64
}

func newLedger(cash, slippagePct, commissionPerTrade, commissionPct, marginRequirement float64) *ledger {
	return &ledger{
		cash:               cash,
		positions:          make(map[string]*Position),
		slippagePct:        slippagePct,
		commissionPerTrade: commissionPerTrade,
		commissionPct:      commissionPct,
		marginRequirement:  marginRequirement,
	}
}

// fill returns the execution price with slippage applied against the trader:
// buys fill above the quoted price, sells below.
func (l *ledger) fill(price float64, buying bool) float64 {
	if buying {
		return price * (1 + l.slippagePct)
	}
	return price * (1 - l.slippagePct)
}

func (l *ledger) commission(shares, fillPrice float64) float64 {
	return l.commissionPerTrade + shares*fillPrice*l.commissionPct
}

func (l *ledger) equity() float64 {
	eq := l.cash
	for _, p := range l.positions {
		eq += p.MarketValue()
	}
	return eq
}

func (l *ledger) open(symbol string, side types.Side, shares, rawPrice float64, date time.Time, stop, target float64) {
	if _, exists := l.positions[symbol]; exists {
		panic(fmt.Sprintf("ledger: opening %s with a position already open (pyramiding)", symbol))
	}
	buying := side == types.Long
	fillPrice := l.fill(rawPrice, buying)
	comm := l.commission(shares, fillPrice)
	slip := shares * (fillPrice - rawPrice)
	if !buying {
		slip = -slip
	}

	if buying {
		l.cash -= shares*fillPrice + comm
	} else {
		l.cash += shares*fillPrice - comm
	}
	l.assertSolvent()

	l.totalCommission += comm
	l.totalSlippage += slip
	l.positions[symbol] = &Position{
		Symbol:          symbol,
		Side:            side,
		Shares:          shares,
		EntryPrice:      fillPrice,
		EntryDate:       date,
		StopLoss:        stop,
		TakeProfit:      target,
		CurrentPrice:    rawPrice,
		entryCommission: comm,
		entrySlippage:   slip,
	}
}

func (l *ledger) close(symbol string, rawPrice float64, date time.Time, reason ExitReason) Trade {
	pos, exists := l.positions[symbol]
	if !exists {
		panic(fmt.Sprintf("ledger: closing %s without an open position", symbol))
	}
	buying := pos.Side == types.Short // closing a short buys it back
	fillPrice := l.fill(rawPrice, buying)
	comm := l.commission(pos.Shares, fillPrice)
	slip := pos.Shares * (fillPrice - rawPrice)
	if !buying {
		slip = -slip
	}

	if buying {
		l.cash -= pos.Shares*fillPrice + comm
	} else {
		l.cash += pos.Shares*fillPrice - comm
	}
	l.assertSolvent()

	var pnl float64
	if pos.Side == types.Long {
		pnl = (fillPrice-pos.EntryPrice)*pos.Shares - pos.entryCommission - comm
	} else {
		pnl = (pos.EntryPrice-fillPrice)*pos.Shares - pos.entryCommission - comm
	}
	notional := pos.EntryPrice * pos.Shares
	pnlPct := 0.0
	if notional > 0 {
		pnlPct = pnl / notional * 100
	}

	l.totalCommission += comm
	l.totalSlippage += slip
	delete(l.positions, symbol)

	trade := Trade{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Side:       pos.Side,
		Shares:     pos.Shares,
		EntryPrice: pos.EntryPrice,
		EntryDate:  pos.EntryDate,
		ExitPrice:  fillPrice,
		ExitDate:   date,
		PnL:        pnl,
		PnLPct:     pnlPct,
		Commission: pos.entryCommission + comm,
		Slippage:   pos.entrySlippage + slip,
		Reason:     reason,
	}
	l.trades = append(l.trades, trade)
	metrics.TradesClosed.WithLabelValues(string(reason)).Inc()
	return trade
}

// assertSolvent enforces the no-negative-cash invariant when no margin is
// extended. Tolerates float noise.
func (l *ledger) assertSolvent() {
	if l.marginRequirement >= 1 && l.cash < -1e-6 {
		panic(fmt.Sprintf("ledger: negative cash %.6f with margin requirement %.2f", l.cash, l.marginRequirement))
	}
}
