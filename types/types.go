package types

import (
	"fmt"
	"time"
)

// PriceBar is a single OHLCV bar. Bars for a symbol must be strictly
// increasing by timestamp with no duplicates.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// ValidateBars checks the strictly-increasing-timestamp invariant.
func ValidateBars(bars []PriceBar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("bars out of order at index %d: %s !> %s",
				i, bars[i].Timestamp, bars[i-1].Timestamp)
		}
	}
	return nil
}

type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Signal is the 5-level directional call. The numeric values double as the
// score used for weighted combination.
type Signal int

const (
	StrongSell Signal = -2
	Sell       Signal = -1
	Neutral    Signal = 0
	Buy        Signal = 1
	StrongBuy  Signal = 2
)

func (s Signal) String() string {
	switch s {
	case StrongBuy:
		return "strong_buy"
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case StrongSell:
		return "strong_sell"
	default:
		return "neutral"
	}
}

// Score maps the signal onto the combination scale {-2..2}.
func (s Signal) Score() float64 { return float64(s) }

// SignalFromScore buckets a weighted score back into the 5-level scale.
// Thresholds mirror signal generation: ±0.5 for buy/sell, ±1.5 for the
// strong variants.
func SignalFromScore(score float64) Signal {
	switch {
	case score >= 1.5:
		return StrongBuy
	case score >= 0.5:
		return Buy
	case score <= -1.5:
		return StrongSell
	case score <= -0.5:
		return Sell
	default:
		return Neutral
	}
}

// Direction collapses the 5-level scale into buy-family / sell-family /
// neutral for agreement counting.
type Direction int

const (
	DirSell    Direction = -1
	DirNeutral Direction = 0
	DirBuy     Direction = 1
)

func (s Signal) Direction() Direction {
	switch {
	case s > Neutral:
		return DirBuy
	case s < Neutral:
		return DirSell
	default:
		return DirNeutral
	}
}

// StrategySignal is one strategy's recommendation for one symbol. Produced
// fresh per call and never mutated afterwards. Entry/StopLoss/TakeProfit are
// zero when the strategy did not propose a level.
type StrategySignal struct {
	Symbol     string             `json:"symbol"`
	Signal     Signal             `json:"signal"`
	Strategy   string             `json:"strategy"`
	Confidence float64            `json:"confidence"`
	Entry      float64            `json:"entry,omitempty"`
	StopLoss   float64            `json:"stop_loss,omitempty"`
	TakeProfit float64            `json:"take_profit,omitempty"`
	Metadata   map[string]float64 `json:"metadata,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// ConsensusSignal is the weighted aggregate across strategies, with the
// per-strategy breakdown attached for downstream consumers.
type ConsensusSignal struct {
	Symbol         string           `json:"symbol"`
	Signal         Signal           `json:"signal"`
	Score          float64          `json:"score"`
	Agreement      float64          `json:"agreement"`
	MeetsThreshold bool             `json:"meets_threshold"`
	StopLoss       float64          `json:"stop_loss,omitempty"`
	TakeProfit     float64          `json:"take_profit,omitempty"`
	Breakdown      []StrategySignal `json:"breakdown,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
}

// RiskProfile carries the caller's risk-tolerance parameters.
type RiskProfile struct {
	MaxPositionPct   float64 `json:"max_position_pct" yaml:"max_position_pct" default:"0.2" validate:"gt=0,lte=1"`
	MaxRiskPerTrade  float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade" default:"0.01" validate:"gt=0,lte=0.5"`
	MaxDrawdownPct   float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct" default:"0.25" validate:"gt=0,lte=1"`
	DefaultStopPct   float64 `json:"default_stop_pct" yaml:"default_stop_pct" default:"0.05" validate:"gt=0,lte=0.5"`
	DefaultTargetPct float64 `json:"default_target_pct" yaml:"default_target_pct" default:"0.1" validate:"gt=0,lte=2"`
}
