package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/finagent/quantcore/types"
)

// StrategyConfig holds all tunable parameters shared by the concrete
// strategies. Unset fields take the default tags.
type StrategyConfig struct {
	// Moving-average crossover
	FastPeriod int  `yaml:"fast_period" default:"10" validate:"gt=0"`
	SlowPeriod int  `yaml:"slow_period" default:"30" validate:"gt=0"`
	UseEMA     bool `yaml:"use_ema" default:"true"`

	// RSI mean reversion
	RSIPeriod     int     `yaml:"rsi_period" default:"14" validate:"gt=1"`
	RSIOversold   float64 `yaml:"rsi_oversold" default:"30" validate:"gt=0,lt=100"`
	RSIOverbought float64 `yaml:"rsi_overbought" default:"70" validate:"gt=0,lt=100"`

	// Bollinger breakout
	BollingerPeriod int     `yaml:"bollinger_period" default:"20" validate:"gt=1"`
	BollingerStdDev float64 `yaml:"bollinger_std_dev" default:"2" validate:"gt=0"`

	// MACD
	MACDFast   int `yaml:"macd_fast" default:"12" validate:"gt=0"`
	MACDSlow   int `yaml:"macd_slow" default:"26" validate:"gt=0"`
	MACDSignal int `yaml:"macd_signal" default:"9" validate:"gt=0"`

	// Trend following
	ADXPeriod     int     `yaml:"adx_period" default:"14" validate:"gt=1"`
	ADXThreshold  float64 `yaml:"adx_threshold" default:"25" validate:"gt=0,lt=100"`
	TrendMAPeriod int     `yaml:"trend_ma_period" default:"50" validate:"gt=1"`

	// Exit levels: stop distance = ATR × multiplier when ATR is available,
	// else StopLossPct of entry; target = stop distance × RewardRisk.
	ATRPeriod     int     `yaml:"atr_period" default:"14" validate:"gt=1"`
	ATRMultiplier float64 `yaml:"atr_multiplier" default:"2" validate:"gt=0"`
	StopLossPct   float64 `yaml:"stop_loss_pct" default:"0.05" validate:"gt=0,lte=0.5"`
	RewardRisk    float64 `yaml:"reward_risk" default:"2" validate:"gt=0"`
}

// Validate applies cross-field rules that tag validation cannot express.
func (c *StrategyConfig) Validate() error {
	if c.FastPeriod >= c.SlowPeriod {
		return fmt.Errorf("fast_period (%d) must be below slow_period (%d)", c.FastPeriod, c.SlowPeriod)
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be below macd_slow (%d)", c.MACDFast, c.MACDSlow)
	}
	if c.RSIOversold >= c.RSIOverbought {
		return fmt.Errorf("rsi_oversold (%.1f) must be below rsi_overbought (%.1f)", c.RSIOversold, c.RSIOverbought)
	}
	return nil
}

// BacktestConfig is the simulation configuration snapshot carried into every
// BacktestResult.
type BacktestConfig struct {
	InitialCapital     float64 `yaml:"initial_capital" json:"initial_capital" default:"100000" validate:"gt=0"`
	PositionSizePct    float64 `yaml:"position_size_pct" json:"position_size_pct" default:"0.1" validate:"gt=0,lte=1"`
	MaxPositions       int     `yaml:"max_positions" json:"max_positions" default:"5" validate:"gt=0"`
	CommissionPerTrade float64 `yaml:"commission_per_trade" json:"commission_per_trade" validate:"gte=0"`
	CommissionPct      float64 `yaml:"commission_pct" json:"commission_pct" validate:"gte=0,lt=1"`
	SlippagePct        float64 `yaml:"slippage_pct" json:"slippage_pct" validate:"gte=0,lt=1"`
	MarginRequirement  float64 `yaml:"margin_requirement" json:"margin_requirement" default:"1" validate:"gt=0"`
	AllowShort         bool    `yaml:"allow_short" json:"allow_short"`
	ReinvestProfits    bool    `yaml:"reinvest_profits" json:"reinvest_profits" default:"true"`
	RiskFreeRate       float64 `yaml:"risk_free_rate" json:"risk_free_rate" default:"0.02" validate:"gte=0,lt=1"`
}

// EngineConfig configures the consensus layer: per-strategy weights and the
// agreement threshold.
type EngineConfig struct {
	MinConsensus float64            `yaml:"min_consensus" default:"0.6" validate:"gt=0,lte=1"`
	Weights      map[string]float64 `yaml:"weights"`
}

// Config is the root configuration document.
type Config struct {
	Strategy StrategyConfig    `yaml:"strategy"`
	Engine   EngineConfig      `yaml:"engine"`
	Backtest BacktestConfig    `yaml:"backtest"`
	Risk     types.RiskProfile `yaml:"risk"`
}

// Load reads a YAML configuration file. Defaults are applied to the document
// first and the file decoded over them, so unset fields fall back while an
// explicit false (use_ema, reinvest_profits) survives as written.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a fully-populated configuration.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate runs tag validation plus the cross-field strategy rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
