package filter

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Config enables and parameterises each gate. Every gate is disabled by default.
type Config struct {
	Time       TimeConfig       `yaml:"time" json:"time" jsonschema:"title=Time Filter,description=Trading session window and weekdays"`
	Spread     SpreadConfig     `yaml:"spread" json:"spread" jsonschema:"title=Spread Filter"`
	Volatility VolatilityConfig `yaml:"volatility" json:"volatility" jsonschema:"title=Volatility Filter,description=ATR band"`
	Trend      TrendConfig      `yaml:"trend" json:"trend" jsonschema:"title=Trend Filter,description=Minimum ADX and required direction"`
	MaxTrades  MaxTradesConfig  `yaml:"max_trades" json:"max_trades" jsonschema:"title=Max Trades Filter"`
	Drawdown   DrawdownConfig   `yaml:"drawdown" json:"drawdown" jsonschema:"title=Drawdown Filter"`
	News       NewsConfig       `yaml:"news" json:"news" jsonschema:"title=News Filter,description=Blackout around scheduled releases"`
}

type TimeConfig struct {
	Enabled     bool `yaml:"enabled" json:"enabled"`
	StartHour   int  `yaml:"start_hour" json:"start_hour" validate:"gte=0,lte=23" jsonschema:"minimum=0,maximum=23"`
	StartMinute int  `yaml:"start_minute" json:"start_minute" validate:"gte=0,lte=59" jsonschema:"minimum=0,maximum=59"`
	// EndHour 24 means midnight at the end of the day.
	EndHour      int    `yaml:"end_hour" json:"end_hour" validate:"gte=0,lte=24" jsonschema:"minimum=0,maximum=24"`
	EndMinute    int    `yaml:"end_minute" json:"end_minute" validate:"gte=0,lte=59" jsonschema:"minimum=0,maximum=59"`
	AllowedDays  []int  `yaml:"allowed_days" json:"allowed_days" validate:"dive,gte=0,lte=6" jsonschema:"description=0 is Sunday"`
	AllowedHours []int  `yaml:"allowed_hours,omitempty" json:"allowed_hours,omitempty" validate:"dive,gte=0,lte=23"`
	Timezone     string `yaml:"timezone" json:"timezone" validate:"omitempty,timezone" jsonschema:"default=UTC"`
}

type SpreadConfig struct {
	Enabled       bool    `yaml:"enabled" json:"enabled"`
	MaxSpreadPips float64 `yaml:"max_spread_pips" json:"max_spread_pips" validate:"gt=0" jsonschema:"exclusiveMinimum=0,default=3"`
}

type VolatilityConfig struct {
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	ATRPeriod int     `yaml:"atr_period" json:"atr_period" validate:"gte=1" jsonschema:"minimum=1,default=14"`
	MinATR    float64 `yaml:"min_atr" json:"min_atr" validate:"gte=0" jsonschema:"minimum=0,default=0.001"`
	MaxATR    float64 `yaml:"max_atr" json:"max_atr" validate:"gtefield=MinATR" jsonschema:"default=0.01"`
}

type TrendConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	MinADX       float64 `yaml:"min_adx" json:"min_adx" validate:"gte=0,lte=100" jsonschema:"minimum=0,maximum=100,default=25"`
	ADXPeriod    int     `yaml:"adx_period" json:"adx_period" validate:"gte=1" jsonschema:"minimum=1,default=14"`
	RequireTrend string  `yaml:"require_trend" json:"require_trend" validate:"oneof=any up down" jsonschema:"enum=any,enum=up,enum=down,default=any"`
	// SlopePeriod is the close-price window used to classify the trend direction.
	SlopePeriod int `yaml:"slope_period" json:"slope_period" validate:"gte=2" jsonschema:"minimum=2,default=20"`
}

type MaxTradesConfig struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	MaxConcurrent int  `yaml:"max_concurrent" json:"max_concurrent" validate:"gte=1" jsonschema:"minimum=1,default=5"`
	MaxPerDay     int  `yaml:"max_per_day" json:"max_per_day" validate:"gte=1" jsonschema:"minimum=1,default=10"`
	MaxPerWeek    int  `yaml:"max_per_week" json:"max_per_week" validate:"gte=1" jsonschema:"minimum=1,default=50"`
}

type DrawdownConfig struct {
	Enabled             bool    `yaml:"enabled" json:"enabled"`
	MaxDrawdownPercent  float64 `yaml:"max_drawdown_percent" json:"max_drawdown_percent" validate:"gt=0,lte=100" jsonschema:"exclusiveMinimum=0,maximum=100,default=20"`
	MaxDailyLossPercent float64 `yaml:"max_daily_loss_percent" json:"max_daily_loss_percent" validate:"gt=0,lte=100" jsonschema:"exclusiveMinimum=0,maximum=100,default=5"`
}

type NewsConfig struct {
	Enabled           bool        `yaml:"enabled" json:"enabled"`
	StopBeforeMinutes int         `yaml:"stop_before_minutes" json:"stop_before_minutes" validate:"gte=0" jsonschema:"minimum=0,default=30"`
	StopAfterMinutes  int         `yaml:"stop_after_minutes" json:"stop_after_minutes" validate:"gte=0" jsonschema:"minimum=0,default=30"`
	HighImpactOnly    bool        `yaml:"high_impact_only" json:"high_impact_only"`
	Events            []NewsEvent `yaml:"events,omitempty" json:"events,omitempty"`
}

// DefaultConfig returns the default parameters with every gate disabled.
func DefaultConfig() Config {
	return Config{
		Time: TimeConfig{
			StartHour:   0,
			EndHour:     24,
			AllowedDays: []int{1, 2, 3, 4, 5},
			Timezone:    "UTC",
		},
		Spread:     SpreadConfig{MaxSpreadPips: DefaultMaxSpread},
		Volatility: VolatilityConfig{ATRPeriod: 14, MinATR: 0.0010, MaxATR: 0.0100},
		Trend:      TrendConfig{MinADX: 25, ADXPeriod: 14, RequireTrend: TrendAny, SlopePeriod: 20},
		MaxTrades:  MaxTradesConfig{MaxConcurrent: 5, MaxPerDay: 10, MaxPerWeek: 50},
		Drawdown:   DrawdownConfig{MaxDrawdownPercent: 20, MaxDailyLossPercent: 5},
		News:       NewsConfig{StopBeforeMinutes: 30, StopAfterMinutes: 30, HighImpactOnly: true},
	}
}

// Validate checks the parameters of every gate, enabled or not.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid filter configuration", err)
	}

	return nil
}
