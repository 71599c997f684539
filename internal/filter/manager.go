package filter

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/condition"
)

// Context is what the interpreter knows when an action wants to fire.
// Gates whose input is absent are skipped.
type Context struct {
	Time             time.Time
	Symbol           string
	Spread           optional.Option[float64]
	ATR              optional.Option[float64]
	ADX              optional.Option[float64]
	Trend            condition.Trend
	OpenTrades       optional.Option[int]
	DailyLossPercent optional.Option[float64]
}

// Decision aggregates the results of every enabled gate.
type Decision struct {
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons,omitempty"`
}

// Manager owns one instance of each gate for a single run. It is not safe
// for concurrent use; each backtest constructs its own.
type Manager struct {
	config Config

	time       *TimeFilter
	spread     *SpreadFilter
	volatility *VolatilityFilter
	trend      *TrendFilter
	maxTrades  *MaxTradesFilter
	drawdown   *DrawdownFilter
	news       *NewsFilter
}

// NewManager validates config and builds the gates.
func NewManager(config Config) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	loc := time.UTC
	if config.Time.Timezone != "" {
		l, err := time.LoadLocation(config.Time.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", config.Time.Timezone, err)
		}

		loc = l
	}

	days := make([]time.Weekday, len(config.Time.AllowedDays))
	for i, d := range config.Time.AllowedDays {
		days[i] = time.Weekday(d)
	}

	return &Manager{
		config: config,
		time: &TimeFilter{
			StartMinute:  config.Time.StartHour*60 + config.Time.StartMinute,
			EndMinute:    config.Time.EndHour*60 + config.Time.EndMinute,
			AllowedDays:  days,
			AllowedHours: config.Time.AllowedHours,
			Location:     loc,
		},
		spread:     NewSpreadFilter(config.Spread.MaxSpreadPips, DefaultPipSize),
		volatility: NewVolatilityFilter(config.Volatility.ATRPeriod, config.Volatility.MinATR, config.Volatility.MaxATR),
		trend:      NewTrendFilter(config.Trend.MinADX, config.Trend.RequireTrend),
		maxTrades:  NewMaxTradesFilter(config.MaxTrades.MaxConcurrent, config.MaxTrades.MaxPerDay, config.MaxTrades.MaxPerWeek),
		drawdown:   NewDrawdownFilter(config.Drawdown.MaxDrawdownPercent),
		news: NewNewsFilter(config.News.StopBeforeMinutes, config.News.StopAfterMinutes,
			config.News.HighImpactOnly, config.News.Events),
	}, nil
}

func (m *Manager) Config() Config {
	return m.config
}

// Volatility exposes the ATR calculation so callers can fill Context.ATR.
func (m *Manager) Volatility() *VolatilityFilter {
	return m.volatility
}

func (m *Manager) Drawdown() *DrawdownFilter {
	return m.drawdown
}

// UpdateBalance feeds the drawdown gate. Call it whenever the balance changes.
func (m *Manager) UpdateBalance(balance float64) {
	if m.config.Drawdown.Enabled {
		m.drawdown.UpdateBalance(balance)
	}
}

// CheckAll runs every enabled gate whose input is present and collects all
// failure reasons.
func (m *Manager) CheckAll(ctx Context) Decision {
	var results []Result

	if m.config.Time.Enabled {
		results = append(results, m.time.Check(ctx.Time))
	}

	if m.config.Spread.Enabled && ctx.Spread.IsSome() {
		results = append(results, m.spread.Check(ctx.Spread.Unwrap(), ctx.Symbol))
	}

	if m.config.Volatility.Enabled && ctx.ATR.IsSome() {
		results = append(results, m.volatility.Check(ctx.ATR.Unwrap()))
	}

	if m.config.Trend.Enabled && ctx.ADX.IsSome() {
		results = append(results, m.trend.Check(ctx.Trend, ctx.ADX.Unwrap()))
	}

	if m.config.MaxTrades.Enabled && ctx.OpenTrades.IsSome() {
		results = append(results, m.maxTrades.Check(ctx.OpenTrades.Unwrap(), ctx.Time))
	}

	if m.config.Drawdown.Enabled {
		results = append(results, m.drawdown.Check())

		if ctx.DailyLossPercent.IsSome() && ctx.DailyLossPercent.Unwrap() >= m.config.Drawdown.MaxDailyLossPercent {
			results = append(results, fail("Max daily loss exceeded: %.1f%%", ctx.DailyLossPercent.Unwrap()))
		}
	}

	if m.config.News.Enabled {
		results = append(results, m.news.Check(ctx.Time))
	}

	decision := Decision{Passed: true}

	for _, r := range results {
		if r.Passed {
			continue
		}

		decision.Passed = false

		reason := r.Reason
		if reason == "" {
			reason = "Unknown reason"
		}

		decision.Reasons = append(decision.Reasons, reason)
	}

	return decision
}

// RecordTrade counts an opened trade against the day and week caps.
func (m *Manager) RecordTrade(t time.Time) {
	m.maxTrades.Record(t)
}

// Status reports which gates are enabled.
func (m *Manager) Status() map[string]bool {
	return map[string]bool{
		"time":       m.config.Time.Enabled,
		"spread":     m.config.Spread.Enabled,
		"volatility": m.config.Volatility.Enabled,
		"trend":      m.config.Trend.Enabled,
		"max_trades": m.config.MaxTrades.Enabled,
		"drawdown":   m.config.Drawdown.Enabled,
		"news":       m.config.News.Enabled,
	}
}

// Reset clears the trade counters and restarts drawdown tracking from
// initialBalance. Call it before every run.
func (m *Manager) Reset(initialBalance float64) {
	m.maxTrades.Reset()
	m.drawdown.Reset(initialBalance)
}
