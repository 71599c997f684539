package engine

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/shopspring/decimal"
)

// TradingDaysPerYear annualises the Sharpe and Sortino ratios.
const TradingDaysPerYear = 252

// tradeReturns are the per-trade returns relative to the balance each trade
// was opened against.
func tradeReturns(trades []types.Trade, initialBalance float64) []float64 {
	returns := make([]float64, 0, len(trades))
	balance := initialBalance

	for _, t := range trades {
		if balance <= 0 {
			break
		}

		returns = append(returns, t.Profit/balance)
		balance += t.Profit
	}

	return returns
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// SharpeRatio is the annualised mean over the population standard deviation.
// It is 0 when there are no returns or they do not vary.
func SharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	avg := mean(returns)

	variance := 0.0
	for _, r := range returns {
		variance += (r - avg) * (r - avg)
	}

	std := math.Sqrt(variance / float64(len(returns)))
	if std == 0 {
		return 0
	}

	return avg / std * math.Sqrt(TradingDaysPerYear)
}

// SortinoRatio is the annualised mean over the root mean square of the
// negative returns. It is 0 when no return is negative.
func SortinoRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var downside float64

	negatives := 0

	for _, r := range returns {
		if r < 0 {
			downside += r * r
			negatives++
		}
	}

	if negatives == 0 {
		return 0
	}

	deviation := math.Sqrt(downside / float64(negatives))
	if deviation == 0 {
		return 0
	}

	return mean(returns) / deviation * math.Sqrt(TradingDaysPerYear)
}

// CalculateMetrics derives the ledger metrics. Every ratio whose denominator
// is zero is reported as 0.
func CalculateMetrics(trades []types.Trade, equity []types.EquityPoint, initialBalance float64, finalBalance float64) types.Metrics {
	metrics := types.Metrics{
		TotalTrades:  len(trades),
		FinalBalance: round2(finalBalance),
	}

	total := decimal.Zero
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero

	winStreak, lossStreak := 0, 0

	for _, t := range trades {
		profit := decimal.NewFromFloat(t.Profit)
		total = total.Add(profit)

		switch {
		case t.Profit > 0:
			metrics.WinningTrades++
			grossProfit = grossProfit.Add(profit)
		case t.Profit < 0:
			metrics.LosingTrades++
			grossLoss = grossLoss.Add(profit.Abs())
		}

		// a break-even trade ends a winning streak
		if t.Profit > 0 {
			winStreak++
			lossStreak = 0
			metrics.MaxConsecutiveWins = max(metrics.MaxConsecutiveWins, winStreak)
		} else {
			lossStreak++
			winStreak = 0
			metrics.MaxConsecutiveLoss = max(metrics.MaxConsecutiveLoss, lossStreak)
		}
	}

	metrics.TotalProfit = round2(total.InexactFloat64())
	metrics.GrossProfit = round2(grossProfit.InexactFloat64())
	metrics.GrossLoss = round2(grossLoss.InexactFloat64())

	if initialBalance > 0 {
		metrics.TotalReturn = total.InexactFloat64() / initialBalance * 100
	}

	if metrics.TotalTrades > 0 {
		metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades) * 100
	}

	if grossLoss.IsPositive() {
		metrics.ProfitFactor = grossProfit.Div(grossLoss).InexactFloat64()
	}

	if metrics.WinningTrades > 0 {
		metrics.AverageWin = grossProfit.Div(decimal.NewFromInt(int64(metrics.WinningTrades))).InexactFloat64()
	}

	if metrics.LosingTrades > 0 {
		metrics.AverageLoss = grossLoss.Div(decimal.NewFromInt(int64(metrics.LosingTrades))).InexactFloat64()
	}

	// expectancy is the mean profit per trade, break-even trades included
	if metrics.TotalTrades > 0 {
		metrics.Expectancy = total.Div(decimal.NewFromInt(int64(metrics.TotalTrades))).InexactFloat64()
	}

	for _, p := range equity {
		metrics.MaxDrawdown = math.Max(metrics.MaxDrawdown, p.Drawdown)
		metrics.MaxDrawdownPercent = math.Max(metrics.MaxDrawdownPercent, p.DrawdownPercent)
	}

	if metrics.MaxDrawdown > 0 {
		metrics.RecoveryFactor = metrics.TotalProfit / metrics.MaxDrawdown
	}

	returns := tradeReturns(trades, initialBalance)
	metrics.SharpeRatio = SharpeRatio(returns)
	metrics.SortinoRatio = SortinoRatio(returns)

	return metrics
}

// CalculateStatistics derives the descriptive trade statistics.
func CalculateStatistics(trades []types.Trade, blockedSignals int) types.Statistics {
	stats := types.Statistics{BlockedSignals: blockedSignals}
	if len(trades) == 0 {
		return stats
	}

	stats.BestTrade = trades[0].Profit
	stats.WorstTrade = trades[0].Profit

	costs := decimal.Zero

	var holding time.Duration

	minHolding, maxHolding := trades[0].Duration(), trades[0].Duration()

	for _, t := range trades {
		stats.BestTrade = math.Max(stats.BestTrade, t.Profit)
		stats.WorstTrade = math.Min(stats.WorstTrade, t.Profit)
		costs = costs.Add(decimal.NewFromFloat(t.Costs))

		d := t.Duration()
		holding += d
		minHolding = min(minHolding, d)
		maxHolding = max(maxHolding, d)
	}

	// positive for a winning streak, negative for a losing one
	for i := len(trades) - 1; i >= 0; i-- {
		win := trades[i].Profit > 0
		if i < len(trades)-1 && win != (trades[len(trades)-1].Profit > 0) {
			break
		}

		if win {
			stats.CurrentStreak++
		} else {
			stats.CurrentStreak--
		}
	}

	stats.TotalCosts = round2(costs.InexactFloat64())
	stats.TradeHoldingTime = types.TradeHoldingTime{
		Min: int(minHolding.Seconds()),
		Max: int(maxHolding.Seconds()),
		Avg: int((holding / time.Duration(len(trades))).Seconds()),
	}

	return stats
}

// EquityTracker samples the equity curve and tracks its peak.
type EquityTracker struct {
	peak   float64
	points []types.EquityPoint
}

func NewEquityTracker(initialBalance float64) *EquityTracker {
	return &EquityTracker{peak: initialBalance}
}

// Record appends a sample and updates the peak from the equity.
func (e *EquityTracker) Record(at time.Time, balance float64, equity float64) types.EquityPoint {
	e.peak = math.Max(e.peak, equity)

	point := types.EquityPoint{
		Time:     at,
		Balance:  balance,
		Equity:   equity,
		Drawdown: e.peak - equity,
	}

	if e.peak > 0 {
		point.DrawdownPercent = point.Drawdown / e.peak * 100
	}

	e.points = append(e.points, point)

	return point
}

func (e *EquityTracker) Points() []types.EquityPoint {
	return e.points
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
