// Package condition implements the boolean and classification primitives
// that condition and logic nodes evaluate. Every function is pure and treats
// short or NaN history as "condition not met".
package condition

import (
	"math"
)

// Direction filters cross detection.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
	DirectionBoth  Direction = "both"
)

// ParseDirection defaults to both.
func ParseDirection(s string) Direction {
	switch Direction(s) {
	case DirectionAbove, DirectionBelow:
		return Direction(s)
	default:
		return DirectionBoth
	}
}

// CrossResult reports which way a series crossed.
type CrossResult struct {
	Above bool
	Below bool
}

// Any reports whether either side crossed.
func (c CrossResult) Any() bool {
	return c.Above || c.Below
}

// Rise reports whether the last value exceeds the value bars ago by more than threshold.
func Rise(values []float64, bars int, threshold float64) bool {
	if bars < 1 || len(values) < bars+1 {
		return false
	}

	return values[len(values)-1]-values[len(values)-1-bars] > threshold
}

// Fall reports whether the last value is below the value bars ago by more than threshold.
func Fall(values []float64, bars int, threshold float64) bool {
	if bars < 1 || len(values) < bars+1 {
		return false
	}

	return values[len(values)-1-bars]-values[len(values)-1] > threshold
}

// WithinLimits reports lower <= v <= upper.
func WithinLimits(v, lower, upper float64) bool {
	return v >= lower && v <= upper
}

// PriceAbove reports whether price is above the indicator by more than
// threshold, in price units or, with percent, in percent of the indicator.
func PriceAbove(price, indicator, threshold float64, percent bool) bool {
	if percent {
		if indicator == 0 {
			return false
		}

		return (price-indicator)/indicator*100 > threshold
	}

	return price-indicator > threshold
}

// PriceBelow mirrors PriceAbove.
func PriceBelow(price, indicator, threshold float64, percent bool) bool {
	if percent {
		if indicator == 0 {
			return false
		}

		return (indicator-price)/indicator*100 > threshold
	}

	return indicator-price > threshold
}

// CrossesLevel detects prev <= level < cur (above) and prev >= level > cur (below).
func CrossesLevel(cur, prev, level float64, dir Direction) CrossResult {
	return TwoSeriesCross(cur, prev, level, level, dir)
}

// TwoSeriesCross applies the level-cross rule to a pair of series.
func TwoSeriesCross(aCur, aPrev, bCur, bPrev float64, dir Direction) CrossResult {
	res := CrossResult{
		Above: aPrev <= bPrev && aCur > bCur,
		Below: aPrev >= bPrev && aCur < bCur,
	}

	switch dir {
	case DirectionAbove:
		res.Below = false
	case DirectionBelow:
		res.Above = false
	}

	return res
}

// Zone is an overbought/oversold classification.
type Zone string

const (
	ZoneOverbought Zone = "overbought"
	ZoneOversold   Zone = "oversold"
	ZoneNeutral    Zone = "neutral"
)

// Extreme classifies v against the two thresholds. Bounds are inclusive.
func Extreme(v, overbought, oversold float64) Zone {
	switch {
	case v >= overbought:
		return ZoneOverbought
	case v <= oversold:
		return ZoneOversold
	default:
		return ZoneNeutral
	}
}

// Trend is a slope classification.
type Trend string

const (
	TrendUp       Trend = "up"
	TrendDown     Trend = "down"
	TrendSideways Trend = "sideways"
)

// Slope is the least-squares slope of values against 0..n-1.
func Slope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2 float64

	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	return (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
}

// TrendOf classifies the slope of the last period values. Short history is sideways.
func TrendOf(values []float64, period int, threshold float64) Trend {
	if period < 2 || len(values) < period {
		return TrendSideways
	}

	slope := Slope(values[len(values)-period:])

	switch {
	case slope > threshold:
		return TrendUp
	case slope < -threshold:
		return TrendDown
	default:
		return TrendSideways
	}
}

// Momentum is a rate-of-change classification.
type Momentum string

const (
	MomentumFastRise Momentum = "fast_rise"
	MomentumFastFall Momentum = "fast_fall"
	MomentumStable   Momentum = "stable"
)

// RateOfChange compares |Δ/prev|×100 over period bars against threshold.
func RateOfChange(values []float64, period int, threshold float64) Momentum {
	if period < 1 || len(values) < period+1 {
		return MomentumStable
	}

	cur := values[len(values)-1]
	prev := values[len(values)-1-period]

	if prev == 0 || math.IsNaN(cur) || math.IsNaN(prev) {
		return MomentumStable
	}

	roc := math.Abs((cur-prev)/prev) * 100

	switch {
	case roc > threshold && cur > prev:
		return MomentumFastRise
	case roc > threshold && cur < prev:
		return MomentumFastFall
	default:
		return MomentumStable
	}
}

// DivergenceResult reports bullish and bearish divergence.
type DivergenceResult struct {
	Bullish bool
	Bearish bool
}

// Divergence compares the extremes of price and indicator over the two halves
// of the last lookback bars. Bullish: price lower low, indicator higher low.
// Bearish: price higher high, indicator lower high.
func Divergence(prices, indicator []float64, lookback int, dir Direction) DivergenceResult {
	if lookback < 2 || len(prices) < lookback || len(indicator) < lookback {
		return DivergenceResult{}
	}

	half := lookback / 2
	p := prices[len(prices)-lookback:]
	ind := indicator[len(indicator)-lookback:]

	pOld, pNew := p[:lookback-half], p[lookback-half:]
	iOld, iNew := ind[:lookback-half], ind[lookback-half:]

	res := DivergenceResult{
		Bullish: minOf(pNew) < minOf(pOld) && minOf(iNew) > minOf(iOld),
		Bearish: maxOf(pNew) > maxOf(pOld) && maxOf(iNew) < maxOf(iOld),
	}

	switch dir {
	case DirectionAbove:
		res.Bearish = false
	case DirectionBelow:
		res.Bullish = false
	}

	return res
}

func minOf(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		m = math.Min(m, v)
	}

	return m
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}

	return m
}
