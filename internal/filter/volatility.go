package filter

import (
	"github.com/rxtech-lab/argo-strategy/internal/indicator"
	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// VolatilityLevel classifies ATR against the accepted band.
type VolatilityLevel string

const (
	VolatilityVeryLow  VolatilityLevel = "very_low"
	VolatilityLow      VolatilityLevel = "low"
	VolatilityNormal   VolatilityLevel = "normal"
	VolatilityHigh     VolatilityLevel = "high"
	VolatilityVeryHigh VolatilityLevel = "very_high"
)

// VolatilityFilter accepts entries while ATR stays within [MinATR, MaxATR].
type VolatilityFilter struct {
	Period int
	MinATR float64
	MaxATR float64
}

func NewVolatilityFilter(period int, minATR, maxATR float64) *VolatilityFilter {
	return &VolatilityFilter{Period: period, MinATR: minATR, MaxATR: maxATR}
}

// ATR is the mean true range of the last Period bars. It is 0 until
// Period+1 bars are available.
func (f *VolatilityFilter) ATR(bars []types.Bar) float64 {
	if f.Period < 1 || len(bars) < f.Period+1 {
		return 0
	}

	tr := indicator.TrueRange(bars[len(bars)-f.Period-1:])

	sum := 0.0
	for _, v := range tr[1:] {
		sum += v
	}

	return sum / float64(f.Period)
}

func (f *VolatilityFilter) IsVolatilityAcceptable(bars []types.Bar) bool {
	return f.Check(f.ATR(bars)).Passed
}

// Level classifies atr: below half the minimum is very low, above 1.5× the
// maximum is very high.
func (f *VolatilityFilter) Level(atr float64) VolatilityLevel {
	switch {
	case atr < f.MinATR*0.5:
		return VolatilityVeryLow
	case atr < f.MinATR:
		return VolatilityLow
	case atr <= f.MaxATR:
		return VolatilityNormal
	case atr <= f.MaxATR*1.5:
		return VolatilityHigh
	default:
		return VolatilityVeryHigh
	}
}

// Ratio divides the current ATR by the average ATR of the rolling windows in
// the last lookback bars. It is 1 when history is short or flat.
func (f *VolatilityFilter) Ratio(bars []types.Bar, lookback int) float64 {
	if len(bars) < lookback+f.Period {
		return 1
	}

	current := f.ATR(bars)
	history := bars[len(bars)-lookback:]

	sum, count := 0.0, 0
	for i := f.Period; i < len(history); i++ {
		sum += f.ATR(history[i-f.Period : i+1])
		count++
	}

	if count == 0 || sum == 0 {
		return 1
	}

	return current / (sum / float64(count))
}

func (f *VolatilityFilter) Check(atr float64) Result {
	if atr < f.MinATR {
		return fail("Volatility too low: ATR %.4f (%s)", atr, f.Level(atr))
	}

	if atr > f.MaxATR {
		return fail("Volatility too high: ATR %.4f (%s)", atr, f.Level(atr))
	}

	return pass()
}
