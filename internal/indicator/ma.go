package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// SMA is the simple moving average of values over period.
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 1 {
		return out
	}

	sum := 0.0
	valid := 0

	for i, v := range values {
		if math.IsNaN(v) {
			sum, valid = 0, 0
			continue
		}

		sum += v
		valid++

		if valid > period {
			sum -= values[i-period]
			valid = period
		}

		if valid == period {
			out[i] = sum / float64(period)
		}
	}

	return out
}

// EMA is the exponential moving average seeded with the SMA of the first
// period valid values. Leading NaNs are skipped, so an EMA of another
// indicator starts as soon as that indicator does.
func EMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 1 {
		return out
	}

	k := 2 / float64(period+1)
	start := -1

	for i, v := range values {
		if !math.IsNaN(v) {
			start = i
			break
		}
	}

	if start < 0 || len(values)-start < period {
		return out
	}

	seed := 0.0
	for _, v := range values[start : start+period] {
		seed += v
	}

	prev := seed / float64(period)
	out[start+period-1] = prev

	for i := start + period; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			out[i] = prev
			continue
		}

		prev = (values[i]-prev)*k + prev
		out[i] = prev
	}

	return out
}

// MovingAverage is the registry entry for "sma" and "ema".
type MovingAverage struct {
	kind types.IndicatorType
}

func NewSMA() Indicator {
	return &MovingAverage{kind: types.IndicatorTypeSMA}
}

func NewEMA() Indicator {
	return &MovingAverage{kind: types.IndicatorTypeEMA}
}

func (m *MovingAverage) Name() types.IndicatorType {
	return m.kind
}

func (m *MovingAverage) Outputs() []string {
	return []string{OutputValue}
}

// Calculate expects "period" (default 20).
func (m *MovingAverage) Calculate(bars []types.Bar, params Params) (Output, error) {
	p, err := period(params, "period", 20)
	if err != nil {
		return nil, err
	}

	closes := sourceSeries(bars, params)
	if m.kind == types.IndicatorTypeEMA {
		return Output{OutputValue: EMA(closes, p)}, nil
	}

	return Output{OutputValue: SMA(closes, p)}, nil
}
