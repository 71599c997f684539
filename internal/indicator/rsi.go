package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// RSIValues computes the Relative Strength Index with Wilder smoothing.
// The first value appears at index period. A window without losses is 100.
func RSIValues(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 1 || len(values) <= period {
		return out
	}

	var gain, loss float64

	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}

	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		g, l := 0.0, 0.0

		if change > 0 {
			g = change
		} else {
			l = -change
		}

		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return math.NaN()
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs)
}

// RSI is the registry entry for "rsi".
type RSI struct{}

func NewRSI() Indicator {
	return &RSI{}
}

func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

func (r *RSI) Outputs() []string {
	return []string{OutputValue}
}

// Calculate expects "period" (default 14).
func (r *RSI) Calculate(bars []types.Bar, params Params) (Output, error) {
	p, err := period(params, "period", 14)
	if err != nil {
		return nil, err
	}

	return Output{OutputValue: RSIValues(sourceSeries(bars, params), p)}, nil
}
