package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|) per bar.
// The first bar has no previous close and uses high-low.
func TrueRange(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}

		prevClose := bars[i-1].Close
		out[i] = math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}

	return out
}

// ATRValues is the Wilder-smoothed average true range. The first value is
// the plain mean of true ranges 1..period and appears at index period.
func ATRValues(bars []types.Bar, period int) []float64 {
	out := nanSeries(len(bars))
	if period < 1 || len(bars) <= period {
		return out
	}

	tr := TrueRange(bars)

	sum := 0.0
	for _, v := range tr[1 : period+1] {
		sum += v
	}

	out[period] = sum / float64(period)

	for i := period + 1; i < len(bars); i++ {
		out[i] = (out[i-1]*float64(period-1) + tr[i]) / float64(period)
	}

	return out
}

// ATR is the registry entry for "atr".
type ATR struct{}

func NewATR() Indicator {
	return &ATR{}
}

func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

func (a *ATR) Outputs() []string {
	return []string{OutputValue}
}

// Calculate expects "period" (default 14).
func (a *ATR) Calculate(bars []types.Bar, params Params) (Output, error) {
	p, err := period(params, "period", 14)
	if err != nil {
		return nil, err
	}

	return Output{OutputValue: ATRValues(bars, p)}, nil
}
