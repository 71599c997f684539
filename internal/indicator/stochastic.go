package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// StochasticValues returns the slowed %K line and its %D average.
// A flat window (highest == lowest) gives a raw %K of 50.
func StochasticValues(bars []types.Bar, kPeriod, dPeriod, slowing int) (k, d []float64) {
	raw := nanSeries(len(bars))

	for i := kPeriod - 1; i < len(bars) && kPeriod > 0; i++ {
		highest, lowest := math.Inf(-1), math.Inf(1)
		for _, b := range bars[i-kPeriod+1 : i+1] {
			highest = math.Max(highest, b.High)
			lowest = math.Min(lowest, b.Low)
		}

		if highest == lowest {
			raw[i] = 50
		} else {
			raw[i] = (bars[i].Close - lowest) / (highest - lowest) * 100
		}
	}

	k = SMA(raw, slowing)
	d = SMA(k, dPeriod)

	return k, d
}

// Stochastic is the registry entry for "stochastic".
type Stochastic struct{}

func NewStochastic() Indicator {
	return &Stochastic{}
}

func (s *Stochastic) Name() types.IndicatorType {
	return types.IndicatorTypeStochastic
}

func (s *Stochastic) Outputs() []string {
	return []string{OutputK, OutputD}
}

// Calculate expects "kPeriod" (14), "dPeriod" (3) and "slowing" (3).
func (s *Stochastic) Calculate(bars []types.Bar, params Params) (Output, error) {
	kPeriod, err := period(params, "kPeriod", 14)
	if err != nil {
		return nil, err
	}

	dPeriod, err := period(params, "dPeriod", 3)
	if err != nil {
		return nil, err
	}

	slowing, err := period(params, "slowing", 3)
	if err != nil {
		return nil, err
	}

	k, d := StochasticValues(bars, kPeriod, dPeriod, slowing)

	return Output{OutputK: k, OutputD: d}, nil
}
