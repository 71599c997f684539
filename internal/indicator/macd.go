package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// MACDValues returns the MACD line, its signal EMA and the histogram.
func MACDValues(values []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	macd = nanSeries(len(values))
	for i := range values {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			macd[i] = fastEMA[i] - slowEMA[i]
		}
	}

	sig = EMA(macd, signal)
	hist = nanSeries(len(values))

	for i := range values {
		if !math.IsNaN(macd[i]) && !math.IsNaN(sig[i]) {
			hist[i] = macd[i] - sig[i]
		}
	}

	return macd, sig, hist
}

// MACD is the registry entry for "macd".
type MACD struct{}

func NewMACD() Indicator {
	return &MACD{}
}

func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

func (m *MACD) Outputs() []string {
	return []string{OutputMACD, OutputSignal, OutputHistogram}
}

// Calculate expects "fastPeriod" (12), "slowPeriod" (26) and "signalPeriod" (9).
func (m *MACD) Calculate(bars []types.Bar, params Params) (Output, error) {
	fast, err := period(params, "fastPeriod", 12)
	if err != nil {
		return nil, err
	}

	slow, err := period(params, "slowPeriod", 26)
	if err != nil {
		return nil, err
	}

	signal, err := period(params, "signalPeriod", 9)
	if err != nil {
		return nil, err
	}

	if fast >= slow {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod (%d) must be shorter than slowPeriod (%d)", fast, slow)
	}

	macd, sig, hist := MACDValues(sourceSeries(bars, params), fast, slow, signal)

	return Output{OutputMACD: macd, OutputSignal: sig, OutputHistogram: hist}, nil
}
