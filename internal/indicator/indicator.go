// Package indicator holds the deterministic technical-analysis functions used
// by the interpreter and mirrored by the code generator.
//
// Every function returns a series aligned with its input. Positions that do
// not yet have enough history hold NaN; nothing here returns an error because
// the history is short.
package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Output names shared by all indicators.
const (
	OutputValue     = "value"
	OutputMACD      = "macd"
	OutputSignal    = "signal"
	OutputHistogram = "histogram"
	OutputUpper     = "upper"
	OutputMiddle    = "middle"
	OutputLower     = "lower"
	OutputK         = "k"
	OutputD         = "d"
	OutputPlusDI    = "plus_di"
	OutputMinusDI   = "minus_di"
)

// Params supplies numeric node parameters. graph.Node satisfies it.
type Params interface {
	NumberOr(key string, def float64) float64
}

// MapParams is a Params backed by a plain map.
type MapParams map[string]float64

func (m MapParams) NumberOr(key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}

	return def
}

// Output is a set of named series, each as long as the input bars.
type Output map[string][]float64

// Primary returns the series an indicator node exposes when no output is
// selected: "value", or the first declared output.
func (o Output) Primary(outputs []string) []float64 {
	if v, ok := o[OutputValue]; ok {
		return v
	}

	if len(outputs) > 0 {
		return o[outputs[0]]
	}

	return nil
}

// Indicator computes one or more series from bars.
type Indicator interface {
	Name() types.IndicatorType
	// Outputs lists the output names, primary first.
	Outputs() []string
	// Calculate returns an error only for an invalid configuration.
	Calculate(bars []types.Bar, params Params) (Output, error)
}

func period(params Params, key string, def int) (int, error) {
	p := params.NumberOr(key, float64(def))
	if p < 1 || p != math.Trunc(p) {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %v", key, p)
	}

	return int(p), nil
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// At returns series[i] or NaN when i is out of range.
func At(series []float64, i int) float64 {
	if i < 0 || i >= len(series) {
		return math.NaN()
	}

	return series[i]
}
