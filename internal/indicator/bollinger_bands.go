package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// BollingerValues returns bands at middle ± stdDev × population standard
// deviation over period.
func BollingerValues(values []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	middle = SMA(values, period)
	upper = nanSeries(len(values))
	lower = nanSeries(len(values))

	for i := range values {
		if math.IsNaN(middle[i]) {
			continue
		}

		variance := 0.0
		for _, v := range values[i-period+1 : i+1] {
			variance += (v - middle[i]) * (v - middle[i])
		}

		sd := math.Sqrt(variance / float64(period))
		upper[i] = middle[i] + stdDev*sd
		lower[i] = middle[i] - stdDev*sd
	}

	return upper, middle, lower
}

// BollingerBands is the registry entry for "bb".
type BollingerBands struct{}

func NewBollingerBands() Indicator {
	return &BollingerBands{}
}

func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

func (b *BollingerBands) Outputs() []string {
	return []string{OutputMiddle, OutputUpper, OutputLower}
}

// Calculate expects "period" (20) and "stdDev" (2).
func (b *BollingerBands) Calculate(bars []types.Bar, params Params) (Output, error) {
	p, err := period(params, "period", 20)
	if err != nil {
		return nil, err
	}

	stdDev := params.NumberOr("stdDev", 2)
	if stdDev <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "stdDev must be positive, got %v", stdDev)
	}

	upper, middle, lower := BollingerValues(sourceSeries(bars, params), p, stdDev)

	return Output{OutputUpper: upper, OutputMiddle: middle, OutputLower: lower}, nil
}
