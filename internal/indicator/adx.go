package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// ADXValues returns Wilder's Average Directional Index with the +DI and -DI
// lines. DI values start at index period, ADX at index 2×period-1.
func ADXValues(bars []types.Bar, period int) (adx, plusDI, minusDI []float64) {
	n := len(bars)
	adx, plusDI, minusDI = nanSeries(n), nanSeries(n), nanSeries(n)

	if period < 1 || n <= period {
		return adx, plusDI, minusDI
	}

	tr := TrueRange(bars)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < n; i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low

		if up > down && up > 0 {
			plusDM[i] = up
		}

		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	var sTR, sPlus, sMinus float64
	for i := 1; i <= period; i++ {
		sTR += tr[i]
		sPlus += plusDM[i]
		sMinus += minusDM[i]
	}

	dx := nanSeries(n)
	p := float64(period)

	for i := period; i < n; i++ {
		if i > period {
			sTR = sTR - sTR/p + tr[i]
			sPlus = sPlus - sPlus/p + plusDM[i]
			sMinus = sMinus - sMinus/p + minusDM[i]
		}

		if sTR > 0 {
			plusDI[i] = 100 * sPlus / sTR
			minusDI[i] = 100 * sMinus / sTR
		} else {
			plusDI[i], minusDI[i] = 0, 0
		}

		if sum := plusDI[i] + minusDI[i]; sum > 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		} else {
			dx[i] = 0
		}
	}

	first := 2*period - 1
	if n <= first {
		return adx, plusDI, minusDI
	}

	sum := 0.0
	for _, v := range dx[period : first+1] {
		sum += v
	}

	adx[first] = sum / p
	for i := first + 1; i < n; i++ {
		adx[i] = (adx[i-1]*(p-1) + dx[i]) / p
	}

	return adx, plusDI, minusDI
}

// ADX is the registry entry for "adx".
type ADX struct{}

func NewADX() Indicator {
	return &ADX{}
}

func (a *ADX) Name() types.IndicatorType {
	return types.IndicatorTypeADX
}

func (a *ADX) Outputs() []string {
	return []string{OutputValue, OutputPlusDI, OutputMinusDI}
}

// Calculate expects "period" (default 14).
func (a *ADX) Calculate(bars []types.Bar, params Params) (Output, error) {
	p, err := period(params, "period", 14)
	if err != nil {
		return nil, err
	}

	adx, plus, minus := ADXValues(bars, p)

	return Output{OutputValue: adx, OutputPlusDI: plus, OutputMinusDI: minus}, nil
}
