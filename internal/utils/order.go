package utils

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/commission_fee"
)

// LotStep is the smallest tradable lot increment.
const LotStep = 0.01

// lotPrecision is the number of decimals of LotStep.
const lotPrecision = 2

// CalculateMaxLots returns the largest position whose margin and commission
// fit in freeMargin, rounded down to LotStep.
func CalculateMaxLots(freeMargin float64, marginPerLot float64, commissionFee commission_fee.CommissionFee) float64 {
	if freeMargin <= 0 || marginPerLot <= 0 {
		return 0
	}

	lots := freeMargin / marginPerLot

	// commission grows with size, so shrink until the total fits
	for i := 0; i < 10; i++ {
		total := lots*marginPerLot + commissionFee.Calculate(lots)
		if total <= freeMargin {
			break
		}

		lots *= freeMargin / total
	}

	return RoundToDecimalPrecision(lots, lotPrecision)
}

// CalculateLotsForRisk sizes a position so that hitting a stop stopLossPips
// away loses riskPercent of balance. The result is rounded down to LotStep.
func CalculateLotsForRisk(balance float64, riskPercent float64, stopLossPips float64, pipValue float64) float64 {
	if balance <= 0 || riskPercent <= 0 || stopLossPips <= 0 || pipValue <= 0 {
		return 0
	}

	return RoundToDecimalPrecision(balance*riskPercent/100/(stopLossPips*pipValue), lotPrecision)
}

// RoundToDecimalPrecision rounds quantity down to decimalPrecision decimals.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	multiplier := math.Pow10(decimalPrecision)

	// the epsilon keeps 0.29999999 from flooring to 0.29
	return math.Floor(quantity*multiplier+1e-9) / multiplier
}
