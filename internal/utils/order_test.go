package utils

import (
	"testing"

	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestCalculateMaxLots() {
	tests := []struct {
		name          string
		freeMargin    float64
		marginPerLot  float64
		commissionFee commission_fee.CommissionFee
		expectedLots  float64
	}{
		{
			name:          "No commission",
			freeMargin:    10000,
			marginPerLot:  1000,
			commissionFee: commission_fee.NewZeroCommissionFee(),
			expectedLots:  10,
		},
		{
			name:          "Commission shrinks the position",
			freeMargin:    10000,
			marginPerLot:  1000,
			commissionFee: commission_fee.NewECNCommissionFee(7),
			expectedLots:  9.86,
		},
		{
			name:          "Zero margin",
			freeMargin:    0,
			marginPerLot:  1000,
			commissionFee: commission_fee.NewZeroCommissionFee(),
			expectedLots:  0,
		},
		{
			name:          "Negative margin",
			freeMargin:    -50,
			marginPerLot:  1000,
			commissionFee: commission_fee.NewZeroCommissionFee(),
			expectedLots:  0,
		},
		{
			name:          "Zero margin per lot",
			freeMargin:    1000,
			marginPerLot:  0,
			commissionFee: commission_fee.NewZeroCommissionFee(),
			expectedLots:  0,
		},
		{
			name:          "Less than a lot",
			freeMargin:    250,
			marginPerLot:  1000,
			commissionFee: commission_fee.NewZeroCommissionFee(),
			expectedLots:  0.25,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			lots := CalculateMaxLots(tt.freeMargin, tt.marginPerLot, tt.commissionFee)
			suite.InDelta(tt.expectedLots, lots, 1e-9)

			if lots > 0 {
				total := lots*tt.marginPerLot + tt.commissionFee.Calculate(lots)
				suite.LessOrEqual(total, tt.freeMargin)
			}
		})
	}
}

func (suite *UtilsTestSuite) TestCalculateLotsForRisk() {
	tests := []struct {
		name         string
		balance      float64
		riskPercent  float64
		stopLossPips float64
		pipValue     float64
		expectedLots float64
	}{
		{name: "One percent over fifty pips", balance: 10000, riskPercent: 1, stopLossPips: 50, pipValue: 10, expectedLots: 0.2},
		{name: "Rounded down to the lot step", balance: 10000, riskPercent: 1, stopLossPips: 30, pipValue: 10, expectedLots: 0.33},
		{name: "Two percent over twenty pips", balance: 5000, riskPercent: 2, stopLossPips: 20, pipValue: 10, expectedLots: 0.5},
		{name: "Too small for a lot step", balance: 100, riskPercent: 0.5, stopLossPips: 100, pipValue: 10, expectedLots: 0},
		{name: "No stop", balance: 10000, riskPercent: 1, stopLossPips: 0, pipValue: 10, expectedLots: 0},
		{name: "No risk", balance: 10000, riskPercent: 0, stopLossPips: 50, pipValue: 10, expectedLots: 0},
		{name: "Empty account", balance: 0, riskPercent: 1, stopLossPips: 50, pipValue: 10, expectedLots: 0},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.InDelta(tt.expectedLots, CalculateLotsForRisk(tt.balance, tt.riskPercent, tt.stopLossPips, tt.pipValue), 1e-9)
		})
	}
}

func (suite *UtilsTestSuite) TestRoundToDecimalPrecision() {
	tests := []struct {
		name      string
		quantity  float64
		precision int
		expected  float64
	}{
		{name: "Two decimals", quantity: 1.23456, precision: 2, expected: 1.23},
		{name: "Never rounds up", quantity: 0.999, precision: 2, expected: 0.99},
		{name: "Float noise", quantity: 0.3, precision: 2, expected: 0.3},
		{name: "Whole numbers", quantity: 7.9, precision: 0, expected: 7},
		{name: "Zero", quantity: 0, precision: 2, expected: 0},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.InDelta(tt.expected, RoundToDecimalPrecision(tt.quantity, tt.precision), 1e-12)
		})
	}
}
