package commission_fee

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestZeroCommissionFee() {
	fee := NewZeroCommissionFee()
	suite.NotNil(fee)

	for _, lots := range []float64{0, 0.01, 1, 100, -1} {
		suite.Equal(0.0, fee.Calculate(lots))
	}
}

func (suite *CommissionFeeTestSuite) TestECNCommissionFee() {
	fee := NewECNCommissionFee(7)

	tests := []struct {
		name     string
		lots     float64
		expected float64
	}{
		{"zero lots", 0, 0},
		{"micro lot", 0.01, 0.14},
		{"mini lot", 0.1, 1.4},
		{"standard lot", 1, 14},
		{"negative lots", -1, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, fee.Calculate(tc.lots), 1e-9)
		})
	}

	suite.Equal(0.0, NewECNCommissionFee(0).Calculate(1))
}

func (suite *CommissionFeeTestSuite) TestGetCommissionFeeHandler() {
	tests := []struct {
		name     string
		broker   Broker
		expected float64
	}{
		{"ecn", BrokerECN, 14},
		{"zero commission", BrokerZero, 0},
		{"unknown broker defaults to zero", Broker("unknown"), 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetCommissionFeeHandler(tc.broker, 7)
			suite.NotNil(handler)
			suite.InDelta(tc.expected, handler.Calculate(1), 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestPipCost() {
	suite.InDelta(2.0, PipCost(2, 0.1, 10), 1e-9)
	suite.InDelta(10.0, PipCost(1, 1, 10), 1e-9)
	suite.Equal(0.0, PipCost(0, 1, 10))
	suite.Equal(0.0, PipCost(2, 0, 10))
}

func (suite *CommissionFeeTestSuite) TestAllBrokers() {
	suite.Len(AllBrokers, 2)
	suite.Contains(AllBrokers, BrokerECN)
	suite.Contains(AllBrokers, BrokerZero)
}
