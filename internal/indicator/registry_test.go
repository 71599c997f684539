package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestDefaultRegistryHasBuiltins() {
	registry := NewDefaultRegistry()
	suite.Equal([]types.IndicatorType{"adx", "atr", "bb", "ema", "macd", "price", "rsi", "sma", "stochastic"}, registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestGetIndicatorResolvesAliases() {
	registry := NewDefaultRegistry()

	for _, name := range []string{"RSI", "bollinger", "Bollinger_Bands", "ma", "stoch"} {
		ind, err := registry.GetIndicator(types.IndicatorType(name))
		suite.NoError(err, name)
		suite.NotNil(ind)
	}

	_, err := registry.GetIndicator("ichimoku")
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	registry := NewIndicatorRegistry()
	suite.NoError(registry.RegisterIndicator(NewRSI()))

	err := registry.RegisterIndicator(NewRSI())
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *RegistryTestSuite) TestRemoveIndicator() {
	registry := NewDefaultRegistry()
	suite.NoError(registry.RemoveIndicator(types.IndicatorTypeADX))
	suite.NotContains(registry.ListIndicators(), types.IndicatorTypeADX)

	err := registry.RemoveIndicator(types.IndicatorTypeADX)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestCanonical() {
	suite.Equal(types.IndicatorTypeBollingerBands, Canonical(" BBands "))
	suite.Equal(types.IndicatorType("custom"), Canonical("Custom"))
}
