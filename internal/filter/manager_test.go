package filter

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/condition"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ManagerTestSuite struct {
	suite.Suite
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (suite *ManagerTestSuite) TestDisabledManagerPassesEverything() {
	m, err := NewManager(DefaultConfig())
	suite.Require().NoError(err)

	decision := m.CheckAll(Context{
		Time:       time.Date(2024, 1, 6, 3, 0, 0, 0, time.UTC),
		Symbol:     "EURUSD",
		Spread:     optional.Some(0.01),
		ATR:        optional.Some(5.0),
		OpenTrades: optional.Some(100),
	})

	suite.True(decision.Passed)
	suite.Empty(decision.Reasons)
	suite.False(m.Status()["spread"])
}

func (suite *ManagerTestSuite) TestCheckAllReportsEveryReason() {
	config := DefaultConfig()
	config.Time.Enabled = true
	config.Time.StartHour, config.Time.EndHour = 22, 2
	config.Spread.Enabled = true
	config.Volatility.Enabled = true
	config.Trend.Enabled = true
	config.MaxTrades.Enabled = true
	config.Drawdown.Enabled = true

	m, err := NewManager(config)
	suite.Require().NoError(err)

	m.Reset(10000)
	m.UpdateBalance(7000)

	decision := m.CheckAll(Context{
		Time:             at(10, 0),
		Symbol:           "EURUSD",
		Spread:           optional.Some(0.0005),
		ATR:              optional.Some(0.0001),
		ADX:              optional.Some(10.0),
		Trend:            condition.TrendSideways,
		OpenTrades:       optional.Some(5),
		DailyLossPercent: optional.Some(6.0),
	})

	suite.False(decision.Passed)
	suite.Equal([]string{
		"Outside allowed trading hours",
		"Spread too high: 5.0 pips",
		"Volatility too low: ATR 0.0001 (very_low)",
		"Trend too weak: ADX 10.0",
		"Max concurrent trades reached: 5",
		"Max drawdown exceeded: 30.0%",
		"Max daily loss exceeded: 6.0%",
	}, decision.Reasons)
}

func (suite *ManagerTestSuite) TestMissingInputsSkipGates() {
	config := DefaultConfig()
	config.Spread.Enabled = true
	config.Trend.Enabled = true

	m, err := NewManager(config)
	suite.Require().NoError(err)

	suite.True(m.CheckAll(Context{Time: at(12, 0)}).Passed)
}

func (suite *ManagerTestSuite) TestResetClearsCounters() {
	config := DefaultConfig()
	config.MaxTrades.Enabled = true
	config.MaxTrades.MaxPerDay = 1

	m, err := NewManager(config)
	suite.Require().NoError(err)

	m.RecordTrade(at(9, 0))
	suite.False(m.CheckAll(Context{Time: at(10, 0), OpenTrades: optional.Some(0)}).Passed)

	m.Reset(10000)
	suite.True(m.CheckAll(Context{Time: at(10, 0), OpenTrades: optional.Some(0)}).Passed)
}

func (suite *ManagerTestSuite) TestInvalidConfig() {
	config := DefaultConfig()
	config.Trend.RequireTrend = "diagonal"

	_, err := NewManager(config)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	config = DefaultConfig()
	config.Volatility.MaxATR = 0.0001
	suite.Error(config.Validate())

	config = DefaultConfig()
	config.Time.Timezone = "Mars/Olympus"
	suite.Error(config.Validate())
}

func (suite *ManagerTestSuite) TestYAMLKeepsDefaults() {
	config := DefaultConfig()
	err := yaml.Unmarshal([]byte("spread:\n  enabled: true\n"), &config)
	suite.Require().NoError(err)

	suite.True(config.Spread.Enabled)
	suite.Equal(DefaultMaxSpread, config.Spread.MaxSpreadPips)
	suite.Equal(25.0, config.Trend.MinADX)
	suite.NoError(config.Validate())
}
