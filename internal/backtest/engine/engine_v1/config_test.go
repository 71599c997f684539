package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"github.com/stretchr/testify/suite"
	yamlv2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestEmptyConfig() {
	config := EmptyConfig()

	suite.Equal(0.0, config.InitialBalance)
	suite.Equal(commission_fee.BrokerECN, config.Broker)
	suite.True(config.Start.IsNone())
	suite.True(config.End.IsNone())
	suite.False(config.Filters.Time.Enabled)
}

func (suite *ConfigTestSuite) TestDefaultConfig() {
	config := DefaultConfig()

	suite.Equal(10000.0, config.InitialBalance)
	suite.Equal(100.0, config.Leverage)
	suite.Equal(2.0, config.Spread)
	suite.Equal(7.0, config.Commission)
	suite.Equal(1.0, config.Slippage)
	suite.Equal(0.1, config.Lots)
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestTestConfig() {
	startTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	config := TestConfig(startTime, endTime, commission_fee.BrokerZero)

	suite.Equal(10000.0, config.InitialBalance)
	suite.Equal(commission_fee.BrokerZero, config.Broker)
	suite.Equal(startTime, config.Start.Unwrap())
	suite.Equal(endTime, config.End.Unwrap())
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := &BacktestEngineV1Config{}
	schema, err := config.GenerateSchema()

	suite.NoError(err)
	suite.NotNil(schema)
	suite.Equal("backtest-engine-v1-config", schema.Title)
	suite.Equal("Configuration schema for BacktestEngineV1", schema.Description)
	suite.Equal("http://json-schema.org/draft-07/schema#", schema.Version)
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := DefaultConfig()
	schemaJSON, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	var result map[string]interface{}
	suite.Require().NoError(json.Unmarshal([]byte(schemaJSON), &result))
	suite.Equal("backtest-engine-v1-config", result["title"])

	properties, ok := result["properties"].(map[string]interface{})
	suite.Require().True(ok)
	suite.Contains(properties, "initial_balance")
	suite.Contains(properties, "filters")

	startTime, ok := properties["start_time"].(map[string]interface{})
	suite.Require().True(ok)
	suite.Equal("date-time", startTime["format"])

	broker, ok := properties["broker"].(map[string]interface{})
	suite.Require().True(ok)
	suite.Len(broker["enum"], 2)
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLComplete() {
	yamlData := `
initial_balance: 50000
leverage: 50
spread: 1.5
commission: 3.5
slippage: 0
lots: 1
pip_value: 10
broker: zero_commission
symbol: GBPUSD
start_time: 2023-01-01T00:00:00Z
end_time: 2023-12-31T00:00:00Z
filters:
  time:
    enabled: true
    start_hour: 8
    end_hour: 17
    allowed_days: [1, 2, 3, 4, 5]
    timezone: UTC
`

	var config BacktestEngineV1Config
	suite.Require().NoError(yaml.Unmarshal([]byte(yamlData), &config))

	suite.Equal(50000.0, config.InitialBalance)
	suite.Equal(50.0, config.Leverage)
	suite.Equal(1.5, config.Spread)
	suite.Equal(3.5, config.Commission)
	suite.Equal(0.0, config.Slippage)
	suite.Equal(1.0, config.Lots)
	suite.Equal(commission_fee.BrokerZero, config.Broker)
	suite.Equal("GBPUSD", config.Symbol)
	suite.Equal(time.January, config.Start.Unwrap().Month())
	suite.Equal(31, config.End.Unwrap().Day())
	suite.True(config.Filters.Time.Enabled)
	suite.Equal(8, config.Filters.Time.StartHour)
	// untouched sections keep their defaults
	suite.Equal(14, config.Filters.Volatility.ATRPeriod)
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLPartialKeepsDefaults() {
	var config BacktestEngineV1Config
	suite.Require().NoError(yaml.Unmarshal([]byte("initial_balance: 25000\n"), &config))

	suite.Equal(25000.0, config.InitialBalance)
	suite.Equal(100.0, config.Leverage)
	suite.Equal(2.0, config.Spread)
	suite.Equal(7.0, config.Commission)
	suite.Equal(commission_fee.BrokerECN, config.Broker)
	suite.True(config.Start.IsNone())
	suite.True(config.End.IsNone())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLv2() {
	yamlData := `
initial_balance: 20000
start_time: 2024-06-01T00:00:00Z
`

	var config BacktestEngineV1Config
	suite.Require().NoError(yamlv2.Unmarshal([]byte(yamlData), &config))

	suite.Equal(20000.0, config.InitialBalance)
	suite.True(config.Start.IsSome())
	suite.True(config.End.IsNone())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLInvalid() {
	var config BacktestEngineV1Config
	err := yaml.Unmarshal([]byte("initial_balance: not_a_number\n"), &config)

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestMarshalRoundTripKeepsTimes() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	config := DefaultConfig()
	config.Start = optional.Some(start)

	data, err := yaml.Marshal(config)
	suite.Require().NoError(err)
	suite.Contains(string(data), "start_time: 2024-01-01T00:00:00Z")
	suite.NotContains(string(data), "end_time")

	var decoded BacktestEngineV1Config
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.True(start.Equal(decoded.Start.Unwrap()))
}

func (suite *ConfigTestSuite) TestValidate() {
	tests := []struct {
		name   string
		mutate func(c *BacktestEngineV1Config)
	}{
		{"zero balance", func(c *BacktestEngineV1Config) { c.InitialBalance = 0 }},
		{"leverage below one", func(c *BacktestEngineV1Config) { c.Leverage = 0.5 }},
		{"negative spread", func(c *BacktestEngineV1Config) { c.Spread = -1 }},
		{"zero lots", func(c *BacktestEngineV1Config) { c.Lots = 0 }},
		{"bad filter hour", func(c *BacktestEngineV1Config) { c.Filters.Time.StartHour = 30 }},
		{"end before start", func(c *BacktestEngineV1Config) {
			c.Start = optional.Some(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
			c.End = optional.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := DefaultConfig()
			tc.mutate(&config)

			err := config.Validate()
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeBacktestConfigError))
		})
	}
}
