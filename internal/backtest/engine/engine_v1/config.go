package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-strategy/internal/filter"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Defaults applied to every field a config file leaves out.
const (
	DefaultInitialBalance = 10000
	DefaultLeverage       = 100
	DefaultSpreadPips     = 2
	DefaultCommission     = 7
	DefaultSlippagePips   = 1
	DefaultLots           = 0.1
	// DefaultPipValue is the account-currency value of one pip on one standard lot.
	DefaultPipValue = 10
)

type BacktestEngineV1Config struct {
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance" validate:"gt=0" jsonschema:"title=Initial Balance,description=Starting balance of the account,exclusiveMinimum=0,default=10000"`
	Leverage       float64 `yaml:"leverage" json:"leverage" validate:"gte=1" jsonschema:"title=Leverage,minimum=1,default=100"`
	// Spread, in pips, paid on every entry.
	Spread float64 `yaml:"spread" json:"spread" validate:"gte=0" jsonschema:"title=Spread,description=Spread in pips charged on entry,minimum=0,default=2"`
	// Commission per lot per side.
	Commission float64 `yaml:"commission" json:"commission" validate:"gte=0" jsonschema:"title=Commission,description=Commission per lot per side,minimum=0,default=7"`
	// Slippage, in pips, paid on every entry.
	Slippage float64                    `yaml:"slippage" json:"slippage" validate:"gte=0" jsonschema:"title=Slippage,description=Slippage in pips charged on entry,minimum=0,default=1"`
	Lots     float64                    `yaml:"lots" json:"lots" validate:"gt=0" jsonschema:"title=Lots,description=Position size used when an action has no lots parameter,exclusiveMinimum=0,default=0.1"`
	PipValue float64                    `yaml:"pip_value" json:"pip_value" validate:"gt=0" jsonschema:"title=Pip Value,description=Value of one pip on one lot,exclusiveMinimum=0,default=10"`
	Broker   commission_fee.Broker      `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	Symbol   string                     `yaml:"symbol" json:"symbol,omitempty" jsonschema:"title=Symbol,description=Symbol to read from multi-symbol data files"`
	Start    optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	End      optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	Filters  filter.Config              `yaml:"filters" json:"filters" jsonschema:"title=Filters,description=Entry filters applied before every new position"`
}

// configFile is the on-disk shape. Missing keys keep the value the struct held
// before decoding.
type configFile struct {
	InitialBalance float64               `yaml:"initial_balance"`
	Leverage       float64               `yaml:"leverage"`
	Spread         float64               `yaml:"spread"`
	Commission     float64               `yaml:"commission"`
	Slippage       float64               `yaml:"slippage"`
	Lots           float64               `yaml:"lots"`
	PipValue       float64               `yaml:"pip_value"`
	Broker         commission_fee.Broker `yaml:"broker"`
	Symbol         string                `yaml:"symbol,omitempty"`
	StartTime      *time.Time            `yaml:"start_time,omitempty"`
	EndTime        *time.Time            `yaml:"end_time,omitempty"`
	Filters        filter.Config         `yaml:"filters"`
}

func (c BacktestEngineV1Config) toFile() configFile {
	file := configFile{
		InitialBalance: c.InitialBalance,
		Leverage:       c.Leverage,
		Spread:         c.Spread,
		Commission:     c.Commission,
		Slippage:       c.Slippage,
		Lots:           c.Lots,
		PipValue:       c.PipValue,
		Broker:         c.Broker,
		Symbol:         c.Symbol,
		Filters:        c.Filters,
	}

	if c.Start.IsSome() {
		start := c.Start.Unwrap()
		file.StartTime = &start
	}

	if c.End.IsSome() {
		end := c.End.Unwrap()
		file.EndTime = &end
	}

	return file
}

// UnmarshalYAML overlays the document on DefaultConfig so partial files keep
// the defaults of every key they omit.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	config := DefaultConfig().toFile()
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialBalance = config.InitialBalance
	c.Leverage = config.Leverage
	c.Spread = config.Spread
	c.Commission = config.Commission
	c.Slippage = config.Slippage
	c.Lots = config.Lots
	c.PipValue = config.PipValue
	c.Broker = config.Broker
	c.Symbol = config.Symbol
	c.Filters = config.Filters
	c.Start = optional.None[time.Time]()
	c.End = optional.None[time.Time]()

	if config.StartTime != nil {
		c.Start = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.End = optional.Some(*config.EndTime)
	}

	return nil
}

// MarshalYAML writes the optional times as plain timestamps.
func (c BacktestEngineV1Config) MarshalYAML() (interface{}, error) {
	return c.toFile(), nil
}

// Validate checks every numeric bound, the filter section and the time range.
func (c BacktestEngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest configuration", err)
	}

	if c.Start.IsSome() && c.End.IsSome() && c.End.Unwrap().Before(c.Start.Unwrap()) {
		return errors.New(errors.ErrCodeBacktestConfigError, "end_time is before start_time")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns the account and cost defaults with every filter disabled.
func DefaultConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialBalance: DefaultInitialBalance,
		Leverage:       DefaultLeverage,
		Spread:         DefaultSpreadPips,
		Commission:     DefaultCommission,
		Slippage:       DefaultSlippagePips,
		Lots:           DefaultLots,
		PipValue:       DefaultPipValue,
		Broker:         commission_fee.BrokerECN,
		Start:          optional.None[time.Time](),
		End:            optional.None[time.Time](),
		Filters:        filter.DefaultConfig(),
	}
}

// TestConfig is DefaultConfig restricted to a time range and broker.
func TestConfig(startTime time.Time, endTime time.Time, broker commission_fee.Broker) BacktestEngineV1Config {
	config := DefaultConfig()
	config.Broker = broker
	config.Start = optional.Some(startTime)
	config.End = optional.Some(endTime)

	return config
}

// EmptyConfig returns a BacktestEngineV1Config with only the broker and
// filter defaults set. It is what an engine holds before Initialize.
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Broker:  commission_fee.BrokerECN,
		Start:   optional.None[time.Time](),
		End:     optional.None[time.Time](),
		Filters: filter.DefaultConfig(),
	}
}
