package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// Lifecycle callback types for a backtest run.
// Callbacks returning an error abort the run.

// OnRunStartCallback is called once the strategy passed validation, before the first bar.
type OnRunStartCallback func(runID string, strategyName string, totalBars int) error

// OnRunEndCallback is called when a run finishes, successfully or not.
type OnRunEndCallback func(runID string, err error)

// OnProcessDataCallback is called after every processed bar.
type OnProcessDataCallback func(current int, total int) error

// OnSignalCallback is called for every signal the interpreter emits.
type OnSignalCallback func(signal types.Signal)

// LifecycleCallbacks holds the optional callbacks of a run.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnProcessData *OnProcessDataCallback
	OnSignal      *OnSignalCallback
}

// Result is everything a completed run produced.
type Result struct {
	RunID      string              `json:"runId" yaml:"run_id"`
	Strategy   string              `json:"strategy" yaml:"strategy"`
	Symbol     string              `json:"symbol" yaml:"symbol"`
	Bars       int                 `json:"bars" yaml:"bars"`
	StartTime  time.Time           `json:"startTime" yaml:"start_time"`
	EndTime    time.Time           `json:"endTime" yaml:"end_time"`
	Trades     []types.Trade       `json:"trades" yaml:"trades"`
	Equity     []types.EquityPoint `json:"equity" yaml:"-"`
	Signals    []types.Signal      `json:"signals" yaml:"-"`
	Metrics    types.Metrics       `json:"metrics" yaml:"metrics"`
	Statistics types.Statistics    `json:"statistics" yaml:"statistics"`
}

// Summary converts the result into the record written to stats.yaml.
func (r *Result) Summary(strategyID string) types.RunSummary {
	return types.RunSummary{
		ID:           r.RunID,
		Timestamp:    r.EndTime,
		StrategyID:   strategyID,
		StrategyName: r.Strategy,
		Symbol:       r.Symbol,
		Bars:         r.Bars,
		Metrics:      r.Metrics,
		Statistics:   r.Statistics,
	}
}

type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// Run interprets the strategy over bars. A strategy with validation
	// errors is refused with a *validator.ValidationError. Cancelling ctx
	// stops the run between bars and returns no partial result.
	Run(ctx context.Context, strategy *graph.Strategy, bars []types.Bar, callbacks LifecycleCallbacks) (*Result, error)
	// RunFile loads bars from a CSV or Parquet file through the data source
	// and runs the strategy over them.
	RunFile(ctx context.Context, strategy *graph.Strategy, dataPath string, callbacks LifecycleCallbacks) (*Result, error)
	// WriteResults exports the last run's trades, equity curve and signals
	// as Parquet files plus a stats.yaml summary into folder.
	WriteResults(folder string) (types.RunSummary, error)
	// SetDataSource sets the data source used by RunFile.
	SetDataSource(dataSource datasource.DataSource) error
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
