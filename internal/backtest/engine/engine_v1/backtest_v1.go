package engine

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/cache"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-strategy/internal/condition"
	"github.com/rxtech-lab/argo-strategy/internal/filter"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/indicator"
	"github.com/rxtech-lab/argo-strategy/internal/logger"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/internal/utils"
	"github.com/rxtech-lab/argo-strategy/internal/validator"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// BacktestEngineV1 interprets strategy graphs over historical bars. It keeps
// the trades, equity curve and signals of the last run until the next one
// starts. It is not safe for concurrent use; run one engine per goroutine.
type BacktestEngineV1 struct {
	config     BacktestEngineV1Config
	log        *logger.Logger
	registry   indicator.IndicatorRegistry
	validator  *validator.Validator
	state      *BacktestState
	signalLog  *BacktestSignalLog
	datasource datasource.DataSource
	cache      cache.Cache
	version    uint64

	last         *engine.Result
	lastStrategy *graph.Strategy
	lastDataPath string
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config: EmptyConfig(),
		cache:  cache.NewCacheV1(),
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	b.config = DefaultConfig()

	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}

	if err := b.config.Validate(); err != nil {
		return err
	}

	// fail early on an invalid filter section
	if _, err := filter.NewManager(b.config.Filters); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid filter config", err)
	}

	var err error

	b.log, err = logger.NewLogger()
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
	}

	b.log.Debug("Backtest engine initialized",
		zap.String("config", config),
	)

	b.registry = indicator.NewDefaultRegistry()
	b.validator = validator.NewWithRegistry(b.registry)

	b.state, err = NewBacktestState(b.log)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create backtest state", err)
	}

	if err := b.state.Initialize(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to initialize state", err)
	}

	b.signalLog, err = NewBacktestSignalLog(b.log)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create signal log", err)
	}

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(datasource datasource.DataSource) error {
	b.datasource = datasource

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	schema, err := b.config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to generate schema", err)
	}

	return schema, nil
}

// RunFile implements engine.Engine.
func (b *BacktestEngineV1) RunFile(ctx context.Context, strategy *graph.Strategy, dataPath string, callbacks engine.LifecycleCallbacks) (*engine.Result, error) {
	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	if b.datasource == nil {
		ds, err := datasource.NewDataSource(":memory:", b.log)
		if err != nil {
			return nil, err
		}

		b.datasource = ds
	}

	if err := b.datasource.Initialize(dataPath); err != nil {
		b.log.Error("Failed to load data",
			zap.String("data", dataPath),
			zap.Error(err),
		)

		return nil, err
	}

	symbol := b.config.Symbol
	if symbol == "" {
		symbols, err := b.datasource.Symbols()
		if err != nil {
			return nil, err
		}

		if len(symbols) == 0 {
			return nil, errors.Newf(errors.ErrCodeBacktestNoData, "no bars in %s", dataPath)
		}

		symbol = symbols[0]
	}

	bars, err := datasource.LoadBars(b.datasource, optional.Some(symbol), b.config.Start, b.config.End)
	if err != nil {
		return nil, err
	}

	result, err := b.Run(ctx, strategy, bars, callbacks)
	if err != nil {
		return nil, err
	}

	b.lastDataPath = dataPath

	return result, nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, strategy *graph.Strategy, bars []types.Bar, callbacks engine.LifecycleCallbacks) (result *engine.Result, err error) {
	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	if err := b.validator.Validate(strategy).Err(); err != nil {
		b.log.Warn("Strategy refused",
			zap.String("strategy", strategy.Name),
			zap.Error(err),
		)

		return nil, err
	}

	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeBacktestNoData, "no bars to run the strategy on")
	}

	runID := uuid.New().String()

	if callbacks.OnRunEnd != nil {
		defer func() {
			(*callbacks.OnRunEnd)(runID, err)
		}()
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, strategy.Name, len(bars)); err != nil {
			return nil, err
		}
	}

	if err := b.cleanUpRun(); err != nil {
		return nil, err
	}

	r, err := b.newRun(runID, strategy, bars, callbacks)
	if err != nil {
		return nil, err
	}

	if err := r.execute(ctx); err != nil {
		return nil, err
	}

	result = r.result()

	if err := b.state.RecordTrades(result.Trades); err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to record trades", err)
	}

	if err := b.state.RecordEquity(result.Equity); err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to record equity", err)
	}

	b.last = result
	b.lastStrategy = strategy
	b.lastDataPath = ""

	b.log.Info("Backtest finished",
		zap.String("run_id", runID),
		zap.String("strategy", strategy.Name),
		zap.Int("bars", len(bars)),
		zap.Int("trades", result.Metrics.TotalTrades),
		zap.Float64("final_balance", result.Metrics.FinalBalance),
	)

	return result, nil
}

// WriteResults implements engine.Engine.
func (b *BacktestEngineV1) WriteResults(folder string) (types.RunSummary, error) {
	if b.last == nil {
		return types.RunSummary{}, errors.New(errors.ErrCodeBacktestNotReady, "no completed run to write")
	}

	path := getResultFolder(folder, b.lastDataPath, b, b.lastStrategy)

	tradesPath, equityPath, err := b.state.Write(path)
	if err != nil {
		return types.RunSummary{}, err
	}

	signalsPath, err := b.signalLog.Write(path)
	if err != nil {
		return types.RunSummary{}, err
	}

	summary := b.last.Summary(b.lastStrategy.ID)
	summary.TradesFilePath = tradesPath
	summary.EquityFilePath = equityPath
	summary.SignalsFilePath = signalsPath
	summary.DataPath = b.lastDataPath

	if err := types.WriteRunSummaries(filepath.Join(path, "stats.yaml"), []types.RunSummary{summary}); err != nil {
		return types.RunSummary{}, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write stats", err)
	}

	b.log.Debug("Results written",
		zap.String("run_id", summary.ID),
		zap.String("folder", path),
	)

	return summary, nil
}

func (b *BacktestEngineV1) cleanUpRun() error {
	if err := b.state.Cleanup(); err != nil {
		return err
	}

	if err := b.signalLog.Cleanup(); err != nil {
		return err
	}

	b.cache.Reset()
	b.last = nil
	b.lastStrategy = nil

	return nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if b.log == nil || b.state == nil || b.signalLog == nil {
		return errors.New(errors.ErrCodeBacktestNotReady, "engine is not initialized")
	}

	return nil
}

// run is the mutable state of one pass over the bars.
type run struct {
	engine    *BacktestEngineV1
	id        string
	strategy  *graph.Strategy
	bars      []types.Bar
	closes    []float64
	symbol    string
	callbacks engine.LifecycleCallbacks

	interpreter *Interpreter
	ledger      *BacktestTrading
	filters     *filter.Manager
	equity      *EquityTracker
	adx         []float64

	signals []types.Signal
	blocked int
}

func (b *BacktestEngineV1) newRun(id string, strategy *graph.Strategy, bars []types.Bar, callbacks engine.LifecycleCallbacks) (*run, error) {
	it, err := NewInterpreter(strategy, b.registry, b.cache)
	if err != nil {
		return nil, err
	}

	b.version++
	if err := it.Load(bars, b.version); err != nil {
		return nil, err
	}

	filters, err := filter.NewManager(b.config.Filters)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid filter config", err)
	}

	filters.Reset(b.config.InitialBalance)

	r := &run{
		engine:      b,
		id:          id,
		strategy:    strategy,
		bars:        bars,
		closes:      make([]float64, len(bars)),
		symbol:      bars[0].Symbol,
		callbacks:   callbacks,
		interpreter: it,
		ledger:      NewBacktestTrading(b.config),
		filters:     filters,
		equity:      NewEquityTracker(b.config.InitialBalance),
	}

	if r.symbol == "" {
		r.symbol = b.config.Symbol
	}

	for i, bar := range bars {
		r.closes[i] = bar.Close
	}

	if trend := b.config.Filters.Trend; trend.Enabled {
		adx, err := b.registry.GetIndicator(types.IndicatorTypeADX)
		if err != nil {
			return nil, err
		}

		output, err := adx.Calculate(bars, indicator.MapParams{"period": float64(trend.ADXPeriod)})
		if err != nil {
			return nil, err
		}

		r.adx = output.Primary(adx.Outputs())
	}

	return r, nil
}

// execute walks the bars. On every bar stop-loss and take-profit exits are
// settled first and the stops of the surviving positions are trailed to the
// close, then the graph is evaluated, close actions run before
// entries, and the equity curve is sampled at the close. Positions still
// open on the last bar are closed at its close.
func (r *run) execute(ctx context.Context) error {
	last := len(r.bars) - 1

	for i, bar := range r.bars {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", err)
		}

		for _, trade := range r.ledger.CheckExits(bar) {
			if err := r.emitClose(trade, ""); err != nil {
				return err
			}
		}

		r.ledger.ManageStops(bar)

		dailyLoss := r.ledger.DailyLossPercent(bar.Time, bar.Close)

		actions, err := r.interpreter.Step(i)
		if err != nil {
			return err
		}

		for _, a := range actions {
			if a.Type != "close" {
				continue
			}

			for _, trade := range r.ledger.CloseAll(bar.Time, bar.Close, types.ExitReasonSignal) {
				if err := r.emitClose(trade, a.Node.ID); err != nil {
					return err
				}
			}
		}

		for _, a := range actions {
			if a.Type != "buy" && a.Type != "sell" {
				continue
			}

			if err := r.enter(i, a, dailyLoss); err != nil {
				return err
			}
		}

		if i == last {
			for _, trade := range r.ledger.CloseAll(bar.Time, bar.Close, types.ExitReasonEndOfData) {
				if err := r.emitClose(trade, ""); err != nil {
					return err
				}
			}
		}

		r.equity.Record(bar.Time, r.ledger.Balance(), r.ledger.Equity(bar.Close))
		r.filters.UpdateBalance(r.ledger.Balance())

		if r.callbacks.OnProcessData != nil {
			if err := (*r.callbacks.OnProcessData)(i+1, len(r.bars)); err != nil {
				return err
			}
		}
	}

	r.engine.log.Debug("Run complete",
		zap.String("run_id", r.id),
		zap.Float64("balance", r.ledger.Balance()),
		zap.Int("signals", len(r.signals)),
	)

	return nil
}

func (r *run) enter(i int, a Action, dailyLoss float64) error {
	bar := r.bars[i]

	// one open position per action node
	if r.ledger.HasPosition(a.Node.ID) {
		return nil
	}

	decision := r.filters.CheckAll(r.filterContext(i, dailyLoss))
	if !decision.Passed {
		return r.emitBlocked(bar, a, strings.Join(decision.Reasons, "; "))
	}

	side, signalType := types.TradeTypeBuy, types.SignalTypeBuy
	if a.Type == "sell" {
		side, signalType = types.TradeTypeSell, types.SignalTypeSell
	}

	lots := r.engine.config.Lots

	switch {
	case a.Lots.IsSome():
		lots = a.Lots.Unwrap()
	case a.RiskPercent.IsSome() && a.StopLossPips.IsSome():
		lots = min(
			utils.CalculateLotsForRisk(r.ledger.Balance(), a.RiskPercent.Unwrap(), a.StopLossPips.Unwrap(), r.engine.config.PipValue),
			r.ledger.MaxLots(bar.Close),
		)
		if lots < utils.LotStep {
			return r.emitBlocked(bar, a, fmt.Sprintf("risking %.2f%% over %.1f pips is below the minimum lot size", a.RiskPercent.Unwrap(), a.StopLossPips.Unwrap()))
		}
	}

	_, err := r.ledger.Open(OrderRequest{
		NodeID:         a.Node.ID,
		Type:           side,
		Symbol:         r.symbol,
		Time:           bar.Time,
		Price:          bar.Close,
		Lots:           lots,
		StopLossPips:   a.StopLossPips,
		TakeProfitPips: a.TakeProfitPips,
		TrailingStop:   a.TrailingStop,
		BreakEven:      a.BreakEven,
	})
	if err != nil {
		return r.emitBlocked(bar, a, err.Error())
	}

	r.filters.RecordTrade(bar.Time)

	return r.emit(types.Signal{
		Time:   bar.Time,
		Type:   signalType,
		Symbol: r.symbol,
		NodeID: a.Node.ID,
		Reason: a.Reason,
	})
}

func (r *run) filterContext(i int, dailyLoss float64) filter.Context {
	bar := r.bars[i]
	config := r.engine.config.Filters

	ctx := filter.Context{
		Time:             bar.Time,
		Symbol:           r.symbol,
		Spread:           optional.Some(r.engine.config.Spread * filter.PipSize(r.symbol)),
		ATR:              optional.None[float64](),
		ADX:              optional.None[float64](),
		Trend:            condition.TrendSideways,
		OpenTrades:       optional.Some(r.ledger.OpenCount()),
		DailyLossPercent: optional.Some(dailyLoss),
	}

	// ATR is unknown during warmup; afterwards a flat window is a real zero
	if volatility := r.filters.Volatility(); config.Volatility.Enabled && i+1 > volatility.Period {
		ctx.ATR = optional.Some(volatility.ATR(r.bars[:i+1]))
	}

	if config.Trend.Enabled {
		if adx := indicator.At(r.adx, i); !math.IsNaN(adx) {
			ctx.ADX = optional.Some(adx)
		}

		ctx.Trend = condition.TrendOf(r.closes[:i+1], config.Trend.SlopePeriod, condition.DefaultTrendBand)
	}

	return ctx
}

func (r *run) emitBlocked(bar types.Bar, a Action, reason string) error {
	r.blocked++

	return r.emit(types.Signal{
		Time:   bar.Time,
		Type:   types.SignalTypeBlocked,
		Symbol: r.symbol,
		NodeID: a.Node.ID,
		Reason: reason,
	})
}

func (r *run) emitClose(trade types.Trade, nodeID string) error {
	return r.emit(types.Signal{
		Time:   trade.ExitTime,
		Type:   types.SignalTypeClose,
		Symbol: trade.Symbol,
		NodeID: nodeID,
		Reason: string(trade.Reason),
	})
}

func (r *run) emit(signal types.Signal) error {
	r.signals = append(r.signals, signal)

	if err := r.engine.signalLog.Log(signal); err != nil {
		return err
	}

	if r.callbacks.OnSignal != nil {
		(*r.callbacks.OnSignal)(signal)
	}

	return nil
}

func (r *run) result() *engine.Result {
	config := r.engine.config
	trades := r.ledger.Trades()
	points := r.equity.Points()

	return &engine.Result{
		RunID:      r.id,
		Strategy:   r.strategy.Name,
		Symbol:     r.symbol,
		Bars:       len(r.bars),
		StartTime:  r.bars[0].Time,
		EndTime:    r.bars[len(r.bars)-1].Time,
		Trades:     trades,
		Equity:     points,
		Signals:    r.signals,
		Metrics:    CalculateMetrics(trades, points, config.InitialBalance, r.ledger.Balance()),
		Statistics: CalculateStatistics(trades, r.blocked),
	}
}
