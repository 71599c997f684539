package engine

import (
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/cache"
	"github.com/rxtech-lab/argo-strategy/internal/condition"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/indicator"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Action is an action node that fired on the current bar.
type Action struct {
	Node graph.Node
	// Type is buy, sell or close.
	Type string
	Lots optional.Option[float64]
	// StopLossPips and TakeProfitPips come from the action parameters or,
	// when absent there, from the risk nodes feeding the action.
	StopLossPips   optional.Option[float64]
	TakeProfitPips optional.Option[float64]
	// RiskPercent sizes the position from the stop distance when Lots is unset.
	RiskPercent optional.Option[float64]
	// TrailingStop and BreakEven come from the risk nodes feeding the action.
	TrailingStop optional.Option[graph.TrailingStop]
	BreakEven    optional.Option[graph.BreakEven]
	Reason       string
}

// Interpreter evaluates a strategy graph bar by bar.
//
// Numeric nodes (indicators, constants and anything forwarding them) produce
// full-length series that are computed once per data set and cached. Boolean
// nodes are re-evaluated on every bar in topological order. An action fires
// when every boolean value reaching it is true.
type Interpreter struct {
	strategy *graph.Strategy
	index    *graph.Index
	order    []string
	registry indicator.IndicatorRegistry
	cache    cache.Cache

	version uint64
	bars    []types.Bar
	closes  []float64
	numeric map[string][]float64

	flags map[string]bool
}

// NewInterpreter prepares strategy for evaluation. It fails on a cycle and
// on risk or money management subtypes it cannot execute.
func NewInterpreter(strategy *graph.Strategy, registry indicator.IndicatorRegistry, c cache.Cache) (*Interpreter, error) {
	for _, n := range strategy.Nodes {
		if n.Category != graph.CategoryRisk && n.Category != graph.CategoryMoneyManagement {
			continue
		}

		if _, ok := n.RiskRule(); !ok {
			return nil, errors.Newf(errors.ErrCodeStrategyInvalid, "%s node %s has unsupported subtype %q", n.Category, n.ID, n.RiskSubtype())
		}
	}

	index := graph.NewIndex(strategy)

	order, err := index.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	return &Interpreter{
		strategy: strategy,
		index:    index,
		order:    order,
		registry: registry,
		cache:    c,
		flags:    make(map[string]bool, len(order)),
	}, nil
}

// Load binds the interpreter to bars and computes every indicator series.
// version identifies the data set in the cache; loading a new version drops
// the series of the previous one.
func (it *Interpreter) Load(bars []types.Bar, version uint64) error {
	if it.bars != nil && it.version != version {
		it.cache.Invalidate(it.version)
	}

	it.bars = bars
	it.version = version
	it.numeric = make(map[string][]float64)

	it.closes = make([]float64, len(bars))
	for i, b := range bars {
		it.closes[i] = b.Close
	}

	for _, n := range it.index.NodesByCategory(graph.CategoryIndicator) {
		if _, err := it.indicatorOutput(n); err != nil {
			return err
		}
	}

	return nil
}

// Bars returns the bars of the loaded data set.
func (it *Interpreter) Bars() []types.Bar {
	return it.bars
}

// Series returns the full series an indicator node exposes on handle, or
// its primary output when handle is empty.
func (it *Interpreter) Series(nodeID string, handle string) []float64 {
	return it.numericOf(nodeID, handle, map[string]bool{})
}

func (it *Interpreter) indicatorOutput(n graph.Node) (indicator.Output, error) {
	key := cache.Key{NodeID: n.ID, Version: it.version}
	if output, ok := it.cache.Get(key); ok {
		return output, nil
	}

	ind, err := it.registry.GetIndicator(indicator.Canonical(n.IndicatorType()))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeIndicatorNotFound, err, "indicator node %s", n.ID)
	}

	output, err := ind.Calculate(it.bars, n)
	if err != nil {
		return nil, errors.Wrapf(errors.GetCode(err), err, "failed to calculate indicator node %s", n.ID)
	}

	it.cache.Set(key, output)

	return output, nil
}

// numericOf resolves the series a node produces on handle. Nodes that
// produce no number yield nil.
func (it *Interpreter) numericOf(nodeID string, handle string, visiting map[string]bool) []float64 {
	n, ok := it.index.Node(nodeID)
	if !ok || visiting[nodeID] {
		return nil
	}

	switch n.Category {
	case graph.CategoryIndicator:
		output, err := it.indicatorOutput(n)
		if err != nil {
			return nil
		}

		ind, err := it.registry.GetIndicator(indicator.Canonical(n.IndicatorType()))
		if err != nil {
			return nil
		}

		if series, ok := output[handle]; ok && handle != "" {
			return series
		}

		return output.Primary(ind.Outputs())
	case graph.CategoryConstant:
		return it.constant(n)
	case graph.CategoryEvent, graph.CategoryCondition, graph.CategoryLogic, graph.CategoryAction:
		return nil
	}

	if series, ok := it.numeric[nodeID]; ok {
		return series
	}

	// forwarding nodes pass on their first numeric input; a variable with
	// a value and no numeric input acts as a constant
	visiting[nodeID] = true
	defer delete(visiting, nodeID)

	var series []float64

	for _, src := range it.index.Inputs(nodeID) {
		e, _ := it.index.Edge(src, nodeID)
		if series = it.numericOf(src, e.SourceHandle, visiting); series != nil {
			break
		}
	}

	if series == nil && n.Has("value") {
		series = it.constant(n)
	}

	it.numeric[nodeID] = series

	return series
}

func (it *Interpreter) constant(n graph.Node) []float64 {
	if series, ok := it.numeric[n.ID]; ok {
		return series
	}

	v := n.NumberOr("value", 0)

	series := make([]float64, len(it.bars))
	for i := range series {
		series[i] = v
	}

	it.numeric[n.ID] = series

	return series
}

// Step evaluates the graph on bar i and returns the actions that fired, in
// topological order.
func (it *Interpreter) Step(i int) ([]Action, error) {
	if i < 0 || i >= len(it.bars) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "bar %d out of range [0, %d)", i, len(it.bars))
	}

	clear(it.flags)

	var fired []Action

	for _, id := range it.order {
		n, _ := it.index.Node(id)

		switch n.Category {
		case graph.CategoryEvent:
			it.flags[id] = true
		case graph.CategoryIndicator, graph.CategoryConstant:
		case graph.CategoryCondition:
			ok, err := it.evalCondition(n, i)
			if err != nil {
				return nil, err
			}

			it.flags[id] = ok
		case graph.CategoryLogic:
			gate, ok := condition.ParseGate(n.LogicType())
			if !ok {
				return nil, errors.Newf(errors.ErrCodeStrategyInvalid, "logic node %s has unknown gate %q", id, n.LogicType())
			}

			it.flags[id] = condition.Combine(gate, it.booleanInputs(id))
		case graph.CategoryAction:
			inputs := it.booleanInputs(id)
			if !condition.Combine(condition.GateAnd, inputs) {
				continue
			}

			it.flags[id] = true
			fired = append(fired, it.action(n))
		default:
			// risk, money management and the pass-through categories
			// forward the disjunction of their boolean inputs
			if inputs := it.booleanInputs(id); len(inputs) > 0 {
				it.flags[id] = condition.Combine(condition.GateOr, inputs)
			}
		}
	}

	return fired, nil
}

// booleanInputs collects the boolean values reaching id on this bar, in
// edge order.
func (it *Interpreter) booleanInputs(id string) []bool {
	var inputs []bool

	for _, src := range it.index.Inputs(id) {
		if v, ok := it.flags[src]; ok {
			inputs = append(inputs, v)
		}
	}

	return inputs
}

func (it *Interpreter) evalCondition(n graph.Node, i int) (bool, error) {
	in := condition.Inputs{Price: it.closes[:i+1]}

	for _, src := range it.index.Inputs(n.ID) {
		e, _ := it.index.Edge(src, n.ID)

		series := it.numericOf(src, e.SourceHandle, map[string]bool{})
		if series == nil {
			continue
		}

		history := series[:i+1]

		switch strings.ToLower(e.TargetHandle) {
		case "b", "right", "compare":
			in.B = history
		case "a", "left", "value":
			in.A = history
		default:
			if in.A == nil {
				in.A = history
			} else if in.B == nil {
				in.B = history
			}
		}
	}

	if in.A == nil {
		return false, nil
	}

	if kind := n.String("conditionType"); kind != "" {
		k, ok := condition.ParseKind(kind)
		if !ok {
			return false, errors.Newf(errors.ErrCodeStrategyInvalid, "condition %s has unknown condition type %q", n.ID, kind)
		}

		return condition.Evaluate(k, in, n)
	}

	if op, ok := condition.ParseOperator(n.Operator()); ok {
		return condition.EvaluateOperator(op, in, n), nil
	}

	if k, ok := condition.ParseKind(n.Operator()); ok {
		return condition.Evaluate(k, in, n)
	}

	return false, nil
}

// action resolves the order parameters of a fired action node. Risk and
// money management nodes feeding it fill in what the node leaves unset.
func (it *Interpreter) action(n graph.Node) Action {
	a := Action{
		Node:           n,
		Type:           n.ActionType(),
		Lots:           numberParam(n, "lots", "lotSize", "volume"),
		StopLossPips:   numberParam(n, "stopLoss", "stop_loss", "sl"),
		TakeProfitPips: numberParam(n, "takeProfit", "take_profit", "tp"),
		RiskPercent:    numberParam(n, graph.RiskPercentKeys...),
		TrailingStop:   optional.None[graph.TrailingStop](),
		BreakEven:      optional.None[graph.BreakEven](),
		Reason:         n.Label(),
	}

	for _, src := range it.index.Inputs(n.ID) {
		upstream, _ := it.index.Node(src)
		if upstream.Category != graph.CategoryRisk && upstream.Category != graph.CategoryMoneyManagement {
			continue
		}

		pips := numberParam(upstream, "pips", "value", "distance")
		rule, _ := upstream.RiskRule()

		switch rule {
		case graph.RiskRuleStopLoss:
			if a.StopLossPips.IsNone() {
				a.StopLossPips = pips
			}
		case graph.RiskRuleTakeProfit:
			if a.TakeProfitPips.IsNone() {
				a.TakeProfitPips = pips
			}
		case graph.RiskRuleTrailingStop:
			if t, ok := upstream.TrailingStop(); ok && a.TrailingStop.IsNone() {
				a.TrailingStop = optional.Some(t)
			}
		case graph.RiskRuleBreakEven:
			if b, ok := upstream.BreakEven(); ok && a.BreakEven.IsNone() {
				a.BreakEven = optional.Some(b)
			}
		}

		if a.Lots.IsNone() {
			a.Lots = numberParam(upstream, "lots", "lotSize")
		}

		if a.RiskPercent.IsNone() {
			a.RiskPercent = numberParam(upstream, graph.RiskPercentKeys...)
		}
	}

	return a
}

func numberParam(n graph.Node, keys ...string) optional.Option[float64] {
	for _, key := range keys {
		if v, ok := n.Number(key); ok {
			return optional.Some(v)
		}
	}

	return optional.None[float64]()
}
