package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-strategy/internal/condition"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/indicator"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// input is an externally adjustable parameter of the generated program.
type input struct {
	Type    string
	Name    string
	Value   string
	Comment string
}

type seriesKind int

const (
	seriesIndicator seriesKind = iota
	seriesPrice
	seriesConstant
)

// series is an array of a numeric node output, index 0 being the last
// closed bar.
type series struct {
	Name   string
	Kind   seriesKind
	Node   graph.Node
	Ident  string
	Type   types.IndicatorType
	Output string
	Depth  int
	// Source is the bar price of price series and the applied price of
	// indicators.
	Source indicator.Source
	// Params maps indicator parameter keys to input names. Value holds the
	// input name of a constant.
	Params map[string]string
	Value  string
}

func (s *series) need(depth int) {
	s.Depth = max(s.Depth, depth)
}

func (s *series) at(k int) string {
	return fmt.Sprintf("%s[%d]", s.Name, k)
}

// binding is a boolean computed once per tick.
type binding struct {
	Name    string
	Expr    string
	Comment string
}

type order struct {
	Name       string
	Label      string
	Type       string
	Lots       string
	StopLoss   string
	TakeProfit string
	Offset     int
	// Stops holds the trailing and break-even arguments of ManageStops. It
	// is nil when no such risk node feeds the order.
	Stops []string
}

// program is the dialect independent form of a strategy.
type program struct {
	Name        string
	Description string
	StrategyID  string
	Magic       int

	Inputs   []input
	Series   []*series
	Booleans []binding
	Closes   []order
	Entries  []order
	Helpers  []string
	// Handles lists the indicator nodes whose series are loaded.
	Handles []*series
}

type indicatorParam struct {
	key   string
	def   float64
	isInt bool
}

// indicatorParams lists, per translatable indicator, the parameters the
// generated call takes. An indicator missing here cannot be compiled.
var indicatorParams = map[types.IndicatorType][]indicatorParam{
	types.IndicatorTypeSMA:            {{"period", 20, true}},
	types.IndicatorTypeEMA:            {{"period", 20, true}},
	types.IndicatorTypeRSI:            {{"period", 14, true}},
	types.IndicatorTypeATR:            {{"period", 14, true}},
	types.IndicatorTypeADX:            {{"period", 14, true}},
	types.IndicatorTypeBollingerBands: {{"period", 20, true}, {"stdDev", 2, false}},
	types.IndicatorTypeMACD:           {{"fastPeriod", 12, true}, {"slowPeriod", 26, true}, {"signalPeriod", 9, true}},
	types.IndicatorTypeStochastic:     {{"kPeriod", 14, true}, {"dPeriod", 3, true}, {"slowing", 3, true}},
	types.IndicatorTypePrice:          {},
}

var indicatorOutputs = map[types.IndicatorType][]string{
	types.IndicatorTypeSMA:            {indicator.OutputValue},
	types.IndicatorTypeEMA:            {indicator.OutputValue},
	types.IndicatorTypeRSI:            {indicator.OutputValue},
	types.IndicatorTypeATR:            {indicator.OutputValue},
	types.IndicatorTypeADX:            {indicator.OutputValue, indicator.OutputPlusDI, indicator.OutputMinusDI},
	types.IndicatorTypeBollingerBands: {indicator.OutputMiddle, indicator.OutputUpper, indicator.OutputLower},
	types.IndicatorTypeMACD:           {indicator.OutputMACD, indicator.OutputSignal, indicator.OutputHistogram},
	types.IndicatorTypeStochastic:     {indicator.OutputK, indicator.OutputD},
	types.IndicatorTypePrice:          {indicator.OutputValue, "open", "high", "low", "close"},
}

// resolvable categories have a translation rule; every other category fails
// compilation.
var resolvable = map[graph.Category]bool{
	graph.CategoryEvent:           true,
	graph.CategoryIndicator:       true,
	graph.CategoryCondition:       true,
	graph.CategoryLogic:           true,
	graph.CategoryAction:          true,
	graph.CategoryRisk:            true,
	graph.CategoryMoneyManagement: true,
	graph.CategoryVariable:        true,
	graph.CategoryConstant:        true,
	graph.CategoryPass:            true,
}

// lowering walks a strategy in topological order and builds its program.
type lowering struct {
	p     *program
	index *graph.Index

	idents map[string]string
	used   map[string]bool
	inputs map[string]bool

	// indicator series by node and output, forwarded series by node
	outputs   map[string]*series
	forwarded map[string]*series
	close     *series

	// boolean expression of each node that yields one
	booleans map[string]string
	helpers  map[string]bool
}

func lower(strategy *graph.Strategy, opts Options) (*program, error) {
	l := &lowering{
		p: &program{
			Name:        opts.StrategyName,
			Description: strategy.Description,
			StrategyID:  strategy.ID,
			Magic:       opts.MagicNumber,
		},
		index:     graph.NewIndex(strategy),
		idents:    make(map[string]string),
		used:      make(map[string]bool),
		inputs:    make(map[string]bool),
		outputs:   make(map[string]*series),
		forwarded: make(map[string]*series),
		booleans:  make(map[string]string),
		helpers:   make(map[string]bool),
	}

	order, err := l.index.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	for _, id := range order {
		n, _ := l.index.Node(id)
		if err := l.node(n); err != nil {
			return nil, err
		}
	}

	for _, s := range l.p.Series {
		if s.Depth > 0 && macdDerived(s) {
			l.helpers[helperEMA] = true
		}
	}

	for _, name := range helperOrder {
		if l.helpers[name] {
			l.p.Helpers = append(l.p.Helpers, name)
		}
	}

	return l.p, nil
}

func (l *lowering) node(n graph.Node) error {
	if !resolvable[n.Category] {
		return errors.Newf(errors.ErrCodeUnresolvableNode, "node %q has category %s which cannot be compiled", n.ID, n.Category)
	}

	switch n.Category {
	case graph.CategoryEvent:
		l.booleans[n.ID] = "true"
	case graph.CategoryIndicator:
		kind := indicator.Canonical(n.IndicatorType())
		if _, ok := indicatorParams[kind]; !ok {
			return errors.Newf(errors.ErrCodeUnresolvableNode, "indicator node %q has type %q which cannot be compiled", n.ID, n.IndicatorType())
		}
	case graph.CategoryConstant:
	case graph.CategoryCondition:
		expr, err := l.condition(n)
		if err != nil {
			return err
		}

		l.bind(n, "c_", expr)
	case graph.CategoryLogic:
		gate, ok := condition.ParseGate(n.LogicType())
		if !ok {
			return errors.Newf(errors.ErrCodeStrategyInvalid, "logic node %s has unknown gate %q", n.ID, n.LogicType())
		}

		l.bind(n, "l_", combine(gate, l.booleanInputs(n.ID)))
	case graph.CategoryAction:
		return l.action(n)
	default:
		if n.Category == graph.CategoryRisk || n.Category == graph.CategoryMoneyManagement {
			if _, ok := n.RiskRule(); !ok {
				return errors.Newf(errors.ErrCodeUnresolvableNode, "%s node %q has subtype %q which cannot be compiled", n.Category, n.ID, n.RiskSubtype())
			}
		}

		if inputs := l.booleanInputs(n.ID); len(inputs) > 0 {
			l.bind(n, "b_", combine(condition.GateOr, inputs))
		}
	}

	return nil
}

func (l *lowering) bind(n graph.Node, prefix, expr string) {
	name := prefix + l.ident(n.ID)
	l.p.Booleans = append(l.p.Booleans, binding{Name: name, Expr: expr, Comment: n.Label()})
	l.booleans[n.ID] = name
}

func (l *lowering) booleanInputs(id string) []string {
	var inputs []string

	for _, src := range l.index.Inputs(id) {
		if expr, ok := l.booleans[src]; ok {
			inputs = append(inputs, expr)
		}
	}

	return inputs
}

// combine renders the gate over inputs with the semantics of
// condition.Combine.
func combine(g condition.Gate, inputs []string) string {
	if len(inputs) == 0 {
		return "false"
	}

	switch g {
	case condition.GateAnd:
		return strings.Join(inputs, " && ")
	case condition.GateOr:
		return "(" + strings.Join(inputs, " || ") + ")"
	case condition.GateNot:
		return "!" + inputs[0]
	case condition.GateXor:
		terms := make([]string, len(inputs))
		for i, in := range inputs {
			terms[i] = "(" + in + " ? 1 : 0)"
		}

		return "(" + strings.Join(terms, " + ") + " == 1)"
	default:
		return "false"
	}
}

// ident turns a node id into a unique identifier.
func (l *lowering) ident(id string) string {
	if name, ok := l.idents[id]; ok {
		return name
	}

	var b strings.Builder

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "n" + name
	}

	base := name
	for i := 2; l.used[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}

	l.used[name] = true
	l.idents[id] = name

	return name
}

// param declares an input for the numeric parameter key of n and returns
// its name.
func (l *lowering) param(n graph.Node, key string, value float64, isInt bool) string {
	name := "Inp_" + l.ident(n.ID) + "_" + key
	if l.inputs[name] {
		return name
	}

	l.inputs[name] = true

	in := input{Type: "double", Name: name, Value: formatNumber(value), Comment: n.Label() + " " + key}
	if isInt {
		in.Type = "int"
		in.Value = strconv.Itoa(int(value))
	}

	l.p.Inputs = append(l.p.Inputs, in)

	return name
}

func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}

// numeric resolves the series a node produces on handle, following the same
// rules as the interpreter. It returns nil for nodes that produce no number.
func (l *lowering) numeric(id, handle string, visiting map[string]bool) *series {
	n, ok := l.index.Node(id)
	if !ok || visiting[id] {
		return nil
	}

	switch n.Category {
	case graph.CategoryIndicator:
		return l.indicatorSeries(n, handle)
	case graph.CategoryConstant:
		return l.constant(n)
	case graph.CategoryEvent, graph.CategoryCondition, graph.CategoryLogic, graph.CategoryAction:
		return nil
	}

	if s, ok := l.forwarded[id]; ok {
		return s
	}

	visiting[id] = true
	defer delete(visiting, id)

	var s *series

	for _, src := range l.index.Inputs(id) {
		e, _ := l.index.Edge(src, id)
		if s = l.numeric(src, e.SourceHandle, visiting); s != nil {
			break
		}
	}

	if s == nil && n.Has("value") {
		s = l.constant(n)
	}

	l.forwarded[id] = s

	return s
}

func (l *lowering) indicatorSeries(n graph.Node, handle string) *series {
	kind := indicator.Canonical(n.IndicatorType())

	outputs, ok := indicatorOutputs[kind]
	if !ok {
		return nil
	}

	output := outputs[0]
	if handle != "" && contains(outputs, handle) {
		output = handle
	} else if contains(outputs, indicator.OutputValue) {
		output = indicator.OutputValue
	}

	key := n.ID + "\x00" + output
	if s, ok := l.outputs[key]; ok {
		return s
	}

	s := &series{
		Name:   l.ident(n.ID) + "_" + output,
		Node:   n,
		Ident:  l.ident(n.ID),
		Type:   kind,
		Output: output,
		Source: indicator.SourceOf(n),
		Params: make(map[string]string),
	}

	if kind == types.IndicatorTypePrice {
		s.Kind = seriesPrice
		if output != indicator.OutputValue {
			s.Source = indicator.Source(output)
		}
	} else {
		s.Kind = seriesIndicator

		for _, ip := range indicatorParams[kind] {
			s.Params[ip.key] = l.param(n, ip.key, n.NumberOr(ip.key, ip.def), ip.isInt)
		}

		if !l.hasHandle(n.ID) {
			l.p.Handles = append(l.p.Handles, s)
		}
	}

	l.outputs[key] = s
	l.p.Series = append(l.p.Series, s)

	return s
}

func (l *lowering) hasHandle(id string) bool {
	for _, s := range l.p.Handles {
		if s.Node.ID == id {
			return true
		}
	}

	return false
}

func (l *lowering) constant(n graph.Node) *series {
	key := n.ID + "\x00constant"
	if s, ok := l.outputs[key]; ok {
		return s
	}

	s := &series{
		Name:  l.ident(n.ID) + "_value",
		Kind:  seriesConstant,
		Node:  n,
		Ident: l.ident(n.ID),
		Value: l.param(n, "value", n.NumberOr("value", 0), false),
	}

	l.outputs[key] = s
	l.p.Series = append(l.p.Series, s)

	return s
}

// closes returns the bar close series, shared by every condition that reads
// price.
func (l *lowering) closes() *series {
	if l.close == nil {
		l.close = &series{Name: "bar_close", Kind: seriesPrice, Source: indicator.SourceClose}
		l.p.Series = append(l.p.Series, l.close)
	}

	return l.close
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}

	return false
}

// action declares the order inputs of an action node and its guard.
func (l *lowering) action(n graph.Node) error {
	guard := combine(condition.GateAnd, l.booleanInputs(n.ID))
	l.bind(n, "a_", guard)

	ident := l.ident(n.ID)
	o := order{Name: "a_" + ident, Label: n.Label(), Type: n.ActionType()}

	switch o.Type {
	case "close":
		l.p.Closes = append(l.p.Closes, o)
		return nil
	case "buy", "sell":
	default:
		return errors.Newf(errors.ErrCodeUnresolvableNode, "action node %q has type %q which cannot be compiled", n.ID, n.ActionType())
	}

	lots, lotsFrom := l.actionNumber(n, []string{"lots", "lotSize", "volume"}, graph.RiskRuleNone, []string{"lots", "lotSize"})
	sl, slFrom := l.actionNumber(n, []string{"stopLoss", "stop_loss", "sl"}, graph.RiskRuleStopLoss, pipKeys)
	tp, tpFrom := l.actionNumber(n, []string{"takeProfit", "take_profit", "tp"}, graph.RiskRuleTakeProfit, pipKeys)
	risk, riskFrom := l.actionNumber(n, graph.RiskPercentKeys, graph.RiskRuleNone, graph.RiskPercentKeys)

	o.Lots, o.StopLoss, o.TakeProfit = "DefaultLots", "0", "0"

	if lotsFrom != nil {
		o.Lots = l.param(*lotsFrom, "lots", lots, false)
	}

	if slFrom != nil {
		o.StopLoss = l.param(*slFrom, "stop_loss_pips", sl, false)
	}

	if tpFrom != nil {
		o.TakeProfit = l.param(*tpFrom, "take_profit_pips", tp, false)
	}

	// explicit lots win; a risk percent needs a stop to size from
	if lotsFrom == nil && riskFrom != nil && slFrom != nil {
		o.Lots = fmt.Sprintf("RiskLots(%s, %s)", l.param(*riskFrom, "risk_percent", risk, false), o.StopLoss)
		l.helpers[helperRiskLots] = true
	}

	o.Stops = l.stops(n)
	if o.Stops != nil {
		l.helpers[helperTightenedStop] = true
	}

	o.Offset = len(l.p.Entries)
	l.p.Entries = append(l.p.Entries, o)

	return nil
}

var pipKeys = []string{"pips", "value", "distance"}

// actionNumber reads the first of keys from the action, then the first of
// upstreamKeys from the risk and money management nodes feeding it. A rule
// other than RiskRuleNone restricts which of them may supply the value.
func (l *lowering) actionNumber(n graph.Node, keys []string, rule graph.RiskRule, upstreamKeys []string) (float64, *graph.Node) {
	for _, key := range keys {
		if v, ok := n.Number(key); ok {
			return v, &n
		}
	}

	for _, upstream := range l.riskInputs(n) {
		if r, _ := upstream.RiskRule(); rule != graph.RiskRuleNone && r != rule {
			continue
		}

		for _, key := range upstreamKeys {
			if v, ok := upstream.Number(key); ok {
				return v, &upstream
			}
		}
	}

	return 0, nil
}

func (l *lowering) riskInputs(n graph.Node) []graph.Node {
	var nodes []graph.Node

	for _, src := range l.index.Inputs(n.ID) {
		upstream, _ := l.index.Node(src)
		if upstream.Category == graph.CategoryRisk || upstream.Category == graph.CategoryMoneyManagement {
			nodes = append(nodes, upstream)
		}
	}

	return nodes
}

// stops declares the inputs of the first trailing stop and break-even node
// feeding n and returns them in ManageStops order: trailing distance,
// activation and step, then break-even trigger and lock.
func (l *lowering) stops(n graph.Node) []string {
	args := []string{"0", "0", "0", "0", "0"}
	found := [2]bool{}

	for _, upstream := range l.riskInputs(n) {
		if t, ok := upstream.TrailingStop(); ok && !found[0] {
			found[0] = true
			args[0] = l.param(upstream, "trailing_pips", t.Pips, false)
			args[1] = l.param(upstream, "activation_pips", t.ActivationPips, false)
			args[2] = l.param(upstream, "step_pips", t.StepPips, false)
		}

		if b, ok := upstream.BreakEven(); ok && !found[1] {
			found[1] = true
			args[3] = l.param(upstream, "trigger_pips", b.TriggerPips, false)
			args[4] = l.param(upstream, "lock_pips", b.LockPips, false)
		}
	}

	if !found[0] && !found[1] {
		return nil
	}

	return args
}
