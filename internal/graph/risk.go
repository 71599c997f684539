package graph

import "strings"

// RiskRule is the normalized subtype of a risk or money management node.
type RiskRule string

const (
	// RiskRuleNone marks a node without a subtype. Money management nodes
	// without one size positions from their parameters.
	RiskRuleNone         RiskRule = ""
	RiskRuleStopLoss     RiskRule = "stop_loss"
	RiskRuleTakeProfit   RiskRule = "take_profit"
	RiskRuleTrailingStop RiskRule = "trailing_stop"
	RiskRuleBreakEven    RiskRule = "break_even"
	RiskRulePositionSize RiskRule = "position_size"
)

// RiskRules lists the subtypes the interpreter and the code generator
// implement.
var RiskRules = []RiskRule{
	RiskRuleStopLoss,
	RiskRuleTakeProfit,
	RiskRuleTrailingStop,
	RiskRuleBreakEven,
	RiskRulePositionSize,
}

// RiskPercentKeys name the parameter that sizes a position by the percent of
// the balance lost at the stop.
var RiskPercentKeys = []string{"riskPercent", "risk_percent", "riskPerTrade"}

var riskRuleAliases = map[string]RiskRule{
	"":              RiskRuleNone,
	"stop_loss":     RiskRuleStopLoss,
	"stoploss":      RiskRuleStopLoss,
	"sl":            RiskRuleStopLoss,
	"take_profit":   RiskRuleTakeProfit,
	"takeprofit":    RiskRuleTakeProfit,
	"tp":            RiskRuleTakeProfit,
	"trailing_stop": RiskRuleTrailingStop,
	"trailingstop":  RiskRuleTrailingStop,
	"trailing":      RiskRuleTrailingStop,
	"break_even":    RiskRuleBreakEven,
	"breakeven":     RiskRuleBreakEven,
	"position_size": RiskRulePositionSize,
	"positionsize":  RiskRulePositionSize,
	"risk_percent":  RiskRulePositionSize,
	"fixed_lots":    RiskRulePositionSize,
}

// ParseRiskRule folds the aliases editors write for a risk subtype. It
// reports false for subtypes nothing can execute, such as martingale.
func ParseRiskRule(s string) (RiskRule, bool) {
	rule, ok := riskRuleAliases[strings.ToLower(strings.TrimSpace(s))]

	return rule, ok
}

// RiskSubtype returns the raw subtype of a risk or money management node.
// Money management nodes may carry it in moneyManagementType.
func (n Node) RiskSubtype() string {
	if t := n.RiskType(); t != "" {
		return t
	}

	return strings.ToLower(n.String("moneyManagementType"))
}

// RiskRule classifies the node's subtype. ok is false when the subtype is
// set but unsupported.
func (n Node) RiskRule() (RiskRule, bool) {
	return ParseRiskRule(n.RiskSubtype())
}

// TrailingStop keeps the stop loss Pips behind the price once a position
// is ActivationPips in profit. The stop never loosens and moves only when
// it improves by at least StepPips.
type TrailingStop struct {
	Pips           float64
	ActivationPips float64
	StepPips       float64
}

// BreakEven moves the stop loss to the entry price plus LockPips once a
// position is TriggerPips in profit. It applies once per position.
type BreakEven struct {
	TriggerPips float64
	LockPips    float64
}

// TrailingStop reads the trailing parameters of a trailing_stop node. ok is
// false when the node is not one or the distance is not positive.
func (n Node) TrailingStop() (TrailingStop, bool) {
	if rule, _ := n.RiskRule(); rule != RiskRuleTrailingStop {
		return TrailingStop{}, false
	}

	t := TrailingStop{
		Pips:           firstNumber(n, 0, "pips", "distance", "trailingPips"),
		ActivationPips: firstNumber(n, 0, "activationPips", "activation"),
		StepPips:       firstNumber(n, 0, "stepPips", "step"),
	}

	return t, t.Pips > 0
}

// BreakEven reads the parameters of a break_even node. The trigger falls
// back to pips. ok is false when the node is not one or the trigger is not
// positive.
func (n Node) BreakEven() (BreakEven, bool) {
	if rule, _ := n.RiskRule(); rule != RiskRuleBreakEven {
		return BreakEven{}, false
	}

	b := BreakEven{
		TriggerPips: firstNumber(n, 0, "profitPips", "triggerPips", "pips"),
		LockPips:    firstNumber(n, 0, "lockPips", "lock", "offset"),
	}

	return b, b.TriggerPips > 0
}

func firstNumber(n Node, def float64, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := n.Number(key); ok {
			return v
		}
	}

	return def
}
