package validator

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-strategy/internal/condition"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/indicator"
	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// ValidateNode runs the parameter checks of a single node.
func (v *Validator) ValidateNode(n graph.Node) []Issue {
	var issues []Issue

	add := func(s Severity, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: s, Category: CategoryParameter, NodeID: n.ID,
			Message: fmt.Sprintf(format, args...),
		})
	}

	switch n.Category {
	case graph.CategoryIndicator:
		v.indicatorParams(n, add)
	case graph.CategoryCondition:
		conditionParams(n, add)
	case graph.CategoryLogic:
		if _, ok := condition.ParseGate(n.LogicType()); !ok {
			add(SeverityError, "Logic node %q has unknown operator %q", n.Label(), n.LogicType())
		}
	case graph.CategoryAction:
		switch n.ActionType() {
		case "buy", "sell", "close":
		case "":
			add(SeverityError, "Action node %q has no action type", n.Label())
		default:
			add(SeverityError, "Action node %q has unknown action type %q", n.Label(), n.ActionType())
		}

		if lots, ok := n.Number("lots"); ok && lots <= 0 {
			add(SeverityError, "Action node %q lot size must be positive", n.Label())
		}
	case graph.CategoryRisk:
		riskParams(n, add)
	case graph.CategoryMoneyManagement:
		riskParams(n, add)

		if risk, ok := n.Number("riskPerTrade"); ok && risk > MaxRiskPerTrade {
			add(SeverityWarning, "Risk per trade (%v%%) is high - consider reducing to 1-2%%", risk)
		}

		if loss, ok := n.Number("maxDailyLoss"); ok && loss > MaxDailyLoss {
			add(SeverityWarning, "Max daily loss (%v%%) is high - consider reducing", loss)
		}
	}

	return issues
}

type addFunc func(s Severity, format string, args ...any)

func (v *Validator) indicatorParams(n graph.Node, add addFunc) {
	kind := indicator.Canonical(n.IndicatorType())

	if kind == "" {
		add(SeverityError, "Indicator %q has no indicator type", n.Label())
	} else if _, err := v.registry.GetIndicator(kind); err != nil {
		add(SeverityError, "Indicator %q has unknown indicator type %q", n.Label(), n.IndicatorType())
	}

	for _, key := range periodKeys {
		p, ok := n.Number(key)
		if !ok {
			continue
		}

		if p < 1 {
			add(SeverityError, "Indicator %q has invalid %s: %v", n.Label(), key, p)
		} else if p > MaxIndicatorPeriod {
			add(SeverityWarning, "Indicator %q has very large %s (%v) - may reduce signal accuracy", n.Label(), key, p)
		}
	}

	switch kind {
	case types.IndicatorTypeBollingerBands:
		if sd, ok := n.Number("stdDev"); ok && sd <= 0 {
			add(SeverityError, "Bollinger Bands standard deviation must be positive")
		}
	case types.IndicatorTypeRSI:
		if ob, ok := n.Number("overbought"); ok && (ob < 50 || ob > 100) {
			add(SeverityWarning, "RSI overbought level (%v) should be between 50-100", ob)
		}

		if os, ok := n.Number("oversold"); ok && (os < 0 || os > 50) {
			add(SeverityWarning, "RSI oversold level (%v) should be between 0-50", os)
		}
	case types.IndicatorTypeMACD:
		fast, slow := n.NumberOr("fastPeriod", 12), n.NumberOr("slowPeriod", 26)
		if fast >= slow {
			add(SeverityError, "MACD fast period (%v) must be shorter than slow period (%v)", fast, slow)
		}
	}
}

func conditionParams(n graph.Node, add addFunc) {
	op := n.Operator()
	kind := n.String("conditionType")

	if op == "" && kind == "" {
		add(SeverityWarning, "Condition %q has no operator specified", n.Label())
		return
	}

	if kind != "" {
		if _, ok := condition.ParseKind(kind); !ok {
			add(SeverityError, "Condition %q has unknown condition type %q", n.Label(), kind)
		}

		return
	}

	if _, ok := condition.ParseOperator(op); ok {
		return
	}

	if _, ok := condition.ParseKind(op); !ok {
		add(SeverityError, "Condition %q has unknown operator %q", n.Label(), op)
	}
}

func riskParams(n graph.Node, add addFunc) {
	rule, ok := n.RiskRule()
	if !ok {
		add(SeverityError, "%s node %q has unsupported subtype %q (supported: %s)",
			n.Category, n.Label(), n.RiskSubtype(), riskRuleNames())
		return
	}

	switch rule {
	case graph.RiskRuleStopLoss, graph.RiskRuleTakeProfit:
		if pips, ok := n.Number("pips"); ok {
			riskPips(rule, pips, add)
		}
	case graph.RiskRuleTrailingStop:
		t, ok := n.TrailingStop()
		if !ok {
			add(SeverityError, "%s node %q needs a positive pips distance", rule, n.Label())
			return
		}

		riskPips(rule, t.Pips, add)

		if t.ActivationPips < 0 || t.StepPips < 0 {
			add(SeverityError, "%s activation and step pips must not be negative", rule)
		}
	case graph.RiskRuleBreakEven:
		b, ok := n.BreakEven()
		if !ok {
			add(SeverityError, "%s node %q needs a positive profitPips trigger", rule, n.Label())
			return
		}

		riskPips(rule, b.TriggerPips, add)

		if b.LockPips < 0 {
			add(SeverityError, "%s lock pips must not be negative", rule)
		} else if b.LockPips >= b.TriggerPips {
			add(SeverityWarning, "%s lock pips (%v) reach the trigger (%v) - the stop would sit at or beyond the price", rule, b.LockPips, b.TriggerPips)
		}
	case graph.RiskRulePositionSize:
		if pct, ok := n.Number("riskPercent"); ok && (pct <= 0 || pct > 10) {
			add(SeverityWarning, "Risk percent (%v%%) should be between 0.1-10%%", pct)
		}
	}
}

func riskPips(rule graph.RiskRule, pips float64, add addFunc) {
	if pips <= 0 {
		add(SeverityError, "%s pips must be positive", rule)
	} else if pips > MaxRiskPips {
		add(SeverityWarning, "%s pips (%v) is very large - may be too wide", rule, pips)
	}
}

func riskRuleNames() string {
	names := make([]string, len(graph.RiskRules))
	for i, r := range graph.RiskRules {
		names[i] = string(r)
	}

	return strings.Join(names, ", ")
}
