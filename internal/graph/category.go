package graph

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Category is the closed set of node kinds a strategy graph may contain.
type Category string

const (
	CategoryEvent           Category = "event"
	CategoryIndicator       Category = "indicator"
	CategoryCondition       Category = "condition"
	CategoryLogic           Category = "logic"
	CategoryAction          Category = "action"
	CategoryRisk            Category = "risk"
	CategoryMoneyManagement Category = "money_management"
	CategoryPattern         Category = "pattern"
	CategoryMTF             Category = "mtf"
	CategoryVariable        Category = "variable"
	CategoryGraphical       Category = "graphical"
	CategoryMessaging       Category = "messaging"
	CategoryFileOps         Category = "file_ops"
	CategoryTerminal        Category = "terminal"
	CategoryAdvanced        Category = "advanced"
	CategoryCustom          Category = "custom"
	// CategoryConstant is a literal number source (thresholds, levels).
	CategoryConstant Category = "constant"
	// CategoryPass forwards its input unchanged. Any category may target it.
	CategoryPass Category = "pass"
)

// AllCategories lists every category in table order.
var AllCategories = []Category{
	CategoryEvent,
	CategoryIndicator,
	CategoryCondition,
	CategoryLogic,
	CategoryAction,
	CategoryRisk,
	CategoryMoneyManagement,
	CategoryPattern,
	CategoryMTF,
	CategoryVariable,
	CategoryGraphical,
	CategoryMessaging,
	CategoryFileOps,
	CategoryTerminal,
	CategoryAdvanced,
	CategoryCustom,
	CategoryConstant,
	CategoryPass,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}

	return false
}

// adjacency maps a source category to the categories it may target.
// CategoryPass is an implicit target of every source and is not listed.
var adjacency = map[Category][]Category{
	CategoryEvent:           {CategoryIndicator, CategoryCondition, CategoryLogic, CategoryAction, CategoryVariable, CategoryConstant},
	CategoryIndicator:       {CategoryCondition, CategoryLogic, CategoryIndicator, CategoryVariable},
	CategoryCondition:       {CategoryLogic, CategoryAction, CategoryRisk, CategoryVariable},
	CategoryLogic:           {CategoryLogic, CategoryAction, CategoryRisk, CategoryVariable},
	CategoryRisk:            {CategoryAction, CategoryVariable},
	CategoryAction:          {CategoryVariable, CategoryMessaging, CategoryGraphical},
	CategoryMTF:             {CategoryCondition, CategoryLogic, CategoryVariable},
	CategoryPattern:         {CategoryCondition, CategoryLogic, CategoryVariable},
	CategoryVariable:        {CategoryCondition, CategoryLogic, CategoryIndicator, CategoryAction, CategoryRisk},
	CategoryAdvanced:        {CategoryAction, CategoryVariable},
	CategoryMoneyManagement: {CategoryAction, CategoryVariable},
	CategoryGraphical:       {CategoryVariable},
	CategoryMessaging:       {CategoryVariable},
	CategoryFileOps:         {CategoryVariable, CategoryCondition},
	CategoryTerminal:        {CategoryCondition, CategoryLogic, CategoryVariable},
	CategoryCustom:          {CategoryCondition, CategoryLogic, CategoryAction, CategoryRisk, CategoryVariable},
	CategoryConstant:        {CategoryCondition, CategoryLogic, CategoryIndicator},
	CategoryPass:            {CategoryIndicator, CategoryCondition, CategoryLogic, CategoryAction, CategoryRisk, CategoryVariable},
}

type categoryPair struct {
	source Category
	target Category
}

var connectionHints = map[categoryPair]string{
	{CategoryIndicator, CategoryAction}:    "insert a condition node between the indicator and the action",
	{CategoryIndicator, CategoryRisk}:      "risk nodes need a boolean input, insert a condition node first",
	{CategoryEvent, CategoryRisk}:          "route the event through a condition before attaching risk management",
	{CategoryRisk, CategoryRisk}:           "attach both risk nodes to the same condition and feed them into one action",
	{CategoryRisk, CategoryCondition}:      "risk nodes only configure actions, connect the condition before the risk node",
	{CategoryAction, CategoryAction}:       "actions are terminal, drive both actions from the same condition instead",
	{CategoryCondition, CategoryIndicator}: "indicators read price data directly, connect the event to the indicator",
	{CategoryLogic, CategoryIndicator}:     "indicators read price data directly, connect the event to the indicator",
	{CategoryLogic, CategoryCondition}:     "conditions compare numbers, feed the indicator into the condition and combine results with logic",
	{CategoryCondition, CategoryCondition}: "combine conditions with a logic node (AND/OR)",
}

// ValidTargets returns the categories src may connect to, including pass.
func ValidTargets(src Category) []Category {
	if !src.Valid() {
		return nil
	}

	return append(append([]Category{}, adjacency[src]...), CategoryPass)
}

// CanConnect reports whether an edge from src to dst is allowed by the adjacency table.
func CanConnect(src, dst Category) bool {
	if dst == CategoryPass && src.Valid() {
		return true
	}

	for _, t := range adjacency[src] {
		if t == dst {
			return true
		}
	}

	return false
}

// ConnectionHint returns a remediation hint for a rejected src→dst edge.
func ConnectionHint(src, dst Category) string {
	if hint, ok := connectionHints[categoryPair{src, dst}]; ok {
		return hint
	}

	if src == CategoryAction {
		return "actions are terminal, store their outcome in a variable node if later nodes need it"
	}

	targets := ValidTargets(src)
	if len(targets) == 0 {
		return fmt.Sprintf("%q is not a known node category", src)
	}

	return fmt.Sprintf("connect %s to one of: %s", src, joinCategories(targets))
}

// CheckConnection returns an error naming both categories and a hint when the
// edge is not allowed.
func CheckConnection(src, dst Category) error {
	if CanConnect(src, dst) {
		return nil
	}

	return errors.Newf(errors.ErrCodeStrategyInvalid,
		"Cannot connect %s to %s. Valid targets: %s (%s→%s: %s)",
		src, dst, joinCategories(ValidTargets(src)), src, dst, ConnectionHint(src, dst))
}

func joinCategories(cats []Category) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}

	return strings.Join(names, ", ")
}
