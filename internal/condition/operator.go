package condition

import (
	"math"
	"strings"
)

// Operator is a comparison carried by a condition node.
type Operator string

const (
	OpGreater      Operator = "gt"
	OpLess         Operator = "lt"
	OpEqual        Operator = "eq"
	OpGreaterEqual Operator = "gte"
	OpLessEqual    Operator = "lte"
	OpCrossAbove   Operator = "cross_above"
	OpCrossBelow   Operator = "cross_below"
)

// EqualTolerance is the absolute tolerance of OpEqual.
const EqualTolerance = 1e-4

var operatorAliases = map[string]Operator{
	">":             OpGreater,
	"greater_than":  OpGreater,
	"above":         OpGreater,
	"<":             OpLess,
	"less_than":     OpLess,
	"below":         OpLess,
	"==":            OpEqual,
	"=":             OpEqual,
	"equals":        OpEqual,
	">=":            OpGreaterEqual,
	"<=":            OpLessEqual,
	"crosses_above": OpCrossAbove,
	"crossover":     OpCrossAbove,
	"crosses_below": OpCrossBelow,
	"crossunder":    OpCrossBelow,
}

// ParseOperator resolves an operator or one of its editor spellings.
func ParseOperator(s string) (Operator, bool) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch op := Operator(s); op {
	case OpGreater, OpLess, OpEqual, OpGreaterEqual, OpLessEqual, OpCrossAbove, OpCrossBelow:
		return op, true
	}

	op, ok := operatorAliases[s]

	return op, ok
}

// IsCross reports whether op needs the previous bar's values.
func (op Operator) IsCross() bool {
	return op == OpCrossAbove || op == OpCrossBelow
}

// Compare applies op to the current values a, b and, for crosses, the
// previous values prevA, prevB. Any NaN operand yields false.
func Compare(op Operator, a, b, prevA, prevB float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}

	switch op {
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpEqual:
		return math.Abs(a-b) < EqualTolerance
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	case OpCrossAbove:
		return TwoSeriesCross(a, prevA, b, prevB, DirectionAbove).Above
	case OpCrossBelow:
		return TwoSeriesCross(a, prevA, b, prevB, DirectionBelow).Below
	default:
		return false
	}
}

// Gate is a logic node's boolean combinator.
type Gate string

const (
	GateAnd Gate = "AND"
	GateOr  Gate = "OR"
	GateNot Gate = "NOT"
	GateXor Gate = "XOR"
)

// ParseGate upper-cases s and reports whether it names a gate.
func ParseGate(s string) (Gate, bool) {
	g := Gate(strings.ToUpper(strings.TrimSpace(s)))

	switch g {
	case GateAnd, GateOr, GateNot, GateXor:
		return g, true
	default:
		return g, false
	}
}

// Combine folds inputs through the gate. AND needs at least one input,
// NOT negates the first input and XOR is true for exactly one true input.
func Combine(g Gate, inputs []bool) bool {
	switch g {
	case GateAnd:
		if len(inputs) == 0 {
			return false
		}

		for _, v := range inputs {
			if !v {
				return false
			}
		}

		return true
	case GateOr:
		for _, v := range inputs {
			if v {
				return true
			}
		}

		return false
	case GateNot:
		return len(inputs) > 0 && !inputs[0]
	case GateXor:
		count := 0
		for _, v := range inputs {
			if v {
				count++
			}
		}

		return count == 1
	default:
		return false
	}
}
