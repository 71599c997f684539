package codegen

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-strategy/internal/condition"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// operand is the right-hand side of a comparison: a series or an input.
type operand struct {
	series *series
	scalar string
}

func (o operand) at(k int) string {
	if o.series != nil {
		return o.series.at(k)
	}

	return o.scalar
}

// condition renders a condition node as a boolean expression. Inputs are
// assigned to the A and B sides the way the interpreter assigns them.
func (l *lowering) condition(n graph.Node) (string, error) {
	var a, b *series

	for _, src := range l.index.Inputs(n.ID) {
		e, _ := l.index.Edge(src, n.ID)

		s := l.numeric(src, e.SourceHandle, map[string]bool{})
		if s == nil {
			continue
		}

		switch strings.ToLower(e.TargetHandle) {
		case "b", "right", "compare":
			b = s
		case "a", "left", "value":
			a = s
		default:
			if a == nil {
				a = s
			} else if b == nil {
				b = s
			}
		}
	}

	if a == nil {
		return "false", nil
	}

	if kind := n.String("conditionType"); kind != "" {
		k, ok := condition.ParseKind(kind)
		if !ok {
			return "", errors.Newf(errors.ErrCodeStrategyInvalid, "condition %s has unknown condition type %q", n.ID, kind)
		}

		return l.primitive(n, k, a, b)
	}

	if op, ok := condition.ParseOperator(n.Operator()); ok {
		return l.comparison(n, op, a, b), nil
	}

	if k, ok := condition.ParseKind(n.Operator()); ok {
		return l.primitive(n, k, a, b)
	}

	return "false", nil
}

func (l *lowering) comparison(n graph.Node, op condition.Operator, a, b *series) string {
	rhs := operand{series: b}
	if b == nil {
		rhs.scalar = l.param(n, "threshold", n.NumberOr("threshold", n.NumberOr("value", 0)), false)
	}

	depth := 1
	if op.IsCross() {
		depth = 2
	}

	a.need(depth)

	if b != nil {
		b.need(depth)
	}

	switch op {
	case condition.OpGreater:
		return fmt.Sprintf("(%s > %s)", a.at(0), rhs.at(0))
	case condition.OpLess:
		return fmt.Sprintf("(%s < %s)", a.at(0), rhs.at(0))
	case condition.OpGreaterEqual:
		return fmt.Sprintf("(%s >= %s)", a.at(0), rhs.at(0))
	case condition.OpLessEqual:
		return fmt.Sprintf("(%s <= %s)", a.at(0), rhs.at(0))
	case condition.OpEqual:
		return fmt.Sprintf("(MathAbs(%s - %s) < %s)", a.at(0), rhs.at(0), formatNumber(condition.EqualTolerance))
	case condition.OpCrossAbove:
		return fmt.Sprintf("(%s <= %s && %s > %s)", a.at(1), rhs.at(1), a.at(0), rhs.at(0))
	case condition.OpCrossBelow:
		return fmt.Sprintf("(%s >= %s && %s < %s)", a.at(1), rhs.at(1), a.at(0), rhs.at(0))
	default:
		return "false"
	}
}

// cross renders a directional cross of a over rhs.
func cross(a *series, rhs operand, dir condition.Direction) string {
	above := fmt.Sprintf("(%s <= %s && %s > %s)", a.at(1), rhs.at(1), a.at(0), rhs.at(0))
	below := fmt.Sprintf("(%s >= %s && %s < %s)", a.at(1), rhs.at(1), a.at(0), rhs.at(0))

	switch dir {
	case condition.DirectionAbove:
		return above
	case condition.DirectionBelow:
		return below
	default:
		return "(" + above + " || " + below + ")"
	}
}

// primitive renders a composite condition. History lengths are fixed at
// compile time since they size the series arrays; thresholds and levels
// become inputs.
func (l *lowering) primitive(n graph.Node, k condition.Kind, a, b *series) (string, error) {
	num := func(key string, def float64) string {
		return l.param(n, key, n.NumberOr(key, def), false)
	}

	count := func(key string, def int) int {
		return int(n.NumberOr(key, float64(def)))
	}

	switch k {
	case condition.KindRise, condition.KindFall:
		bars := count("bars", condition.DefaultBars)
		if bars < 1 {
			return "false", nil
		}

		a.need(bars + 1)

		threshold := num("threshold", 0)
		if k == condition.KindRise {
			return fmt.Sprintf("(%s - %s > %s)", a.at(0), a.at(bars), threshold), nil
		}

		return fmt.Sprintf("(%s - %s > %s)", a.at(bars), a.at(0), threshold), nil
	case condition.KindWithinLimits, condition.KindOutsideLimits:
		a.need(1)

		within := fmt.Sprintf("(%s >= %s && %s <= %s)",
			a.at(0), num("lowerLimit", condition.DefaultLowerLimit),
			a.at(0), num("upperLimit", condition.DefaultUpperLimit))
		if k == condition.KindOutsideLimits {
			return "!" + within, nil
		}

		return within, nil
	case condition.KindPriceAbove, condition.KindPriceBelow:
		a.need(1)

		price := l.closes()
		price.need(1)

		threshold := num("threshold", condition.DefaultPriceOffset)

		diff := fmt.Sprintf("%s - %s", price.at(0), a.at(0))
		if k == condition.KindPriceBelow {
			diff = fmt.Sprintf("%s - %s", a.at(0), price.at(0))
		}

		if condition.Flag(n, "percentMode") {
			return fmt.Sprintf("(%s != 0 && (%s) / %s * 100 > %s)", a.at(0), diff, a.at(0), threshold), nil
		}

		return fmt.Sprintf("(%s > %s)", diff, threshold), nil
	case condition.KindCrossesLevel:
		a.need(2)

		return cross(a, operand{scalar: num("level", condition.DefaultLevel)}, condition.ParseDirection(n.String("direction"))), nil
	case condition.KindSeriesCross:
		if b == nil {
			return "", errors.Newf(errors.ErrCodeMissingParameter, "condition %s: series_cross needs two inputs", n.ID)
		}

		a.need(2)
		b.need(2)

		return cross(a, operand{series: b}, condition.ParseDirection(n.String("direction"))), nil
	case condition.KindOverbought, condition.KindOversold, condition.KindExtreme:
		a.need(1)

		overbought := fmt.Sprintf("(%s >= %s)", a.at(0), num("overbought", condition.DefaultOverbought))
		oversold := fmt.Sprintf("(%s <= %s)", a.at(0), num("oversold", condition.DefaultOversold))

		switch k {
		case condition.KindOverbought:
			return overbought, nil
		case condition.KindOversold:
			// the overbought zone wins when the bands overlap
			return fmt.Sprintf("(!%s && %s)", overbought, oversold), nil
		default:
			return "(" + overbought + " || " + oversold + ")", nil
		}
	case condition.KindUptrend, condition.KindDowntrend, condition.KindSideways:
		period := count("period", condition.DefaultTrendPeriod)
		a.need(max(period, 1))
		l.helpers[helperTrend] = true

		call := fmt.Sprintf("TrendOf(%s, %d, %s)", a.Name, period, num("threshold", condition.DefaultTrendBand))

		switch k {
		case condition.KindUptrend:
			return "(" + call + " == 1)", nil
		case condition.KindDowntrend:
			return "(" + call + " == -1)", nil
		default:
			return "(" + call + " == 0)", nil
		}
	case condition.KindFastRise, condition.KindFastFall:
		period := count("period", condition.DefaultROCPeriod)
		a.need(max(period+1, 1))
		l.helpers[helperRateOfChange] = true

		call := fmt.Sprintf("RateOfChange(%s, %d, %s)", a.Name, period, num("threshold", condition.DefaultROCPercent))
		if k == condition.KindFastRise {
			return "(" + call + " == 1)", nil
		}

		return "(" + call + " == -1)", nil
	case condition.KindBullishDivergence, condition.KindBearishDivergence, condition.KindDivergence:
		lookback := count("lookback", condition.DefaultLookback)
		a.need(max(lookback, 1))

		price := l.closes()
		price.need(max(lookback, 1))

		l.helpers[helperDivergence] = true

		call := fmt.Sprintf("Divergence(%s, %s, %d)", price.Name, a.Name, lookback)

		switch k {
		case condition.KindBullishDivergence:
			return "((" + call + " & 1) != 0)", nil
		case condition.KindBearishDivergence:
			return "((" + call + " & 2) != 0)", nil
		default:
			return "(" + call + " != 0)", nil
		}
	default:
		return "", errors.Newf(errors.ErrCodeUnresolvableNode, "condition %s has primitive %q which cannot be compiled", n.ID, k)
	}
}
