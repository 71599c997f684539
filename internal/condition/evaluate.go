package condition

import (
	"math"
	"sort"
	"strings"

	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Kind names a composite primitive a condition node can evaluate instead of
// a plain comparison operator.
type Kind string

const (
	KindRise              Kind = "rise"
	KindFall              Kind = "fall"
	KindWithinLimits      Kind = "within_limits"
	KindOutsideLimits     Kind = "outside_limits"
	KindPriceAbove        Kind = "price_above"
	KindPriceBelow        Kind = "price_below"
	KindCrossesLevel      Kind = "crosses_level"
	KindSeriesCross       Kind = "series_cross"
	KindOverbought        Kind = "overbought"
	KindOversold          Kind = "oversold"
	KindExtreme           Kind = "extreme"
	KindUptrend           Kind = "uptrend"
	KindDowntrend         Kind = "downtrend"
	KindSideways          Kind = "sideways"
	KindFastRise          Kind = "fast_rise"
	KindFastFall          Kind = "fast_fall"
	KindBullishDivergence Kind = "bullish_divergence"
	KindBearishDivergence Kind = "bearish_divergence"
	KindDivergence        Kind = "divergence"
)

// Defaults of the primitive parameters.
const (
	DefaultBars        = 1
	DefaultLowerLimit  = 20
	DefaultUpperLimit  = 80
	DefaultPriceOffset = 0.001
	DefaultLevel       = 50
	DefaultOverbought  = 70
	DefaultOversold    = 30
	DefaultTrendPeriod = 5
	DefaultTrendBand   = 0.0001
	DefaultROCPeriod   = 5
	DefaultROCPercent  = 0.1
	DefaultLookback    = 20
)

var kinds = map[Kind]struct{}{
	KindRise: {}, KindFall: {}, KindWithinLimits: {}, KindOutsideLimits: {},
	KindPriceAbove: {}, KindPriceBelow: {}, KindCrossesLevel: {}, KindSeriesCross: {},
	KindOverbought: {}, KindOversold: {}, KindExtreme: {},
	KindUptrend: {}, KindDowntrend: {}, KindSideways: {},
	KindFastRise: {}, KindFastFall: {},
	KindBullishDivergence: {}, KindBearishDivergence: {}, KindDivergence: {},
}

// ParseKind resolves a primitive name. "indicator_" prefixes and "two_cross"
// are accepted as editor spellings.
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "indicator_")
	if s == "two_cross" || s == "two_indicators_cross" {
		s = string(KindSeriesCross)
	}

	k := Kind(s)
	_, ok := kinds[k]

	return k, ok
}

// Kinds lists every primitive in sorted order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// NeedsPrice reports whether the primitive reads the close series.
func (k Kind) NeedsPrice() bool {
	switch k {
	case KindPriceAbove, KindPriceBelow, KindBullishDivergence, KindBearishDivergence, KindDivergence:
		return true
	default:
		return false
	}
}

// Params supplies node parameters. graph.Node satisfies it.
type Params interface {
	NumberOr(key string, def float64) float64
	String(key string) string
	Has(key string) bool
}

// Inputs carries the histories visible at the current bar. The last element
// of each slice is the current value.
type Inputs struct {
	A     []float64
	B     []float64
	Price []float64
}

func last(values []float64, back int) float64 {
	i := len(values) - 1 - back
	if i < 0 {
		return math.NaN()
	}

	return values[i]
}

// Flag reads a boolean parameter given as true/false, "true" or a non-zero number.
func Flag(p Params, key string) bool {
	switch strings.ToLower(p.String(key)) {
	case "true":
		return true
	case "false", "":
		return false
	}

	return p.NumberOr(key, 0) != 0
}

// EvaluateOperator evaluates a comparison node. The right-hand side is the
// second input when one is wired, otherwise the threshold parameter.
func EvaluateOperator(op Operator, in Inputs, p Params) bool {
	a, prevA := last(in.A, 0), last(in.A, 1)

	var b, prevB float64
	if len(in.B) > 0 {
		b, prevB = last(in.B, 0), last(in.B, 1)
	} else {
		t := p.NumberOr("threshold", p.NumberOr("value", 0))
		b, prevB = t, t
	}

	return Compare(op, a, b, prevA, prevB)
}

// Evaluate evaluates a primitive against the current bar.
func Evaluate(k Kind, in Inputs, p Params) (bool, error) {
	cur := last(in.A, 0)

	switch k {
	case KindRise:
		return Rise(in.A, int(p.NumberOr("bars", DefaultBars)), p.NumberOr("threshold", 0)), nil
	case KindFall:
		return Fall(in.A, int(p.NumberOr("bars", DefaultBars)), p.NumberOr("threshold", 0)), nil
	case KindWithinLimits, KindOutsideLimits:
		if math.IsNaN(cur) {
			return false, nil
		}

		within := WithinLimits(cur, p.NumberOr("lowerLimit", DefaultLowerLimit), p.NumberOr("upperLimit", DefaultUpperLimit))

		return within == (k == KindWithinLimits), nil
	case KindPriceAbove:
		return PriceAbove(last(in.Price, 0), cur, p.NumberOr("threshold", DefaultPriceOffset), Flag(p, "percentMode")), nil
	case KindPriceBelow:
		return PriceBelow(last(in.Price, 0), cur, p.NumberOr("threshold", DefaultPriceOffset), Flag(p, "percentMode")), nil
	case KindCrossesLevel:
		return CrossesLevel(cur, last(in.A, 1), p.NumberOr("level", DefaultLevel), ParseDirection(p.String("direction"))).Any(), nil
	case KindSeriesCross:
		if len(in.B) == 0 {
			return false, errors.New(errors.ErrCodeMissingParameter, "series_cross needs two inputs")
		}

		return TwoSeriesCross(cur, last(in.A, 1), last(in.B, 0), last(in.B, 1), ParseDirection(p.String("direction"))).Any(), nil
	case KindOverbought, KindOversold, KindExtreme:
		if math.IsNaN(cur) {
			return false, nil
		}

		zone := Extreme(cur, p.NumberOr("overbought", DefaultOverbought), p.NumberOr("oversold", DefaultOversold))

		switch k {
		case KindOverbought:
			return zone == ZoneOverbought, nil
		case KindOversold:
			return zone == ZoneOversold, nil
		default:
			return zone != ZoneNeutral, nil
		}
	case KindUptrend, KindDowntrend, KindSideways:
		trend := TrendOf(in.A, int(p.NumberOr("period", DefaultTrendPeriod)), p.NumberOr("threshold", DefaultTrendBand))

		switch k {
		case KindUptrend:
			return trend == TrendUp, nil
		case KindDowntrend:
			return trend == TrendDown, nil
		default:
			return trend == TrendSideways, nil
		}
	case KindFastRise, KindFastFall:
		m := RateOfChange(in.A, int(p.NumberOr("period", DefaultROCPeriod)), p.NumberOr("threshold", DefaultROCPercent))
		if k == KindFastRise {
			return m == MomentumFastRise, nil
		}

		return m == MomentumFastFall, nil
	case KindBullishDivergence, KindBearishDivergence, KindDivergence:
		d := Divergence(in.Price, in.A, int(p.NumberOr("lookback", DefaultLookback)), DirectionBoth)

		switch k {
		case KindBullishDivergence:
			return d.Bullish, nil
		case KindBearishDivergence:
			return d.Bearish, nil
		default:
			return d.Bullish || d.Bearish, nil
		}
	default:
		return false, errors.Newf(errors.ErrCodeInvalidParameter, "unknown condition %q", k)
	}
}
