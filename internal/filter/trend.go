package filter

import "github.com/rxtech-lab/argo-strategy/internal/condition"

// Required trend directions.
const (
	TrendAny  = "any"
	TrendUp   = "up"
	TrendDown = "down"
)

// TrendFilter requires a minimum ADX and optionally a trend direction.
type TrendFilter struct {
	MinADX       float64
	RequireTrend string
}

func NewTrendFilter(minADX float64, require string) *TrendFilter {
	if require == "" {
		require = TrendAny
	}

	return &TrendFilter{MinADX: minADX, RequireTrend: require}
}

func (f *TrendFilter) Check(trend condition.Trend, adx float64) Result {
	if !(adx >= f.MinADX) {
		return fail("Trend too weak: ADX %.1f", adx)
	}

	if f.RequireTrend != TrendAny && string(trend) != f.RequireTrend {
		return fail("Wrong trend direction: %s", trend)
	}

	return pass()
}
