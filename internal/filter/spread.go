package filter

import "strings"

const (
	DefaultPipSize   = 0.0001
	JPYPipSize       = 0.01
	DefaultMaxSpread = 3.0
)

// PipSize returns 0.01 for JPY-quoted symbols and 0.0001 otherwise.
func PipSize(symbol string) float64 {
	if strings.Contains(strings.ToUpper(symbol), "JPY") {
		return JPYPipSize
	}

	return DefaultPipSize
}

// SpreadFilter blocks entries when the quoted spread is too wide.
type SpreadFilter struct {
	MaxSpreadPips float64
	PipSize       float64
}

func NewSpreadFilter(maxSpreadPips, pipSize float64) *SpreadFilter {
	return &SpreadFilter{MaxSpreadPips: maxSpreadPips, PipSize: pipSize}
}

// SpreadPips converts a bid/ask pair to pips.
func (f *SpreadFilter) SpreadPips(bid, ask float64) float64 {
	return (ask - bid) / f.PipSize
}

// IsSpreadAcceptable reports (ask-bid)/pip <= max. A small epsilon absorbs
// float error at the boundary.
func (f *SpreadFilter) IsSpreadAcceptable(bid, ask float64) bool {
	return f.SpreadPips(bid, ask) <= f.MaxSpreadPips+1e-9
}

// Check takes the spread in price units and derives the pip size from symbol.
func (f *SpreadFilter) Check(spread float64, symbol string) Result {
	pips := spread / PipSize(symbol)
	if pips > f.MaxSpreadPips+1e-9 {
		return fail("Spread too high: %.1f pips", pips)
	}

	return pass()
}
