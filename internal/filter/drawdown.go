package filter

// DrawdownFilter disables trading once the balance falls MaxDrawdownPercent
// below its running peak. It stays disabled until Reset.
type DrawdownFilter struct {
	MaxDrawdownPercent float64

	peak     float64
	current  float64
	disabled bool
}

func NewDrawdownFilter(maxDrawdownPercent float64) *DrawdownFilter {
	return &DrawdownFilter{MaxDrawdownPercent: maxDrawdownPercent}
}

// UpdateBalance records a balance and returns whether trading is still allowed.
func (f *DrawdownFilter) UpdateBalance(balance float64) bool {
	if balance > f.peak {
		f.peak = balance
	}

	if f.peak > 0 {
		f.current = (f.peak - balance) / f.peak * 100
	}

	if f.current >= f.MaxDrawdownPercent {
		f.disabled = true
	}

	return !f.disabled
}

func (f *DrawdownFilter) IsTradingAllowed() bool {
	return !f.disabled
}

// CurrentDrawdown is the last computed drawdown in percent.
func (f *DrawdownFilter) CurrentDrawdown() float64 {
	return f.current
}

func (f *DrawdownFilter) Peak() float64 {
	return f.peak
}

// Reset starts tracking again from initialBalance and re-enables trading.
func (f *DrawdownFilter) Reset(initialBalance float64) {
	f.peak = initialBalance
	f.current = 0
	f.disabled = false
}

func (f *DrawdownFilter) Check() Result {
	if f.disabled {
		return fail("Max drawdown exceeded: %.1f%%", f.current)
	}

	return pass()
}
