package commission_fee

// PipCost converts a distance in pips into account currency for lots, given
// the value of one pip on one lot.
func PipCost(pips float64, lots float64, pipValue float64) float64 {
	if pips <= 0 || lots <= 0 {
		return 0
	}

	return pips * lots * pipValue
}
