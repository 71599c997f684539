package commission_fee

// ECNCommissionFee charges PerLot on entry and again on exit.
type ECNCommissionFee struct {
	PerLot float64
}

func NewECNCommissionFee(perLot float64) CommissionFee {
	return &ECNCommissionFee{PerLot: perLot}
}

func (c *ECNCommissionFee) Calculate(lots float64) float64 {
	if lots <= 0 || c.PerLot <= 0 {
		return 0
	}

	return c.PerLot * lots * 2
}
