package commission_fee

type CommissionFee interface {
	// Calculate returns the round-trip commission, in account currency, for a
	// position of the given lot size.
	Calculate(lots float64) float64
}

type Broker string

const (
	// BrokerECN charges a fixed commission per lot on each side of a trade.
	BrokerECN  Broker = "ecn"
	BrokerZero Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerECN,
	BrokerZero,
}

// GetCommissionFeeHandler returns the fee model of broker. perLot is the
// commission per lot per side and is ignored by commission-free brokers.
func GetCommissionFeeHandler(broker Broker, perLot float64) CommissionFee {
	switch broker {
	case BrokerECN:
		return NewECNCommissionFee(perLot)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
