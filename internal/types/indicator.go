package types

type IndicatorType string

const (
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bb"
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeStochastic     IndicatorType = "stochastic"
	IndicatorTypeADX            IndicatorType = "adx"
	IndicatorTypePrice          IndicatorType = "price"
)
