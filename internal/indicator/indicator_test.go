package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func risingBars(n int) []types.Bar {
	bars := make([]types.Bar, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range bars {
		base := float64(i)
		bars[i] = types.Bar{
			Symbol: "TEST",
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   base + 0.25,
			High:   base + 1,
			Low:    base,
			Close:  base + 0.5,
		}
	}

	return bars
}

func flatBars(n int, price float64) []types.Bar {
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{Open: price, High: price + 1, Low: price - 1, Close: price}
	}

	return bars
}

func (suite *IndicatorTestSuite) assertSeries(expected, actual []float64) {
	suite.Require().Len(actual, len(expected))

	for i := range expected {
		if math.IsNaN(expected[i]) {
			suite.True(math.IsNaN(actual[i]), "index %d: expected NaN, got %v", i, actual[i])
			continue
		}

		suite.InDelta(expected[i], actual[i], 1e-9, "index %d", i)
	}
}

func (suite *IndicatorTestSuite) TestSMA() {
	nan := math.NaN()
	suite.assertSeries([]float64{nan, nan, 2, 3, 4}, SMA([]float64{1, 2, 3, 4, 5}, 3))
	suite.assertSeries([]float64{nan, nan}, SMA([]float64{1, 2}, 3))
	suite.assertSeries([]float64{nan, nan, 1.5, 2.5}, SMA([]float64{nan, 1, 2, 3}, 2))
}

func (suite *IndicatorTestSuite) TestEMA() {
	nan := math.NaN()
	suite.assertSeries([]float64{nan, nan, 2, 3, 4}, EMA([]float64{1, 2, 3, 4, 5}, 3))
	suite.assertSeries([]float64{nan, nan, 1.5, 2.5}, EMA([]float64{nan, 1, 2, 3}, 2))
	suite.assertSeries([]float64{nan}, EMA([]float64{1}, 0))
}

func (suite *IndicatorTestSuite) TestRSI() {
	rising := []float64{1, 2, 3, 4, 5, 6}
	falling := []float64{6, 5, 4, 3, 2, 1}

	rsiUp := RSIValues(rising, 3)
	suite.True(math.IsNaN(rsiUp[2]))
	suite.Equal(100.0, rsiUp[3])
	suite.Equal(100.0, rsiUp[5])

	rsiDown := RSIValues(falling, 3)
	suite.InDelta(0, rsiDown[5], 1e-9)

	for _, v := range RSIValues([]float64{1, 2, 3}, 14) {
		suite.True(math.IsNaN(v))
	}
}

func (suite *IndicatorTestSuite) TestRSIStaysInRange() {
	values := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1, 45.9, 46.3, 45.6, 46.3, 46.3, 46.0, 46.4, 46.2, 45.6}
	for i, v := range RSIValues(values, 14) {
		if i < 14 {
			suite.True(math.IsNaN(v))
			continue
		}

		suite.GreaterOrEqual(v, 0.0)
		suite.LessOrEqual(v, 100.0)
	}
}

func (suite *IndicatorTestSuite) TestMACDOnFlatSeriesIsZero() {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100
	}

	macd, sig, hist := MACDValues(values, 12, 26, 9)
	suite.True(math.IsNaN(macd[24]))
	suite.InDelta(0, macd[25], 1e-12)
	suite.True(math.IsNaN(sig[32]))
	suite.InDelta(0, sig[33], 1e-12)
	suite.InDelta(0, hist[39], 1e-12)
}

func (suite *IndicatorTestSuite) TestMACDRejectsInvertedPeriods() {
	_, err := NewMACD().Calculate(risingBars(50), MapParams{"fastPeriod": 26, "slowPeriod": 12})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *IndicatorTestSuite) TestBollinger() {
	upper, middle, lower := BollingerValues([]float64{1, 2, 3}, 3, 2)
	sd := math.Sqrt(2.0 / 3.0)
	suite.InDelta(2, middle[2], 1e-12)
	suite.InDelta(2+2*sd, upper[2], 1e-12)
	suite.InDelta(2-2*sd, lower[2], 1e-12)
	suite.True(math.IsNaN(upper[1]))

	_, err := NewBollingerBands().Calculate(risingBars(30), MapParams{"stdDev": 0})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *IndicatorTestSuite) TestATR() {
	bars := flatBars(20, 100)
	atr := ATRValues(bars, 14)
	suite.True(math.IsNaN(atr[13]))
	suite.InDelta(2, atr[14], 1e-12)
	suite.InDelta(2, atr[19], 1e-12)

	tr := TrueRange(risingBars(3))
	suite.Equal([]float64{1, 1.5, 1.5}, tr)
}

func (suite *IndicatorTestSuite) TestStochastic() {
	k, d := StochasticValues(flatBars(10, 50), 5, 3, 3)
	suite.InDelta(50, k[9], 1e-12)
	suite.InDelta(50, d[9], 1e-12)
	suite.True(math.IsNaN(k[5]))

	kUp, _ := StochasticValues(risingBars(20), 5, 3, 1)
	// close sits 0.5 below the window high of a 5-bar range of 5
	suite.InDelta((4.5/5)*100, kUp[10], 1e-9)
}

func (suite *IndicatorTestSuite) TestADXStrongTrend() {
	adx, plus, minus := ADXValues(risingBars(40), 14)
	suite.True(math.IsNaN(adx[26]))
	suite.InDelta(100, adx[27], 1e-9)
	suite.InDelta(100, adx[39], 1e-9)
	suite.Greater(plus[20], 0.0)
	suite.Equal(0.0, minus[20])
}

func (suite *IndicatorTestSuite) TestCalculateIsDeterministic() {
	bars := risingBars(60)
	for _, ind := range []Indicator{NewSMA(), NewEMA(), NewRSI(), NewMACD(), NewBollingerBands(), NewATR(), NewStochastic(), NewADX()} {
		first, err := ind.Calculate(bars, MapParams{})
		suite.Require().NoError(err)
		second, err := ind.Calculate(bars, MapParams{})
		suite.Require().NoError(err)

		for name, series := range first {
			for i := range series {
				suite.Equal(math.Float64bits(series[i]), math.Float64bits(second[name][i]), "%s.%s[%d]", ind.Name(), name, i)
			}
		}

		suite.NotNil(first.Primary(ind.Outputs()), "%s has a primary output", ind.Name())
	}
}

func (suite *IndicatorTestSuite) TestShortHistoryNeverFails() {
	bars := risingBars(2)
	for _, ind := range []Indicator{NewSMA(), NewRSI(), NewMACD(), NewBollingerBands(), NewATR(), NewStochastic(), NewADX()} {
		out, err := ind.Calculate(bars, MapParams{})
		suite.NoError(err)

		for _, series := range out {
			suite.Len(series, 2)
		}
	}
}

func (suite *IndicatorTestSuite) TestInvalidPeriod() {
	_, err := NewRSI().Calculate(risingBars(5), MapParams{"period": 0})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = NewSMA().Calculate(risingBars(5), MapParams{"period": 2.5})
	suite.Error(err)
}

func (suite *IndicatorTestSuite) TestAt() {
	suite.Equal(2.0, At([]float64{1, 2}, 1))
	suite.True(math.IsNaN(At([]float64{1, 2}, 2)))
	suite.True(math.IsNaN(At(nil, -1)))
}

type sourceParams map[string]string

func (p sourceParams) NumberOr(_ string, def float64) float64 { return def }
func (p sourceParams) String(key string) string { return p[key] }

func (suite *IndicatorTestSuite) TestSourceSelection() {
	bars := risingBars(3)

	suite.Equal(SourceClose, SourceOf(MapParams{}))
	suite.Equal(SourceMedian, SourceOf(sourceParams{"source": "median"}))
	suite.Equal([]float64{0.5, 1.5, 2.5}, SourceValues(bars, SourceClose))
	suite.Equal([]float64{0.5, 1.5, 2.5}, SourceValues(bars, SourceMedian))
	suite.Equal([]float64{1, 2, 3}, SourceValues(bars, SourceHigh))

	out, err := NewPrice().Calculate(bars, sourceParams{"source": "open"})
	suite.Require().NoError(err)
	suite.Equal([]float64{0.25, 1.25, 2.25}, out[OutputValue])
	suite.Equal([]float64{0.5, 1.5, 2.5}, out["close"])
}
