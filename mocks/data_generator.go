package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// DataGenerator produces synthetic forex bars for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a generator. A fixed seed gives reproducible bars.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures the generated series.
type GeneratorConfig struct {
	Symbol    string
	StartTime time.Time
	// Interval between two bars
	Interval     time.Duration
	Count        int
	InitialPrice float64
	// Volatility per bar (0.001 = 0.1%)
	Volatility float64
	// Trend is the total drift spread over the series
	Trend          float64
	VolumeBase     float64
	VolumeVariance float64
	// Decimals the prices are rounded to
	Decimals int
}

// DefaultConfig is a year of hourly EURUSD-like bars.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "EURUSD",
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       time.Hour,
		Count:          10000,
		InitialPrice:   1.1,
		Volatility:     0.001,
		Trend:          0.0,
		VolumeBase:     1000,
		VolumeVariance: 0.3,
		Decimals:       5,
	}
}

func (g *DataGenerator) normal() float64 {
	u1 := g.rng.Float64()
	u2 := g.rng.Float64()

	// guard log(0)
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}

	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Generate creates bars following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	return g.generate(config, nil)
}

// GenerateCorrelated creates a series whose per-bar shocks are mixed with
// those of base by rho. rho = 1 replays base's shocks, rho = -1 mirrors them.
func (g *DataGenerator) GenerateCorrelated(config GeneratorConfig, base []types.Bar, rho float64) []types.Bar {
	shocks := make([]float64, len(base))
	for i := 1; i < len(base); i++ {
		if base[i-1].Close != 0 {
			shocks[i] = base[i].Close/base[i-1].Close - 1
		}
	}

	return g.generate(config, func(i int) float64 {
		own := config.Volatility * g.normal()
		if i >= len(shocks) {
			return own
		}

		return rho*shocks[i] + math.Sqrt(math.Max(0, 1-rho*rho))*own
	})
}

func (g *DataGenerator) generate(config GeneratorConfig, shock func(i int) float64) []types.Bar {
	decimals := config.Decimals
	if decimals == 0 {
		decimals = 5
	}

	bars := make([]types.Bar, config.Count)
	price := config.InitialPrice
	ts := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := price

		var change float64
		if shock != nil {
			change = shock(i)
		} else {
			change = config.Volatility * g.normal()
		}

		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + change + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, closePrice) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars[i] = types.Bar{
			Symbol: config.Symbol,
			Time:   ts,
			Open:   roundToDecimals(open, decimals),
			High:   roundToDecimals(high, decimals),
			Low:    roundToDecimals(low, decimals),
			Close:  roundToDecimals(closePrice, decimals),
			Volume: roundToDecimals(volume, 2),
		}

		price = closePrice
		ts = ts.Add(config.Interval)
	}

	return bars
}

// GenerateMultiSymbol generates one series per symbol with slightly varied
// starting prices and volatility.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) map[string][]types.Bar {
	out := make(map[string][]types.Bar, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		out[symbol] = g.Generate(config)
	}

	return out
}

// Generate10K returns 10,000 default bars for symbol.
func Generate10K(symbol string) []types.Bar {
	config := DefaultConfig()
	config.Symbol = symbol

	return NewDataGenerator(42).Generate(config)
}

// TrendingBars returns n hourly bars that fall steadily for the first half and
// rise for the second half. The decline drives a 14-period RSI to zero, so
// oversold entries fire, and the recovery makes them profitable.
func TrendingBars(n int) []types.Bar {
	bars := make([]types.Bar, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 1.2
	half := n / 2

	for i := 0; i < n; i++ {
		step := -0.001
		if i >= half {
			step = 0.0015
		}

		open := price
		closePrice := price + step

		bars[i] = types.Bar{
			Symbol: "EURUSD",
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   roundToDecimals(open, 5),
			High:   roundToDecimals(math.Max(open, closePrice)+0.0002, 5),
			Low:    roundToDecimals(math.Min(open, closePrice)-0.0002, 5),
			Close:  roundToDecimals(closePrice, 5),
			Volume: 1000,
		}

		price = closePrice
	}

	return bars
}

// FlatBars returns n bars at a constant price.
func FlatBars(n int, price float64) []types.Bar {
	bars := make([]types.Bar, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range bars {
		bars[i] = types.Bar{
			Symbol: "EURUSD",
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		}
	}

	return bars
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
