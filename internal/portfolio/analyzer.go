package portfolio

import (
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// DefaultPeriod is the number of bars correlated when no period is given.
const DefaultPeriod = 30

// Correlation is the coefficient of one ordered instrument pair.
type Correlation struct {
	A           string   `json:"a" yaml:"a"`
	B           string   `json:"b" yaml:"b"`
	Coefficient float64  `json:"coefficient" yaml:"coefficient"`
	Strength    Strength `json:"strength" yaml:"strength"`
	Period      int      `json:"period" yaml:"period"`
	// Samples is the number of returns the coefficient was computed from.
	Samples int `json:"samples" yaml:"samples"`
}

// Matrix is a symmetric correlation table with 1 on the diagonal.
type Matrix struct {
	Symbols []string    `json:"symbols" yaml:"symbols"`
	Values  [][]float64 `json:"values" yaml:"values"`
}

type cacheKey struct {
	a, b     string
	period   int
	versionA uint64
	versionB uint64
}

// Analyzer keeps price history per instrument and caches pair coefficients.
// The cache key carries each instrument's data version, so new prices never
// serve a stale coefficient.
type Analyzer struct {
	mu       sync.Mutex
	period   int
	symbols  []string
	bars     map[string][]types.Bar
	versions map[string]uint64
	cache    map[cacheKey]Correlation
}

func NewAnalyzer(period int) *Analyzer {
	if period < 3 {
		period = DefaultPeriod
	}

	return &Analyzer{
		period:   period,
		bars:     make(map[string][]types.Bar),
		versions: make(map[string]uint64),
		cache:    make(map[cacheKey]Correlation),
	}
}

// UpdatePrices replaces the history of symbol and drops its cached pairs.
func (a *Analyzer) UpdatePrices(symbol string, bars []types.Bar) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.bars[symbol]; !ok {
		a.symbols = append(a.symbols, symbol)
	}

	a.bars[symbol] = bars
	a.versions[symbol]++

	for key := range a.cache {
		if key.a == symbol || key.b == symbol {
			delete(a.cache, key)
		}
	}
}

// Symbols lists instruments in the order they were first added.
func (a *Analyzer) Symbols() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.symbols)
}

// CacheSize is the number of cached coefficients.
func (a *Analyzer) CacheSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.cache)
}

// Pair correlates the returns of the last period aligned bars of x and y.
// A period of 0 uses the analyzer default.
func (a *Analyzer) Pair(x, y string, period int) (Correlation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.pair(x, y, period)
}

func (a *Analyzer) pair(x, y string, period int) (Correlation, error) {
	if period <= 0 {
		period = a.period
	}

	barsX, okX := a.bars[x]
	barsY, okY := a.bars[y]

	if !okX {
		return Correlation{}, errors.Newf(errors.ErrCodeUnknownInstrument, "no price data for %s", x)
	}

	if !okY {
		return Correlation{}, errors.Newf(errors.ErrCodeUnknownInstrument, "no price data for %s", y)
	}

	key := cacheKey{a: x, b: y, period: period, versionA: a.versions[x], versionB: a.versions[y]}
	if c, ok := a.cache[key]; ok {
		return c, nil
	}

	closesX, closesY := align(barsX, barsY)
	if len(closesX) > period {
		closesX = closesX[len(closesX)-period:]
		closesY = closesY[len(closesY)-period:]
	}

	retX, retY := Returns(closesX), Returns(closesY)
	coef := Pearson(retX, retY)

	c := Correlation{
		A:           x,
		B:           y,
		Coefficient: coef,
		Strength:    Classify(coef),
		Period:      period,
		Samples:     len(retX),
	}
	a.cache[key] = c

	return c, nil
}

// Matrix correlates every pair of known instruments.
func (a *Analyzer) Matrix() Matrix {
	a.mu.Lock()
	defer a.mu.Unlock()

	m := Matrix{Symbols: slices.Clone(a.symbols), Values: make([][]float64, len(a.symbols))}

	for i, x := range a.symbols {
		m.Values[i] = make([]float64, len(a.symbols))

		for j, y := range a.symbols {
			if i == j {
				m.Values[i][j] = 1
				continue
			}

			// both symbols are known, pair cannot fail
			c, _ := a.pair(x, y, 0)
			m.Values[i][j] = c.Coefficient
		}
	}

	return m
}

func (a *Analyzer) uniquePairs() []Correlation {
	var out []Correlation

	for i := range a.symbols {
		for j := i + 1; j < len(a.symbols); j++ {
			c, _ := a.pair(a.symbols[i], a.symbols[j], 0)
			out = append(out, c)
		}
	}

	return out
}

// DiversificationPairs returns pairs with min <= c <= max, most negative first.
func (a *Analyzer) DiversificationPairs(minCorrelation, maxCorrelation float64) []Correlation {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []Correlation

	for _, c := range a.uniquePairs() {
		if c.Coefficient >= minCorrelation && c.Coefficient <= maxCorrelation {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Coefficient < out[j].Coefficient })

	return out
}

// HighlyCorrelatedPairs returns pairs with |c| >= threshold, strongest first.
func (a *Analyzer) HighlyCorrelatedPairs(threshold float64) []Correlation {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []Correlation

	for _, c := range a.uniquePairs() {
		if math.Abs(c.Coefficient) >= threshold {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Coefficient) > math.Abs(out[j].Coefficient)
	})

	return out
}

// DiversificationScore is 100×(1−mean |c|) over the pairs of active,
// clamped to [0, 100]. Fewer than two instruments score 100.
func (a *Analyzer) DiversificationScore(active []string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.score(active)
}

func (a *Analyzer) score(active []string) float64 {
	if len(active) < 2 {
		return 100
	}

	total, count := 0.0, 0

	for i := range active {
		for j := i + 1; j < len(active); j++ {
			c, err := a.pair(active[i], active[j], 0)
			if err != nil {
				continue
			}

			total += math.Abs(c.Coefficient)
			count++
		}
	}

	if count == 0 {
		return 100
	}

	return math.Max(0, math.Min(100, (1-total/float64(count))*100))
}

// Recommend returns the unused instrument least correlated with active.
func (a *Analyzer) Recommend(active []string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	best, bestScore := "", -1.0

	for _, candidate := range a.symbols {
		if slices.Contains(active, candidate) {
			continue
		}

		total, count := 0.0, 0

		for _, existing := range active {
			c, err := a.pair(candidate, existing, 0)
			if err != nil {
				continue
			}

			total += math.Abs(c.Coefficient)
			count++
		}

		score := 1.0
		if count > 0 {
			score = 1 - total/float64(count)
		}

		if score > bestScore {
			best, bestScore = candidate, score
		}
	}

	return best, best != ""
}
