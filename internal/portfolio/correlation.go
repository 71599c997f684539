// Package portfolio measures how instruments move together and uses it to
// decide which instruments may be traded at the same time.
package portfolio

import (
	"math"

	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// Strength is a signed correlation class.
type Strength string

const (
	StrongPositive   Strength = "strong_positive"
	ModeratePositive Strength = "moderate_positive"
	Weak             Strength = "weak"
	ModerateNegative Strength = "moderate_negative"
	StrongNegative   Strength = "strong_negative"
)

// Pearson returns the correlation coefficient of x and y. Mismatched or empty
// input and zero variance yield 0.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}

	meanX /= float64(n)
	meanY /= float64(n)

	var num, sumX2, sumY2 float64

	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		num += dx * dy
		sumX2 += dx * dx
		sumY2 += dy * dy
	}

	den := math.Sqrt(sumX2 * sumY2)
	if den == 0 || math.IsNaN(den) {
		return 0
	}

	return num / den
}

// Returns converts closes to simple bar-to-bar returns. A zero close yields a 0 return.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			out[i-1] = (closes[i] - closes[i-1]) / closes[i-1]
		}
	}

	return out
}

// Classify buckets a coefficient at ±0.3 and ±0.7.
func Classify(c float64) Strength {
	switch {
	case c > 0.7:
		return StrongPositive
	case c > 0.3:
		return ModeratePositive
	case c < -0.7:
		return StrongNegative
	case c < -0.3:
		return ModerateNegative
	default:
		return Weak
	}
}

// align returns the closes of a and b at the timestamps both series share, in
// time order. Series without timestamps are aligned by their tails.
func align(a, b []types.Bar) ([]float64, []float64) {
	if hasTimes(a) && hasTimes(b) {
		index := make(map[int64]float64, len(b))
		for _, bar := range b {
			index[bar.Time.UnixNano()] = bar.Close
		}

		var xa, xb []float64

		for _, bar := range a {
			if c, ok := index[bar.Time.UnixNano()]; ok {
				xa = append(xa, bar.Close)
				xb = append(xb, c)
			}
		}

		return xa, xb
	}

	n := min(len(a), len(b))

	return types.Closes(a[len(a)-n:]), types.Closes(b[len(b)-n:])
}

func hasTimes(bars []types.Bar) bool {
	return len(bars) > 0 && !bars[0].Time.IsZero()
}
