package indicator

import (
	"strings"

	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// Source selects which bar price an indicator reads.
type Source string

const (
	SourceClose    Source = "close"
	SourceOpen     Source = "open"
	SourceHigh     Source = "high"
	SourceLow      Source = "low"
	SourceMedian   Source = "hl2"
	SourceTypical  Source = "hlc3"
	SourceWeighted Source = "hlcc4"
)

type stringParams interface {
	String(key string) string
}

// SourceOf reads the "source" parameter when params can carry strings.
// Unknown or missing sources fall back to close.
func SourceOf(params Params) Source {
	sp, ok := params.(stringParams)
	if !ok {
		return SourceClose
	}

	switch s := Source(strings.ToLower(sp.String("source"))); s {
	case SourceOpen, SourceHigh, SourceLow, SourceMedian, SourceTypical, SourceWeighted:
		return s
	case "median":
		return SourceMedian
	case "typical":
		return SourceTypical
	case "weighted":
		return SourceWeighted
	default:
		return SourceClose
	}
}

// SourceValues extracts the series src selects.
func SourceValues(bars []types.Bar, src Source) []float64 {
	out := make([]float64, len(bars))

	for i, b := range bars {
		switch src {
		case SourceOpen:
			out[i] = b.Open
		case SourceHigh:
			out[i] = b.High
		case SourceLow:
			out[i] = b.Low
		case SourceMedian:
			out[i] = (b.High + b.Low) / 2
		case SourceTypical:
			out[i] = (b.High + b.Low + b.Close) / 3
		case SourceWeighted:
			out[i] = (b.High + b.Low + 2*b.Close) / 4
		default:
			out[i] = b.Close
		}
	}

	return out
}

func sourceSeries(bars []types.Bar, params Params) []float64 {
	return SourceValues(bars, SourceOf(params))
}

// Price exposes raw bar prices as an indicator so conditions can compare
// price against other series. "value" follows the source parameter.
type Price struct{}

func NewPrice() Indicator {
	return &Price{}
}

func (p *Price) Name() types.IndicatorType {
	return types.IndicatorTypePrice
}

func (p *Price) Outputs() []string {
	return []string{OutputValue, "open", "high", "low", "close"}
}

func (p *Price) Calculate(bars []types.Bar, params Params) (Output, error) {
	return Output{
		OutputValue: sourceSeries(bars, params),
		"open":      SourceValues(bars, SourceOpen),
		"high":      SourceValues(bars, SourceHigh),
		"low":       SourceValues(bars, SourceLow),
		"close":     SourceValues(bars, SourceClose),
	}, nil
}
