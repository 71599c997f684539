package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/types"
)

type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
	Interval1w  Interval = "1w"
)

type DataSource interface {
	// Initialize loads the bars of a CSV or Parquet file. The file must have
	// time, symbol, open, high, low, close and volume columns.
	Initialize(path string) error
	// ReadAll yields the bars of symbol (every symbol when None) in time order.
	ReadAll(symbol optional.Option[string], start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// GetRange returns the bars of symbol between start and end, resampled to
	// interval when one is given.
	GetRange(symbol string, start time.Time, end time.Time, interval optional.Option[Interval]) ([]types.Bar, error)
	// Count returns the number of bars ReadAll would yield.
	Count(symbol optional.Option[string], start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Symbols lists the distinct symbols of the loaded file.
	Symbols() ([]string, error)
	// Close releases the underlying database.
	Close() error
}

// LoadBars drains ReadAll into a slice.
func LoadBars(ds DataSource, symbol optional.Option[string], start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range ds.ReadAll(symbol, start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}
