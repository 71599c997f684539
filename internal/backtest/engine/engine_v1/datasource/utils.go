package datasource

import (
	"fmt"
	"strings"
)

func getIntervalMinutes(interval Interval) (int, error) {
	var intervalMinutes int

	switch interval {
	case Interval1m:
		intervalMinutes = 1
	case Interval5m:
		intervalMinutes = 5
	case Interval15m:
		intervalMinutes = 15
	case Interval30m:
		intervalMinutes = 30
	case Interval1h:
		intervalMinutes = 60
	case Interval4h:
		intervalMinutes = 240
	case Interval1d:
		intervalMinutes = 1440
	case Interval1w:
		intervalMinutes = 10080
	default:
		return 0, fmt.Errorf("unsupported interval: %s", interval)
	}

	return intervalMinutes, nil
}

// ParseTimeframe maps a terminal timeframe name (M1, H1, D1...) or an
// interval string (1m, 1h...) to an Interval.
func ParseTimeframe(tf string) (Interval, error) {
	switch strings.ToUpper(strings.TrimSpace(tf)) {
	case "M1", "1M":
		return Interval1m, nil
	case "M5", "5M":
		return Interval5m, nil
	case "M15", "15M":
		return Interval15m, nil
	case "M30", "30M":
		return Interval30m, nil
	case "H1", "1H":
		return Interval1h, nil
	case "H4", "4H":
		return Interval4h, nil
	case "D1", "1D":
		return Interval1d, nil
	case "W1", "1W":
		return Interval1w, nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}
