package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/stretchr/testify/suite"
)

// UtilsTestSuite is a test suite for utils package
type UtilsTestSuite struct {
	suite.Suite
}

// TestUtilsSuite runs the test suite
func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestGetResultFolder() {
	tests := []struct {
		name         string
		dataPath     string
		strategy     *graph.Strategy
		startTime    optional.Option[time.Time]
		endTime      optional.Option[time.Time]
		expectedPath string
	}{
		{
			name:         "Basic case without time range",
			dataPath:     "/path/to/data.csv",
			strategy:     &graph.Strategy{ID: "rsi", Name: "RSI"},
			startTime:    optional.None[time.Time](),
			endTime:      optional.None[time.Time](),
			expectedPath: "/results/rsi/data",
		},
		{
			name:         "Case with time range",
			dataPath:     "/path/to/data.parquet",
			strategy:     &graph.Strategy{ID: "rsi"},
			startTime:    optional.Some(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
			endTime:      optional.Some(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
			expectedPath: "/results/rsi/20230101_20231231/data",
		},
		{
			name:         "Case with only start time",
			dataPath:     "/path/to/data.csv",
			strategy:     &graph.Strategy{ID: "rsi"},
			startTime:    optional.Some(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
			endTime:      optional.None[time.Time](),
			expectedPath: "/results/rsi/20230101_all/data",
		},
		{
			name:         "Strategy without id uses a sanitized name",
			dataPath:     "/path/to/EURUSD_H1.csv",
			strategy:     &graph.Strategy{Name: "MA Cross/Fast"},
			startTime:    optional.None[time.Time](),
			endTime:      optional.None[time.Time](),
			expectedPath: "/results/MA_Cross_Fast/EURUSD_H1",
		},
		{
			name:         "In-memory bars use the run id",
			dataPath:     "",
			strategy:     &graph.Strategy{ID: "rsi"},
			startTime:    optional.None[time.Time](),
			endTime:      optional.None[time.Time](),
			expectedPath: "/results/rsi/run-1",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			b := &BacktestEngineV1{
				config: BacktestEngineV1Config{Start: tc.startTime, End: tc.endTime},
				last:   &engine.Result{RunID: "run-1"},
			}

			path := getResultFolder("/results", tc.dataPath, b, tc.strategy)
			suite.Equal(filepath.FromSlash(tc.expectedPath), path)
		})
	}
}

func (suite *UtilsTestSuite) TestSanitize() {
	suite.Equal("strategy", sanitize("  "))
	suite.Equal("a_b_c", sanitize("a:b*c"))
}
