package datasource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/logger"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBDataSourceTestSuite struct {
	suite.Suite
	dataSource DataSource
	csvPath    string
}

func TestDuckDBDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBDataSourceTestSuite))
}

const testCSV = `time,symbol,open,high,low,close,volume
2024-01-01 00:00:00,EURUSD,1.1000,1.1010,1.0990,1.1005,100
2024-01-01 01:00:00,EURUSD,1.1005,1.1020,1.1000,1.1015,200
2024-01-01 02:00:00,EURUSD,1.1015,1.1030,1.1010,1.1025,300
2024-01-01 03:00:00,EURUSD,1.1025,1.1026,1.0980,1.0990,400
2024-01-01 00:00:00,GBPUSD,1.2700,1.2710,1.2690,1.2705,50
2024-01-01 01:00:00,GBPUSD,1.2705,1.2720,1.2700,1.2715,60
`

func (suite *DuckDBDataSourceTestSuite) SetupTest() {
	dir := suite.T().TempDir()
	suite.csvPath = filepath.Join(dir, "bars.csv")
	suite.Require().NoError(os.WriteFile(suite.csvPath, []byte(testCSV), 0644))

	ds, err := NewDataSource(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.dataSource = ds
}

func (suite *DuckDBDataSourceTestSuite) TearDownTest() {
	if suite.dataSource != nil {
		suite.dataSource.Close()
	}
}

func (suite *DuckDBDataSourceTestSuite) TestNotInitialized() {
	_, err := suite.dataSource.Symbols()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))

	_, err = LoadBars(suite.dataSource, optional.None[string](), optional.None[time.Time](), optional.None[time.Time]())
	suite.Error(err)
}

func (suite *DuckDBDataSourceTestSuite) TestUnsupportedExtension() {
	err := suite.dataSource.Initialize(strings.TrimSuffix(suite.csvPath, ".csv") + ".json")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *DuckDBDataSourceTestSuite) TestMissingFile() {
	err := suite.dataSource.Initialize(filepath.Join(suite.T().TempDir(), "missing.csv"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllBySymbol() {
	suite.Require().NoError(suite.dataSource.Initialize(suite.csvPath))

	bars, err := LoadBars(suite.dataSource, optional.Some("EURUSD"), optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(bars, 4)

	suite.Equal("EURUSD", bars[0].Symbol)
	suite.InDelta(1.1005, bars[0].Close, 1e-9)
	suite.InDelta(1.0990, bars[3].Close, 1e-9)
	suite.InDelta(400, bars[3].Volume, 1e-9)

	for i := 1; i < len(bars); i++ {
		suite.True(bars[i].Time.After(bars[i-1].Time))
	}
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllTimeWindow() {
	suite.Require().NoError(suite.dataSource.Initialize(suite.csvPath))

	start := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)

	bars, err := LoadBars(suite.dataSource, optional.Some("EURUSD"), optional.Some(start), optional.Some(end))
	suite.Require().NoError(err)
	suite.Len(bars, 2)
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllStopsEarly() {
	suite.Require().NoError(suite.dataSource.Initialize(suite.csvPath))

	count := 0
	for _, err := range suite.dataSource.ReadAll(optional.None[string](), optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)
		count++
		if count == 2 {
			break
		}
	}

	suite.Equal(2, count)
}

func (suite *DuckDBDataSourceTestSuite) TestCountAndSymbols() {
	suite.Require().NoError(suite.dataSource.Initialize(suite.csvPath))

	total, err := suite.dataSource.Count(optional.None[string](), optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(6, total)

	gbp, err := suite.dataSource.Count(optional.Some("GBPUSD"), optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(2, gbp)

	symbols, err := suite.dataSource.Symbols()
	suite.NoError(err)
	suite.Equal([]string{"EURUSD", "GBPUSD"}, symbols)
}

func (suite *DuckDBDataSourceTestSuite) TestGetRangeResampled() {
	suite.Require().NoError(suite.dataSource.Initialize(suite.csvPath))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)

	raw, err := suite.dataSource.GetRange("EURUSD", start, end, optional.None[Interval]())
	suite.Require().NoError(err)
	suite.Len(raw, 4)

	resampled, err := suite.dataSource.GetRange("EURUSD", start, end, optional.Some(Interval4h))
	suite.Require().NoError(err)
	suite.Require().Len(resampled, 1)

	bar := resampled[0]
	suite.InDelta(1.1000, bar.Open, 1e-9)
	suite.InDelta(1.1030, bar.High, 1e-9)
	suite.InDelta(1.0980, bar.Low, 1e-9)
	suite.InDelta(1.0990, bar.Close, 1e-9)
	suite.InDelta(1000, bar.Volume, 1e-9)
}

func (suite *DuckDBDataSourceTestSuite) TestGetRangeInvalidInterval() {
	suite.Require().NoError(suite.dataSource.Initialize(suite.csvPath))

	_, err := suite.dataSource.GetRange("EURUSD", time.Time{}, time.Now(), optional.Some(Interval("3h")))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
