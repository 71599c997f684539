package engine

import (
	"os"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-strategy/internal/logger"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/stretchr/testify/suite"
)

// BacktestStateTestSuite is a test suite for BacktestState
type BacktestStateTestSuite struct {
	suite.Suite
	state *BacktestState
	start time.Time
}

func TestBacktestStateSuite(t *testing.T) {
	suite.Run(t, new(BacktestStateTestSuite))
}

func (suite *BacktestStateTestSuite) SetupSuite() {
	state, err := NewBacktestState(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.state = state
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *BacktestStateTestSuite) TearDownSuite() {
	if suite.state != nil {
		suite.state.Close()
	}
}

func (suite *BacktestStateTestSuite) SetupTest() {
	suite.Require().NoError(suite.state.Cleanup())
}

func (suite *BacktestStateTestSuite) trade(id string, nodeID string, profit float64, exitOffset time.Duration) types.Trade {
	return types.Trade{
		ID:         id,
		Type:       types.TradeTypeBuy,
		Symbol:     "EURUSD",
		NodeID:     nodeID,
		EntryTime:  suite.start,
		ExitTime:   suite.start.Add(exitOffset),
		EntryPrice: 1.1,
		ExitPrice:  1.101,
		Lots:       0.1,
		Pips:       10,
		Profit:     profit,
		Costs:      4.4,
		Reason:     types.ExitReasonTakeProfit,
	}
}

func (suite *BacktestStateTestSuite) TestRecordAndGetTrades() {
	trades := []types.Trade{
		suite.trade("t2", "buy", -5, 2*time.Hour),
		suite.trade("t1", "buy", 10, time.Hour),
	}

	suite.Require().NoError(suite.state.RecordTrades(trades))

	stored, err := suite.state.GetAllTrades()
	suite.Require().NoError(err)
	suite.Require().Len(stored, 2)

	suite.Equal("t1", stored[0].ID)
	suite.Equal(types.TradeTypeBuy, stored[0].Type)
	suite.Equal(types.ExitReasonTakeProfit, stored[0].Reason)
	suite.InDelta(10, stored[0].Profit, 1e-9)
	suite.True(suite.start.Add(time.Hour).Equal(stored[0].ExitTime))
}

func (suite *BacktestStateTestSuite) TestRecordEmpty() {
	suite.NoError(suite.state.RecordTrades(nil))
	suite.NoError(suite.state.RecordEquity(nil))

	trades, err := suite.state.GetAllTrades()
	suite.NoError(err)
	suite.Empty(trades)
}

func (suite *BacktestStateTestSuite) TestProfitByNode() {
	suite.Require().NoError(suite.state.RecordTrades([]types.Trade{
		suite.trade("a1", "buy", 10, time.Hour),
		suite.trade("a2", "buy", 5, time.Hour),
		suite.trade("b1", "sell", 30, time.Hour),
	}))

	profits, err := suite.state.ProfitByNode()
	suite.Require().NoError(err)
	suite.Require().Len(profits, 2)
	suite.Equal("sell", profits[0].NodeID)
	suite.Equal(2, profits[1].Trades)
	suite.InDelta(15, profits[1].Profit, 1e-9)
}

func (suite *BacktestStateTestSuite) TestWriteParquet() {
	suite.Require().NoError(suite.state.RecordTrades([]types.Trade{suite.trade("t1", "buy", 10, time.Hour)}))
	suite.Require().NoError(suite.state.RecordEquity([]types.EquityPoint{
		{Time: suite.start, Balance: 10000, Equity: 10000},
		{Time: suite.start.Add(time.Hour), Balance: 10010, Equity: 10010},
	}))

	count, err := suite.state.EquityCount()
	suite.NoError(err)
	suite.Equal(2, count)

	dir := suite.T().TempDir()
	tradesPath, equityPath, err := suite.state.Write(dir)
	suite.Require().NoError(err)

	suite.FileExists(tradesPath)
	suite.FileExists(equityPath)

	info, err := os.Stat(tradesPath)
	suite.Require().NoError(err)
	suite.Positive(info.Size())
}

func (suite *BacktestStateTestSuite) TestCleanup() {
	suite.Require().NoError(suite.state.RecordTrades([]types.Trade{suite.trade("t1", "buy", 10, time.Hour)}))
	suite.Require().NoError(suite.state.Cleanup())

	trades, err := suite.state.GetAllTrades()
	suite.NoError(err)
	suite.Empty(trades)

	// ids are free again after a cleanup
	suite.NoError(suite.state.RecordTrades([]types.Trade{suite.trade("t1", "buy", 10, time.Hour)}))
}
