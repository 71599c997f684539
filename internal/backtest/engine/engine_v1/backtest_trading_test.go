package engine

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/stretchr/testify/suite"
)

type BacktestTradingTestSuite struct {
	suite.Suite
	trading *BacktestTrading
	start   time.Time
}

func TestBacktestTradingSuite(t *testing.T) {
	suite.Run(t, new(BacktestTradingTestSuite))
}

func (suite *BacktestTradingTestSuite) SetupTest() {
	config := DefaultConfig()
	config.Spread = 0
	config.Slippage = 0
	config.Broker = commission_fee.BrokerZero
	suite.trading = NewBacktestTrading(config)
	suite.start = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
}

func (suite *BacktestTradingTestSuite) order(nodeID string, side types.TradeType, price float64) OrderRequest {
	return OrderRequest{
		NodeID:         nodeID,
		Type:           side,
		Symbol:         "EURUSD",
		Time:           suite.start,
		Price:          price,
		Lots:           1,
		StopLossPips:   optional.None[float64](),
		TakeProfitPips: optional.None[float64](),
	}
}

func (suite *BacktestTradingTestSuite) TestBuyProfit() {
	position, err := suite.trading.Open(suite.order("buy", types.TradeTypeBuy, 1.1000))
	suite.Require().NoError(err)
	suite.NotEmpty(position.ID)

	trade, ok := suite.trading.Close(position.ID, suite.start.Add(time.Hour), 1.1050, types.ExitReasonSignal)
	suite.Require().True(ok)

	suite.InDelta(50, trade.Pips, 1e-9)
	suite.InDelta(500, trade.Profit, 1e-9)
	suite.InDelta(10500, suite.trading.Balance(), 1e-9)
	suite.Equal(time.Hour, trade.Duration())
	suite.Equal(0, suite.trading.OpenCount())
}

func (suite *BacktestTradingTestSuite) TestSellProfit() {
	position, err := suite.trading.Open(suite.order("sell", types.TradeTypeSell, 1.1000))
	suite.Require().NoError(err)

	trade, _ := suite.trading.Close(position.ID, suite.start, 1.0980, types.ExitReasonSignal)
	suite.InDelta(20, trade.Pips, 1e-9)
	suite.InDelta(200, trade.Profit, 1e-9)
}

func (suite *BacktestTradingTestSuite) TestJPYPipSize() {
	req := suite.order("buy", types.TradeTypeBuy, 150.00)
	req.Symbol = "USDJPY"
	req.Lots = 0.1

	position, err := suite.trading.Open(req)
	suite.Require().NoError(err)

	trade, _ := suite.trading.Close(position.ID, suite.start, 150.25, types.ExitReasonSignal)
	suite.InDelta(25, trade.Pips, 1e-9)
	suite.InDelta(25, trade.Profit, 1e-9)
}

func (suite *BacktestTradingTestSuite) TestCostsAreCharged() {
	trading := NewBacktestTrading(DefaultConfig())

	position, err := trading.Open(suite.order("buy", types.TradeTypeBuy, 1.1000))
	suite.Require().NoError(err)
	// spread 2 pips + slippage 1 pip on one lot + 7 per side commission
	suite.InDelta(44, position.EntryCost, 1e-9)

	trade, _ := trading.Close(position.ID, suite.start, 1.1000, types.ExitReasonSignal)
	suite.InDelta(-44, trade.Profit, 1e-9)
	suite.InDelta(44, trade.Costs, 1e-9)
	suite.InDelta(9956, trading.Balance(), 1e-9)
}

func (suite *BacktestTradingTestSuite) TestOnePositionPerNode() {
	_, err := suite.trading.Open(suite.order("buy", types.TradeTypeBuy, 1.1))
	suite.Require().NoError(err)

	_, err = suite.trading.Open(suite.order("buy", types.TradeTypeBuy, 1.1))
	suite.Error(err)

	_, err = suite.trading.Open(suite.order("other", types.TradeTypeBuy, 1.1))
	suite.NoError(err)
	suite.Equal(2, suite.trading.OpenCount())
	suite.True(suite.trading.HasPosition("other"))
}

func (suite *BacktestTradingTestSuite) TestInsufficientMargin() {
	req := suite.order("buy", types.TradeTypeBuy, 1.1)
	req.Lots = 100

	_, err := suite.trading.Open(req)
	suite.Error(err)
	suite.Contains(err.Error(), "insufficient margin")
}

func (suite *BacktestTradingTestSuite) TestStopLossCheckedBeforeTakeProfit() {
	req := suite.order("buy", types.TradeTypeBuy, 1.1000)
	req.StopLossPips = optional.Some(50.0)
	req.TakeProfitPips = optional.Some(100.0)

	position, err := suite.trading.Open(req)
	suite.Require().NoError(err)
	suite.InDelta(1.0950, position.StopLoss.Unwrap(), 1e-9)
	suite.InDelta(1.1100, position.TakeProfit.Unwrap(), 1e-9)

	// a bar that spans both levels exits at the stop
	closed := suite.trading.CheckExits(types.Bar{
		Symbol: "EURUSD", Time: suite.start.Add(time.Hour),
		Open: 1.1000, High: 1.1200, Low: 1.0900, Close: 1.1000,
	})
	suite.Require().Len(closed, 1)
	suite.Equal(types.ExitReasonStopLoss, closed[0].Reason)
	suite.InDelta(1.0950, closed[0].ExitPrice, 1e-9)
	suite.InDelta(-50, closed[0].Pips, 1e-9)
}

func (suite *BacktestTradingTestSuite) TestSellTakeProfit() {
	req := suite.order("sell", types.TradeTypeSell, 1.1000)
	req.StopLossPips = optional.Some(50.0)
	req.TakeProfitPips = optional.Some(30.0)

	_, err := suite.trading.Open(req)
	suite.Require().NoError(err)

	suite.Empty(suite.trading.CheckExits(types.Bar{Time: suite.start, High: 1.1010, Low: 1.0990, Close: 1.1}))

	closed := suite.trading.CheckExits(types.Bar{Time: suite.start, High: 1.1000, Low: 1.0960, Close: 1.0965})
	suite.Require().Len(closed, 1)
	suite.Equal(types.ExitReasonTakeProfit, closed[0].Reason)
	suite.InDelta(30, closed[0].Pips, 1e-9)
}

func (suite *BacktestTradingTestSuite) closeAt(price float64) types.Bar {
	return types.Bar{Symbol: "EURUSD", Time: suite.start, Open: price, High: price, Low: price, Close: price}
}

func (suite *BacktestTradingTestSuite) stopOf(nodeID string) optional.Option[float64] {
	for _, p := range suite.trading.Positions() {
		if p.NodeID == nodeID {
			return p.StopLoss
		}
	}

	suite.FailNow("no open position for " + nodeID)

	return nil
}

func (suite *BacktestTradingTestSuite) TestTrailingStopRatchets() {
	req := suite.order("buy", types.TradeTypeBuy, 1.1000)
	req.TrailingStop = optional.Some(graph.TrailingStop{Pips: 20, ActivationPips: 10, StepPips: 5})

	_, err := suite.trading.Open(req)
	suite.Require().NoError(err)

	// not yet activated
	suite.trading.ManageStops(suite.closeAt(1.1005))
	suite.True(suite.stopOf("buy").IsNone())

	suite.trading.ManageStops(suite.closeAt(1.1015))
	suite.InDelta(1.0995, suite.stopOf("buy").Unwrap(), 1e-9)

	// a 2 pip gain is below the step
	suite.trading.ManageStops(suite.closeAt(1.1017))
	suite.InDelta(1.0995, suite.stopOf("buy").Unwrap(), 1e-9)

	suite.trading.ManageStops(suite.closeAt(1.1030))
	suite.InDelta(1.1010, suite.stopOf("buy").Unwrap(), 1e-9)

	// never loosens on a pullback
	suite.trading.ManageStops(suite.closeAt(1.1020))
	suite.InDelta(1.1010, suite.stopOf("buy").Unwrap(), 1e-9)

	closed := suite.trading.CheckExits(types.Bar{Time: suite.start, High: 1.1022, Low: 1.1005, Close: 1.1008})
	suite.Require().Len(closed, 1)
	suite.Equal(types.ExitReasonStopLoss, closed[0].Reason)
	suite.InDelta(10, closed[0].Pips, 1e-9)
}

func (suite *BacktestTradingTestSuite) TestBreakEvenLocksOnceForASell() {
	req := suite.order("sell", types.TradeTypeSell, 1.1000)
	req.StopLossPips = optional.Some(50.0)
	req.BreakEven = optional.Some(graph.BreakEven{TriggerPips: 20, LockPips: 2})

	_, err := suite.trading.Open(req)
	suite.Require().NoError(err)

	suite.trading.ManageStops(suite.closeAt(1.0990))
	suite.InDelta(1.1050, suite.stopOf("sell").Unwrap(), 1e-9)

	suite.trading.ManageStops(suite.closeAt(1.0975))
	suite.InDelta(1.0998, suite.stopOf("sell").Unwrap(), 1e-9)

	suite.trading.ManageStops(suite.closeAt(1.0960))
	suite.InDelta(1.0998, suite.stopOf("sell").Unwrap(), 1e-9)

	closed := suite.trading.CheckExits(types.Bar{Time: suite.start, High: 1.1000, Low: 1.0970, Close: 1.0990})
	suite.Require().Len(closed, 1)
	suite.Equal(types.ExitReasonStopLoss, closed[0].Reason)
	suite.InDelta(2, closed[0].Pips, 1e-9)
}

func (suite *BacktestTradingTestSuite) TestManageStopsIgnoresPlainPositions() {
	req := suite.order("buy", types.TradeTypeBuy, 1.1000)
	req.StopLossPips = optional.Some(50.0)

	_, err := suite.trading.Open(req)
	suite.Require().NoError(err)

	suite.trading.ManageStops(suite.closeAt(1.1200))
	suite.InDelta(1.0950, suite.stopOf("buy").Unwrap(), 1e-9)
}

func (suite *BacktestTradingTestSuite) TestCloseAllAndEquity() {
	_, err := suite.trading.Open(suite.order("a", types.TradeTypeBuy, 1.1000))
	suite.Require().NoError(err)
	_, err = suite.trading.Open(suite.order("b", types.TradeTypeSell, 1.1000))
	suite.Require().NoError(err)

	// the hedge nets to zero
	suite.InDelta(10000, suite.trading.Equity(1.1100), 1e-9)

	closed := suite.trading.CloseAll(suite.start, 1.1010, types.ExitReasonEndOfData)
	suite.Len(closed, 2)
	suite.Equal(0, suite.trading.OpenCount())
	suite.Len(suite.trading.Trades(), 2)
	suite.InDelta(10000, suite.trading.Balance(), 1e-9)
}

func (suite *BacktestTradingTestSuite) TestDailyLossPercent() {
	_, err := suite.trading.Open(suite.order("a", types.TradeTypeBuy, 1.1000))
	suite.Require().NoError(err)

	suite.InDelta(0, suite.trading.DailyLossPercent(suite.start, 1.1000), 1e-9)
	// 100 pips on one lot is 1000, ten percent of the day's opening balance
	suite.InDelta(10, suite.trading.DailyLossPercent(suite.start.Add(time.Hour), 1.0900), 1e-9)
}

func (suite *BacktestTradingTestSuite) TestReset() {
	position, _ := suite.trading.Open(suite.order("a", types.TradeTypeBuy, 1.1))
	suite.trading.Close(position.ID, suite.start, 1.2, types.ExitReasonSignal)

	suite.trading.Reset(5000)
	suite.Equal(5000.0, suite.trading.Balance())
	suite.Empty(suite.trading.Trades())
	suite.Empty(suite.trading.Positions())
}
