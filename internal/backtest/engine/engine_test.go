package engine

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackWithProgress() {
	var progress []int
	callback := OnProcessDataCallback(func(current int, total int) error {
		progress = append(progress, current)
		return nil
	})

	for i := 1; i <= 5; i++ {
		suite.NoError(callback(i, 5))
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestNilCallbacksAreAllowed() {
	callbacks := LifecycleCallbacks{}
	suite.Nil(callbacks.OnRunStart)
	suite.Nil(callbacks.OnProcessData)
	suite.Nil(callbacks.OnSignal)
}

func (suite *EngineTestSuite) TestSummary() {
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	result := &Result{
		RunID:    "run-1",
		Strategy: "RSI",
		Symbol:   "EURUSD",
		Bars:     100,
		EndTime:  end,
		Metrics:  types.Metrics{TotalTrades: 4},
	}

	summary := result.Summary("rsi-basic")
	suite.Equal("run-1", summary.ID)
	suite.Equal("rsi-basic", summary.StrategyID)
	suite.Equal("RSI", summary.StrategyName)
	suite.Equal(end, summary.Timestamp)
	suite.Equal(4, summary.Metrics.TotalTrades)
}
