package codegen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/internal/validator"
	"github.com/rxtech-lab/argo-strategy/mocks"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CodegenTestSuite struct {
	suite.Suite
}

func TestCodegenSuite(t *testing.T) {
	suite.Run(t, new(CodegenTestSuite))
}

func (suite *CodegenTestSuite) compile(s *graph.Strategy, d Dialect) string {
	source, err := Compile(s, Options{Dialect: d, StrategyName: "Test EA", MagicNumber: 4242})
	suite.Require().NoError(err)

	return source
}

var fixtures = map[string]func() *graph.Strategy{
	"rsi":       mocks.RSIStrategy,
	"ma-cross":  mocks.MACrossStrategy,
	"complex":   mocks.ComplexStrategy,
	"bollinger": mocks.BollingerStrategy,
}

func (suite *CodegenTestSuite) TestEveryFixtureHasRequiredStructure() {
	for name, fixture := range fixtures {
		for _, d := range []Dialect{DialectMQL4, DialectMQL5} {
			source := suite.compile(fixture(), d)

			suite.True(HasRequiredStructure(source), "%s/%s", name, d)
			suite.Contains(source, "input int    MagicNumber = 4242;", "%s/%s", name, d)
			suite.Contains(source, `#property copyright "Test EA"`, "%s/%s", name, d)
		}
	}
}

var boolLine = regexp.MustCompile(`(?m)^\s+bool \w+ = .*$`)

// Both dialects must encode the same decisions: the boolean bindings and the
// order guards are dialect independent.
func (suite *CodegenTestSuite) TestDialectsShareDecisionLogic() {
	for name, fixture := range fixtures {
		mql4Source := suite.compile(fixture(), DialectMQL4)
		mql5Source := suite.compile(fixture(), DialectMQL5)

		suite.NotEmpty(boolLine.FindAllString(mql4Source, -1), name)
		suite.Equal(boolLine.FindAllString(mql4Source, -1), boolLine.FindAllString(mql5Source, -1), name)
		suite.Equal(strings.Count(mql4Source, "OpenPosition(OP_"), strings.Count(mql5Source, "OpenPosition(ORDER_TYPE_"), name)
	}
}

func (suite *CodegenTestSuite) TestRSIStrategyMQL4() {
	source := suite.compile(mocks.RSIStrategy(), DialectMQL4)

	suite.Contains(source, "#property strict")
	suite.Contains(source, "input int Inp_rsi_1_period = 14; // RSI(14) period")
	suite.Contains(source, "input double Inp_condition_buy_threshold = 30.0;")
	suite.Contains(source, "double rsi_1_value[1];")
	suite.Contains(source, "rsi_1_value[k] = iRSI(_Symbol, PERIOD_CURRENT, Inp_rsi_1_period, PRICE_CLOSE, k + 1);")
	suite.Contains(source, "bool c_condition_buy = (rsi_1_value[0] < Inp_condition_buy_threshold);")
	suite.Contains(source, "bool c_condition_sell = (rsi_1_value[0] > Inp_condition_sell_threshold);")
	suite.Contains(source, "bool a_action_buy = c_condition_buy;")
	suite.Contains(source, "if(a_action_buy && !HasPosition(MagicNumber + 0))")
	suite.Contains(source, `OpenPosition(OP_BUY, Inp_action_buy_lots, Inp_action_buy_stop_loss_pips, Inp_action_buy_take_profit_pips, MagicNumber + 0, "Buy");`)
	suite.Contains(source, `OpenPosition(OP_SELL, Inp_action_sell_lots, Inp_action_sell_stop_loss_pips, Inp_action_sell_take_profit_pips, MagicNumber + 1, "Sell");`)
	suite.Contains(source, "#define ACTION_COUNT 2")
	suite.Contains(source, "OrderSend(")
	suite.NotContains(source, "CopyBuffer")
	suite.NotContains(source, "TrendOf(")
}

func (suite *CodegenTestSuite) TestRSIStrategyMQL5() {
	source := suite.compile(mocks.RSIStrategy(), DialectMQL5)

	suite.NotContains(source, "#property strict")
	suite.Contains(source, "#include <Trade/Trade.mqh>")
	suite.Contains(source, "CTrade trade;")
	suite.Contains(source, "int h_rsi_1 = INVALID_HANDLE;")
	suite.Contains(source, "h_rsi_1 = iRSI(_Symbol, PERIOD_CURRENT, Inp_rsi_1_period, PRICE_CLOSE);")
	suite.Contains(source, "if(CopyBuffer(h_rsi_1, 0, 1, 1, rsi_1_value) < 1)")
	suite.Contains(source, "IndicatorRelease(h_rsi_1);")
	suite.Contains(source, `OpenPosition(ORDER_TYPE_BUY, Inp_action_buy_lots, Inp_action_buy_stop_loss_pips, Inp_action_buy_take_profit_pips, MagicNumber + 0, "Buy");`)
	suite.Contains(source, "trade.PositionClose(ticket, Slippage)")
}

func (suite *CodegenTestSuite) TestCrossesReadThePreviousBar() {
	source := suite.compile(mocks.MACrossStrategy(), DialectMQL4)

	suite.Contains(source, "double sma_fast_value[2];")
	suite.Contains(source, "double sma_slow_value[2];")
	suite.Contains(source, "iMA(_Symbol, PERIOD_CURRENT, Inp_sma_fast_period, 0, MODE_SMA, PRICE_CLOSE, k + 1)")
	suite.Contains(source, "bool c_cross_above = (sma_fast_value[1] <= sma_slow_value[1] && sma_fast_value[0] > sma_slow_value[0]);")
	suite.Contains(source, "bool c_cross_below = (sma_fast_value[1] >= sma_slow_value[1] && sma_fast_value[0] < sma_slow_value[0]);")
	suite.Contains(source, "bool l_and_1 = c_cross_above;")
	suite.Contains(source, "bool a_action_buy = l_and_1;")
}

func (suite *CodegenTestSuite) TestRiskNodesAttachToTheAction() {
	for _, d := range []Dialect{DialectMQL4, DialectMQL5} {
		source := suite.compile(mocks.ComplexStrategy(), d)

		suite.Contains(source, "bool l_and_1 = c_macd_up && c_rsi_ok;")
		suite.Contains(source, "bool b_sl_1 = (l_and_1);")
		suite.Contains(source, "bool a_action_buy = b_sl_1 && b_tp_1;")
		suite.Contains(source, "input double Inp_sl_1_stop_loss_pips = 50.0;")
		suite.Contains(source, "input double Inp_tp_1_take_profit_pips = 100.0;")
		suite.Contains(source, "Inp_action_buy_lots, Inp_sl_1_stop_loss_pips, Inp_tp_1_take_profit_pips, MagicNumber + 0")
		suite.Contains(source, "bool c_rsi_extreme = ((rsi_1_value[0] >= Inp_rsi_extreme_overbought) || (rsi_1_value[0] <= Inp_rsi_extreme_oversold));")
		suite.Contains(source, "if(a_action_close)\n      CloseAll();")
		suite.Contains(source, "#define ACTION_COUNT 1")

		// closes run before entries
		suite.Less(strings.Index(source, "CloseAll();\n"), strings.Index(source, "if(a_action_buy"))
	}
}

// The signal line is the EMA of the main line, as the backtester computes
// it, not the platform's SMA signal buffer.
func (suite *CodegenTestSuite) TestMACDHistogram() {
	histogram := "macd_1_histogram[k] = macd_1_histogram_main[k] - EmaOf(macd_1_histogram_main, Inp_macd_1_signalPeriod, k);"

	mql4Source := suite.compile(mocks.ComplexStrategy(), DialectMQL4)
	suite.Contains(mql4Source, "ArrayResize(macd_1_histogram_main, 2 + 10 * Inp_macd_1_signalPeriod);")
	suite.Contains(mql4Source, "macd_1_histogram_main[k] = iMACD(_Symbol, PERIOD_CURRENT, Inp_macd_1_fastPeriod, Inp_macd_1_slowPeriod, Inp_macd_1_signalPeriod, PRICE_CLOSE, MODE_MAIN, k + 1);")
	suite.Contains(mql4Source, histogram)
	suite.Contains(mql4Source, "double EmaOf(const double &values[], int period, int shift)")
	suite.Contains(mql4Source, "bool c_macd_up = (macd_1_histogram[1] <= Inp_macd_up_threshold && macd_1_histogram[0] > Inp_macd_up_threshold);")
	suite.NotContains(mql4Source, "MODE_SIGNAL")

	mql5Source := suite.compile(mocks.ComplexStrategy(), DialectMQL5)
	suite.Contains(mql5Source, "h_macd_1 = iMACD(_Symbol, PERIOD_CURRENT, Inp_macd_1_fastPeriod, Inp_macd_1_slowPeriod, Inp_macd_1_signalPeriod, PRICE_CLOSE);")
	suite.Contains(mql5Source, "int macd_1_histogram_main_length = 2 + 10 * Inp_macd_1_signalPeriod;")
	suite.Contains(mql5Source, "if(CopyBuffer(h_macd_1, 0, 1, macd_1_histogram_main_length, macd_1_histogram_main) < macd_1_histogram_main_length)")
	suite.Contains(mql5Source, histogram)
	suite.Contains(mql5Source, "double EmaOf(const double &values[], int period, int shift)")
	suite.NotContains(mql5Source, "CopyBuffer(h_macd_1, 1,")
}

func (suite *CodegenTestSuite) TestEMAHelperOnlyForMACD() {
	for _, d := range []Dialect{DialectMQL4, DialectMQL5} {
		suite.NotContains(suite.compile(mocks.RSIStrategy(), d), "EmaOf", d)
	}
}

func riskSizedStrategy() *graph.Strategy {
	s := mocks.RSIStrategy()
	params := func() map[string]any {
		return map[string]any{"riskPercent": 1.0, "stopLoss": 50.0, "takeProfit": 100.0}
	}
	s.Nodes[4] = mocks.Node("action-buy", graph.CategoryAction, "Buy", map[string]any{"action": "buy"}, params())
	s.Nodes[5] = mocks.Node("action-sell", graph.CategoryAction, "Sell", map[string]any{"action": "sell"}, params())

	return s
}

func (suite *CodegenTestSuite) TestRiskPercentSizesFromTheStop() {
	for _, d := range []Dialect{DialectMQL4, DialectMQL5} {
		source := suite.compile(riskSizedStrategy(), d)

		suite.Contains(source, "input double Inp_action_buy_risk_percent = 1.0;", d)
		suite.Contains(source, "RiskLots(Inp_action_buy_risk_percent, Inp_action_buy_stop_loss_pips), Inp_action_buy_stop_loss_pips, Inp_action_buy_take_profit_pips", d)
		suite.Contains(source, "double RiskLots(double riskPercent, double slPips)", d)
		suite.Contains(source, "AccountInfoDouble(ACCOUNT_BALANCE) * riskPercent / 100 / (slPips * pipValue)", d)
		suite.Contains(source, "if(lots <= 0)", d)
	}

	// explicit lots win over a risk percent
	s := riskSizedStrategy()
	s.Nodes[4].Data.Parameters["lots"] = 0.3
	source := suite.compile(s, DialectMQL4)
	suite.Contains(source, "OpenPosition(OP_BUY, Inp_action_buy_lots, ")
	suite.Contains(source, "OpenPosition(OP_SELL, RiskLots(")

	// without a stop there is nothing to size from
	s = riskSizedStrategy()
	delete(s.Nodes[4].Data.Parameters, "stopLoss")
	suite.Contains(suite.compile(s, DialectMQL4), "OpenPosition(OP_BUY, DefaultLots, 0, ")

	suite.NotContains(suite.compile(mocks.RSIStrategy(), DialectMQL5), "RiskLots")
}

func (suite *CodegenTestSuite) TestTrailingStopIsManaged() {
	s := mocks.RiskManagedStrategy("trailing_stop", map[string]any{"pips": 30.0, "step": 5.0})

	for _, d := range []Dialect{DialectMQL4, DialectMQL5} {
		source := suite.compile(s, d)

		suite.Contains(source, "input double Inp_risk_1_trailing_pips = 30.0;", d)
		suite.Contains(source, "input double Inp_risk_1_activation_pips = 0.0;", d)
		suite.Contains(source, "input double Inp_risk_1_step_pips = 5.0;", d)
		suite.Contains(source, ", Inp_risk_1_trailing_pips, Inp_risk_1_activation_pips, Inp_risk_1_step_pips, 0, 0);", d)
		suite.Equal(1, strings.Count(source, "   ManageStops(MagicNumber + "), d)
		suite.Contains(source, "double TightenedStop(double dir, double entry, double stop, double price,", d)

		// stops move on the new bar before any signal is evaluated
		suite.Less(strings.Index(source, "LastBarTime = barTime;"), strings.Index(source, "ManageStops(MagicNumber"), d)
		suite.Less(strings.Index(source, "ManageStops(MagicNumber"), strings.Index(source, "bool c_condition_buy"), d)
	}

	suite.Contains(suite.compile(s, DialectMQL4), "OrderModify(OrderTicket(), OrderOpenPrice(), NormalizeDouble(sl, _Digits), OrderTakeProfit(), 0, clrNONE)")
	suite.Contains(suite.compile(s, DialectMQL5), "trade.PositionModify(ticket, NormalizeDouble(sl, _Digits), PositionGetDouble(POSITION_TP))")
}

func (suite *CodegenTestSuite) TestBreakEvenIsManaged() {
	s := mocks.RiskManagedStrategy("break_even", map[string]any{"profitPips": 20.0, "lockPips": 2.0})

	for _, d := range []Dialect{DialectMQL4, DialectMQL5} {
		source := suite.compile(s, d)

		suite.Contains(source, "input double Inp_risk_1_trigger_pips = 20.0;", d)
		suite.Contains(source, "input double Inp_risk_1_lock_pips = 2.0;", d)
		suite.Contains(source, ", 0, 0, 0, Inp_risk_1_trigger_pips, Inp_risk_1_lock_pips);", d)
		suite.Contains(source, "void ManageStops(", d)
	}
}

func (suite *CodegenTestSuite) TestNoStopManagementWithoutRiskNodes() {
	for name, fixture := range fixtures {
		for _, d := range []Dialect{DialectMQL4, DialectMQL5} {
			source := suite.compile(fixture(), d)
			suite.NotContains(source, "ManageStops", "%s/%s", name, d)
			suite.NotContains(source, "TightenedStop", "%s/%s", name, d)
		}
	}
}

func (suite *CodegenTestSuite) TestUnsupportedRiskSubtypeIsRejected() {
	for _, riskType := range []string{"martingale", "hedge"} {
		s := mocks.RiskManagedStrategy(riskType, map[string]any{"pips": 30.0})

		_, err := Compile(s, Options{Dialect: DialectMQL4})
		suite.Require().Error(err, riskType)
		suite.True(errors.HasCode(err, errors.ErrCodeStrategyInvalid), riskType)

		// lowering refuses it even when validation is skipped
		_, err = lower(s, Options{Dialect: DialectMQL4, StrategyName: "x", MagicNumber: 1})
		suite.Require().Error(err, riskType)
		suite.True(errors.HasCode(err, errors.ErrCodeUnresolvableNode), riskType)
		suite.Contains(err.Error(), riskType)
	}
}

func (suite *CodegenTestSuite) TestBandsAndPrice() {
	mql4Source := suite.compile(mocks.BollingerStrategy(), DialectMQL4)
	suite.Contains(mql4Source, "bb_1_lower[k] = iBands(_Symbol, PERIOD_CURRENT, Inp_bb_1_period, Inp_bb_1_stdDev, 0, PRICE_CLOSE, MODE_LOWER, k + 1);")
	suite.Contains(mql4Source, "bb_1_upper[k] = iBands(_Symbol, PERIOD_CURRENT, Inp_bb_1_period, Inp_bb_1_stdDev, 0, PRICE_CLOSE, MODE_UPPER, k + 1);")
	suite.Contains(mql4Source, "price_1_value[k] = iClose(_Symbol, PERIOD_CURRENT, k + 1);")
	suite.Contains(mql4Source, "bool c_touch_lower = (price_1_value[0] <= bb_1_lower[0]);")
	suite.Contains(mql4Source, "input double Inp_bb_1_stdDev = 2.0;")

	mql5Source := suite.compile(mocks.BollingerStrategy(), DialectMQL5)
	suite.Contains(mql5Source, "h_bb_1 = iBands(_Symbol, PERIOD_CURRENT, Inp_bb_1_period, 0, Inp_bb_1_stdDev, PRICE_CLOSE);")
	suite.Contains(mql5Source, "if(CopyBuffer(h_bb_1, 2, 1, 1, bb_1_lower) < 1)")
	suite.Contains(mql5Source, "if(CopyBuffer(h_bb_1, 1, 1, 1, bb_1_upper) < 1)")
	suite.Equal(1, strings.Count(mql5Source, "h_bb_1 = iBands("))
	// price nodes never get a handle
	suite.NotContains(mql5Source, "h_price_1")
}

func primitivesStrategy() *graph.Strategy {
	return &graph.Strategy{
		ID:   "primitives",
		Name: "Primitives",
		Nodes: []graph.Node{
			mocks.Node("event-1", graph.CategoryEvent, "OnBar", nil, nil),
			mocks.Node("rsi-1", graph.CategoryIndicator, "RSI", map[string]any{"indicatorType": "rsi"}, map[string]any{"period": 7.0}),
			mocks.Node("level-1", graph.CategoryConstant, "Level", nil, map[string]any{"value": 50.0}),
			mocks.Node("trend", graph.CategoryCondition, "Uptrend", map[string]any{"conditionType": "uptrend"}, map[string]any{"period": 5.0}),
			mocks.Node("div", graph.CategoryCondition, "Divergence", map[string]any{"conditionType": "bullish_divergence"}, map[string]any{"lookback": 10.0}),
			mocks.Node("above-level", graph.CategoryCondition, "RSI > Level", map[string]any{"operator": ">"}, nil),
			mocks.Node("xor-1", graph.CategoryLogic, "XOR", map[string]any{"logicType": "XOR"}, nil),
			mocks.Node("not-1", graph.CategoryLogic, "NOT", map[string]any{"logicType": "NOT"}, nil),
			mocks.Node("action-buy", graph.CategoryAction, "Buy", map[string]any{"actionType": "buy"}, nil),
			mocks.Node("action-sell", graph.CategoryAction, "Sell", map[string]any{"actionType": "sell"}, nil),
		},
		Edges: []graph.Edge{
			mocks.Edge("event-1", "rsi-1", "trigger", ""),
			mocks.Edge("event-1", "level-1", "trigger", ""),
			mocks.Edge("rsi-1", "trend", "value", "a"),
			mocks.Edge("rsi-1", "div", "value", "a"),
			mocks.Edge("rsi-1", "above-level", "value", "a"),
			mocks.Edge("level-1", "above-level", "value", "b"),
			mocks.Edge("trend", "xor-1", "result", ""),
			mocks.Edge("div", "xor-1", "result", ""),
			mocks.Edge("above-level", "xor-1", "result", ""),
			mocks.Edge("xor-1", "action-buy", "result", "trigger"),
			mocks.Edge("xor-1", "not-1", "result", ""),
			mocks.Edge("not-1", "action-sell", "result", "trigger"),
		},
	}
}

func (suite *CodegenTestSuite) TestPrimitivesUseSharedHelpers() {
	for _, d := range []Dialect{DialectMQL4, DialectMQL5} {
		source := suite.compile(primitivesStrategy(), d)

		suite.Contains(source, "bool c_trend = (TrendOf(rsi_1_value, 5, Inp_trend_threshold) == 1);")
		suite.Contains(source, "input double Inp_trend_threshold = 0.0001;")
		suite.Contains(source, "bool c_div = ((Divergence(bar_close, rsi_1_value, 10) & 1) != 0);")
		suite.Contains(source, "bool c_above_level = (rsi_1_value[0] > level_1_value[0]);")
		suite.Contains(source, "ArrayInitialize(level_1_value, Inp_level_1_value);")
		suite.Contains(source, "bool l_xor_1 = ((c_trend ? 1 : 0) + (c_div ? 1 : 0) + (c_above_level ? 1 : 0) == 1);")
		suite.Contains(source, "bool l_not_1 = !l_xor_1;")
		suite.Contains(source, "OpenPosition(")
		suite.Contains(source, "DefaultLots, 0, 0, MagicNumber + 0")
		suite.Contains(source, "double bar_close[10];")
		suite.Contains(source, "bar_close[k] = iClose(_Symbol, PERIOD_CURRENT, k + 1);")
		suite.Contains(source, "int TrendOf(const double &values[], int period, double threshold)")
		suite.Contains(source, "int Divergence(const double &prices[], const double &values[], int lookback)")
		suite.NotContains(source, "int RateOfChange(")
	}

	mql4Source := suite.compile(primitivesStrategy(), DialectMQL4)
	// the deepest consumer sizes the series
	suite.Contains(mql4Source, "double rsi_1_value[10];")

	mql5Source := suite.compile(primitivesStrategy(), DialectMQL5)
	suite.Contains(mql5Source, "if(CopyBuffer(h_rsi_1, 0, 1, 10, rsi_1_value) < 10)")
}

func (suite *CodegenTestSuite) TestInvalidStrategyIsRefused() {
	s := mocks.RSIStrategy()
	s.Nodes = s.Nodes[1:]
	s.Edges = s.Edges[1:]

	_, err := Compile(s, Options{Dialect: DialectMQL4})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyInvalid))

	var verr *validator.ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.NotEmpty(verr.Issues)
}

func (suite *CodegenTestSuite) TestUnknownDialect() {
	_, err := Compile(mocks.RSIStrategy(), Options{Dialect: "pine"})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidDialect))

	_, err = Compile(nil, Options{Dialect: DialectMQL4})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *CodegenTestSuite) TestUntranslatableCategoryFails() {
	s := mocks.RSIStrategy()
	s.Nodes = append(s.Nodes, mocks.Node("notify", graph.CategoryMessaging, "Send alert", map[string]any{"messageType": "alert"}, nil))
	s.Edges = append(s.Edges, mocks.Edge("action-buy", "notify", "", ""))

	suite.True(validator.New().Validate(s).Valid)

	_, err := Compile(s, Options{Dialect: DialectMQL5})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnresolvableNode))
	suite.Contains(err.Error(), "notify")
}

func (suite *CodegenTestSuite) TestDefaultsFromStrategy() {
	source, err := Compile(mocks.RSIStrategy(), Options{Dialect: DialectMQL4})
	suite.Require().NoError(err)

	suite.Contains(source, `#property copyright "RSI Oversold/Overbought"`)
	suite.Contains(source, "RSI_Oversold_Overbought.mq4")
	suite.Contains(source, "input int    MagicNumber = 123456;")
}

func (suite *CodegenTestSuite) TestParseDialect() {
	for in, want := range map[string]Dialect{"mql4": DialectMQL4, "MT4": DialectMQL4, "a": DialectMQL4, "mq5": DialectMQL5, "B": DialectMQL5} {
		d, err := ParseDialect(in)
		suite.Require().NoError(err, in)
		suite.Equal(want, d, in)
	}

	_, err := ParseDialect("pine")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidDialect))

	suite.Equal(".mq4", DialectMQL4.Extension())
	suite.Equal(".mq5", DialectMQL5.Extension())
}

func (suite *CodegenTestSuite) TestHasRequiredStructure() {
	source := suite.compile(mocks.RSIStrategy(), DialectMQL4)
	suite.True(HasRequiredStructure(source))

	for _, drop := range []string{"void OnDeinit", "int OnInit", "void OnTick", "#property", "input "} {
		suite.False(HasRequiredStructure(strings.ReplaceAll(source, drop, "removed")), drop)
	}
}

func (suite *CodegenTestSuite) TestIdentifiersAreUnique() {
	l := &lowering{idents: map[string]string{}, used: map[string]bool{}}

	suite.Equal("rsi_1", l.ident("rsi-1"))
	suite.Equal("rsi_1_2", l.ident("rsi_1"))
	suite.Equal("rsi_1", l.ident("rsi-1"))
	suite.Equal("n1_buy", l.ident("1 buy"))
}

func (suite *CodegenTestSuite) TestOutputIsDeterministic() {
	for _, d := range []Dialect{DialectMQL4, DialectMQL5} {
		suite.Equal(suite.compile(mocks.ComplexStrategy(), d), suite.compile(mocks.ComplexStrategy(), d))
	}
}

// A custom indicator can pass validation through a registry, but without a
// translation rule it cannot be compiled.
func TestCustomIndicatorIsUnresolvable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ind := mocks.NewMockIndicator(ctrl)
	ind.EXPECT().Outputs().Return([]string{"value"}).AnyTimes()

	registry := mocks.NewMockIndicatorRegistry(ctrl)
	registry.EXPECT().GetIndicator(types.IndicatorType("vwap")).Return(ind, nil).AnyTimes()

	s := mocks.RSIStrategy()
	s.Nodes[1] = mocks.Node("rsi-1", graph.CategoryIndicator, "VWAP", map[string]any{"indicatorType": "vwap"}, nil)

	_, err := NewWithValidator(validator.NewWithRegistry(registry)).Compile(s, Options{Dialect: DialectMQL4})
	if err == nil {
		t.Fatal("expected an error")
	}

	if !errors.HasCode(err, errors.ErrCodeUnresolvableNode) {
		t.Fatalf("expected unresolvable node, got %v", err)
	}
}
