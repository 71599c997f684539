package mocks

import (
	"fmt"

	"github.com/rxtech-lab/argo-strategy/internal/graph"
)

// Node builds a graph node. fields hold the subtype keys (indicatorType,
// operator, actionType...), params the editable parameters.
func Node(id string, category graph.Category, label string, fields, params map[string]any) graph.Node {
	if fields == nil {
		fields = map[string]any{}
	}

	if params == nil {
		params = map[string]any{}
	}

	n := graph.Node{
		ID:       id,
		Category: category,
		Data: graph.NodeData{
			Label:      label,
			Fields:     fields,
			Parameters: params,
		},
	}

	switch category {
	case graph.CategoryIndicator, graph.CategoryConstant:
		n.Data.Outputs = []graph.Port{{ID: "value", DataType: graph.PortNumber}}
	case graph.CategoryCondition:
		n.Data.Inputs = []graph.Port{{ID: "a", DataType: graph.PortNumber}, {ID: "b", DataType: graph.PortNumber}}
		n.Data.Outputs = []graph.Port{{ID: "result", DataType: graph.PortBoolean}}
	case graph.CategoryLogic:
		n.Data.Outputs = []graph.Port{{ID: "result", DataType: graph.PortBoolean}}
	case graph.CategoryAction:
		n.Data.Inputs = []graph.Port{{ID: "trigger", DataType: graph.PortBoolean}}
	}

	return n
}

// Edge builds an edge with a generated id.
func Edge(source, target, sourceHandle, targetHandle string) graph.Edge {
	return graph.Edge{
		ID:           fmt.Sprintf("%s->%s:%s", source, target, targetHandle),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
}

// RSIStrategy buys when RSI(14) < 30 and sells when RSI(14) > 70, with a
// 50 pip stop and a 100 pip target on both actions.
func RSIStrategy() *graph.Strategy {
	return &graph.Strategy{
		ID:   "rsi-oversold-overbought",
		Name: "RSI Oversold/Overbought",
		Nodes: []graph.Node{
			Node("event-1", graph.CategoryEvent, "OnTick", map[string]any{"eventType": "ontick"}, nil),
			Node("rsi-1", graph.CategoryIndicator, "RSI(14)", map[string]any{"indicatorType": "rsi"}, map[string]any{"period": 14.0, "source": "close"}),
			Node("condition-buy", graph.CategoryCondition, "RSI < 30", map[string]any{"operator": "lt"}, map[string]any{"value": 30.0}),
			Node("condition-sell", graph.CategoryCondition, "RSI > 70", map[string]any{"operator": "gt"}, map[string]any{"value": 70.0}),
			Node("action-buy", graph.CategoryAction, "Buy", map[string]any{"action": "buy"}, map[string]any{"lots": 0.1, "stopLoss": 50.0, "takeProfit": 100.0}),
			Node("action-sell", graph.CategoryAction, "Sell", map[string]any{"action": "sell"}, map[string]any{"lots": 0.1, "stopLoss": 50.0, "takeProfit": 100.0}),
		},
		Edges: []graph.Edge{
			Edge("event-1", "rsi-1", "trigger", ""),
			Edge("rsi-1", "condition-buy", "value", "a"),
			Edge("rsi-1", "condition-sell", "value", "a"),
			Edge("condition-buy", "action-buy", "result", "trigger"),
			Edge("condition-sell", "action-sell", "result", "trigger"),
		},
		Settings: map[string]any{"symbol": "EURUSD", "timeframe": "H1"},
	}
}

// MACrossStrategy buys when SMA(20) crosses above SMA(50) through an AND gate
// and sells on the opposite cross.
func MACrossStrategy() *graph.Strategy {
	return &graph.Strategy{
		ID:   "sma-crossover",
		Name: "SMA Crossover",
		Nodes: []graph.Node{
			Node("event-1", graph.CategoryEvent, "OnBar", map[string]any{"eventType": "onbar"}, nil),
			Node("sma-fast", graph.CategoryIndicator, "SMA(20)", map[string]any{"indicatorType": "sma"}, map[string]any{"period": 20.0}),
			Node("sma-slow", graph.CategoryIndicator, "SMA(50)", map[string]any{"indicatorType": "sma"}, map[string]any{"period": 50.0}),
			Node("cross-above", graph.CategoryCondition, "Cross Above", map[string]any{"operator": "cross_above"}, nil),
			Node("cross-below", graph.CategoryCondition, "Cross Below", map[string]any{"operator": "cross_below"}, nil),
			Node("and-1", graph.CategoryLogic, "AND", map[string]any{"logicType": "AND"}, nil),
			Node("action-buy", graph.CategoryAction, "Buy", map[string]any{"actionType": "buy"}, map[string]any{"lots": 0.1, "stopLoss": 100.0, "takeProfit": 200.0}),
			Node("action-sell", graph.CategoryAction, "Sell", map[string]any{"actionType": "sell"}, map[string]any{"lots": 0.1, "stopLoss": 100.0, "takeProfit": 200.0}),
		},
		Edges: []graph.Edge{
			Edge("event-1", "sma-fast", "trigger", ""),
			Edge("event-1", "sma-slow", "trigger", ""),
			Edge("sma-fast", "cross-above", "value", "a"),
			Edge("sma-slow", "cross-above", "value", "b"),
			Edge("sma-fast", "cross-below", "value", "a"),
			Edge("sma-slow", "cross-below", "value", "b"),
			Edge("cross-above", "and-1", "result", ""),
			Edge("and-1", "action-buy", "result", "trigger"),
			Edge("cross-below", "action-sell", "result", "trigger"),
		},
	}
}

// ComplexStrategy combines a MACD histogram zero cross with an RSI filter, attaches
// stop-loss and take-profit risk nodes to the buy, and closes everything
// when RSI is extreme.
func ComplexStrategy() *graph.Strategy {
	return &graph.Strategy{
		ID:   "macd-rsi-combo",
		Name: "MACD + RSI",
		Nodes: []graph.Node{
			Node("event-1", graph.CategoryEvent, "OnBar", map[string]any{"eventType": "onbar"}, nil),
			Node("macd-1", graph.CategoryIndicator, "MACD", map[string]any{"indicatorType": "macd"}, map[string]any{"fastPeriod": 12.0, "slowPeriod": 26.0, "signalPeriod": 9.0}),
			Node("rsi-1", graph.CategoryIndicator, "RSI(14)", map[string]any{"indicatorType": "rsi"}, map[string]any{"period": 14.0}),
			Node("macd-up", graph.CategoryCondition, "MACD crosses Signal", map[string]any{"operator": "cross_above"}, map[string]any{"threshold": 0.0}),
			Node("rsi-ok", graph.CategoryCondition, "RSI < 70", map[string]any{"operator": "lt"}, map[string]any{"threshold": 70.0}),
			Node("rsi-extreme", graph.CategoryCondition, "RSI extreme", map[string]any{"conditionType": "extreme"}, map[string]any{"overbought": 80.0, "oversold": 20.0}),
			Node("and-1", graph.CategoryLogic, "AND", map[string]any{"logicType": "AND"}, nil),
			Node("sl-1", graph.CategoryRisk, "Stop Loss", map[string]any{"riskType": "stop_loss"}, map[string]any{"pips": 50.0}),
			Node("tp-1", graph.CategoryRisk, "Take Profit", map[string]any{"riskType": "take_profit"}, map[string]any{"pips": 100.0}),
			Node("action-buy", graph.CategoryAction, "Buy", map[string]any{"actionType": "buy"}, map[string]any{"lots": 0.2}),
			Node("action-close", graph.CategoryAction, "Close All", map[string]any{"actionType": "close"}, nil),
		},
		Edges: []graph.Edge{
			Edge("event-1", "macd-1", "trigger", ""),
			Edge("event-1", "rsi-1", "trigger", ""),
			Edge("macd-1", "macd-up", "histogram", "a"),
			Edge("rsi-1", "rsi-ok", "value", "a"),
			Edge("rsi-1", "rsi-extreme", "value", "a"),
			Edge("macd-up", "and-1", "result", ""),
			Edge("rsi-ok", "and-1", "result", ""),
			Edge("and-1", "sl-1", "result", ""),
			Edge("and-1", "tp-1", "result", ""),
			Edge("sl-1", "action-buy", "", "trigger"),
			Edge("tp-1", "action-buy", "", "trigger"),
			Edge("rsi-extreme", "action-close", "result", "trigger"),
		},
	}
}

// BollingerStrategy buys at the lower band and sells at the upper band,
// comparing a price node against the bands.
func BollingerStrategy() *graph.Strategy {
	return &graph.Strategy{
		ID:   "bollinger-bounce",
		Name: "Bollinger Bounce",
		Nodes: []graph.Node{
			Node("event-1", graph.CategoryEvent, "OnTick", nil, nil),
			Node("bb-1", graph.CategoryIndicator, "BB(20,2)", map[string]any{"indicatorType": "bollinger"}, map[string]any{"period": 20.0, "stdDev": 2.0}),
			Node("price-1", graph.CategoryIndicator, "Close", map[string]any{"indicatorType": "price"}, map[string]any{"source": "close"}),
			Node("touch-lower", graph.CategoryCondition, "Price <= Lower", map[string]any{"operator": "lte"}, nil),
			Node("touch-upper", graph.CategoryCondition, "Price >= Upper", map[string]any{"operator": "gte"}, nil),
			Node("action-buy", graph.CategoryAction, "Buy", map[string]any{"action": "buy"}, map[string]any{"lots": 0.1, "stopLoss": 50.0, "takeProfit": 100.0}),
			Node("action-sell", graph.CategoryAction, "Sell", map[string]any{"action": "sell"}, map[string]any{"lots": 0.1, "stopLoss": 50.0, "takeProfit": 100.0}),
		},
		Edges: []graph.Edge{
			Edge("event-1", "bb-1", "trigger", ""),
			Edge("event-1", "price-1", "trigger", ""),
			Edge("price-1", "touch-lower", "value", "a"),
			Edge("bb-1", "touch-lower", "lower", "b"),
			Edge("price-1", "touch-upper", "value", "a"),
			Edge("bb-1", "touch-upper", "upper", "b"),
			Edge("touch-lower", "action-buy", "result", "trigger"),
			Edge("touch-upper", "action-sell", "result", "trigger"),
		},
	}
}

// RiskManagedStrategy is RSIStrategy with a risk node of riskType between
// the buy condition and the buy action.
func RiskManagedStrategy(riskType string, params map[string]any) *graph.Strategy {
	s := RSIStrategy()
	s.ID = "rsi-risk-managed"
	s.Nodes = append(s.Nodes, Node("risk-1", graph.CategoryRisk, riskType, map[string]any{"riskType": riskType}, params))
	s.Edges[3] = Edge("condition-buy", "risk-1", "result", "")
	s.Edges = append(s.Edges, Edge("risk-1", "action-buy", "", "trigger"))

	return s
}
