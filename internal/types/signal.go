package types

import "time"

type SignalType string

const (
	// SignalTypeBuy is emitted when a buy action node fires and the fill succeeds.
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell is emitted when a sell action node fires and the fill succeeds.
	SignalTypeSell SignalType = "sell"
	// SignalTypeClose is emitted whenever a position is closed, for any reason.
	SignalTypeClose SignalType = "close"
	// SignalTypeBlocked is emitted when an action fired but the filters refused it.
	SignalTypeBlocked SignalType = "blocked"
)

type Signal struct {
	Time   time.Time  `json:"time"`
	Type   SignalType `json:"type"`
	Symbol string     `json:"symbol"`
	// NodeID is the action node that produced the signal, empty for SL/TP exits.
	NodeID string `json:"node_id"`
	Reason string `json:"reason"`
}
