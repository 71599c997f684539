package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitReasonStopLoss   ExitReason = "stop_loss"
	ExitReasonTakeProfit ExitReason = "take_profit"
	ExitReasonSignal     ExitReason = "exit_signal"
	ExitReasonEndOfData  ExitReason = "end_of_data"
)

// Position is an open trade held by the interpreter.
type Position struct {
	ID         string                   `validate:"required"`
	Type       TradeType                `validate:"required,oneof=buy sell"`
	Symbol     string                   `validate:"required"`
	NodeID     string                   `validate:"required"`
	EntryTime  time.Time                `validate:"required"`
	EntryPrice float64                  `validate:"gt=0"`
	Lots       float64                  `validate:"gt=0"`
	StopLoss   optional.Option[float64] `validate:"-"`
	TakeProfit optional.Option[float64] `validate:"-"`
	// TrailingStop and BreakEven move StopLoss while the position is open.
	TrailingStop optional.Option[graph.TrailingStop] `validate:"-"`
	BreakEven    optional.Option[graph.BreakEven]    `validate:"-"`
	// EntryCost is spread plus commission charged when the position was opened.
	EntryCost float64 `validate:"gte=0"`
}

// Validate checks the position before it is added to the book.
func (p *Position) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid position", err)
	}

	if p.StopLoss.IsSome() && p.StopLoss.Unwrap() <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "stop loss must be positive")
	}

	if p.TakeProfit.IsSome() && p.TakeProfit.Unwrap() <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "take profit must be positive")
	}

	return nil
}

// Trade is a closed position in the ledger.
type Trade struct {
	ID         string     `yaml:"id" json:"id" csv:"id"`
	Type       TradeType  `yaml:"type" json:"type" csv:"type"`
	Symbol     string     `yaml:"symbol" json:"symbol" csv:"symbol"`
	NodeID     string     `yaml:"node_id" json:"node_id" csv:"node_id"`
	EntryTime  time.Time  `yaml:"entry_time" json:"entryTime" csv:"entry_time"`
	ExitTime   time.Time  `yaml:"exit_time" json:"exitTime" csv:"exit_time"`
	EntryPrice float64    `yaml:"entry_price" json:"entryPrice" csv:"entry_price"`
	ExitPrice  float64    `yaml:"exit_price" json:"exitPrice" csv:"exit_price"`
	Lots       float64    `yaml:"lots" json:"lots" csv:"lots"`
	Pips       float64    `yaml:"pips" json:"pips" csv:"pips"`
	// Profit is net of spread and commission.
	Profit float64    `yaml:"profit" json:"profit" csv:"profit"`
	Costs  float64    `yaml:"costs" json:"costs" csv:"costs"`
	Reason ExitReason `yaml:"reason" json:"reason" csv:"reason"`
}

// Duration is the holding time of the trade.
func (t Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// EquityPoint is one sample of the equity curve, taken after every bar.
type EquityPoint struct {
	Time            time.Time `json:"time"`
	Balance         float64   `json:"balance"`
	Equity          float64   `json:"equity"`
	Drawdown        float64   `json:"drawdown"`
	DrawdownPercent float64   `json:"drawdownPercent"`
}
