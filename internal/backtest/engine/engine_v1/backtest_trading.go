package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-strategy/internal/filter"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/internal/utils"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"github.com/shopspring/decimal"
)

// ContractSize is the number of base-currency units in one lot.
const ContractSize = 100000

// OrderRequest asks the ledger to open a position for an action node.
type OrderRequest struct {
	NodeID string
	Type   types.TradeType
	Symbol string
	Time   time.Time
	Price  float64
	Lots   float64
	// StopLossPips and TakeProfitPips are distances from the entry price.
	StopLossPips   optional.Option[float64]
	TakeProfitPips optional.Option[float64]
	TrailingStop   optional.Option[graph.TrailingStop]
	BreakEven      optional.Option[graph.BreakEven]
}

// BacktestTrading is the simulated account of one run. Each action node may
// hold at most one open position.
type BacktestTrading struct {
	config     BacktestEngineV1Config
	commission commission_fee.CommissionFee
	balance    decimal.Decimal
	positions  []types.Position
	trades     []types.Trade

	dayKey          string
	dayStartBalance decimal.Decimal
}

func NewBacktestTrading(config BacktestEngineV1Config) *BacktestTrading {
	t := &BacktestTrading{
		config:     config,
		commission: commission_fee.GetCommissionFeeHandler(config.Broker, config.Commission),
	}
	t.Reset(config.InitialBalance)

	return t
}

// Reset empties the book and restores the balance.
func (b *BacktestTrading) Reset(initialBalance float64) {
	b.balance = decimal.NewFromFloat(initialBalance)
	b.positions = nil
	b.trades = nil
	b.dayKey = ""
	b.dayStartBalance = b.balance
}

func (b *BacktestTrading) Balance() float64 {
	return b.balance.InexactFloat64()
}

// Trades returns the closed trades in closing order.
func (b *BacktestTrading) Trades() []types.Trade {
	return b.trades
}

// Positions returns the open positions in opening order.
func (b *BacktestTrading) Positions() []types.Position {
	return b.positions
}

func (b *BacktestTrading) OpenCount() int {
	return len(b.positions)
}

// HasPosition reports whether nodeID already holds an open position.
func (b *BacktestTrading) HasPosition(nodeID string) bool {
	for _, p := range b.positions {
		if p.NodeID == nodeID {
			return true
		}
	}

	return false
}

// entryCost is spread, slippage and round-trip commission, charged when the
// position is opened and booked against the trade when it closes.
func (b *BacktestTrading) entryCost(lots float64) decimal.Decimal {
	spread := commission_fee.PipCost(b.config.Spread, lots, b.config.PipValue)
	slippage := commission_fee.PipCost(b.config.Slippage, lots, b.config.PipValue)

	return decimal.NewFromFloat(spread).
		Add(decimal.NewFromFloat(slippage)).
		Add(decimal.NewFromFloat(b.commission.Calculate(lots)))
}

// marginRequired is the margin needed to hold lots. The base currency is
// taken to be the account currency.
func (b *BacktestTrading) marginRequired(lots float64) decimal.Decimal {
	return decimal.NewFromFloat(lots).
		Mul(decimal.NewFromInt(ContractSize)).
		Div(decimal.NewFromFloat(b.config.Leverage))
}

func (b *BacktestTrading) usedMargin() decimal.Decimal {
	used := decimal.Zero
	for _, p := range b.positions {
		used = used.Add(b.marginRequired(p.Lots))
	}

	return used
}

// MaxLots is the largest new position the free margin can hold at price.
func (b *BacktestTrading) MaxLots(price float64) float64 {
	freeMargin := decimal.NewFromFloat(b.Equity(price)).Sub(b.usedMargin())

	return utils.CalculateMaxLots(freeMargin.InexactFloat64(), b.marginRequired(1).InexactFloat64(), b.commission)
}

// Open fills req at its price. It fails when the node already holds a
// position or the free margin cannot cover the new one.
func (b *BacktestTrading) Open(req OrderRequest) (types.Position, error) {
	if b.HasPosition(req.NodeID) {
		return types.Position{}, errors.Newf(errors.ErrCodeInvalidParameter, "action %s already holds an open position", req.NodeID)
	}

	pip := filter.PipSize(req.Symbol)
	cost := b.entryCost(req.Lots)

	position := types.Position{
		ID:           uuid.New().String(),
		Type:         req.Type,
		Symbol:       req.Symbol,
		NodeID:       req.NodeID,
		EntryTime:    req.Time,
		EntryPrice:   req.Price,
		Lots:         req.Lots,
		StopLoss:     optional.None[float64](),
		TakeProfit:   optional.None[float64](),
		TrailingStop: req.TrailingStop,
		BreakEven:    req.BreakEven,
		EntryCost:    cost.InexactFloat64(),
	}

	direction := 1.0
	if req.Type == types.TradeTypeSell {
		direction = -1
	}

	if req.StopLossPips.IsSome() && req.StopLossPips.Unwrap() > 0 {
		position.StopLoss = optional.Some(req.Price - direction*req.StopLossPips.Unwrap()*pip)
	}

	if req.TakeProfitPips.IsSome() && req.TakeProfitPips.Unwrap() > 0 {
		position.TakeProfit = optional.Some(req.Price + direction*req.TakeProfitPips.Unwrap()*pip)
	}

	if err := position.Validate(); err != nil {
		return types.Position{}, err
	}

	freeMargin := decimal.NewFromFloat(b.Equity(req.Price)).Sub(b.usedMargin())
	if b.marginRequired(req.Lots).GreaterThan(freeMargin) {
		return types.Position{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"insufficient margin to open %.2f lots of %s", req.Lots, req.Symbol)
	}

	b.positions = append(b.positions, position)

	return position, nil
}

// pips is the signed move of p from its entry to price.
func pips(p types.Position, price float64) decimal.Decimal {
	diff := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(p.EntryPrice))
	if p.Type == types.TradeTypeSell {
		diff = diff.Neg()
	}

	return diff.Div(decimal.NewFromFloat(filter.PipSize(p.Symbol)))
}

func (b *BacktestTrading) grossProfit(p types.Position, price float64) decimal.Decimal {
	return pips(p, price).Mul(decimal.NewFromFloat(p.Lots)).Mul(decimal.NewFromFloat(b.config.PipValue))
}

// Close settles the position with id at price and books the trade.
func (b *BacktestTrading) Close(id string, at time.Time, price float64, reason types.ExitReason) (types.Trade, bool) {
	for i, p := range b.positions {
		if p.ID != id {
			continue
		}

		cost := decimal.NewFromFloat(p.EntryCost)
		profit := b.grossProfit(p, price).Sub(cost)
		b.balance = b.balance.Add(profit)

		trade := types.Trade{
			ID:         p.ID,
			Type:       p.Type,
			Symbol:     p.Symbol,
			NodeID:     p.NodeID,
			EntryTime:  p.EntryTime,
			ExitTime:   at,
			EntryPrice: p.EntryPrice,
			ExitPrice:  price,
			Lots:       p.Lots,
			Pips:       pips(p, price).Round(1).InexactFloat64(),
			Profit:     profit.Round(2).InexactFloat64(),
			Costs:      cost.Round(2).InexactFloat64(),
			Reason:     reason,
		}

		b.positions = append(b.positions[:i], b.positions[i+1:]...)
		b.trades = append(b.trades, trade)

		return trade, true
	}

	return types.Trade{}, false
}

// CloseAll closes every open position at price.
func (b *BacktestTrading) CloseAll(at time.Time, price float64, reason types.ExitReason) []types.Trade {
	open := append([]types.Position(nil), b.positions...)
	closed := make([]types.Trade, 0, len(open))

	for _, p := range open {
		if trade, ok := b.Close(p.ID, at, price, reason); ok {
			closed = append(closed, trade)
		}
	}

	return closed
}

// CheckExits closes positions whose stop loss or take profit the bar touched.
// The stop loss is checked first, so a bar spanning both levels is a loss.
// Exits fill at the level price.
func (b *BacktestTrading) CheckExits(bar types.Bar) []types.Trade {
	open := append([]types.Position(nil), b.positions...)

	var closed []types.Trade

	for _, p := range open {
		level, reason, hit := exitLevel(p, bar)
		if !hit {
			continue
		}

		if trade, ok := b.Close(p.ID, bar.Time, level, reason); ok {
			closed = append(closed, trade)
		}
	}

	return closed
}

// ManageStops tightens the stop loss of positions carrying a break-even or
// trailing rule, marked at the close of bar. Break-even is applied before
// trailing. A stop never loosens, so the break-even move happens once. The
// new stop is live from the next bar.
func (b *BacktestTrading) ManageStops(bar types.Bar) {
	for i := range b.positions {
		if sl, ok := managedStop(b.positions[i], bar.Close); ok {
			b.positions[i].StopLoss = optional.Some(sl)
		}
	}
}

func managedStop(p types.Position, price float64) (float64, bool) {
	if p.TrailingStop.IsNone() && p.BreakEven.IsNone() {
		return 0, false
	}

	pip := filter.PipSize(p.Symbol)
	profit := pips(p, price).InexactFloat64()

	direction := 1.0
	if p.Type == types.TradeTypeSell {
		direction = -1
	}

	stop, moved := p.StopLoss, false

	// tighten moves the stop to level when it gains at least minGain on the
	// current one. An unset stop is always improved on.
	tighten := func(level, minGain float64) {
		if level <= 0 {
			return
		}

		if stop.IsSome() {
			gain := direction * (level - stop.Unwrap())
			if gain <= 0 || gain < minGain {
				return
			}
		}

		stop, moved = optional.Some(level), true
	}

	if p.BreakEven.IsSome() {
		be := p.BreakEven.Unwrap()
		if profit >= be.TriggerPips {
			tighten(p.EntryPrice+direction*be.LockPips*pip, 0)
		}
	}

	if p.TrailingStop.IsSome() {
		t := p.TrailingStop.Unwrap()
		if profit >= t.ActivationPips {
			tighten(price-direction*t.Pips*pip, t.StepPips*pip)
		}
	}

	if !moved {
		return 0, false
	}

	return stop.Unwrap(), true
}

func exitLevel(p types.Position, bar types.Bar) (float64, types.ExitReason, bool) {
	buy := p.Type == types.TradeTypeBuy

	if p.StopLoss.IsSome() {
		sl := p.StopLoss.Unwrap()
		if (buy && bar.Low <= sl) || (!buy && bar.High >= sl) {
			return sl, types.ExitReasonStopLoss, true
		}
	}

	if p.TakeProfit.IsSome() {
		tp := p.TakeProfit.Unwrap()
		if (buy && bar.High >= tp) || (!buy && bar.Low <= tp) {
			return tp, types.ExitReasonTakeProfit, true
		}
	}

	return 0, "", false
}

// Equity is the balance plus the unrealised gross profit of open positions
// marked at price.
func (b *BacktestTrading) Equity(price float64) float64 {
	equity := b.balance
	for _, p := range b.positions {
		equity = equity.Add(b.grossProfit(p, price))
	}

	return equity.InexactFloat64()
}

// DailyLossPercent is the loss of equity since the first call on the
// calendar day of at, in percent of the balance at that time.
func (b *BacktestTrading) DailyLossPercent(at time.Time, price float64) float64 {
	key := at.UTC().Format(time.DateOnly)
	if key != b.dayKey {
		b.dayKey = key
		b.dayStartBalance = b.balance
	}

	if !b.dayStartBalance.IsPositive() {
		return 0
	}

	loss := b.dayStartBalance.Sub(decimal.NewFromFloat(b.Equity(price)))
	if !loss.IsPositive() {
		return 0
	}

	return loss.Div(b.dayStartBalance).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
