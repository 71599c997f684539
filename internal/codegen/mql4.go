package codegen

import (
	"fmt"

	"github.com/rxtech-lab/argo-strategy/internal/indicator"
	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// mql4 reads indicators with the shift-taking iRSI family directly on every
// new bar.
type mql4 struct{}

func (mql4) dialect() Dialect {
	return DialectMQL4
}

func (mql4) includes() []string {
	return nil
}

func (mql4) globals([]*series) []string {
	return nil
}

func (mql4) onInit([]*series) []string {
	return nil
}

func (mql4) onDeinit([]*series) []string {
	return nil
}

var mql4Modes = map[string]string{
	indicator.OutputMiddle:  "MODE_MAIN",
	indicator.OutputUpper:   "MODE_UPPER",
	indicator.OutputLower:   "MODE_LOWER",
	indicator.OutputK:       "MODE_MAIN",
	indicator.OutputD:       "MODE_SIGNAL",
	indicator.OutputValue:   "MODE_MAIN",
	indicator.OutputPlusDI:  "MODE_PLUSDI",
	indicator.OutputMinusDI: "MODE_MINUSDI",
}

func (m mql4) call(s *series, output, shift string) string {
	p := s.Params
	price := appliedPrice(s.Source)
	mode := mql4Modes[output]

	switch s.Type {
	case types.IndicatorTypeSMA:
		return fmt.Sprintf("iMA(_Symbol, PERIOD_CURRENT, %s, 0, MODE_SMA, %s, %s)", p["period"], price, shift)
	case types.IndicatorTypeEMA:
		return fmt.Sprintf("iMA(_Symbol, PERIOD_CURRENT, %s, 0, MODE_EMA, %s, %s)", p["period"], price, shift)
	case types.IndicatorTypeRSI:
		return fmt.Sprintf("iRSI(_Symbol, PERIOD_CURRENT, %s, %s, %s)", p["period"], price, shift)
	case types.IndicatorTypeATR:
		return fmt.Sprintf("iATR(_Symbol, PERIOD_CURRENT, %s, %s)", p["period"], shift)
	case types.IndicatorTypeADX:
		return fmt.Sprintf("iADX(_Symbol, PERIOD_CURRENT, %s, PRICE_CLOSE, %s, %s)", p["period"], mode, shift)
	case types.IndicatorTypeBollingerBands:
		return fmt.Sprintf("iBands(_Symbol, PERIOD_CURRENT, %s, %s, 0, %s, %s, %s)", p["period"], p["stdDev"], price, mode, shift)
	case types.IndicatorTypeMACD:
		// only the main line; the signal is derived by macdSignal
		return fmt.Sprintf("iMACD(_Symbol, PERIOD_CURRENT, %s, %s, %s, %s, MODE_MAIN, %s)",
			p["fastPeriod"], p["slowPeriod"], p["signalPeriod"], price, shift)
	case types.IndicatorTypeStochastic:
		return fmt.Sprintf("iStochastic(_Symbol, PERIOD_CURRENT, %s, %s, %s, MODE_SMA, 0, %s, %s)",
			p["kPeriod"], p["dPeriod"], p["slowing"], mode, shift)
	default:
		return "EMPTY_VALUE"
	}
}

func (m mql4) load(s *series) []string {
	if !macdDerived(s) {
		return fillLoop(s, m.call(s, s.Output, "k + 1"))
	}

	main := s.Name + "_main"

	return append([]string{
		fmt.Sprintf("double %s[];", main),
		fmt.Sprintf("ArrayResize(%s, %s);", main, macdLength(s)),
		fmt.Sprintf("for(int k = 0; k < ArraySize(%s); k++)", main),
		fmt.Sprintf("   %s[k] = %s;", main, m.call(s, indicator.OutputMACD, "k + 1")),
	}, macdSignal(s, main)...)
}

func (mql4) orderType(action string) string {
	if action == "sell" {
		return "OP_SELL"
	}

	return "OP_BUY"
}

func (mql4) functions() []string {
	return []string{
		`bool HasPosition(int magic)
{
   for(int i = OrdersTotal() - 1; i >= 0; i--)
   {
      if(!OrderSelect(i, SELECT_BY_POS, MODE_TRADES))
         continue;
      if(OrderSymbol() == _Symbol && OrderMagicNumber() == magic)
         return(true);
   }
   return(false);
}`,
		`void OpenPosition(int type, double lots, double slPips, double tpPips, int magic, string comment)
{
   if(lots <= 0)
   {
      Print("Position size is below the volume step, entry skipped: ", comment);
      return;
   }

   RefreshRates();
   double pip   = PipSize();
   double price = (type == OP_BUY) ? Ask : Bid;
   double sl = 0, tp = 0;
   if(slPips > 0)
      sl = (type == OP_BUY) ? price - slPips * pip : price + slPips * pip;
   if(tpPips > 0)
      tp = (type == OP_BUY) ? price + tpPips * pip : price - tpPips * pip;

   int ticket = OrderSend(_Symbol, type, lots, price, Slippage, NormalizeDouble(sl, _Digits), NormalizeDouble(tp, _Digits), comment, magic, 0, clrNONE);
   if(ticket < 0)
      Print("OrderSend failed: ", GetLastError());
}`,
		`void CloseAll()
{
   RefreshRates();
   for(int i = OrdersTotal() - 1; i >= 0; i--)
   {
      if(!OrderSelect(i, SELECT_BY_POS, MODE_TRADES))
         continue;
      if(OrderSymbol() != _Symbol || OrderMagicNumber() < MagicNumber || OrderMagicNumber() >= MagicNumber + ACTION_COUNT)
         continue;

      double price = (OrderType() == OP_BUY) ? Bid : Ask;
      if(!OrderClose(OrderTicket(), OrderLots(), price, Slippage, clrNONE))
         Print("OrderClose failed: ", GetLastError());
   }
}`,
	}
}

func (mql4) manageStops() string {
	return `void ManageStops(int magic, double trailPips, double trailActivation, double trailStep, double bePips, double beLock)
{
   double price = iClose(_Symbol, PERIOD_CURRENT, 1);
   for(int i = OrdersTotal() - 1; i >= 0; i--)
   {
      if(!OrderSelect(i, SELECT_BY_POS, MODE_TRADES))
         continue;
      if(OrderSymbol() != _Symbol || OrderMagicNumber() != magic)
         continue;

      double dir = (OrderType() == OP_BUY) ? 1 : -1;
      double sl  = TightenedStop(dir, OrderOpenPrice(), OrderStopLoss(), price, trailPips, trailActivation, trailStep, bePips, beLock);
      if(sl > 0 && !OrderModify(OrderTicket(), OrderOpenPrice(), NormalizeDouble(sl, _Digits), OrderTakeProfit(), 0, clrNONE))
         Print("OrderModify failed: ", GetLastError());
   }
}`
}
