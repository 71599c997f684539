package codegen

import (
	"fmt"

	"github.com/rxtech-lab/argo-strategy/internal/indicator"
	"github.com/rxtech-lab/argo-strategy/internal/types"
)

// mql5 creates one indicator handle per node in OnInit and copies the
// needed history out of its buffers on every new bar.
type mql5 struct{}

func (mql5) dialect() Dialect {
	return DialectMQL5
}

func (mql5) includes() []string {
	return []string{"Trade/Trade.mqh"}
}

func handleName(s *series) string {
	return "h_" + s.Ident
}

func (mql5) globals(handles []*series) []string {
	lines := []string{"CTrade trade;"}
	for _, s := range handles {
		lines = append(lines, fmt.Sprintf("int %s = INVALID_HANDLE;", handleName(s)))
	}

	return lines
}

func (m mql5) onInit(handles []*series) []string {
	lines := []string{"trade.SetDeviationInPoints(Slippage);"}

	for _, s := range handles {
		h := handleName(s)
		lines = append(lines,
			fmt.Sprintf("%s = %s;", h, m.create(s)),
			fmt.Sprintf("if(%s == INVALID_HANDLE)", h),
			"{",
			fmt.Sprintf("   Print(\"Failed to create indicator %s: \", GetLastError());", s.Node.ID),
			"   return(INIT_FAILED);",
			"}",
		)
	}

	return lines
}

func (mql5) onDeinit(handles []*series) []string {
	var lines []string
	for _, s := range handles {
		h := handleName(s)
		lines = append(lines,
			fmt.Sprintf("if(%s != INVALID_HANDLE)", h),
			fmt.Sprintf("   IndicatorRelease(%s);", h),
		)
	}

	return lines
}

func (mql5) create(s *series) string {
	p := s.Params
	price := appliedPrice(s.Source)

	switch s.Type {
	case types.IndicatorTypeSMA:
		return fmt.Sprintf("iMA(_Symbol, PERIOD_CURRENT, %s, 0, MODE_SMA, %s)", p["period"], price)
	case types.IndicatorTypeEMA:
		return fmt.Sprintf("iMA(_Symbol, PERIOD_CURRENT, %s, 0, MODE_EMA, %s)", p["period"], price)
	case types.IndicatorTypeRSI:
		return fmt.Sprintf("iRSI(_Symbol, PERIOD_CURRENT, %s, %s)", p["period"], price)
	case types.IndicatorTypeATR:
		return fmt.Sprintf("iATR(_Symbol, PERIOD_CURRENT, %s)", p["period"])
	case types.IndicatorTypeADX:
		return fmt.Sprintf("iADX(_Symbol, PERIOD_CURRENT, %s)", p["period"])
	case types.IndicatorTypeBollingerBands:
		return fmt.Sprintf("iBands(_Symbol, PERIOD_CURRENT, %s, 0, %s, %s)", p["period"], p["stdDev"], price)
	case types.IndicatorTypeMACD:
		return fmt.Sprintf("iMACD(_Symbol, PERIOD_CURRENT, %s, %s, %s, %s)", p["fastPeriod"], p["slowPeriod"], p["signalPeriod"], price)
	case types.IndicatorTypeStochastic:
		return fmt.Sprintf("iStochastic(_Symbol, PERIOD_CURRENT, %s, %s, %s, MODE_SMA, STO_LOWHIGH)", p["kPeriod"], p["dPeriod"], p["slowing"])
	default:
		return "INVALID_HANDLE"
	}
}

var mql5Buffers = map[string]int{
	indicator.OutputValue:   0,
	indicator.OutputMACD:    0,
	indicator.OutputMiddle:  0,
	indicator.OutputUpper:   1,
	indicator.OutputLower:   2,
	indicator.OutputK:       0,
	indicator.OutputD:       1,
	indicator.OutputPlusDI:  1,
	indicator.OutputMinusDI: 2,
}

func copyBuffer(h string, buffer int, depth int, name string) string {
	return fmt.Sprintf("CopyBuffer(%s, %d, 1, %d, %s) < %d", h, buffer, depth, name, depth)
}

func (mql5) load(s *series) []string {
	h := handleName(s)

	if macdDerived(s) {
		main := s.Name + "_main"

		return append([]string{
			fmt.Sprintf("double %s[];", main),
			fmt.Sprintf("ArraySetAsSeries(%s, true);", main),
			fmt.Sprintf("int %s_length = %s;", main, macdLength(s)),
			fmt.Sprintf("if(CopyBuffer(%s, 0, 1, %s_length, %s) < %s_length)", h, main, main, main),
			"   return;",
		}, macdSignal(s, main)...)
	}

	return []string{
		fmt.Sprintf("double %s[];", s.Name),
		fmt.Sprintf("ArraySetAsSeries(%s, true);", s.Name),
		fmt.Sprintf("if(%s)", copyBuffer(h, mql5Buffers[s.Output], s.Depth, s.Name)),
		"   return;",
	}
}

func (mql5) orderType(action string) string {
	if action == "sell" {
		return "ORDER_TYPE_SELL"
	}

	return "ORDER_TYPE_BUY"
}

func (mql5) functions() []string {
	return []string{
		`bool HasPosition(long magic)
{
   for(int i = PositionsTotal() - 1; i >= 0; i--)
   {
      ulong ticket = PositionGetTicket(i);
      if(ticket == 0)
         continue;
      if(PositionGetString(POSITION_SYMBOL) == _Symbol && PositionGetInteger(POSITION_MAGIC) == magic)
         return(true);
   }
   return(false);
}`,
		`void OpenPosition(ENUM_ORDER_TYPE type, double lots, double slPips, double tpPips, long magic, string comment)
{
   if(lots <= 0)
   {
      Print("Position size is below the volume step, entry skipped: ", comment);
      return;
   }

   double pip   = PipSize();
   double price = (type == ORDER_TYPE_BUY) ? SymbolInfoDouble(_Symbol, SYMBOL_ASK) : SymbolInfoDouble(_Symbol, SYMBOL_BID);
   double sl = 0, tp = 0;
   if(slPips > 0)
      sl = (type == ORDER_TYPE_BUY) ? price - slPips * pip : price + slPips * pip;
   if(tpPips > 0)
      tp = (type == ORDER_TYPE_BUY) ? price + tpPips * pip : price - tpPips * pip;

   trade.SetExpertMagicNumber(magic);
   bool ok = (type == ORDER_TYPE_BUY)
      ? trade.Buy(lots, _Symbol, price, NormalizeDouble(sl, _Digits), NormalizeDouble(tp, _Digits), comment)
      : trade.Sell(lots, _Symbol, price, NormalizeDouble(sl, _Digits), NormalizeDouble(tp, _Digits), comment);
   if(!ok)
      Print("Order failed: ", trade.ResultRetcodeDescription());
}`,
		`void CloseAll()
{
   for(int i = PositionsTotal() - 1; i >= 0; i--)
   {
      ulong ticket = PositionGetTicket(i);
      if(ticket == 0)
         continue;

      long magic = PositionGetInteger(POSITION_MAGIC);
      if(PositionGetString(POSITION_SYMBOL) != _Symbol || magic < MagicNumber || magic >= MagicNumber + ACTION_COUNT)
         continue;

      if(!trade.PositionClose(ticket, Slippage))
         Print("PositionClose failed: ", trade.ResultRetcodeDescription());
   }
}`,
	}
}

func (mql5) manageStops() string {
	return `void ManageStops(long magic, double trailPips, double trailActivation, double trailStep, double bePips, double beLock)
{
   double price = iClose(_Symbol, PERIOD_CURRENT, 1);
   for(int i = PositionsTotal() - 1; i >= 0; i--)
   {
      ulong ticket = PositionGetTicket(i);
      if(ticket == 0)
         continue;
      if(PositionGetString(POSITION_SYMBOL) != _Symbol || PositionGetInteger(POSITION_MAGIC) != magic)
         continue;

      double dir = (PositionGetInteger(POSITION_TYPE) == POSITION_TYPE_BUY) ? 1 : -1;
      double sl  = TightenedStop(dir, PositionGetDouble(POSITION_PRICE_OPEN), PositionGetDouble(POSITION_SL), price,
                                 trailPips, trailActivation, trailStep, bePips, beLock);
      if(sl > 0 && !trade.PositionModify(ticket, NormalizeDouble(sl, _Digits), PositionGetDouble(POSITION_TP)))
         Print("PositionModify failed: ", trade.ResultRetcodeDescription());
   }
}`
}
